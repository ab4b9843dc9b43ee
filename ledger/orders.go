package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/holiman/uint256"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// Order offers Give in exchange for Take. Premium is paid to whoever
// matches the order, in the Give token, pro rata to the filled part.
type Order struct {
	Owner   inter.Script
	Give    TokenAmount
	Take    TokenAmount
	Premium int64

	CreationHeight int64
	// TimeInForce is the lifetime in blocks. 0 keeps the order until it is
	// destroyed or filled.
	TimeInForce uint32
}

// IsExpired reports whether the order can no longer be matched at height.
func (o *Order) IsExpired(height idx.Block) bool {
	return o.TimeInForce != 0 && int64(height) >= o.CreationHeight+int64(o.TimeInForce)
}

func (o *Order) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(o.Owner)
	_ = o.Give.MarshalCSER(w)
	_ = o.Take.MarshalCSER(w)
	w.I64(o.Premium)
	w.I64(o.CreationHeight)
	w.U32(o.TimeInForce)
	return nil
}

func (o *Order) UnmarshalCSER(r *cser.Reader) error {
	o.Owner = r.SliceBytes(maxScriptSize)
	_ = o.Give.UnmarshalCSER(r)
	_ = o.Take.UnmarshalCSER(r)
	o.Premium = r.I64()
	o.CreationHeight = r.I64()
	o.TimeInForce = r.U32()
	return nil
}

// OrderMatch is the settlement receipt of a match.
type OrderMatch struct {
	AliceOrder hash.Hash
	CarolOrder hash.Hash
	Matcher    inter.Script

	// What each side paid. Alice pays in her give token, Carol in hers.
	AliceGives TokenAmount
	CarolGives TokenAmount
	// What each side received.
	AliceGets TokenAmount
	CarolGets TokenAmount
	// Premium parts of AliceGives and CarolGives.
	AlicePremium int64
	CarolPremium int64
	// MatcherGets holds the spread and both premiums.
	MatcherGets Balances

	Height int64
}

func (m *OrderMatch) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.AliceOrder.Bytes())
	w.FixedBytes(m.CarolOrder.Bytes())
	w.SliceBytes(m.Matcher)
	for _, a := range []*TokenAmount{&m.AliceGives, &m.CarolGives, &m.AliceGets, &m.CarolGets} {
		_ = a.MarshalCSER(w)
	}
	w.I64(m.AlicePremium)
	w.I64(m.CarolPremium)
	_ = m.MatcherGets.MarshalCSER(w)
	w.I64(m.Height)
	return nil
}

func (m *OrderMatch) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.AliceOrder[:])
	r.FixedBytes(m.CarolOrder[:])
	m.Matcher = r.SliceBytes(maxScriptSize)
	for _, a := range []*TokenAmount{&m.AliceGives, &m.CarolGives, &m.AliceGets, &m.CarolGets} {
		_ = a.UnmarshalCSER(r)
	}
	m.AlicePremium = r.I64()
	m.CarolPremium = r.I64()
	if err := m.MatcherGets.UnmarshalCSER(r); err != nil {
		return err
	}
	m.Height = r.I64()
	return nil
}

// GetOrder returns nil for an unknown id.
func (v *View) GetOrder(id hash.Hash) *Order {
	var o Order
	if !v.getRecord(orderKey(id), &o) {
		return nil
	}
	return &o
}

// CheckOrder validates user supplied order fields against registered
// tokens.
func (v *View) CheckOrder(o *Order) Res {
	if len(o.Owner) == 0 {
		return Resf(InvalidPayload, "order owner is empty")
	}
	if o.Give.Amount <= 0 || o.Take.Amount <= 0 {
		return Resf(InvalidAmount, "order amounts must be positive")
	}
	if o.Premium < 0 {
		return Resf(InvalidAmount, "negative premium")
	}
	if o.Give.Token == o.Take.Token {
		return Resf(InvalidPayload, "order gives and takes the same token %d", o.Give.Token)
	}
	for _, id := range []uint32{o.Give.Token, o.Take.Token} {
		t := v.GetToken(id)
		if t == nil {
			return Resf(NotFound, "token %d not found", id)
		}
		if t.IsDestroyed() {
			return Resf(Rejected, "token %d is destroyed", id)
		}
		if !t.Tradeable {
			return Resf(Forbidden, "token %d is not tradeable", id)
		}
	}
	return ResOk()
}

// CreateOrder stores an order under the id of its creation tx. Balances are
// not reserved: they are checked when the order settles.
func (v *View) CreateOrder(id hash.Hash, o *Order) Res {
	if res := v.CheckOrder(o); !res.Ok {
		return res
	}
	if v.has(orderKey(id)) {
		return Resf(AlreadyExists, "order %s already exists", id.Hex())
	}
	v.putRecord(orderKey(id), o)
	return ResOk()
}

// DestroyOrder removes an order. Authorization is the caller's job.
func (v *View) DestroyOrder(id hash.Hash) Res {
	if !v.has(orderKey(id)) {
		return Resf(NotFound, "order %s not found", id.Hex())
	}
	v.del(orderKey(id))
	return ResOk()
}

// OrderEntry is an order with its id.
type OrderEntry struct {
	ID    hash.Hash
	Order *Order
}

// ListOrders returns one page of orders in id order.
func (v *View) ListOrders(p Page) []OrderEntry {
	var out []OrderEntry
	v.forPage([]byte{prefixOrder}, p, func(k, val []byte) bool {
		var o Order
		if err := cser.Unmarshal(val, &o); err != nil {
			fatal(err, "ledger: corrupted order")
		}
		out = append(out, OrderEntry{ID: hash.BytesToHash(k), Order: &o})
		return true
	})
	return out
}

// GetOrderMatch returns the receipt of a match tx.
func (v *View) GetOrderMatch(matchTx hash.Hash) *OrderMatch {
	var m OrderMatch
	if !v.getRecord(receiptKey(matchTx), &m) {
		return nil
	}
	return &m
}

// mulDiv computes a*b/c rounding down, or up when roundUp is set. All
// inputs are non-negative and c is positive.
func mulDiv(a, b, c int64, roundUp bool) (int64, bool) {
	x := new(uint256.Int).Mul(uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b)))
	d := uint256.NewInt(uint64(c))
	q, rem := new(uint256.Int).DivMod(x, d, new(uint256.Int))
	if roundUp && !rem.IsZero() {
		q.AddUint64(q, 1)
	}
	if !q.IsUint64() || q.Uint64() > uint64(1<<63-1) {
		return 0, false
	}
	return int64(q.Uint64()), true
}

// CalcOrderMatch computes the settlement of alice against carol without
// touching state.
//
// Carol's whole offer up to what Alice asks for is traded:
// fill = min(alice.Take, carol.Give) of Alice's take token goes to Alice.
// Alice pays at her own price, rounded down. Carol receives at her own
// price, rounded up. The orders are compatible iff
// carol.Give*alice.Give >= alice.Take*carol.Take, and the difference
// between what Alice pays and what Carol receives is the matcher's spread.
func CalcOrderMatch(alice, carol *Order) (*OrderMatch, Res) {
	if alice.Give.Token != carol.Take.Token || alice.Take.Token != carol.Give.Token {
		return nil, Resf(InvalidPayload, "orders trade different token pairs")
	}
	lhs := new(uint256.Int).Mul(uint256.NewInt(uint64(carol.Give.Amount)), uint256.NewInt(uint64(alice.Give.Amount)))
	rhs := new(uint256.Int).Mul(uint256.NewInt(uint64(alice.Take.Amount)), uint256.NewInt(uint64(carol.Take.Amount)))
	if lhs.Lt(rhs) {
		return nil, Resf(Rejected, "orders prices do not cross")
	}

	fill := alice.Take.Amount
	if carol.Give.Amount < fill {
		fill = carol.Give.Amount
	}
	alicePays, ok1 := mulDiv(fill, alice.Give.Amount, alice.Take.Amount, false)
	carolGets, ok2 := mulDiv(fill, carol.Take.Amount, carol.Give.Amount, true)
	alicePremium, ok3 := mulDiv(alice.Premium, alicePays, alice.Give.Amount, false)
	carolPremium, ok4 := mulDiv(carol.Premium, fill, carol.Give.Amount, false)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, Resf(InvalidAmount, "settlement overflows")
	}
	if alicePays == 0 || carolGets == 0 || alicePays < carolGets {
		return nil, Resf(Rejected, "settlement rounds to nothing")
	}

	matcher, res := Balances{
		{Token: alice.Give.Token, Amount: alicePays - carolGets + alicePremium},
		{Token: carol.Give.Token, Amount: carolPremium},
	}.positive().Normalize()
	if !res.Ok {
		return nil, res
	}
	return &OrderMatch{
		AliceGives:   TokenAmount{Token: alice.Give.Token, Amount: alicePays + alicePremium},
		CarolGives:   TokenAmount{Token: carol.Give.Token, Amount: fill + carolPremium},
		AliceGets:    TokenAmount{Token: alice.Take.Token, Amount: fill},
		CarolGets:    TokenAmount{Token: carol.Take.Token, Amount: carolGets},
		AlicePremium: alicePremium,
		CarolPremium: carolPremium,
		MatcherGets:  matcher,
	}, ResOk()
}

func (b Balances) positive() Balances {
	out := make(Balances, 0, len(b))
	for _, a := range b {
		if a.Amount > 0 {
			out = append(out, a)
		}
	}
	return out
}

// MatchOrders settles alice against carol for matcher. Either every
// balance change happens or none: the debits are checked for both sides
// before anything is written.
func (v *View) MatchOrders(aliceID, carolID hash.Hash, matcher inter.Script, matchTx hash.Hash, height idx.Block) (*OrderMatch, Res) {
	if aliceID == carolID {
		return nil, Resf(InvalidPayload, "order %s matched against itself", aliceID.Hex())
	}
	alice, carol := v.GetOrder(aliceID), v.GetOrder(carolID)
	if alice == nil || carol == nil {
		return nil, Resf(NotFound, "order not found")
	}
	if alice.IsExpired(height) || carol.IsExpired(height) {
		return nil, Resf(Expired, "order expired")
	}
	m, res := CalcOrderMatch(alice, carol)
	if !res.Ok {
		return nil, res
	}
	m.AliceOrder, m.CarolOrder = aliceID, carolID
	m.Matcher = matcher.Copy()
	m.Height = int64(height)

	if cur := v.GetBalance(alice.Owner, m.AliceGives.Token); cur < m.AliceGives.Amount {
		return nil, Resf(NotEnoughBalance, "order %s owner has %d of token %d, needs %d", aliceID.Hex(), cur, m.AliceGives.Token, m.AliceGives.Amount)
	}
	if cur := v.GetBalance(carol.Owner, m.CarolGives.Token); cur < m.CarolGives.Amount {
		return nil, Resf(NotEnoughBalance, "order %s owner has %d of token %d, needs %d", carolID.Hex(), cur, m.CarolGives.Token, m.CarolGives.Amount)
	}
	for _, step := range []func() Res{
		func() Res { return v.SubBalance(alice.Owner, m.AliceGives) },
		func() Res { return v.SubBalance(carol.Owner, m.CarolGives) },
		func() Res { return v.AddBalance(alice.Owner, m.AliceGets) },
		func() Res { return v.AddBalance(carol.Owner, m.CarolGets) },
		func() Res { return v.AddBalances(matcher, m.MatcherGets) },
	} {
		if res := step(); !res.Ok {
			// the caller drops the cache this ran in
			return nil, res
		}
	}

	alice.Give.Amount -= m.AliceGives.Amount - m.AlicePremium
	alice.Take.Amount -= m.AliceGets.Amount
	alice.Premium -= m.AlicePremium
	carol.Give.Amount -= m.CarolGives.Amount - m.CarolPremium
	carol.Take.Amount -= m.CarolGets.Amount
	carol.Premium -= m.CarolPremium
	v.settleOrder(aliceID, alice)
	v.settleOrder(carolID, carol)

	v.putRecord(receiptKey(matchTx), m)
	return m, ResOk()
}

// settleOrder stores the remainder of an order, or drops it once either
// side is exhausted.
func (v *View) settleOrder(id hash.Hash, o *Order) {
	if o.Premium < 0 {
		o.Premium = 0
	}
	if o.Give.Amount <= 0 || o.Take.Amount <= 0 {
		v.del(orderKey(id))
		return
	}
	v.putRecord(orderKey(id), o)
}
