package ledger

import (
	"math"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// maxBalancesLen bounds the number of tokens in one decoded transfer.
const maxBalancesLen = 1000

// TokenAmount is an amount of one token.
type TokenAmount struct {
	Token  uint32
	Amount int64
}

func (a *TokenAmount) MarshalCSER(w *cser.Writer) error {
	w.U32(a.Token)
	w.I64(a.Amount)
	return nil
}

func (a *TokenAmount) UnmarshalCSER(r *cser.Reader) error {
	a.Token = r.U32()
	a.Amount = r.I64()
	return nil
}

// Balances is a multi-token amount. Normalize sorts it by token and merges
// duplicates so that it has one canonical form.
type Balances []TokenAmount

// Normalize returns the canonical form of b. It fails on a non-positive
// amount or on overflow.
func (b Balances) Normalize() (Balances, Res) {
	sums := make(map[uint32]int64, len(b))
	for _, a := range b {
		if a.Amount <= 0 {
			return nil, Resf(InvalidAmount, "amount of token %d must be positive", a.Token)
		}
		next, ok := safeAdd(sums[a.Token], a.Amount)
		if !ok {
			return nil, Resf(InvalidAmount, "amount of token %d overflows", a.Token)
		}
		sums[a.Token] = next
	}
	out := make(Balances, 0, len(sums))
	for token, amount := range sums {
		out = append(out, TokenAmount{Token: token, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, ResOk()
}

// Add merges o into b.
func (b Balances) Add(o Balances) (Balances, Res) {
	return append(append(Balances{}, b...), o...).Normalize()
}

func (b *Balances) MarshalCSER(w *cser.Writer) error {
	w.U56(uint64(len(*b)))
	for i := range *b {
		_ = (*b)[i].MarshalCSER(w)
	}
	return nil
}

func (b *Balances) UnmarshalCSER(r *cser.Reader) error {
	n := r.U56()
	if n > maxBalancesLen {
		return cser.ErrTooLargeAlloc
	}
	*b = make(Balances, n)
	for i := range *b {
		_ = (*b)[i].UnmarshalCSER(r)
	}
	return nil
}

func safeAdd(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// GetBalance returns the amount of token held by owner.
func (v *View) GetBalance(owner inter.Script, token uint32) int64 {
	raw := v.get(accountKey(owner, token))
	if raw == nil {
		return 0
	}
	return int64(bigendian.BytesToUint64(raw))
}

func (v *View) setBalance(owner inter.Script, token uint32, amount int64) {
	if amount == 0 {
		v.del(accountKey(owner, token))
		return
	}
	v.put(accountKey(owner, token), bigendian.Uint64ToBytes(uint64(amount)))
}

// AddBalance credits owner.
func (v *View) AddBalance(owner inter.Script, a TokenAmount) Res {
	if a.Amount < 0 {
		return Resf(InvalidAmount, "negative amount of token %d", a.Token)
	}
	next, ok := safeAdd(v.GetBalance(owner, a.Token), a.Amount)
	if !ok {
		return Resf(InvalidAmount, "balance of token %d overflows", a.Token)
	}
	v.setBalance(owner, a.Token, next)
	return ResOk()
}

// SubBalance debits owner. A balance never goes negative.
func (v *View) SubBalance(owner inter.Script, a TokenAmount) Res {
	if a.Amount < 0 {
		return Resf(InvalidAmount, "negative amount of token %d", a.Token)
	}
	cur := v.GetBalance(owner, a.Token)
	if cur < a.Amount {
		return Resf(NotEnoughBalance, "amount %d is less than %d of token %d", cur, a.Amount, a.Token)
	}
	v.setBalance(owner, a.Token, cur-a.Amount)
	return ResOk()
}

// AddBalances credits every amount of b, or nothing.
func (v *View) AddBalances(owner inter.Script, b Balances) Res {
	for _, a := range b {
		if a.Amount < 0 {
			return Resf(InvalidAmount, "negative amount of token %d", a.Token)
		}
		if _, ok := safeAdd(v.GetBalance(owner, a.Token), a.Amount); !ok {
			return Resf(InvalidAmount, "balance of token %d overflows", a.Token)
		}
	}
	for _, a := range b {
		v.AddBalance(owner, a)
	}
	return ResOk()
}

// SubBalances debits every amount of b, or nothing. b must be normalized.
func (v *View) SubBalances(owner inter.Script, b Balances) Res {
	for _, a := range b {
		if a.Amount < 0 {
			return Resf(InvalidAmount, "negative amount of token %d", a.Token)
		}
		if cur := v.GetBalance(owner, a.Token); cur < a.Amount {
			return Resf(NotEnoughBalance, "amount %d is less than %d of token %d", cur, a.Amount, a.Token)
		}
	}
	for _, a := range b {
		v.SubBalance(owner, a)
	}
	return ResOk()
}

// GetBalances returns every non-zero balance of owner.
func (v *View) GetBalances(owner inter.Script) Balances {
	var out Balances
	v.forEach(accountPrefix(owner), nil, func(k, val []byte) bool {
		out = append(out, TokenAmount{Token: bigendian.BytesToUint32(k), Amount: int64(bigendian.BytesToUint64(val))})
		return true
	})
	return out
}

// AccountEntry is one balance of one owner.
type AccountEntry struct {
	Owner inter.Script
	TokenAmount
}

// ListAccounts returns one page of balances ordered by owner then token.
// Page.Start is encoded with AccountPageStart.
func (v *View) ListAccounts(p Page) []AccountEntry {
	var out []AccountEntry
	v.forPage([]byte{prefixAccount}, p, func(k, val []byte) bool {
		owner, token, ok := splitAccountKey(k)
		if !ok {
			panic("ledger: corrupted account key")
		}
		out = append(out, AccountEntry{Owner: owner, TokenAmount: TokenAmount{Token: token, Amount: int64(bigendian.BytesToUint64(val))}})
		return true
	})
	return out
}

// AccountPageStart encodes an (owner, token) position as a Page.Start.
func AccountPageStart(owner inter.Script, token uint32) []byte {
	return accountKey(owner, token)[1:]
}
