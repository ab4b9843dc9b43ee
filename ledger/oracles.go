package ledger

import (
	"sort"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/holiman/uint256"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// PricePoint is the latest price an oracle posted for a token.
type PricePoint struct {
	Price      int64
	Height     int64
	ValidUntil int64
}

// IsValid reports whether the point still counts at height.
func (p *PricePoint) IsValid(height idx.Block) bool {
	return int64(height) <= p.ValidUntil
}

func (p *PricePoint) MarshalCSER(w *cser.Writer) error {
	w.I64(p.Price)
	w.I64(p.Height)
	w.I64(p.ValidUntil)
	return nil
}

func (p *PricePoint) UnmarshalCSER(r *cser.Reader) error {
	p.Price = r.I64()
	p.Height = r.I64()
	p.ValidUntil = r.I64()
	return nil
}

// AppointOracle registers oracle with weight. Authorization is the
// caller's job.
func (v *View) AppointOracle(oracle inter.Script, weight int64) Res {
	if len(oracle) == 0 {
		return Resf(InvalidPayload, "oracle script is empty")
	}
	if weight <= 0 {
		return Resf(InvalidAmount, "oracle weight must be positive")
	}
	if v.has(oracleKey(oracle)) {
		return Resf(AlreadyExists, "oracle %s already exists", oracle)
	}
	v.put(oracleKey(oracle), bigendian.Uint64ToBytes(uint64(weight)))
	return ResOk()
}

// RemoveOracle unregisters oracle together with every price it posted.
func (v *View) RemoveOracle(oracle inter.Script) Res {
	if !v.has(oracleKey(oracle)) {
		return Resf(NotFound, "oracle %s not found", oracle)
	}
	v.del(oracleKey(oracle))
	var stale [][]byte
	v.forEach([]byte{prefixPrice}, nil, func(k, _ []byte) bool {
		if inter.Script(k[4:]).Equal(oracle) {
			stale = append(stale, key(prefixPrice, k))
		}
		return true
	})
	for _, k := range stale {
		v.del(k)
	}
	return ResOk()
}

// GetOracleWeight returns the weight of a registered oracle.
func (v *View) GetOracleWeight(oracle inter.Script) (int64, bool) {
	raw := v.get(oracleKey(oracle))
	if raw == nil {
		return 0, false
	}
	return int64(bigendian.BytesToUint64(raw)), true
}

// OracleEntry is a registered oracle.
type OracleEntry struct {
	Oracle inter.Script
	Weight int64
}

// ListOracles returns one page of oracles in script order.
func (v *View) ListOracles(p Page) []OracleEntry {
	var out []OracleEntry
	v.forPage([]byte{prefixOracle}, p, func(k, val []byte) bool {
		out = append(out, OracleEntry{Oracle: inter.Script(k).Copy(), Weight: int64(bigendian.BytesToUint64(val))})
		return true
	})
	return out
}

// SetOracleData stores the price oracle posts for token, replacing its
// previous one.
func (v *View) SetOracleData(oracle inter.Script, token uint32, p PricePoint) Res {
	if _, ok := v.GetOracleWeight(oracle); !ok {
		return Resf(NotAuthorized, "%s is not an oracle", oracle)
	}
	if p.Price <= 0 {
		return Resf(InvalidAmount, "price must be positive")
	}
	if p.ValidUntil < p.Height {
		return Resf(InvalidPayload, "price expires before it is posted")
	}
	if v.GetToken(token) == nil {
		return Resf(NotFound, "token %d not found", token)
	}
	v.putRecord(priceKey(token, oracle), &p)
	return ResOk()
}

// GetOracleData returns the price oracle posted for token.
func (v *View) GetOracleData(oracle inter.Script, token uint32) (*PricePoint, bool) {
	var p PricePoint
	if !v.getRecord(priceKey(token, oracle), &p) {
		return nil, false
	}
	return &p, true
}

// PriceEntry is one oracle's price for a token.
type PriceEntry struct {
	Token  uint32
	Oracle inter.Script
	Point  PricePoint
}

// ListPrices returns one page of posted prices ordered by token then
// oracle.
func (v *View) ListPrices(p Page) []PriceEntry {
	var out []PriceEntry
	v.forPage([]byte{prefixPrice}, p, func(k, val []byte) bool {
		var pt PricePoint
		if err := cser.Unmarshal(val, &pt); err != nil {
			fatal(err, "ledger: corrupted price")
		}
		out = append(out, PriceEntry{
			Token:  bigendian.BytesToUint32(k[:4]),
			Oracle: inter.Script(k[4:]).Copy(),
			Point:  pt,
		})
		return true
	})
	return out
}

// PricePageStart encodes a (token, oracle) position as a Page.Start.
func PricePageStart(token uint32, oracle inter.Script) []byte {
	return priceKey(token, oracle)[1:]
}

type weightedPrice struct {
	price  int64
	weight int64
}

// GetPrice aggregates the prices of token still valid at height into their
// weighted median: the lowest price at which the cumulative weight
// reaches half of the total.
func (v *View) GetPrice(token uint32, height idx.Block) (int64, bool) {
	var points []weightedPrice
	total := new(uint256.Int)
	v.forEach(pricePrefix(token), nil, func(k, val []byte) bool {
		var pt PricePoint
		if err := cser.Unmarshal(val, &pt); err != nil {
			fatal(err, "ledger: corrupted price")
		}
		if !pt.IsValid(height) {
			return true
		}
		w, ok := v.GetOracleWeight(inter.Script(k))
		if !ok {
			panic("ledger: price posted by a removed oracle")
		}
		points = append(points, weightedPrice{price: pt.Price, weight: w})
		total.Add(total, uint256.NewInt(uint64(w)))
		return true
	})
	if len(points) == 0 {
		return 0, false
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].price < points[j].price })
	// weights are positive int64, so the doubled sums fit in 256 bits
	acc, twice := new(uint256.Int), new(uint256.Int)
	for _, p := range points {
		acc.Add(acc, uint256.NewInt(uint64(p.weight)))
		if !twice.Lsh(acc, 1).Lt(total) {
			return p.price, true
		}
	}
	return points[len(points)-1].price, true
}
