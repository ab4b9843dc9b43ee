package genesis

import (
	"errors"
	"fmt"
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
)

// ErrAlreadyApplied is returned when the view already holds a chain.
var ErrAlreadyApplied = errors.New("genesis is already applied")

// NativeToken is created at id 0 unless the genesis lists its own.
var NativeToken = Token{
	ID:        inter.NativeToken,
	Symbol:    "DFI",
	Name:      "Default Defi token",
	Tradeable: true,
}

// MasternodeID is the id of the i-th genesis masternode. Genesis nodes
// have no creation transaction.
func MasternodeID(i int) hash.Hash {
	return hash.Of([]byte("genesis masternode"), bigendian.Uint32ToBytes(uint32(i)))
}

// Coinbase is the transaction holding the genesis coins.
func (g *Genesis) Coinbase() *inter.Transaction {
	tx := &inter.Transaction{
		Version: 1,
		Inputs:  []inter.TxIn{{Prev: inter.OutPoint{Index: math.MaxUint32}}},
	}
	for _, c := range g.Coins {
		tx.Outputs = append(tx.Outputs, inter.TxOut{
			Amount: int64(c.Amount),
			Token:  c.Token,
			Script: inter.P2PKHScript(c.Owner),
		})
	}
	return tx
}

func amount(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("amount %d out of range", v)
	}
	return int64(v), nil
}

// Apply writes the genesis into an empty view and returns block 0. Nothing
// is recorded for undo: block 0 is never disconnected.
func (g *Genesis) Apply(view *ledger.View) (ledger.Tip, error) {
	if _, ok := view.GetTip(); ok {
		return ledger.Tip{}, ErrAlreadyApplied
	}
	rules, err := g.Rules()
	if err != nil {
		return ledger.Tip{}, err
	}

	tokens := g.Tokens
	if !hasToken(tokens, inter.NativeToken) {
		tokens = append([]Token{NativeToken}, tokens...)
	}
	for _, t := range tokens {
		res := view.CreateNativeToken(t.ID, &ledger.Token{
			Symbol:    t.Symbol,
			Name:      t.Name,
			Decimal:   ledger.DefaultDecimal,
			Mintable:  t.Mintable,
			Tradeable: t.Tradeable,
		})
		if !res.Ok {
			return ledger.Tip{}, fmt.Errorf("token %s: %v", t.Symbol, res.Err())
		}
	}

	for i, m := range g.Masternodes {
		node := ledger.NewMasternode(m.Owner, m.OwnerType, m.Operator, m.OperatorType, 0)
		if !m.OwnerType.Valid() || !m.OperatorType.Valid() {
			return ledger.Tip{}, fmt.Errorf("masternode %d: bad address type", i)
		}
		if res := view.CreateMasternode(MasternodeID(i), node); !res.Ok {
			return ledger.Tip{}, fmt.Errorf("masternode %d: %v", i, res.Err())
		}
	}

	for _, b := range g.Balances {
		a, err := amount(b.Amount)
		if err != nil {
			return ledger.Tip{}, err
		}
		if res := view.AddSupply(b.Token, a); !res.Ok {
			return ledger.Tip{}, res.Err()
		}
		if res := view.AddBalance(inter.P2PKHScript(b.Owner), ledger.TokenAmount{Token: b.Token, Amount: a}); !res.Ok {
			return ledger.Tip{}, res.Err()
		}
	}

	for _, c := range g.Coins {
		if _, err := amount(c.Amount); err != nil {
			return ledger.Tip{}, err
		}
		if view.GetToken(c.Token) == nil {
			return ledger.Tip{}, fmt.Errorf("coin of unknown token %d", c.Token)
		}
	}
	view.AddCoins(g.Coinbase())

	for _, o := range g.Oracles {
		w, err := amount(o.Weight)
		if err != nil {
			return ledger.Tip{}, err
		}
		if res := view.AppointOracle(inter.P2PKHScript(o.Owner), w); !res.Ok {
			return ledger.Tip{}, res.Err()
		}
	}

	debt, err := amount(g.FoundationsDebt)
	if err != nil {
		return ledger.Tip{}, err
	}
	view.SetFoundationsDebt(debt)

	tip := ledger.Tip{Height: 0, Hash: g.Hash()}
	view.SetTeam(view.CalcNextTeam(tip.Hash, 0, rules.Masternodes))
	view.SetTip(tip)
	return tip, nil
}

func hasToken(tokens []Token, id uint32) bool {
	for _, t := range tokens {
		if t.ID == id {
			return true
		}
	}
	return false
}
