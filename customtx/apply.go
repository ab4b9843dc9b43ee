package customtx

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
)

// ErrUnknownType is returned when decoding a payload of an unknown tag.
var ErrUnknownType = errors.New("unknown custom tx type")

// ChainView resolves the coins a transaction spends. Authorization is
// proven by spending a coin locked to the authorized script.
type ChainView interface {
	GetCoin(o inter.OutPoint) (*inter.TxOut, bool)
}

// Context is what an operation is applied against.
type Context struct {
	View   *ledger.View
	Chain  ChainView
	Tx     *inter.Transaction
	TxHash hash.Hash
	Height idx.Block
	Rules  opera.Rules
}

// NewContext prepares tx for application at height.
func NewContext(view *ledger.View, chain ChainView, tx *inter.Transaction, height idx.Block, rules opera.Rules) *Context {
	return &Context{
		View:   view,
		Chain:  chain,
		Tx:     tx,
		TxHash: tx.Hash(),
		Height: height,
		Rules:  rules,
	}
}

// HasAuth reports whether one of the inputs spends a coin locked to script.
func (c *Context) HasAuth(script inter.Script) bool {
	if len(script) == 0 || c.Tx.IsCoinBase() {
		return false
	}
	for _, in := range c.Tx.Inputs {
		coin, ok := c.Chain.GetCoin(in.Prev)
		if ok && coin.Script.Equal(script) {
			return true
		}
	}
	return false
}

// HasFoundationAuth reports whether the tx is signed by a foundation member.
func (c *Context) HasFoundationAuth() bool {
	for _, s := range c.Rules.Foundation {
		if c.HasAuth(s) {
			return true
		}
	}
	return false
}

// burnt sums the amounts locked in unspendable outputs.
func (c *Context) burnt() (ledger.Balances, ledger.Res) {
	var b ledger.Balances
	for _, out := range c.Tx.Outputs {
		if out.Script.IsUnspendable() && out.Amount > 0 {
			b = append(b, ledger.TokenAmount{Token: out.Token, Amount: out.Amount})
		}
	}
	return b.Normalize()
}

// Apply recognizes and applies the operation carried by tx. A plain
// transaction yields None and an ok result.
func Apply(view *ledger.View, chain ChainView, tx *inter.Transaction, height idx.Block, rules opera.Rules) (TxType, ledger.Res) {
	t, payload := GuessTxType(tx)
	if t == None {
		return None, ledger.ResOk()
	}
	msg, err := Decode(t, payload)
	if err != nil {
		return t, ledger.Resf(ledger.InvalidPayload, "%s: malformed payload: %v", t, err)
	}
	return t, ApplyMessage(NewContext(view, chain, tx, height, rules), msg)
}

// ApplyMessage applies a decoded operation.
func ApplyMessage(c *Context, msg Message) ledger.Res {
	switch m := msg.(type) {
	case *CreateMasternodeMessage:
		return c.applyCreateMasternode(m)
	case *ResignMasternodeMessage:
		return c.applyResignMasternode(m)
	case *CreateTokenMessage:
		return c.applyCreateToken(m)
	case *DestroyTokenMessage:
		return c.applyDestroyToken(m)
	case *MintTokenMessage:
		return c.applyMintToken(m)
	case *CreateOrderMessage:
		return c.applyCreateOrder(m)
	case *DestroyOrderMessage:
		return c.applyDestroyOrder(m)
	case *MatchOrdersMessage:
		return c.applyMatchOrders(m)
	case *UtxosToAccountMessage:
		return c.applyUtxosToAccount(m)
	case *AccountToAccountMessage:
		return c.applyAccountToAccount(m)
	case *AccountToUtxosMessage:
		return c.applyAccountToUtxos(m)
	case *AppointOracleMessage:
		return c.applyAppointOracle(m)
	case *RemoveOracleMessage:
		return c.applyRemoveOracle(m)
	case *SetOracleDataMessage:
		return c.applySetOracleData(m)
	case *CriminalProofMessage:
		return c.applyCriminalProof(m)
	case *AnchorRewardMessage:
		return c.applyAnchorReward(m)
	}
	return ledger.Resf(ledger.InvalidPayload, "unsupported message %T", msg)
}

// CheckSpends refuses transactions spending the collateral of a node that
// is neither Resigned nor Banned. Collateral is the second output of the
// creation tx, whose hash is the node id.
func CheckSpends(view *ledger.View, tx *inter.Transaction, height idx.Block, rules opera.Rules) ledger.Res {
	if tx.IsCoinBase() {
		return ledger.ResOk()
	}
	for _, in := range tx.Inputs {
		if in.Prev.Index == 1 && !view.CanSpend(in.Prev.TxHash, height, rules.Masternodes) {
			return ledger.Resf(ledger.Forbidden, "collateral of masternode %s is locked", in.Prev.TxHash.Hex())
		}
	}
	return ledger.ResOk()
}

func sameBalances(a, b ledger.Balances) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
