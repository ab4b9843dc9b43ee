package customtx

import (
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
)

func (c *Context) applyCreateToken(m *CreateTokenMessage) ledger.Res {
	rules := c.Rules.Tokens
	if len(c.Tx.Outputs) < 2 {
		return ledger.Resf(ledger.InvalidPayload, "no owner output")
	}
	fee := c.Tx.Outputs[0]
	if fee.Token != inter.NativeToken || fee.Amount < rules.CreationFee {
		return ledger.Resf(ledger.InvalidAmount, "creation fee must be at least %d", rules.CreationFee)
	}
	if m.Decimal != 0 && m.Decimal != ledger.DefaultDecimal {
		return ledger.Resf(ledger.InvalidPayload, "token decimal must be %d", ledger.DefaultDecimal)
	}
	owner := c.Tx.Outputs[1].Script
	if len(owner) == 0 || owner.IsUnspendable() {
		return ledger.Resf(ledger.InvalidPayload, "token owner must be spendable")
	}
	_, res := c.View.CreateToken(&ledger.Token{
		Symbol:         m.Symbol,
		Name:           m.Name,
		Decimal:        ledger.DefaultDecimal,
		Limit:          m.Limit,
		Mintable:       m.Mintable,
		Tradeable:      m.Tradeable,
		Owner:          owner.Copy(),
		CreationTx:     c.TxHash,
		CreationHeight: int64(c.Height),
	}, rules)
	return res
}

func (c *Context) applyDestroyToken(m *DestroyTokenMessage) ledger.Res {
	if m.Token < ledger.TokenIDStart {
		return ledger.Resf(ledger.Forbidden, "token %d is a native token", m.Token)
	}
	t := c.View.GetToken(m.Token)
	if t == nil {
		return ledger.Resf(ledger.NotFound, "token %d not found", m.Token)
	}
	if !c.HasAuth(t.Owner) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the owner of token %d", m.Token)
	}
	return c.View.DestroyToken(m.Token, c.TxHash, c.Height)
}

func (c *Context) applyMintToken(m *MintTokenMessage) ledger.Res {
	if len(m.To) == 0 {
		return ledger.Resf(ledger.InvalidPayload, "empty recipient script")
	}
	amounts, res := m.Amounts.Normalize()
	if !res.Ok {
		return res
	}
	if len(amounts) == 0 {
		return ledger.Resf(ledger.InvalidAmount, "nothing to mint")
	}
	for _, a := range amounts {
		t := c.View.GetToken(a.Token)
		if t == nil {
			return ledger.Resf(ledger.NotFound, "token %d not found", a.Token)
		}
		if t.IsDestroyed() {
			return ledger.Resf(ledger.Rejected, "token %d is destroyed", a.Token)
		}
		if !t.Mintable {
			return ledger.Resf(ledger.Forbidden, "token %d is not mintable", a.Token)
		}
		if !c.HasAuth(t.Owner) {
			return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the owner of token %d", a.Token)
		}
		if res := c.View.AddSupply(a.Token, a.Amount); !res.Ok {
			return res
		}
	}
	return c.View.AddBalances(m.To, amounts)
}
