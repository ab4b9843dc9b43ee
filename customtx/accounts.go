package customtx

import (
	"github.com/rony4d/go-opera-ledger/ledger"
)

// credit pays every recipient. The total was validated by the caller.
func (c *Context) credit(to Recipients) ledger.Res {
	for _, r := range to {
		amounts, res := r.Amounts.Normalize()
		if !res.Ok {
			return res
		}
		if res := c.View.AddBalances(r.To, amounts); !res.Ok {
			return res
		}
	}
	return ledger.ResOk()
}

func (c *Context) requireTokens(b ledger.Balances) ledger.Res {
	for _, a := range b {
		if c.View.GetToken(a.Token) == nil {
			return ledger.Resf(ledger.NotFound, "token %d not found", a.Token)
		}
	}
	return ledger.ResOk()
}

// applyUtxosToAccount credits what the tx burns in its unspendable
// outputs. The supply does not change.
func (c *Context) applyUtxosToAccount(m *UtxosToAccountMessage) ledger.Res {
	total, res := m.To.Total()
	if !res.Ok {
		return res
	}
	if len(total) == 0 {
		return ledger.Resf(ledger.InvalidAmount, "nothing to transfer")
	}
	burnt, res := c.burnt()
	if !res.Ok {
		return res
	}
	if !sameBalances(total, burnt) {
		return ledger.Resf(ledger.InvalidAmount, "credited amounts do not match burnt outputs")
	}
	if res := c.requireTokens(total); !res.Ok {
		return res
	}
	return c.credit(m.To)
}

func (c *Context) applyAccountToAccount(m *AccountToAccountMessage) ledger.Res {
	if !c.HasAuth(m.From) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the sender")
	}
	total, res := m.To.Total()
	if !res.Ok {
		return res
	}
	if len(total) == 0 {
		return ledger.Resf(ledger.InvalidAmount, "nothing to transfer")
	}
	if res := c.View.SubBalances(m.From, total); !res.Ok {
		return res
	}
	return c.credit(m.To)
}

// applyAccountToUtxos debits From for the outputs the tx creates from
// MintingOutputsStart on.
func (c *Context) applyAccountToUtxos(m *AccountToUtxosMessage) ledger.Res {
	if !c.HasAuth(m.From) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the sender")
	}
	amounts, res := m.Amounts.Normalize()
	if !res.Ok {
		return res
	}
	if len(amounts) == 0 {
		return ledger.Resf(ledger.InvalidAmount, "nothing to transfer")
	}
	start := int(m.MintingOutputsStart)
	if start < 1 || start >= len(c.Tx.Outputs) {
		return ledger.Resf(ledger.InvalidPayload, "minting outputs start %d out of range", start)
	}
	var minted ledger.Balances
	for _, out := range c.Tx.Outputs[start:] {
		if out.Script.IsUnspendable() || out.Amount <= 0 {
			return ledger.Resf(ledger.InvalidPayload, "minting outputs must be spendable and positive")
		}
		minted = append(minted, ledger.TokenAmount{Token: out.Token, Amount: out.Amount})
	}
	minted, res = minted.Normalize()
	if !res.Ok {
		return res
	}
	if !sameBalances(amounts, minted) {
		return ledger.Resf(ledger.InvalidAmount, "minted outputs do not match debited amounts")
	}
	return c.View.SubBalances(m.From, amounts)
}
