package customtx

import (
	"github.com/rony4d/go-opera-ledger/ledger"
)

func (c *Context) oraclesEnabled() ledger.Res {
	if !c.Rules.Upgrades.Oracles {
		return ledger.Resf(ledger.Forbidden, "oracles are not enabled")
	}
	return ledger.ResOk()
}

func (c *Context) applyAppointOracle(m *AppointOracleMessage) ledger.Res {
	if res := c.oraclesEnabled(); !res.Ok {
		return res
	}
	if !c.HasFoundationAuth() {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by a foundation member")
	}
	return c.View.AppointOracle(m.Oracle.Copy(), m.Weight)
}

func (c *Context) applyRemoveOracle(m *RemoveOracleMessage) ledger.Res {
	if res := c.oraclesEnabled(); !res.Ok {
		return res
	}
	if !c.HasFoundationAuth() {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by a foundation member")
	}
	return c.View.RemoveOracle(m.Oracle)
}

func (c *Context) applySetOracleData(m *SetOracleDataMessage) ledger.Res {
	if res := c.oraclesEnabled(); !res.Ok {
		return res
	}
	if !c.HasAuth(m.Oracle) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the oracle")
	}
	return c.View.SetOracleData(m.Oracle, m.Token, ledger.PricePoint{
		Price:      m.Price,
		Height:     int64(c.Height),
		ValidUntil: int64(c.Height) + int64(m.ValidFor),
	})
}
