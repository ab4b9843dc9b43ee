package customtx

import (
	"github.com/rony4d/go-opera-ledger/ledger"
)

func (c *Context) ordersEnabled() ledger.Res {
	if !c.Rules.Upgrades.Orders {
		return ledger.Resf(ledger.Forbidden, "orders are not enabled")
	}
	return ledger.ResOk()
}

func (c *Context) applyCreateOrder(m *CreateOrderMessage) ledger.Res {
	if res := c.ordersEnabled(); !res.Ok {
		return res
	}
	if len(m.Owner) != 0 && !c.HasAuth(m.Owner) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the order owner")
	}
	return c.View.CreateOrder(c.TxHash, &ledger.Order{
		Owner:          m.Owner.Copy(),
		Give:           m.Give,
		Take:           m.Take,
		Premium:        m.Premium,
		CreationHeight: int64(c.Height),
		TimeInForce:    m.TimeInForce,
	})
}

// applyDestroyOrder lets the owner cancel an order, and anyone remove an
// expired one.
func (c *Context) applyDestroyOrder(m *DestroyOrderMessage) ledger.Res {
	if res := c.ordersEnabled(); !res.Ok {
		return res
	}
	o := c.View.GetOrder(m.ID)
	if o == nil {
		return ledger.Resf(ledger.NotFound, "order %s not found", m.ID.Hex())
	}
	if !o.IsExpired(c.Height) && !c.HasAuth(o.Owner) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the order owner")
	}
	return c.View.DestroyOrder(m.ID)
}

func (c *Context) applyMatchOrders(m *MatchOrdersMessage) ledger.Res {
	if res := c.ordersEnabled(); !res.Ok {
		return res
	}
	if len(m.Matcher) == 0 {
		return ledger.Resf(ledger.InvalidPayload, "empty matcher script")
	}
	_, res := c.View.MatchOrders(m.Alice, m.Carol, m.Matcher, c.TxHash, c.Height)
	return res
}
