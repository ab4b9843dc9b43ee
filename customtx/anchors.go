package customtx

import (
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
)

// hasTeamAuth reports whether the tx is signed by an operator of the
// current team.
func (c *Context) hasTeamAuth() bool {
	for _, op := range c.View.GetCurrentTeam() {
		_, node, ok := c.View.GetMasternodeByOperator(op)
		if !ok {
			continue
		}
		script, err := inter.ScriptFor(op, node.OperatorType)
		if err == nil && c.HasAuth(script) {
			return true
		}
	}
	return false
}

func (c *Context) applyAnchorReward(m *AnchorRewardMessage) ledger.Res {
	if !c.hasTeamAuth() {
		return ledger.Resf(ledger.NotAuthorized, "anchor reward must be signed by a team operator")
	}
	return c.View.AddRewardForAnchor(m.AnchorTx, c.TxHash)
}
