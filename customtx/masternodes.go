package customtx

import (
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
)

func (c *Context) applyCreateMasternode(m *CreateMasternodeMessage) ledger.Res {
	rules := c.Rules.Masternodes
	if len(c.Tx.Outputs) < 2 {
		return ledger.Resf(ledger.InvalidPayload, "no collateral output")
	}
	fee := c.Tx.Outputs[0]
	if fee.Token != inter.NativeToken || fee.Amount < rules.CreationFee {
		return ledger.Resf(ledger.InvalidAmount, "creation fee must be at least %d", rules.CreationFee)
	}
	collateral := c.Tx.Outputs[1]
	if collateral.Token != inter.NativeToken || collateral.Amount != rules.Collateral {
		return ledger.Resf(ledger.InvalidAmount, "collateral must be exactly %d", rules.Collateral)
	}
	owner, ownerType, ok := collateral.Script.KeyID()
	if !ok {
		return ledger.Resf(ledger.InvalidPayload, "collateral is not locked to a key")
	}
	if !m.OperatorType.Valid() || m.OperatorAuthAddress.IsZero() {
		return ledger.Resf(ledger.InvalidPayload, "bad operator address")
	}
	node := ledger.NewMasternode(owner, ownerType, m.OperatorAuthAddress, m.OperatorType, c.Height)
	return c.View.CreateMasternode(c.TxHash, node)
}

func (c *Context) applyResignMasternode(m *ResignMasternodeMessage) ledger.Res {
	node := c.View.GetMasternode(m.ID)
	if node == nil {
		return ledger.Resf(ledger.NotFound, "masternode %s not found", m.ID.Hex())
	}
	owner, err := inter.ScriptFor(node.OwnerAuthAddress, node.OwnerType)
	if err != nil {
		panic("customtx: stored masternode has a bad owner type " + m.ID.Hex())
	}
	if !c.HasAuth(owner) {
		return ledger.Resf(ledger.NotAuthorized, "tx must be signed by the owner of %s", m.ID.Hex())
	}
	return c.View.ResignMasternode(m.ID, c.TxHash, c.Height)
}

func (c *Context) applyCriminalProof(m *CriminalProofMessage) ledger.Res {
	return c.View.BanCriminal(c.TxHash, &m.Proof, c.Height, c.Rules.Masternodes)
}
