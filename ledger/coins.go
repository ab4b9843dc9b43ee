package ledger

import (
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// GetCoin returns the unspent output at o.
func (v *View) GetCoin(o inter.OutPoint) (*inter.TxOut, bool) {
	var out coinRecord
	if !v.getRecord(coinKey(o), &out) {
		return nil, false
	}
	return &out.TxOut, true
}

// AddCoins records the spendable outputs of tx. Unspendable outputs, the
// custom tx markers among them, never become coins.
func (v *View) AddCoins(tx *inter.Transaction) {
	txHash := tx.Hash()
	for i := range tx.Outputs {
		out := tx.Outputs[i]
		if out.Script.IsUnspendable() {
			continue
		}
		v.putRecord(coinKey(inter.OutPoint{TxHash: txHash, Index: uint32(i)}), &coinRecord{out})
	}
}

// SpendCoins drops the coins tx spends. Inputs of the underlying chain
// that this store never saw are ignored.
func (v *View) SpendCoins(tx *inter.Transaction) {
	if tx.IsCoinBase() {
		return
	}
	for _, in := range tx.Inputs {
		v.del(coinKey(in.Prev))
	}
}

type coinRecord struct {
	inter.TxOut
}

func (c *coinRecord) MarshalCSER(w *cser.Writer) error {
	w.I64(c.Amount)
	w.U32(c.Token)
	w.SliceBytes(c.Script)
	return nil
}

func (c *coinRecord) UnmarshalCSER(r *cser.Reader) error {
	c.Amount = r.I64()
	c.Token = r.U32()
	c.Script = r.SliceBytes(maxScriptSize)
	return nil
}
