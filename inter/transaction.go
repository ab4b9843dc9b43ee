package inter

import (
	"math"

	"github.com/Fantom-foundation/lachesis-base/hash"
)

// NativeToken is the id of the chain's own coin.
const NativeToken uint32 = 0

// OutPoint references an output of a previous transaction.
type OutPoint struct {
	TxHash hash.Hash
	Index  uint32
}

// IsNull reports whether o is the coinbase placeholder.
func (o OutPoint) IsNull() bool {
	return o.TxHash == hash.Hash{} && o.Index == math.MaxUint32
}

// TxIn spends an output. Witness data is opaque to the ledger.
type TxIn struct {
	Prev    OutPoint
	Witness []byte
}

// TxOut locks an amount of a token to a script.
type TxOut struct {
	Amount int64
	Token  uint32
	Script Script
}

// Transaction is the UTXO transaction custom ledger operations ride on.
type Transaction struct {
	Version  uint32
	Inputs   []TxIn
	Outputs  []TxOut
	LockTime uint32
}

// Hash is the transaction id. Witnesses are not committed to.
func (tx *Transaction) Hash() hash.Hash {
	raw, err := marshalTx(tx, false)
	if err != nil {
		panic(err)
	}
	return hash.Of(raw)
}

// IsCoinBase reports whether tx is a block reward transaction.
func (tx *Transaction) IsCoinBase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].Prev.IsNull()
}

// Transactions is a block body.
type Transactions []*Transaction
