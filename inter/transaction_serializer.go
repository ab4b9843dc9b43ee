package inter

import (
	"errors"

	"github.com/rony4d/go-opera-ledger/utils/cser"
)

const (
	maxTxIO        = 10000
	maxScriptSize  = 10000
	maxWitnessSize = 100000
)

// ErrNegativeAmount is returned when encoding an output with a negative amount.
var ErrNegativeAmount = errors.New("negative output amount")

// TransactionMarshalCSER writes tx including witnesses.
func TransactionMarshalCSER(w *cser.Writer, tx *Transaction) error {
	return txMarshalCSER(w, tx, true)
}

func txMarshalCSER(w *cser.Writer, tx *Transaction, withWitness bool) error {
	w.U32(tx.Version)
	w.U56(uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		w.FixedBytes(in.Prev.TxHash[:])
		w.U32(in.Prev.Index)
		if withWitness {
			w.SliceBytes(in.Witness)
		}
	}
	w.U56(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		if out.Amount < 0 {
			return ErrNegativeAmount
		}
		w.U64(uint64(out.Amount))
		w.U32(out.Token)
		w.SliceBytes(out.Script)
	}
	w.U32(tx.LockTime)
	return nil
}

// TransactionUnmarshalCSER reads a transaction written by TransactionMarshalCSER.
func TransactionUnmarshalCSER(r *cser.Reader) (*Transaction, error) {
	tx := &Transaction{Version: r.U32()}

	nIn := r.U56()
	if nIn > maxTxIO {
		return nil, cser.ErrTooLargeAlloc
	}
	tx.Inputs = make([]TxIn, nIn)
	for i := range tx.Inputs {
		r.FixedBytes(tx.Inputs[i].Prev.TxHash[:])
		tx.Inputs[i].Prev.Index = r.U32()
		tx.Inputs[i].Witness = r.SliceBytes(maxWitnessSize)
	}

	nOut := r.U56()
	if nOut > maxTxIO {
		return nil, cser.ErrTooLargeAlloc
	}
	tx.Outputs = make([]TxOut, nOut)
	for i := range tx.Outputs {
		amount := r.U64()
		if amount > 1<<63-1 {
			return nil, cser.ErrMalformedEncoding
		}
		tx.Outputs[i].Amount = int64(amount)
		tx.Outputs[i].Token = r.U32()
		tx.Outputs[i].Script = r.SliceBytes(maxScriptSize)
	}
	tx.LockTime = r.U32()
	return tx, nil
}

func marshalTx(tx *Transaction, withWitness bool) ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		return txMarshalCSER(w, tx, withWitness)
	})
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return marshalTx(tx, true)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (tx *Transaction) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) error {
		got, err := TransactionUnmarshalCSER(r)
		if err != nil {
			return err
		}
		*tx = *got
		return nil
	})
}
