package inter

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/utils/cser"
)

var (
	ErrUnknownVersion = errors.New("unknown serialization version")
	ErrTooManyTxs     = errors.New("too many transactions in block")
)

// MaxSerializationVersion is the highest header version this node decodes.
const MaxSerializationVersion = 1

// ProtocolMaxMsgSize bounds a serialized block.
const ProtocolMaxMsgSize = 10 * 1024 * 1024

const (
	maxSigSize  = 128
	maxBlockTxs = 100000
)

// MarshalCSER writes the header including its signature.
func (h *BlockHeader) MarshalCSER(w *cser.Writer) error {
	return headerMarshalCSER(w, h, true)
}

func headerMarshalCSER(w *cser.Writer, h *BlockHeader, withSig bool) error {
	if h.Version > MaxSerializationVersion {
		return ErrUnknownVersion
	}
	w.U8(uint8(h.Version))
	w.FixedBytes(h.PrevHash.Bytes())
	w.FixedBytes(h.MerkleRoot.Bytes())
	w.U64(uint64(h.Height))
	w.U64(uint64(h.Time))
	w.FixedBytes(h.StakeModifier.Bytes())
	w.U64(h.MintedBlocks)
	w.FixedBytes(h.Minter[:])
	if withSig {
		w.SliceBytes(h.Sig)
	}
	return nil
}

// UnmarshalCSER reads a header written by MarshalCSER.
func (h *BlockHeader) UnmarshalCSER(r *cser.Reader) error {
	version := r.U8()
	if version > MaxSerializationVersion {
		return ErrUnknownVersion
	}
	h.Version = uint32(version)
	h.PrevHash = readHash(r)
	h.MerkleRoot = readHash(r)
	h.Height = idx.Block(r.U64())
	h.Time = Timestamp(r.U64())
	h.StakeModifier = readHash(r)
	h.MintedBlocks = r.U64()
	r.FixedBytes(h.Minter[:])
	h.Sig = r.SliceBytes(maxSigSize)
	return nil
}

func readHash(r *cser.Reader) hash.Hash {
	var h hash.Hash
	r.FixedBytes(h[:])
	return h
}

func marshalHeader(h *BlockHeader, withSig bool) ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		return headerMarshalCSER(w, h, withSig)
	})
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (h *BlockHeader) MarshalBinary() ([]byte, error) {
	return marshalHeader(h, true)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (h *BlockHeader) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, h.UnmarshalCSER)
}

// MarshalCSER writes the header followed by the transactions.
func (b *Block) MarshalCSER(w *cser.Writer) error {
	if err := b.Header.MarshalCSER(w); err != nil {
		return err
	}
	if len(b.Txs) > maxBlockTxs {
		return ErrTooManyTxs
	}
	w.U56(uint64(len(b.Txs)))
	for _, tx := range b.Txs {
		if err := TransactionMarshalCSER(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalCSER reads a block written by MarshalCSER.
func (b *Block) UnmarshalCSER(r *cser.Reader) error {
	if err := b.Header.UnmarshalCSER(r); err != nil {
		return err
	}
	n := r.U56()
	if n > maxBlockTxs {
		return ErrTooManyTxs
	}
	b.Txs = make(Transactions, 0, n)
	for i := uint64(0); i < n; i++ {
		tx, err := TransactionUnmarshalCSER(r)
		if err != nil {
			return err
		}
		b.Txs = append(b.Txs, tx)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b *Block) MarshalBinary() ([]byte, error) {
	return cser.Marshal(b)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Block) UnmarshalBinary(raw []byte) error {
	if len(raw) > ProtocolMaxMsgSize {
		return cser.ErrTooLargeAlloc
	}
	return cser.Unmarshal(raw, b)
}
