// Package ibr (Inter-Block Records) holds what is kept for every connected
// block: its body and a digest of the outcome of connecting it. Two nodes
// that connected the same block to the same state hold equal records.
package ibr

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// BlockVote summarizes a connected block without its transactions.
type BlockVote struct {
	Block hash.Hash
	// State is the hash of the iblockproc.BlockState the block produced.
	State hash.Hash
	Time  inter.Timestamp
}

// Hash identifies the vote.
func (bv BlockVote) Hash() hash.Hash {
	return hash.Of(
		bv.Block.Bytes(),
		bv.State.Bytes(),
		bigendian.Uint64ToBytes(uint64(bv.Time)),
	)
}

// FullBlockRecord is a connected block with the digest of its outcome.
type FullBlockRecord struct {
	Block *inter.Block
	State hash.Hash
}

// Vote reduces the record to its summary.
func (br FullBlockRecord) Vote() BlockVote {
	return BlockVote{
		Block: br.Block.Hash(),
		State: br.State,
		Time:  br.Block.Header.Time,
	}
}

// Hash is the hash of the record's vote, so that a record and its vote
// hash the same.
func (br FullBlockRecord) Hash() hash.Hash {
	return br.Vote().Hash()
}

func (br *FullBlockRecord) MarshalCSER(w *cser.Writer) error {
	if err := br.Block.MarshalCSER(w); err != nil {
		return err
	}
	w.FixedBytes(br.State.Bytes())
	return nil
}

func (br *FullBlockRecord) UnmarshalCSER(r *cser.Reader) error {
	br.Block = new(inter.Block)
	if err := br.Block.UnmarshalCSER(r); err != nil {
		return err
	}
	r.FixedBytes(br.State[:])
	return nil
}

func (br *FullBlockRecord) MarshalBinary() ([]byte, error) {
	return cser.Marshal(br)
}

func (br *FullBlockRecord) UnmarshalBinary(raw []byte) error {
	if len(raw) > inter.ProtocolMaxMsgSize {
		return cser.ErrTooLargeAlloc
	}
	return cser.Unmarshal(raw, br)
}

// IdxFullBlockRecord is a record with the height it was connected at.
type IdxFullBlockRecord struct {
	FullBlockRecord
	Idx idx.Block
}
