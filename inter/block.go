// Package inter defines the chain primitives the ledger layer consumes from
// the UTXO engine: block headers, blocks, transactions, locking scripts and
// misbehaviour proofs.
//
// Header and signature validation belong to the chain engine. By the time a
// header reaches this package its Minter has already been recovered from
// the signature, so the ledger only compares identities and hashes.
package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

// Timestamp is a Unix time in nanoseconds.
type Timestamp uint64

// FromUnix converts seconds to a Timestamp.
func FromUnix(sec int64) Timestamp {
	return Timestamp(sec) * Timestamp(time.Second)
}

// Unix returns the Timestamp in seconds.
func (t Timestamp) Unix() int64 {
	return int64(t) / int64(time.Second)
}

// Time converts to time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}

// BlockHeader is the part of a block a masternode signs.
//
// StakeModifier seeds team rotation, and MintedBlocks is the counter of the
// minter at the moment it produced this block. Two headers from the same
// Minter that carry the same MintedBlocks but hash differently are a double
// sign.
type BlockHeader struct {
	Version       uint32
	PrevHash      hash.Hash
	MerkleRoot    hash.Hash
	Height        idx.Block
	Time          Timestamp
	StakeModifier hash.Hash
	MintedBlocks  uint64
	Minter        validatorpk.KeyID

	// Sig is checked by the chain engine and is not part of the hash.
	Sig []byte
}

// Hash identifies the header. The signature is excluded so that a re-signed
// header keeps its identity.
func (h *BlockHeader) Hash() hash.Hash {
	raw, err := marshalHeader(h, false)
	if err != nil {
		panic(err)
	}
	return hash.Of(raw)
}

// Block is a header with its transactions in index order.
type Block struct {
	Header BlockHeader
	Txs    Transactions
}

// Hash is the header hash.
func (b *Block) Hash() hash.Hash {
	return b.Header.Hash()
}

// Height is the header height.
func (b *Block) Height() idx.Block {
	return b.Header.Height
}

// EstimateSize returns an approximate size of the block in bytes. It is used
// for cache accounting, not for consensus.
func (b *Block) EstimateSize() int {
	size := 4 + 32*3 + 8*3 + validatorpk.KeyIDLength + len(b.Header.Sig)
	for _, tx := range b.Txs {
		size += 8
		for _, in := range tx.Inputs {
			size += 32 + 4 + len(in.Witness)
		}
		for _, out := range tx.Outputs {
			size += 8 + 4 + len(out.Script)
		}
	}
	return size
}
