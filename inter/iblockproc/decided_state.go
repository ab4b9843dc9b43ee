// Package iblockproc defines what block processing reports about a
// connected block. The report is not part of the ledger state; it is what
// the node logs, exposes to operators and compares between replicas.
package iblockproc

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

// BlockCtx identifies a block.
type BlockCtx struct {
	Idx  idx.Block
	Time inter.Timestamp
	Hash hash.Hash
}

// Rejection is a custom transaction that was included in the block but
// whose ledger effects were refused. Its coins still moved.
type Rejection struct {
	Index uint32
	Type  byte
	Code  uint8
	Msg   string
}

// BlockState is the outcome of connecting a block.
type BlockState struct {
	LastBlock BlockCtx
	// Minter is the operator that produced the block.
	Minter validatorpk.KeyID

	// Applied counts the custom transactions whose effects were kept.
	Applied uint32
	// Rejected lists the others in index order.
	Rejected []Rejection

	// DoubleSigner is the node caught by this block's header, if any.
	DoubleSigner *hash.Hash `rlp:"nil"`

	// Team is the team after the block. Rotated is set when the block
	// replaced it.
	Team    []validatorpk.KeyID
	Rotated bool
}

// Copy creates a deep copy of the BlockState.
func (bs BlockState) Copy() BlockState {
	cp := bs
	cp.Rejected = make([]Rejection, len(bs.Rejected))
	copy(cp.Rejected, bs.Rejected)
	cp.Team = make([]validatorpk.KeyID, len(bs.Team))
	copy(cp.Team, bs.Team)
	if bs.DoubleSigner != nil {
		id := *bs.DoubleSigner
		cp.DoubleSigner = &id
	}
	return cp
}

// Hash calculates the SHA256 hash of the RLP-encoded BlockState. Two
// replicas that processed the same block must agree on it.
func (bs BlockState) Hash() hash.Hash {
	hasher := sha256.New()
	err := rlp.Encode(hasher, &bs)
	if err != nil {
		panic("can't hash: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}
