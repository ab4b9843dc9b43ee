package ledger

import (
	"bytes"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// WriteMintedHeader remembers a header minted by node id, keyed by the
// node's minted-blocks counter at that block.
func (v *View) WriteMintedHeader(id hash.Hash, h *inter.BlockHeader) {
	v.putRecord(mintedHeaderKey(id, h.MintedBlocks, h.Hash()), h)
}

// MintedHeader is a remembered header with its block hash.
type MintedHeader struct {
	Hash   hash.Hash
	Header *inter.BlockHeader
}

// FetchMintedHeaders returns every header node id minted with the given
// counter, in block hash order.
func (v *View) FetchMintedHeaders(id hash.Hash, minted uint64) []MintedHeader {
	var out []MintedHeader
	v.forEach(mintedHeaderPrefix(id, minted), nil, func(k, val []byte) bool {
		var h inter.BlockHeader
		if err := cser.Unmarshal(val, &h); err != nil {
			fatal(err, "ledger: corrupted minted header")
		}
		if v.visible(h.Height) {
			out = append(out, MintedHeader{Hash: hash.BytesToHash(k), Header: &h})
		}
		return true
	})
	return out
}

// PruneMintedHeaders drops headers that can no longer be part of a proof at
// height.
func (v *View) PruneMintedHeaders(height idx.Block, interval idx.Block) int {
	var stale [][]byte
	v.forEach([]byte{prefixMintedHeader}, nil, func(k, val []byte) bool {
		var h inter.BlockHeader
		if err := cser.Unmarshal(val, &h); err != nil {
			fatal(err, "ledger: corrupted minted header")
		}
		if h.Height+interval < height {
			stale = append(stale, key(prefixMintedHeader, k))
		}
		return true
	})
	for _, k := range stale {
		v.del(k)
	}
	return len(stale)
}

// CheckDoubleSign compares a freshly connected header with every header
// its minter produced for the same counter. On conflict a proof is
// recorded. The header is then remembered. It returns the id of the
// offending node, if any.
func (v *View) CheckDoubleSign(h *inter.BlockHeader) (hash.Hash, bool) {
	id, m, ok := v.GetMasternodeByOperator(h.Minter)
	if !ok {
		return hash.Hash{}, false
	}
	found := false
	blockHash := h.Hash()
	// hash order, so that every node picks the same conflict
	for _, other := range v.FetchMintedHeaders(id, h.MintedBlocks) {
		if other.Hash == blockHash || !inter.IsDoubleSigned(h, other.Header) {
			continue
		}
		found = true
		if m.BanHeight < 0 {
			v.AddCriminalProof(id, h, other.Header)
		}
		break
	}
	v.WriteMintedHeader(id, h)
	return id, found
}

// AddCriminalProof records a proof against node id. A node has at most one
// outstanding proof, so later ones are ignored.
func (v *View) AddCriminalProof(id hash.Hash, a, b *inter.BlockHeader) bool {
	if v.has(criminalKey(id)) {
		return false
	}
	// order the pair so that the same conflict is stored the same way on every node
	first, second := a, b
	if bh, ah := b.Hash(), a.Hash(); bytes.Compare(bh[:], ah[:]) < 0 {
		first, second = b, a
	}
	v.putRecord(criminalKey(id), &inter.DoubleSignProof{Pair: [2]inter.BlockHeader{*first, *second}})
	return true
}

// GetCriminalProof returns the outstanding proof against node id.
func (v *View) GetCriminalProof(id hash.Hash) (*inter.DoubleSignProof, bool) {
	var p inter.DoubleSignProof
	if !v.getRecord(criminalKey(id), &p) || !v.visible(p.MaxHeight()) {
		return nil, false
	}
	return &p, true
}

// RemoveCriminalProofs drops the proof against node id.
func (v *View) RemoveCriminalProofs(id hash.Hash) {
	v.del(criminalKey(id))
}

// CriminalEntry is an unpunished proof with the node it accuses.
type CriminalEntry struct {
	ID    hash.Hash
	Proof *inter.DoubleSignProof
}

// GetUnpunishedCriminals lists outstanding proofs in node id order.
func (v *View) GetUnpunishedCriminals(p Page) []CriminalEntry {
	var out []CriminalEntry
	v.forEach([]byte{prefixCriminal}, p.Start, func(k, val []byte) bool {
		if !p.Including && p.Start != nil && bytes.Equal(k, p.Start) {
			return true
		}
		if p.Limit > 0 && len(out) >= p.Limit {
			return false
		}
		var proof inter.DoubleSignProof
		if err := cser.Unmarshal(val, &proof); err != nil {
			fatal(err, "ledger: corrupted proof")
		}
		if v.visible(proof.MaxHeight()) {
			out = append(out, CriminalEntry{ID: hash.BytesToHash(k), Proof: &proof})
		}
		return true
	})
	return out
}

// samePair reports whether two proofs hold the same headers in any order.
func samePair(a, b *inter.DoubleSignProof) bool {
	a0, a1 := a.Pair[0].Hash(), a.Pair[1].Hash()
	b0, b1 := b.Pair[0].Hash(), b.Pair[1].Hash()
	return (a0 == b0 && a1 == b1) || (a0 == b1 && a1 == b0)
}

// BanCriminal punishes the node accused by proof. The proof must match the
// one on record, the node must not be banned already and the proof must be
// recent enough. Disconnecting the ban replays its undo record, which
// restores the proof and clears the ban.
func (v *View) BanCriminal(txHash hash.Hash, proof *inter.DoubleSignProof, height idx.Block, rules opera.MasternodeRules) Res {
	if !proof.Valid() {
		return Resf(InvalidPayload, "headers are not a double sign")
	}
	id, m, ok := v.GetMasternodeByOperator(proof.Minter())
	if !ok {
		return Resf(NotFound, "no masternode operated by %s", proof.Minter())
	}
	if m.BanHeight >= 0 {
		return Resf(AlreadyExists, "masternode %s is already banned", id.Hex())
	}
	recorded, ok := v.GetCriminalProof(id)
	if !ok || !samePair(recorded, proof) {
		return Resf(NotFound, "no such unpunished proof against %s", id.Hex())
	}
	if height > proof.MaxHeight()+rules.CriminalRetention {
		return Resf(Expired, "proof against %s is stale", id.Hex())
	}
	m.BanHeight = int64(height)
	m.BanTx = txHash
	v.setMasternode(id, m)
	v.RemoveCriminalProofs(id)
	return ResOk()
}

// PruneCriminals drops proofs that can no longer be used to ban.
func (v *View) PruneCriminals(height idx.Block, retention idx.Block) int {
	var stale [][]byte
	v.forEach([]byte{prefixCriminal}, nil, func(k, val []byte) bool {
		var proof inter.DoubleSignProof
		if err := cser.Unmarshal(val, &proof); err != nil {
			fatal(err, "ledger: corrupted proof")
		}
		if proof.MaxHeight()+retention < height {
			stale = append(stale, key(prefixCriminal, k))
		}
		return true
	})
	for _, k := range stale {
		v.del(k)
	}
	return len(stale)
}
