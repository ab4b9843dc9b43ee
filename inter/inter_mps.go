package inter

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// DoubleSignMinimumProofInterval is how far apart, in blocks, two
// conflicting headers may be and still prove a double sign. It also bounds
// the PreBanned grace window. Consensus critical.
const DoubleSignMinimumProofInterval idx.Block = 100

// DoubleSignProof is a pair of headers signed by the same minter for the
// same minted-blocks counter.
//
// A minter produces exactly one block per counter value, so two distinct
// headers with equal counters can only come from a node signing both sides
// of a fork.
type DoubleSignProof struct {
	Pair [2]BlockHeader
}

// IsDoubleSignRestricted reports whether two heights are close enough for a
// conflict between them to count.
func IsDoubleSignRestricted(h1, h2 idx.Block) bool {
	if h1 > h2 {
		h1, h2 = h2, h1
	}
	return h2-h1 <= DoubleSignMinimumProofInterval
}

// IsDoubleSigned checks a pair of headers for equivocation.
func IsDoubleSigned(a, b *BlockHeader) bool {
	if a.Minter != b.Minter || a.Minter.IsZero() {
		return false
	}
	if a.MintedBlocks != b.MintedBlocks {
		return false
	}
	if a.Hash() == b.Hash() {
		return false
	}
	return IsDoubleSignRestricted(a.Height, b.Height)
}

// Valid re-checks the pair, e.g. when the proof arrives in a transaction.
func (p *DoubleSignProof) Valid() bool {
	return IsDoubleSigned(&p.Pair[0], &p.Pair[1])
}

// Minter is the key that signed both headers.
func (p *DoubleSignProof) Minter() validatorpk.KeyID {
	return p.Pair[0].Minter
}

// MaxHeight is the higher of the two header heights. Proof staleness is
// measured from it.
func (p *DoubleSignProof) MaxHeight() idx.Block {
	if p.Pair[0].Height > p.Pair[1].Height {
		return p.Pair[0].Height
	}
	return p.Pair[1].Height
}

func (p *DoubleSignProof) MarshalCSER(w *cser.Writer) error {
	for i := range p.Pair {
		if err := p.Pair[i].MarshalCSER(w); err != nil {
			return err
		}
	}
	return nil
}

func (p *DoubleSignProof) UnmarshalCSER(r *cser.Reader) error {
	for i := range p.Pair {
		if err := p.Pair[i].UnmarshalCSER(r); err != nil {
			return err
		}
	}
	return nil
}
