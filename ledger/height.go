package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/kvview"
)

// Tip is the last block connected to the state.
type Tip struct {
	Height idx.Block
	Hash   hash.Hash
}

// GetTip returns the last connected block. ok is false on a fresh store.
func (v *View) GetTip() (Tip, bool) {
	raw := v.get([]byte{prefixHeight})
	if raw == nil {
		return Tip{}, false
	}
	if len(raw) != 8+32 {
		panic("ledger: corrupted tip record")
	}
	return Tip{
		Height: idx.Block(bigendian.BytesToUint64(raw[:8])),
		Hash:   hash.BytesToHash(raw[8:]),
	}, true
}

// SetTip records the last connected block.
func (v *View) SetTip(t Tip) {
	v.put([]byte{prefixHeight}, append(bigendian.Uint64ToBytes(uint64(t.Height)), t.Hash.Bytes()...))
}

// HistoryAt opens a read-only view of the state right after block height.
// Heights older than the kept undo records fail with kvview.ErrNoDiff. The
// returned view panics on Flush.
//
// Minted headers and detected proofs are not undo tracked. The view hides
// those whose headers are above height. Undo records are not filtered.
func (v *View) HistoryAt(height idx.Block) (*View, error) {
	tip, ok := v.GetTip()
	if !ok {
		return nil, kvview.ErrNoDiff
	}
	h := kvview.NewHistory(v.db, tip.Height, v.UndoDiff)
	if err := h.SetHeight(height); err != nil {
		return nil, err
	}
	view := NewView(h)
	view.past = true
	view.height = h.Height()
	return view, nil
}
