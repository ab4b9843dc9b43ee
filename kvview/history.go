package kvview

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// ErrNoDiff is returned by a DiffSource for a height it no longer keeps.
var ErrNoDiff = errors.New("no state diff for height")

// DiffSource returns the records block `height` overwrote, holding the
// values they had right before that block was connected. Keys the block
// created come back as tombstones.
type DiffSource func(height idx.Block) ([]Entry, error)

// History is a read-only view of the state as it was after some past block.
//
// It is the tip state with per-height diffs laid over it, walked down from
// the tip. Diffs are kept once loaded, so moving further back only loads the
// missing heights. History must never be flushed: doing so is a programming
// error and panics.
type History struct {
	*Cache

	tipHeight idx.Block
	height    idx.Block
	source    DiffSource
	diffs     map[idx.Block][]Entry
}

// NewHistory opens a history view positioned at the tip.
func NewHistory(tip Reader, tipHeight idx.Block, source DiffSource) *History {
	return &History{
		Cache:     NewCache(tip),
		tipHeight: tipHeight,
		height:    tipHeight,
		source:    source,
		diffs:     make(map[idx.Block][]Entry),
	}
}

// Height is the block the view currently reflects.
func (h *History) Height() idx.Block {
	return h.height
}

// TipHeight is the block of the underlying tip state.
func (h *History) TipHeight() idx.Block {
	return h.tipHeight
}

// SetHeight positions the view right after block target. Moving forward
// rebuilds from the tip; moving back applies only the missing diffs.
func (h *History) SetHeight(target idx.Block) error {
	if target > h.tipHeight {
		target = h.tipHeight
	}
	if target > h.height {
		h.Cache.Discard()
		h.height = h.tipHeight
	}
	for h.height > target {
		diff, err := h.diff(h.height)
		if err != nil {
			return err
		}
		h.Cache.ApplyEntries(diff)
		h.height--
	}
	return nil
}

func (h *History) diff(height idx.Block) ([]Entry, error) {
	if d, ok := h.diffs[height]; ok {
		return d, nil
	}
	d, err := h.source(height)
	if err != nil {
		return nil, err
	}
	h.diffs[height] = d
	return d, nil
}

// Put is not allowed on a history view.
func (h *History) Put(key []byte, value []byte) error {
	return ErrReadOnly
}

// Delete is not allowed on a history view.
func (h *History) Delete(key []byte) error {
	return ErrReadOnly
}

// Flush panics. A history view is a reconstruction and has nothing to merge.
func (h *History) Flush() error {
	panic("kvview: flush of a history view")
}

// ApplyCache panics: caches opened over a history view are scratch space
// and cannot be flushed into it.
func (h *History) ApplyCache(*Cache) {
	panic("kvview: flush into a history view")
}
