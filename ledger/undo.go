package ledger

import (
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-opera-ledger/kvview"
)

// BlockLevelTxn is the undo slot of changes made once per block rather than
// by a transaction. It sorts after every real index, so block-level changes
// are reverted first.
const BlockLevelTxn uint32 = math.MaxUint32

// UndoEntry is the value a key had before a transaction touched it.
type UndoEntry struct {
	Key     []byte
	Value   []byte
	Existed bool
}

// Undo reverts one transaction.
type Undo struct {
	Entries []UndoEntry
}

// CommitTx merges the child view tx into v and records, under
// (height, txn), what every touched key held before. tx must have been
// opened on v.
func (v *View) CommitTx(tx *View, height idx.Block, txn uint32) {
	c := tx.cache()
	if c.Base() != kvview.Reader(v.db) {
		panic("ledger: committing a cache into a view it was not opened on")
	}
	if c.Len() == 0 {
		return
	}
	var undo Undo
	c.ForEach(func(e kvview.Entry) bool {
		prior := v.get(e.Key)
		undo.Entries = append(undo.Entries, UndoEntry{Key: e.Key, Value: prior, Existed: prior != nil})
		return true
	})
	if err := tx.Flush(); err != nil {
		fatal(err, "ledger: commit tx")
	}
	v.addUndo(height, txn, undo)
}

// addUndo stores undo, merging it into an existing record for the same
// slot. For keys present in both, the older prior value is kept.
func (v *View) addUndo(height idx.Block, txn uint32, undo Undo) {
	k := undoKey(height, txn)
	if existing, ok := v.GetUndo(height, txn); ok {
		seen := make(map[string]bool, len(existing.Entries))
		for _, e := range existing.Entries {
			seen[string(e.Key)] = true
		}
		for _, e := range undo.Entries {
			if !seen[string(e.Key)] {
				existing.Entries = append(existing.Entries, e)
			}
		}
		undo = existing
	}
	raw, err := rlp.EncodeToBytes(&undo)
	if err != nil {
		fatal(err, "ledger: encode undo")
	}
	v.put(k, raw)
}

// GetUndo returns the undo record of one slot.
func (v *View) GetUndo(height idx.Block, txn uint32) (Undo, bool) {
	raw := v.get(undoKey(height, txn))
	if raw == nil {
		return Undo{}, false
	}
	var undo Undo
	if err := rlp.DecodeBytes(raw, &undo); err != nil {
		fatal(err, "ledger: corrupted undo")
	}
	return undo, true
}

type undoSlot struct {
	txn  uint32
	undo Undo
}

// undosAt returns the undo records of a height, highest tx index first.
func (v *View) undosAt(height idx.Block) []undoSlot {
	var slots []undoSlot
	v.forEach(undoPrefix(height), nil, func(k, val []byte) bool {
		var undo Undo
		if err := rlp.DecodeBytes(val, &undo); err != nil {
			fatal(err, "ledger: corrupted undo")
		}
		slots = append(slots, undoSlot{txn: bigendian.BytesToUint32(k), undo: undo})
		return true
	})
	for i, j := 0, len(slots)-1; i < j; i, j = i+1, j-1 {
		slots[i], slots[j] = slots[j], slots[i]
	}
	return slots
}

// UndoHeight reverts every change recorded at height, highest tx index
// first, and drops the records. It reports whether anything was recorded.
func (v *View) UndoHeight(height idx.Block) bool {
	slots := v.undosAt(height)
	for _, s := range slots {
		v.applyUndo(s.undo)
		v.del(undoKey(height, s.txn))
	}
	return len(slots) != 0
}

func (v *View) applyUndo(undo Undo) {
	for _, e := range undo.Entries {
		if e.Existed {
			v.put(e.Key, e.Value)
		} else {
			v.del(e.Key)
		}
	}
}

// PruneUndo drops undo records of heights below `below`.
func (v *View) PruneUndo(below idx.Block) int {
	var stale [][]byte
	v.forEach([]byte{prefixUndo}, nil, func(k, _ []byte) bool {
		if idx.Block(bigendian.BytesToUint64(k[:8])) >= below {
			return false
		}
		stale = append(stale, key(prefixUndo, k))
		return true
	})
	for _, k := range stale {
		v.del(k)
	}
	return len(stale)
}

// UndoDiff reports what block `height` overwrote. It is the diff source of
// history views.
func (v *View) UndoDiff(height idx.Block) ([]kvview.Entry, error) {
	slots := v.undosAt(height)
	if len(slots) == 0 {
		return nil, kvview.ErrNoDiff
	}
	// lower slots were applied earlier, so their prior values win
	merged := kvview.NewCache(nil)
	for _, s := range slots {
		for _, e := range s.undo.Entries {
			if e.Existed {
				_ = merged.Put(e.Key, e.Value)
			} else {
				_ = merged.Delete(e.Key)
			}
		}
	}
	return merged.Entries(), nil
}
