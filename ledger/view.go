// Package ledger holds the masternode, token, account, order and oracle
// state of the chain as typed records over a layered key-value view.
//
// Every operation works on the View it is called on. Speculative work opens
// a child with NewCache and either flushes it into the parent or drops it.
// Operations on user supplied data report failure through Res. Storage
// failures and broken internal invariants panic: they mean this node can no
// longer agree with the network about state.
package ledger

import (
	"bytes"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"

	"github.com/rony4d/go-opera-ledger/kvview"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// View is the typed ledger state over one layer.
type View struct {
	db kvview.View

	// set on history views: records kept outside undo are cut at height
	past   bool
	height idx.Block
}

// NewView wraps a layer. Writes go wherever db puts them.
func NewView(db kvview.View) *View {
	return &View{db: db}
}

// DB exposes the underlying layer.
func (v *View) DB() kvview.View {
	return v.db
}

// NewCache opens a child view whose writes stay in memory until Flush.
func (v *View) NewCache() *View {
	return &View{db: kvview.NewCache(v.db), past: v.past, height: v.height}
}

// visible reports whether a record kept outside undo, written for block h,
// belongs to this view.
func (v *View) visible(h idx.Block) bool {
	return !v.past || h <= v.height
}

// Flush merges a child view into its parent. On a raw store it is a no-op,
// on a history view it panics.
func (v *View) Flush() error {
	f, ok := v.db.(interface{ Flush() error })
	if !ok {
		return nil
	}
	return f.Flush()
}

// ApplyCache merges the pending writes of other into v, wherever other was
// opened.
func (v *View) ApplyCache(other *View) error {
	oc := other.cache()
	if a, ok := v.db.(interface{ ApplyCache(*kvview.Cache) }); ok {
		a.ApplyCache(oc)
		return nil
	}
	tmp := kvview.NewCache(v.db)
	tmp.ApplyCache(oc)
	return tmp.Flush()
}

// Discard drops the pending writes of a cache view.
func (v *View) Discard() {
	v.cache().Discard()
}

func (v *View) cache() *kvview.Cache {
	c, ok := v.db.(*kvview.Cache)
	if !ok {
		panic("ledger: view is not a cache")
	}
	return c
}

func fatal(err error, msg string) {
	panic(errors.Wrap(err, msg))
}

func (v *View) get(k []byte) []byte {
	val, err := v.db.Get(k)
	if err != nil {
		fatal(err, "ledger: get")
	}
	return val
}

func (v *View) has(k []byte) bool {
	ok, err := v.db.Has(k)
	if err != nil {
		fatal(err, "ledger: has")
	}
	return ok
}

func (v *View) put(k, val []byte) {
	if err := v.db.Put(k, val); err != nil {
		fatal(err, "ledger: put")
	}
}

func (v *View) del(k []byte) {
	if err := v.db.Delete(k); err != nil {
		fatal(err, "ledger: delete")
	}
}

// getRecord decodes the record under k into rec. It reports false if the
// key is missing. A record that fails to decode was written by this
// package, so that is fatal.
func (v *View) getRecord(k []byte, rec cser.Unmarshaler) bool {
	raw := v.get(k)
	if raw == nil {
		return false
	}
	if err := cser.Unmarshal(raw, rec); err != nil {
		fatal(err, "ledger: corrupted record")
	}
	return true
}

func (v *View) putRecord(k []byte, rec cser.Marshaler) {
	raw, err := cser.Marshal(rec)
	if err != nil {
		fatal(err, "ledger: encode record")
	}
	v.put(k, raw)
}

// forEach walks the table under prefix starting at prefix+start. fn gets
// the key without the prefix.
func (v *View) forEach(prefix, start []byte, fn func(k, val []byte) bool) {
	it := v.db.NewIterator(prefix, start)
	defer it.Release()
	for it.Next() {
		if !fn(it.Key()[len(prefix):], it.Value()) {
			break
		}
	}
	if err := it.Error(); err != nil {
		fatal(err, "ledger: iterate")
	}
}

// Page bounds a listing. Start is a key within the table (encoded the
// same way as the table key without its prefix). A zero Limit means no
// limit.
type Page struct {
	Start     []byte
	Including bool
	Limit     int
}

func (v *View) forPage(prefix []byte, p Page, fn func(k, val []byte) bool) {
	n := 0
	v.forEach(prefix, p.Start, func(k, val []byte) bool {
		if !p.Including && p.Start != nil && bytes.Equal(k, p.Start) {
			return true
		}
		if p.Limit > 0 && n >= p.Limit {
			return false
		}
		n++
		return fn(k, val)
	})
}
