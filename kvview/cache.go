package kvview

import (
	"bytes"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/google/btree"
	"github.com/pkg/errors"
)

const overlayDegree = 32

func entryLess(a, b Entry) bool {
	return bytes.Compare(a.Key, b.Key) < 0
}

// Cache is a writable overlay on top of a base Reader.
type Cache struct {
	base    Reader
	overlay *btree.BTreeG[Entry]
}

// NewCache opens an empty overlay on top of base.
func NewCache(base Reader) *Cache {
	return &Cache{
		base:    base,
		overlay: btree.NewG(overlayDegree, entryLess),
	}
}

// Base returns the layer the cache reads through to.
func (c *Cache) Base() Reader {
	return c.base
}

// Len is the number of overlay records, tombstones included.
func (c *Cache) Len() int {
	return c.overlay.Len()
}

func (c *Cache) lookup(key []byte) (Entry, bool) {
	return c.overlay.Get(Entry{Key: key})
}

// Has implements Reader.
func (c *Cache) Has(key []byte) (bool, error) {
	if e, ok := c.lookup(key); ok {
		return !e.Deleted, nil
	}
	return c.base.Has(key)
}

// Get implements Reader.
func (c *Cache) Get(key []byte) ([]byte, error) {
	if e, ok := c.lookup(key); ok {
		if e.Deleted {
			return nil, nil
		}
		return copyBytes(e.Value), nil
	}
	return c.base.Get(key)
}

// Put implements Writer. The base is never touched.
func (c *Cache) Put(key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	c.overlay.ReplaceOrInsert(Entry{Key: copyBytes(key), Value: copyBytes(value)})
	return nil
}

// Delete implements Writer by writing a tombstone, so the key reads as
// missing even if the base has it.
func (c *Cache) Delete(key []byte) error {
	c.overlay.ReplaceOrInsert(Entry{Key: copyBytes(key), Deleted: true})
	return nil
}

// ForEach visits overlay records in key order until fn returns false.
func (c *Cache) ForEach(fn func(e Entry) bool) {
	c.overlay.Ascend(func(e Entry) bool {
		return fn(e)
	})
}

// Entries returns a copy of the overlay in key order.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, c.overlay.Len())
	c.ForEach(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// ApplyCache merges the overlay of other into c. other does not have to be
// stacked on c. other is left untouched.
func (c *Cache) ApplyCache(other *Cache) {
	if other == c {
		return
	}
	other.ForEach(func(e Entry) bool {
		c.overlay.ReplaceOrInsert(e)
		return true
	})
}

// ApplyEntries writes records into the overlay as if by Put and Delete.
func (c *Cache) ApplyEntries(entries []Entry) {
	for _, e := range entries {
		if e.Deleted {
			_ = c.Delete(e.Key)
		} else {
			_ = c.Put(e.Key, e.Value)
		}
	}
}

// Discard drops every pending write.
func (c *Cache) Discard() {
	c.overlay.Clear(false)
}

// overlayApplier is a base that merges a child overlay in memory.
type overlayApplier interface {
	ApplyCache(*Cache)
}

// Flush merges the overlay into the base and clears it. A raw store is
// written through one batch, so either every record lands or none does.
// Flushing an empty cache is a no-op.
func (c *Cache) Flush() error {
	if c.overlay.Len() == 0 {
		return nil
	}
	switch base := c.base.(type) {
	case overlayApplier:
		base.ApplyCache(c)
	case Store:
		batch := base.NewBatch()
		if err := c.writeTo(batch); err != nil {
			return errors.Wrap(err, "fill batch")
		}
		if err := batch.Write(); err != nil {
			return errors.Wrap(err, "write batch")
		}
	case Writer:
		if err := c.writeTo(base); err != nil {
			return errors.Wrap(err, "write through")
		}
	default:
		return ErrReadOnly
	}
	c.Discard()
	return nil
}

func (c *Cache) writeTo(w Writer) (err error) {
	c.ForEach(func(e Entry) bool {
		if e.Deleted {
			err = w.Delete(e.Key)
		} else {
			err = w.Put(e.Key, e.Value)
		}
		return err == nil
	})
	return err
}

// NewIterator implements Reader. Overlay records win over base records with
// the same key, tombstones are skipped. The overlay is snapshotted, so
// writes made during iteration are not observed.
func (c *Cache) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	from := append(copyBytes(prefix), start...)
	var overlay []Entry
	c.overlay.AscendGreaterOrEqual(Entry{Key: from}, func(e Entry) bool {
		if !bytes.HasPrefix(e.Key, prefix) {
			return false
		}
		overlay = append(overlay, e)
		return true
	})
	return &mergedIterator{
		overlay: overlay,
		base:    c.base.NewIterator(prefix, start),
	}
}
