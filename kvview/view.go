// Package kvview implements layered copy-on-write views over a key-value
// store.
//
// A Cache collects writes in a sorted overlay on top of a base. Reads fall
// through to the base unless the overlay holds the key, and a tombstone in
// the overlay hides the base value. Nothing reaches the base until Flush.
// Caches stack: a cache over a cache flushes into the lower overlay, a cache
// over a Store flushes through one batch.
//
// Views perform no locking. Callers serialize writers.
package kvview

import (
	"errors"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

// ErrReadOnly is returned when writing into a base that cannot accept writes.
var ErrReadOnly = errors.New("view is read-only")

// Reader is the read side of any layer. Get returns (nil, nil) for a
// missing key.
type Reader interface {
	Has(key []byte) (bool, error)
	Get(key []byte) ([]byte, error)
	// NewIterator walks keys with the given prefix in ascending order,
	// starting at prefix+start. The iterator sees the state at creation.
	NewIterator(prefix []byte, start []byte) kvdb.Iterator
}

// Writer accepts point writes.
type Writer interface {
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// View is a readable and writable layer.
type View interface {
	Reader
	Writer
}

// Store is the storage collaborator at the bottom of the stack. Every
// lachesis-base kvdb.Store satisfies it.
type Store interface {
	View
	NewBatch() kvdb.Batch
}

// Entry is one overlay record. Deleted marks a tombstone.
type Entry struct {
	Key     []byte
	Value   []byte
	Deleted bool
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
