package kvview

import (
	"bytes"

	"github.com/Fantom-foundation/lachesis-base/kvdb"
)

// mergedIterator walks a snapshot of overlay records together with a base
// iterator.
type mergedIterator struct {
	overlay []Entry
	pos     int

	base    kvdb.Iterator
	baseOk  bool
	started bool

	key, value []byte
}

func (it *mergedIterator) Next() bool {
	if !it.started {
		it.started = true
		it.baseOk = it.base.Next()
	}
	for {
		var ov *Entry
		if it.pos < len(it.overlay) {
			ov = &it.overlay[it.pos]
		}
		if ov == nil && !it.baseOk {
			it.key, it.value = nil, nil
			return false
		}
		if ov == nil || (it.baseOk && bytes.Compare(it.base.Key(), ov.Key) < 0) {
			it.key = copyBytes(it.base.Key())
			it.value = copyBytes(it.base.Value())
			it.baseOk = it.base.Next()
			return true
		}
		if it.baseOk && bytes.Equal(it.base.Key(), ov.Key) {
			it.baseOk = it.base.Next()
		}
		it.pos++
		if ov.Deleted {
			continue
		}
		it.key, it.value = ov.Key, ov.Value
		return true
	}
}

func (it *mergedIterator) Error() error {
	return it.base.Error()
}

func (it *mergedIterator) Key() []byte {
	return it.key
}

func (it *mergedIterator) Value() []byte {
	return it.value
}

func (it *mergedIterator) Release() {
	it.base.Release()
	it.overlay = nil
}
