// Package bits implements the side bit stream of the cser codec.
//
// Values are packed least significant bit first. A value that does not fit
// into the free part of the current byte continues in the next one.
package bits

type (
	// Array is the storage shared by a Writer and a Reader.
	Array struct {
		Bytes []byte
	}

	// Writer appends bit groups to an Array.
	Writer struct {
		*Array
		bitOffset int // next free bit in the last byte, 0 means a new byte is needed
	}

	// Reader consumes bit groups from an Array.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

// NewWriter appends to arr.
func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

// NewReader reads arr from the beginning.
func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

// lowBits keeps the n lowest bits of v.
func lowBits(v uint, n int) uint {
	return v & (1<<uint(n) - 1)
}

// Write appends the n lowest bits of v.
func (a *Writer) Write(n int, v uint) {
	for n > 0 {
		if a.bitOffset == 0 {
			a.Bytes = append(a.Bytes, 0)
		}
		chunk := 8 - a.bitOffset
		if n < chunk {
			chunk = n
		}
		a.Bytes[len(a.Bytes)-1] |= byte(lowBits(v, chunk) << uint(a.bitOffset))
		v >>= uint(chunk)
		n -= chunk
		a.bitOffset = (a.bitOffset + chunk) % 8
	}
}

// Read consumes n bits and returns them as the low bits of the result.
func (a *Reader) Read(n int) (v uint) {
	shift := 0
	for n > 0 {
		chunk := 8 - a.bitOffset
		if n < chunk {
			chunk = n
		}
		cur := uint(a.Bytes[a.byteOffset]) >> uint(a.bitOffset)
		v |= lowBits(cur, chunk) << uint(shift)
		shift += chunk
		n -= chunk
		a.bitOffset += chunk
		if a.bitOffset == 8 {
			a.bitOffset = 0
			a.byteOffset++
		}
	}
	return v
}

// View returns the next n bits without consuming them.
func (a *Reader) View(n int) uint {
	cp := *a
	return cp.Read(n)
}

// NonReadBytes counts bytes that are not fully consumed, the current partial one included.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits counts unread bits.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}
