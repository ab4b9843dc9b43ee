// Package fast holds the unchecked byte cursors used by the cser codec.
//
// Reads past the end panic with a runtime bounds error. The cser
// unmarshal adapter recovers such panics and reports a malformed
// encoding, so callers outside the codec should not use these types
// on untrusted input directly.
package fast

// Reader walks a byte slice front to back.
type Reader struct {
	buf    []byte
	offset int
}

// Writer accumulates bytes by appending.
type Writer struct {
	buf []byte
}

// NewReader starts a cursor at the beginning of bb.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// NewWriter appends to bb, which is usually an empty slice with spare capacity.
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

// WriteByte appends one byte.
func (b *Writer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

// Write appends v.
func (b *Writer) Write(v []byte) {
	b.buf = append(b.buf, v...)
}

// Bytes returns everything written so far.
func (b *Writer) Bytes() []byte {
	return b.buf
}

// Len is the number of bytes written so far.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Read returns the next n bytes. The result aliases the underlying buffer.
func (b *Reader) Read(n int) []byte {
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res
}

// ReadByte returns the next byte.
func (b *Reader) ReadByte() byte {
	res := b.buf[b.offset]
	b.offset++
	return res
}

// Position is the number of bytes consumed.
func (b *Reader) Position() int {
	return b.offset
}

// Remaining is the number of bytes not consumed yet.
func (b *Reader) Remaining() int {
	return len(b.buf) - b.offset
}

// Bytes returns the whole underlying buffer, consumed part included.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Empty reports whether every byte was consumed.
func (b *Reader) Empty() bool {
	return b.offset == len(b.buf)
}
