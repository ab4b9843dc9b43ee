package cser

import (
	"errors"
	"math/big"

	"github.com/rony4d/go-opera-ledger/utils/bits"
	"github.com/rony4d/go-opera-ledger/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc bounds any single variable-size field a decoder will allocate.
const MaxAlloc = 100 * 1024

// Writer fills the two streams of a cser message: small length tags and
// flags go to the bit stream, payload bytes go to the byte stream.
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

// Reader is the decoding side of Writer.
type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 32)}),
		BytesW: fast.NewWriter(make([]byte, 0, 200)),
	}
}

// writeUint64Compact writes v in 7-bit groups, low group first. The high bit
// is set on the last group only.
func writeUint64Compact(out *fast.Writer, v uint64) {
	for {
		group := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			out.WriteByte(group | 0x80)
			return
		}
		out.WriteByte(group)
	}
}

func readUint64Compact(in *fast.Reader) uint64 {
	var v uint64
	for i := 0; ; i++ {
		group := in.ReadByte()
		last := group&0x80 != 0
		data := uint64(group & 0x7f)
		if i > 0 && last && data == 0 {
			panic(ErrNonCanonicalEncoding)
		}
		v |= data << uint(7*i)
		if last {
			return v
		}
	}
}

// writeUint64BitCompact writes v little-endian using as few bytes as possible,
// but never fewer than minSize. It returns the number of bytes used.
func writeUint64BitCompact(out *fast.Writer, v uint64, minSize int) int {
	size := 0
	for ; size < minSize || v != 0; size++ {
		out.WriteByte(byte(v))
		v >>= 8
	}
	return size
}

func readUint64BitCompact(in *fast.Reader, size int) uint64 {
	buf := in.Read(size)
	var v uint64
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

// writeSized stores the byte length of v (minus minSize) in sizeBits bits of
// the bit stream and the value itself in the byte stream.
func (w *Writer) writeSized(minSize, sizeBits int, v uint64) {
	size := writeUint64BitCompact(w.BytesW, v, minSize)
	w.BitsW.Write(sizeBits, uint(size-minSize))
}

func (r *Reader) readSized(minSize, sizeBits int) uint64 {
	size := int(r.BitsR.Read(sizeBits)) + minSize
	return readUint64BitCompact(r.BytesR, size)
}

func (w *Writer) U8(v uint8) { w.BytesW.WriteByte(v) }
func (r *Reader) U8() uint8  { return r.BytesR.ReadByte() }

func (w *Writer) U16(v uint16) { w.writeSized(1, 1, uint64(v)) }
func (r *Reader) U16() uint16  { return uint16(r.readSized(1, 1)) }

func (w *Writer) U32(v uint32) { w.writeSized(1, 2, uint64(v)) }
func (r *Reader) U32() uint32  { return uint32(r.readSized(1, 2)) }

func (w *Writer) U64(v uint64) { w.writeSized(1, 3, v) }
func (r *Reader) U64() uint64  { return r.readSized(1, 3) }

func (w *Writer) VarUint(v uint64) { w.writeSized(1, 3, v) }
func (r *Reader) VarUint() uint64  { return r.readSized(1, 3) }

// I64 is a sign flag followed by the magnitude. Negative zero is rejected.
func (w *Writer) I64(v int64) {
	w.Bool(v < 0)
	if v < 0 {
		w.U64(uint64(-v))
		return
	}
	w.U64(uint64(v))
}

func (r *Reader) I64() int64 {
	neg := r.Bool()
	abs := r.U64()
	if !neg {
		return int64(abs)
	}
	if abs == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return -int64(abs)
}

// U56 may be zero bytes long and is used for lengths.
func (w *Writer) U56(v uint64) {
	const max = 1<<(8*7) - 1
	if v > max {
		panic("cser: value does not fit into 56 bits")
	}
	w.writeSized(0, 3, v)
}

func (r *Reader) U56() uint64 { return r.readSized(0, 3) }

func (w *Writer) Bool(v bool) {
	var b uint
	if v {
		b = 1
	}
	w.BitsW.Write(1, b)
}

func (r *Reader) Bool() bool { return r.BitsR.Read(1) != 0 }

// FixedBytes writes v without a length prefix.
func (w *Writer) FixedBytes(v []byte) { w.BytesW.Write(v) }

// FixedBytes fills v completely.
func (r *Reader) FixedBytes(v []byte) { copy(v, r.BytesR.Read(len(v))) }

// SliceBytes writes a length-prefixed byte slice.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed byte slice no longer than maxLen.
func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

// String writes a length-prefixed string.
func (w *Writer) String(s string) { w.SliceBytes([]byte(s)) }

// String reads a length-prefixed string no longer than maxLen bytes.
func (r *Reader) String(maxLen int) string { return string(r.SliceBytes(maxLen)) }

// BigInt writes the magnitude of v. The sign is not encoded.
func (w *Writer) BigInt(v *big.Int) {
	if v.Sign() == 0 {
		w.SliceBytes(nil)
		return
	}
	w.SliceBytes(v.Bytes())
}

func (r *Reader) BigInt() *big.Int {
	buf := r.SliceBytes(512)
	if len(buf) != 0 && buf[0] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return new(big.Int).SetBytes(buf)
}

// PaddedBytes left-pads b with zeros up to n bytes.
func PaddedBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	return append(make([]byte, n-len(b)), b...)
}
