// Package cser is the canonical compact codec used for ledger records and
// custom transaction payloads.
//
// A message is laid out as
//
//	[byte stream][bit stream][reversed compact length of the bit stream]
//
// Decoding is strict: any unread byte, any non-zero padding bit and any
// integer stored in more bytes than needed is an error, so every value has
// exactly one encoding.
package cser

import (
	"github.com/rony4d/go-opera-ledger/utils/bits"
	"github.com/rony4d/go-opera-ledger/utils/fast"
)

// Marshaler is implemented by types with a cser encoding.
type Marshaler interface {
	MarshalCSER(w *Writer) error
}

// Unmarshaler is implemented by types with a cser decoding.
type Unmarshaler interface {
	UnmarshalCSER(r *Reader) error
}

// Marshal encodes v into a standalone message.
func Marshal(v Marshaler) ([]byte, error) {
	return MarshalBinaryAdapter(v.MarshalCSER)
}

// Unmarshal decodes a standalone message into v.
func Unmarshal(raw []byte, v Unmarshaler) error {
	return UnmarshalBinaryAdapter(raw, v.UnmarshalCSER)
}

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and joins the streams.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return binaryFromCSER(w.BitsW.Array, w.BytesW.Bytes())
}

func binaryFromCSER(bbits *bits.Array, bbytes []byte) ([]byte, error) {
	out := fast.NewWriter(bbytes)
	out.Write(bbits.Bytes)

	size := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(size, uint64(len(bbits.Bytes)))
	out.Write(reversed(size.Bytes()))
	return out.Bytes(), nil
}

func binaryToCSER(raw []byte) (*bits.Array, []byte, error) {
	suffix := fast.NewReader(reversed(tail(raw, 9)))
	bitsSize := readUint64Compact(suffix)
	raw = raw[:len(raw)-suffix.Position()]
	if uint64(len(raw)) < bitsSize {
		return nil, nil, ErrMalformedEncoding
	}
	split := uint64(len(raw)) - bitsSize
	return &bits.Array{Bytes: raw[split:]}, raw[:split], nil
}

// UnmarshalBinaryAdapter splits raw into its streams, runs unmarshalCser and
// checks that the message was consumed exactly. Decoder panics caused by
// truncated input are reported as ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && (e == ErrNonCanonicalEncoding || e == ErrTooLargeAlloc) {
				err = e
				return
			}
			err = ErrMalformedEncoding
		}
	}()

	bbits, bbytes, err := binaryToCSER(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}
	if err := unmarshalCser(r); err != nil {
		return err
	}

	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(r.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
