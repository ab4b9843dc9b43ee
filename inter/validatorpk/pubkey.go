// Package validatorpk holds the identities used by masternodes: a 20-byte
// key id (HASH160 of a compressed public key) plus the address type it was
// registered with. Owner and operator auth addresses are both of this kind.
package validatorpk

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// KeyIDLength is the size of a HASH160 digest.
const KeyIDLength = 20

// KeyID identifies a key by the HASH160 of its serialized public key.
type KeyID [KeyIDLength]byte

// AddrType tags how a KeyID is rendered and locked in scripts.
type AddrType uint8

// Types are the address types a masternode can be registered with.
var Types = struct {
	PubKeyHash        AddrType
	WitnessPubKeyHash AddrType
}{
	PubKeyHash:        1,
	WitnessPubKeyHash: 4,
}

var (
	ErrEmptyKeyID      = errors.New("empty key id")
	ErrBadKeyIDLength  = errors.New("key id must be 20 bytes")
	ErrUnknownAddrType = errors.New("address type is neither P2PKH nor P2WPKH")
	ErrWrongNetwork    = errors.New("address belongs to another network")
)

// Params are the per-network address encodings.
type Params struct {
	PubKeyHashVersion byte
	Bech32HRP         string
}

var (
	MainNetParams = Params{PubKeyHashVersion: 0x12, Bech32HRP: "df"}
	TestNetParams = Params{PubKeyHashVersion: 0x0f, Bech32HRP: "tf"}
	FakeNetParams = Params{PubKeyHashVersion: 0x6f, Bech32HRP: "bcrt"}
)

// Valid reports whether t is a supported address type.
func (t AddrType) Valid() bool {
	return t == Types.PubKeyHash || t == Types.WitnessPubKeyHash
}

func (t AddrType) String() string {
	switch t {
	case Types.PubKeyHash:
		return "p2pkh"
	case Types.WitnessPubKeyHash:
		return "p2wpkh"
	}
	return fmt.Sprintf("addrtype(%d)", uint8(t))
}

// FromPubKey derives the key id of a serialized public key.
func FromPubKey(pub []byte) KeyID {
	var id KeyID
	copy(id[:], btcutil.Hash160(pub))
	return id
}

// FromBytes copies a 20-byte slice into a KeyID.
func FromBytes(b []byte) (KeyID, error) {
	var id KeyID
	if len(b) == 0 {
		return id, ErrEmptyKeyID
	}
	if len(b) != KeyIDLength {
		return id, ErrBadKeyIDLength
	}
	copy(id[:], b)
	return id, nil
}

// FromString parses a hex key id with or without the 0x prefix.
func FromString(str string) (KeyID, error) {
	return FromBytes(common.FromHex(str))
}

func (id KeyID) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

func (id KeyID) IsZero() bool {
	return id == KeyID{}
}

// Compare orders key ids bytewise.
func (id KeyID) Compare(other KeyID) int {
	return bytes.Compare(id[:], other[:])
}

func (id KeyID) String() string {
	return "0x" + common.Bytes2Hex(id[:])
}

func (id KeyID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *KeyID) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*id = res
	return nil
}

// Address renders id as a base58check (P2PKH) or bech32 v0 (P2WPKH) address.
func (id KeyID) Address(t AddrType, p Params) (string, error) {
	switch t {
	case Types.PubKeyHash:
		return base58.CheckEncode(id[:], p.PubKeyHashVersion), nil
	case Types.WitnessPubKeyHash:
		conv, err := bech32.ConvertBits(id[:], 8, 5, true)
		if err != nil {
			return "", err
		}
		return bech32.Encode(p.Bech32HRP, append([]byte{0}, conv...))
	}
	return "", ErrUnknownAddrType
}

// ParseAddress is the inverse of KeyID.Address.
func ParseAddress(addr string, p Params) (KeyID, AddrType, error) {
	if hrp, data, err := bech32.Decode(addr); err == nil {
		if hrp != p.Bech32HRP {
			return KeyID{}, 0, ErrWrongNetwork
		}
		if len(data) == 0 || data[0] != 0 {
			return KeyID{}, 0, ErrUnknownAddrType
		}
		raw, err := bech32.ConvertBits(data[1:], 5, 8, false)
		if err != nil {
			return KeyID{}, 0, err
		}
		id, err := FromBytes(raw)
		return id, Types.WitnessPubKeyHash, err
	}
	raw, version, err := base58.CheckDecode(addr)
	if err != nil {
		return KeyID{}, 0, err
	}
	if version != p.PubKeyHashVersion {
		return KeyID{}, 0, ErrWrongNetwork
	}
	id, err := FromBytes(raw)
	return id, Types.PubKeyHash, err
}
