package inter

import (
	"bytes"
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

// Opcodes the ledger needs to recognize. Script execution itself belongs to
// the UTXO engine.
const (
	Op0           byte = 0x00
	OpPushData1   byte = 0x4c
	OpPushData2   byte = 0x4d
	OpPushData4   byte = 0x4e
	OpReturn      byte = 0x6a
	OpDup         byte = 0x76
	OpEqualVerify byte = 0x88
	OpHash160     byte = 0xa9
	OpCheckSig    byte = 0xac
)

// Script is a locking script. Account balances are keyed by it.
type Script []byte

func (s Script) Equal(other Script) bool {
	return bytes.Equal(s, other)
}

func (s Script) String() string {
	return common.Bytes2Hex(s)
}

// Copy returns a script that does not alias s.
func (s Script) Copy() Script {
	if s == nil {
		return nil
	}
	return append(Script{}, s...)
}

// pushData encodes data as a single push operation.
func pushData(data []byte) []byte {
	n := len(data)
	var out []byte
	switch {
	case n < int(OpPushData1):
		out = append(out, byte(n))
	case n <= 0xff:
		out = append(out, OpPushData1, byte(n))
	case n <= 0xffff:
		out = append(out, OpPushData2, 0, 0)
		binary.LittleEndian.PutUint16(out[1:], uint16(n))
	default:
		out = append(out, OpPushData4, 0, 0, 0, 0)
		binary.LittleEndian.PutUint32(out[1:], uint32(n))
	}
	return append(out, data...)
}

// readPush decodes one push operation at the start of s. It returns the
// pushed bytes and the rest of the script.
func readPush(s []byte) (data, rest []byte, ok bool) {
	if len(s) == 0 {
		return nil, nil, false
	}
	op := s[0]
	s = s[1:]
	var n int
	switch {
	case op < OpPushData1:
		n = int(op)
	case op == OpPushData1:
		if len(s) < 1 {
			return nil, nil, false
		}
		n, s = int(s[0]), s[1:]
	case op == OpPushData2:
		if len(s) < 2 {
			return nil, nil, false
		}
		n, s = int(binary.LittleEndian.Uint16(s)), s[2:]
	case op == OpPushData4:
		if len(s) < 4 {
			return nil, nil, false
		}
		n64 := binary.LittleEndian.Uint32(s)
		s = s[4:]
		if uint64(n64) > uint64(len(s)) {
			return nil, nil, false
		}
		n = int(n64)
	default:
		return nil, nil, false
	}
	if n > len(s) {
		return nil, nil, false
	}
	return s[:n], s[n:], true
}

// NullDataScript builds an unspendable OP_RETURN output carrying data.
func NullDataScript(data []byte) Script {
	return append(Script{OpReturn}, pushData(data)...)
}

// NullData extracts the payload of an OP_RETURN output. Anything after the
// first push is ignored.
func (s Script) NullData() ([]byte, bool) {
	if len(s) == 0 || s[0] != OpReturn {
		return nil, false
	}
	data, _, ok := readPush(s[1:])
	return data, ok
}

// IsUnspendable reports whether s starts with OP_RETURN.
func (s Script) IsUnspendable() bool {
	return len(s) > 0 && s[0] == OpReturn
}

// P2PKHScript locks to a key id: DUP HASH160 <id> EQUALVERIFY CHECKSIG.
func P2PKHScript(id validatorpk.KeyID) Script {
	s := Script{OpDup, OpHash160, validatorpk.KeyIDLength}
	s = append(s, id[:]...)
	return append(s, OpEqualVerify, OpCheckSig)
}

// P2WPKHScript locks to a key id with a version 0 witness program.
func P2WPKHScript(id validatorpk.KeyID) Script {
	s := Script{Op0, validatorpk.KeyIDLength}
	return append(s, id[:]...)
}

// ScriptFor builds the locking script for an address type.
func ScriptFor(id validatorpk.KeyID, t validatorpk.AddrType) (Script, error) {
	switch t {
	case validatorpk.Types.PubKeyHash:
		return P2PKHScript(id), nil
	case validatorpk.Types.WitnessPubKeyHash:
		return P2WPKHScript(id), nil
	}
	return nil, validatorpk.ErrUnknownAddrType
}

// KeyID recognizes P2PKH and P2WPKH scripts.
func (s Script) KeyID() (validatorpk.KeyID, validatorpk.AddrType, bool) {
	var id validatorpk.KeyID
	switch {
	case len(s) == 25 && s[0] == OpDup && s[1] == OpHash160 && s[2] == validatorpk.KeyIDLength &&
		s[23] == OpEqualVerify && s[24] == OpCheckSig:
		copy(id[:], s[3:23])
		return id, validatorpk.Types.PubKeyHash, true
	case len(s) == 22 && s[0] == Op0 && s[1] == validatorpk.KeyIDLength:
		copy(id[:], s[2:])
		return id, validatorpk.Types.WitnessPubKeyHash, true
	}
	return id, 0, false
}
