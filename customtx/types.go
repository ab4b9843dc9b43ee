// Package customtx recognizes ledger operations embedded in UTXO
// transactions and applies them to a ledger.View.
//
// An operation rides in the first output of a transaction:
//
//	OP_RETURN <push(marker | tag | cser payload)>
//
// where marker is "DfTx" for ordinary operations, "DfCr" for double sign
// proofs and "DfAR" for anchor rewards. Anything else is left to the UTXO
// engine.
package customtx

import (
	"bytes"
	"fmt"

	"github.com/rony4d/go-opera-ledger/inter"
)

// MarkerLength is the size of a marker.
const MarkerLength = 4

var (
	// TxMarker prefixes ordinary ledger operations.
	TxMarker = []byte("DfTx")
	// CriminalMarker prefixes double sign proofs.
	CriminalMarker = []byte("DfCr")
	// AnchorRewardMarker prefixes anchor rewards.
	AnchorRewardMarker = []byte("DfAR")
)

// TxType is the one byte operation tag.
type TxType byte

const (
	None TxType = 0

	CreateMasternode TxType = 'C'
	ResignMasternode TxType = 'R'

	CreateToken  TxType = 'T'
	DestroyToken TxType = 'D'
	MintToken    TxType = 'M'

	CreateOrder  TxType = 'O'
	DestroyOrder TxType = 'E'
	MatchOrders  TxType = 'A'

	UtxosToAccount   TxType = 'U'
	AccountToAccount TxType = 'B'
	AccountToUtxos   TxType = 'b'

	AppointOracle TxType = 'o'
	RemoveOracle  TxType = 'h'
	SetOracleData TxType = 'y'

	// CriminalProof is only valid under CriminalMarker.
	CriminalProof TxType = 'X'
	// AnchorReward is only valid under AnchorRewardMarker.
	AnchorReward  TxType = 'N'
)

var txTypeNames = map[TxType]string{
	None:             "None",
	CreateMasternode: "CreateMasternode",
	ResignMasternode: "ResignMasternode",
	CreateToken:      "CreateToken",
	DestroyToken:     "DestroyToken",
	MintToken:        "MintToken",
	CreateOrder:      "CreateOrder",
	DestroyOrder:     "DestroyOrder",
	MatchOrders:      "MatchOrders",
	UtxosToAccount:   "UtxosToAccount",
	AccountToAccount: "AccountToAccount",
	AccountToUtxos:   "AccountToUtxos",
	AppointOracle:    "AppointOracle",
	RemoveOracle:     "RemoveOracle",
	SetOracleData:    "SetOracleData",
	CriminalProof:    "CriminalProof",
	AnchorReward:     "AnchorReward",
}

func (t TxType) String() string {
	if name, ok := txTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TxType(%#x)", byte(t))
}

// marker returns the marker t is valid under.
func (t TxType) marker() []byte {
	switch t {
	case CriminalProof:
		return CriminalMarker
	case AnchorReward:
		return AnchorRewardMarker
	}
	return TxMarker
}

// known reports whether t is a tag this package applies.
func (t TxType) known() bool {
	_, ok := txTypeNames[t]
	return ok && t != None
}

// GuessTxType classifies tx by its first output and returns the encoded
// payload. It never fails: anything unrecognized is None.
func GuessTxType(tx *inter.Transaction) (TxType, []byte) {
	if tx == nil || len(tx.Outputs) == 0 {
		return None, nil
	}
	data, ok := tx.Outputs[0].Script.NullData()
	if !ok || len(data) < MarkerLength+1 {
		return None, nil
	}
	t := TxType(data[MarkerLength])
	if !t.known() || !bytes.Equal(data[:MarkerLength], t.marker()) {
		return None, nil
	}
	return t, data[MarkerLength+1:]
}

// MarkerScript builds the first output script of an operation.
func MarkerScript(t TxType, payload []byte) inter.Script {
	data := make([]byte, 0, MarkerLength+1+len(payload))
	data = append(data, t.marker()...)
	data = append(data, byte(t))
	data = append(data, payload...)
	return inter.NullDataScript(data)
}
