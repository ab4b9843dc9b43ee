package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

// One byte per logical table. Integers in keys are big-endian so that
// prefix iteration walks them in numeric order.
const (
	prefixMasternode   = 'M' // node id -> Masternode
	prefixOwnerIdx     = 'o' // owner key id -> node id
	prefixOperatorIdx  = 'O' // operator key id -> node id
	prefixMintedHeader = 'H' // node id, minted blocks, block hash -> BlockHeader
	prefixCriminal     = 'C' // node id -> DoubleSignProof
	prefixTeam         = 't' // -> Team
	prefixDebt         = 'f' // -> foundation debt
	prefixToken        = 'T' // token id -> Token
	prefixSymbol       = 'S' // symbol -> token id
	prefixLastTokenID  = 'L' // -> last assigned token id
	prefixSupply       = 'y' // token id -> minted supply
	prefixAccount      = 'a' // script length, script, token id -> amount
	prefixOrder        = 'R' // order id -> Order
	prefixReceipt      = 'r' // match tx hash -> OrderMatch
	prefixOracle       = 'W' // oracle script -> weight
	prefixPrice        = 'P' // token id, oracle script -> PricePoint
	prefixCoin         = 'c' // tx hash, output index -> TxOut
	prefixAnchorReward = 'A' // anchor tx hash -> reward tx hash
	prefixUndo         = 'u' // height, tx index -> Undo
	prefixHeight       = 'h' // -> last connected block
)

func key(prefix byte, parts ...[]byte) []byte {
	size := 1
	for _, p := range parts {
		size += len(p)
	}
	k := make([]byte, 0, size)
	k = append(k, prefix)
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func masternodeKey(id hash.Hash) []byte {
	return key(prefixMasternode, id.Bytes())
}

func ownerKey(owner validatorpk.KeyID) []byte {
	return key(prefixOwnerIdx, owner[:])
}

func operatorKey(operator validatorpk.KeyID) []byte {
	return key(prefixOperatorIdx, operator[:])
}

func mintedHeaderPrefix(id hash.Hash, minted uint64) []byte {
	return key(prefixMintedHeader, id.Bytes(), bigendian.Uint64ToBytes(minted))
}

func mintedHeaderKey(id hash.Hash, minted uint64, blockHash hash.Hash) []byte {
	return append(mintedHeaderPrefix(id, minted), blockHash.Bytes()...)
}

func criminalKey(id hash.Hash) []byte {
	return key(prefixCriminal, id.Bytes())
}

func tokenKey(id uint32) []byte {
	return key(prefixToken, bigendian.Uint32ToBytes(id))
}

func symbolKey(symbol string) []byte {
	return key(prefixSymbol, []byte(symbol))
}

func supplyKey(id uint32) []byte {
	return key(prefixSupply, bigendian.Uint32ToBytes(id))
}

// accountPrefix bounds the balances of one owner. The script is length
// prefixed so that one script is never a key prefix of another.
func accountPrefix(owner inter.Script) []byte {
	return key(prefixAccount, bigendian.Uint16ToBytes(uint16(len(owner))), owner)
}

func accountKey(owner inter.Script, token uint32) []byte {
	return append(accountPrefix(owner), bigendian.Uint32ToBytes(token)...)
}

// splitAccountKey is the inverse of accountKey without the table prefix.
func splitAccountKey(k []byte) (inter.Script, uint32, bool) {
	if len(k) < 2+4 {
		return nil, 0, false
	}
	n := int(bigendian.BytesToUint16(k[:2]))
	if len(k) != 2+n+4 {
		return nil, 0, false
	}
	return inter.Script(k[2 : 2+n]).Copy(), bigendian.BytesToUint32(k[2+n:]), true
}

func orderKey(id hash.Hash) []byte {
	return key(prefixOrder, id.Bytes())
}

func receiptKey(id hash.Hash) []byte {
	return key(prefixReceipt, id.Bytes())
}

func oracleKey(oracle inter.Script) []byte {
	return key(prefixOracle, oracle)
}

func pricePrefix(token uint32) []byte {
	return key(prefixPrice, bigendian.Uint32ToBytes(token))
}

func priceKey(token uint32, oracle inter.Script) []byte {
	return append(pricePrefix(token), oracle...)
}

func anchorRewardKey(anchorTx hash.Hash) []byte {
	return key(prefixAnchorReward, anchorTx.Bytes())
}

func coinKey(o inter.OutPoint) []byte {
	return key(prefixCoin, o.TxHash.Bytes(), bigendian.Uint32ToBytes(o.Index))
}

func undoPrefix(height idx.Block) []byte {
	return key(prefixUndo, bigendian.Uint64ToBytes(uint64(height)))
}

func undoKey(height idx.Block, txn uint32) []byte {
	return append(undoPrefix(height), bigendian.Uint32ToBytes(txn)...)
}
