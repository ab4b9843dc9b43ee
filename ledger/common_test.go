package ledger

import (
	"bytes"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/opera"
)

func newTestView() *View {
	return NewView(memorydb.New())
}

func testKeyID(n byte) validatorpk.KeyID {
	var id validatorpk.KeyID
	id[0] = n
	id[validatorpk.KeyIDLength-1] = n
	return id
}

func testScript(n byte) inter.Script {
	return inter.P2PKHScript(testKeyID(n))
}

func testNodeID(name string) hash.Hash {
	return hash.Of([]byte(name))
}

func testRules() opera.MasternodeRules {
	return opera.DefaultMasternodeRules()
}

// addTestMasternode registers a node whose owner is key n and operator is
// key n+100.
func addTestMasternode(t *testing.T, v *View, name string, n byte, height idx.Block) hash.Hash {
	id := testNodeID(name)
	m := NewMasternode(testKeyID(n), validatorpk.Types.PubKeyHash, testKeyID(n+100), validatorpk.Types.PubKeyHash, height)
	res := v.CreateMasternode(id, m)
	require.True(t, res.Ok, res.String())
	return id
}

func addTestToken(t *testing.T, v *View, symbol string, owner inter.Script) uint32 {
	id, res := v.CreateToken(&Token{
		Symbol:    symbol,
		Name:      symbol + " token",
		Decimal:   DefaultDecimal,
		Mintable:  true,
		Tradeable: true,
		Owner:     owner,
	}, opera.DefaultTokenRules())
	require.True(t, res.Ok, res.String())
	return id
}

func testHeader(minter validatorpk.KeyID, height idx.Block, minted uint64, salt byte) *inter.BlockHeader {
	return &inter.BlockHeader{
		Version:       1,
		PrevHash:      hash.Of([]byte{salt, 1}),
		MerkleRoot:    hash.Of([]byte{salt, 2}),
		Height:        height,
		Time:          inter.FromUnix(1608600000 + int64(height)),
		StakeModifier: hash.Of([]byte{salt, 3}),
		MintedBlocks:  minted,
		Minter:        minter,
		Sig:           []byte{salt},
	}
}

// dumpState returns every record except undo records and the tip.
func dumpState(t *testing.T, v *View) map[string]string {
	it := v.DB().NewIterator(nil, nil)
	defer it.Release()
	out := map[string]string{}
	for it.Next() {
		k := it.Key()
		if k[0] == prefixUndo || k[0] == prefixHeight {
			continue
		}
		out[string(k)] = string(it.Value())
	}
	require.NoError(t, it.Error())
	return out
}

func requireSameState(t *testing.T, exp, got map[string]string) {
	for k, v := range exp {
		g, ok := got[k]
		require.True(t, ok, "missing key %x", []byte(k))
		require.True(t, bytes.Equal([]byte(v), []byte(g)), "key %x differs", []byte(k))
	}
	require.Equal(t, len(exp), len(got))
}
