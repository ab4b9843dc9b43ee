package customtx

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
)

type testEnv struct {
	t      *testing.T
	view   *ledger.View
	rules  opera.Rules
	nonce  uint32
	height idx.Block
}

func newTestEnv(t *testing.T) *testEnv {
	return &testEnv{
		t:      t,
		view:   ledger.NewView(memorydb.New()),
		rules:  opera.FakeNetRules(),
		height: 1,
	}
}

func script(n int) inter.Script {
	return inter.P2PKHScript(opera.FakeKeyID(n))
}

// fund creates a coin locked to s and returns where it is.
func (e *testEnv) fund(s inter.Script) inter.OutPoint {
	e.nonce++
	tx := &inter.Transaction{
		Version:  1,
		Inputs:   []inter.TxIn{{Prev: inter.OutPoint{TxHash: hash.Of([]byte("funding")), Index: e.nonce}}},
		Outputs:  []inter.TxOut{{Amount: opera.Coin, Script: s}},
		LockTime: e.nonce,
	}
	e.view.AddCoins(tx)
	return inter.OutPoint{TxHash: tx.Hash(), Index: 0}
}

// tx builds a transaction carrying msg, signed by every script in signers.
// extra outputs follow the marker output.
func (e *testEnv) tx(msg Message, burn inter.TxOut, signers []inter.Script, extra ...inter.TxOut) *inter.Transaction {
	marker, err := Encode(msg)
	require.NoError(e.t, err)
	burn.Script = marker
	tx := &inter.Transaction{
		Version: 1,
		Outputs: append([]inter.TxOut{burn}, extra...),
	}
	for _, s := range signers {
		tx.Inputs = append(tx.Inputs, inter.TxIn{Prev: e.fund(s)})
	}
	if len(tx.Inputs) == 0 {
		tx.Inputs = append(tx.Inputs, inter.TxIn{Prev: e.fund(script(99))})
	}
	return tx
}

// apply runs tx in a child cache and keeps its effects only on success.
func (e *testEnv) apply(tx *inter.Transaction) ledger.Res {
	cache := e.view.NewCache()
	_, res := Apply(cache, e.view, tx, e.height, e.rules)
	if res.Ok {
		require.NoError(e.t, cache.Flush())
	} else {
		cache.Discard()
	}
	return res
}

func (e *testEnv) mustApply(tx *inter.Transaction) {
	res := e.apply(tx)
	require.True(e.t, res.Ok, res.String())
}

func signedBy(s ...inter.Script) []inter.Script {
	return s
}
