package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
)

func TestFakeGenesisApply(t *testing.T) {
	require := require.New(t)
	g := FakeGenesis(4)
	g.Balances = []Balance{{Owner: opera.FakeKeyID(7), Amount: 500}}
	g.Oracles = []Oracle{{Owner: opera.FakeKeyID(8), Weight: 3}}
	g.FoundationsDebt = 9

	view := ledger.NewView(memorydb.New())
	tip, err := g.Apply(view)
	require.NoError(err)
	require.Equal(g.Hash(), tip.Hash)

	got, ok := view.GetTip()
	require.True(ok)
	require.Equal(tip, got)

	native := view.GetToken(inter.NativeToken)
	require.NotNil(native)
	require.Equal("DFI", native.Symbol)

	rules := opera.FakeNetRules()
	for i := range g.Masternodes {
		node := view.GetMasternode(MasternodeID(i))
		require.NotNil(node)
		require.Equal(ledger.Enabled, node.State(1, rules.Masternodes))
	}
	require.Len(view.GetCurrentTeam(), rules.Masternodes.TeamSize)

	coinbase := g.Coinbase()
	require.True(coinbase.IsCoinBase())
	coin, ok := view.GetCoin(inter.OutPoint{TxHash: coinbase.Hash(), Index: 2})
	require.True(ok)
	require.Equal(inter.P2PKHScript(opera.FakeKeyID(3)), coin.Script)

	require.Equal(int64(500), view.GetBalance(inter.P2PKHScript(opera.FakeKeyID(7)), 0))
	require.Equal(int64(500), view.GetSupply(0))
	w, ok := view.GetOracleWeight(inter.P2PKHScript(opera.FakeKeyID(8)))
	require.True(ok)
	require.Equal(int64(3), w)
	require.Equal(int64(9), view.GetFoundationsDebt())

	_, err = g.Apply(view)
	require.ErrorIs(err, ErrAlreadyApplied)
}

func TestGenesisErrors(t *testing.T) {
	for name, g := range map[string]*Genesis{
		"unknown network": {Network: "nope"},
		"duplicate operator": {Network: "fake", Masternodes: []Masternode{
			FakeGenesis(1).Masternodes[0],
			FakeGenesis(1).Masternodes[0],
		}},
		"bad address type": {Network: "fake", Masternodes: []Masternode{{Owner: opera.FakeKeyID(1), Operator: opera.FakeKeyID(2)}}},
		"unknown token":    {Network: "fake", Coins: []Coin{{Owner: opera.FakeKeyID(1), Token: 5, Amount: 1}}},
		"huge amount":      {Network: "fake", Balances: []Balance{{Owner: opera.FakeKeyID(1), Amount: 1 << 63}}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := g.Apply(ledger.NewView(memorydb.New()))
			require.Error(t, err)
		})
	}
}

func TestGenesisHash(t *testing.T) {
	require := require.New(t)
	a, b := FakeGenesis(2), FakeGenesis(2)
	require.Equal(a.Hash(), b.Hash())
	b.FoundationsDebt = 1
	require.NotEqual(a.Hash(), b.Hash())
}

func TestLoadFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.toml")
	owner := opera.FakeKeyID(2)
	data := `Network = "fake"
Time = 1000

[[Masternodes]]
Owner = "` + owner.String() + `"
OwnerType = 1
Operator = "` + opera.FakeKeyID(3).String() + `"
OperatorType = 4

[[Tokens]]
ID = 1
Symbol = "BTC"
Name = "Bitcoin"
Tradeable = true

[[Balances]]
Owner = "` + owner.String() + `"
Token = 1
Amount = 25
`
	require.NoError(os.WriteFile(path, []byte(data), 0o600))

	g, err := LoadFile(path)
	require.NoError(err)
	require.Equal("fake", g.Network)
	require.Len(g.Masternodes, 1)
	require.Equal(owner, g.Masternodes[0].Owner)
	require.Equal(opera.FakeKeyID(3), g.Masternodes[0].Operator)

	view := ledger.NewView(memorydb.New())
	_, err = g.Apply(view)
	require.NoError(err)
	require.Equal(int64(25), view.GetBalance(inter.P2PKHScript(owner), 1))
	require.NotNil(view.GetToken(0))

	require.NoError(os.WriteFile(path, []byte(`Network = "nope"`), 0o600))
	_, err = LoadFile(path)
	require.Error(err)
}
