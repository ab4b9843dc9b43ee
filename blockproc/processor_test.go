package blockproc

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/customtx"
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/opera/genesis"
)

type testChain struct {
	t       *testing.T
	p       *Processor
	view    *ledger.View
	genesis *genesis.Genesis
}

func newTestChain(t *testing.T, rules opera.Rules) *testChain {
	g := genesis.FakeGenesis(3)
	view := ledger.NewView(memorydb.New())
	_, err := g.Apply(view)
	require.NoError(t, err)
	return &testChain{t: t, p: New(rules), view: view, genesis: g}
}

func owner(i int) inter.Script {
	return inter.P2PKHScript(opera.FakeKeyID(i))
}

// genesisCoin is the coin of genesis owner i.
func (c *testChain) genesisCoin(i int) inter.OutPoint {
	return inter.OutPoint{TxHash: c.genesis.Coinbase().Hash(), Index: uint32(i - 1)}
}

// block builds the next block minted by genesis node i. salt tells apart
// blocks of the same minter at the same height.
func (c *testChain) block(i int, salt byte, txs ...*inter.Transaction) *inter.Block {
	tip, ok := c.view.GetTip()
	require.True(c.t, ok)
	operator := opera.FakeKeyID(100 + i)
	_, node, ok := c.view.GetMasternodeByOperator(operator)
	require.True(c.t, ok)
	height := tip.Height + 1
	return &inter.Block{
		Header: inter.BlockHeader{
			Version:       1,
			PrevHash:      tip.Hash,
			Height:        height,
			Time:          inter.FromUnix(1600000000 + int64(height)*30 + int64(salt)),
			StakeModifier: hash.Of(bigendian.Uint64ToBytes(uint64(height)), []byte{salt}),
			MintedBlocks:  node.MintedBlocks + 1,
			Minter:        operator,
		},
		Txs: txs,
	}
}

func (c *testChain) connect(b *inter.Block) error {
	cache := c.view.NewCache()
	_, err := c.p.ConnectBlock(cache, b)
	if err != nil {
		cache.Discard()
		return err
	}
	return cache.Flush()
}

func (c *testChain) mustConnect(b *inter.Block) {
	require.NoError(c.t, c.connect(b))
}

func (c *testChain) disconnect(b *inter.Block) error {
	cache := c.view.NewCache()
	if err := c.p.DisconnectBlock(cache, b); err != nil {
		cache.Discard()
		return err
	}
	return cache.Flush()
}

func customTx(t *testing.T, msg customtx.Message, burn int64, inputs []inter.OutPoint, outputs ...inter.TxOut) *inter.Transaction {
	marker, err := customtx.Encode(msg)
	require.NoError(t, err)
	tx := &inter.Transaction{
		Version: 1,
		Outputs: append([]inter.TxOut{{Amount: burn, Script: marker}}, outputs...),
	}
	for _, in := range inputs {
		tx.Inputs = append(tx.Inputs, inter.TxIn{Prev: in})
	}
	return tx
}

func TestConnectDisconnect(t *testing.T) {
	require := require.New(t)
	c := newTestChain(t, opera.FakeNetRules())
	genesisTip, _ := c.view.GetTip()
	nodeID := genesis.MasternodeID(0)

	deposit := customTx(t, &customtx.UtxosToAccountMessage{To: customtx.Recipients{
		{To: owner(1), Amounts: ledger.Balances{{Token: 0, Amount: 50}}},
	}}, 50, []inter.OutPoint{c.genesisCoin(1)}, inter.TxOut{Amount: opera.Coin - 50, Script: owner(1)})
	overdraft := customTx(t, &customtx.AccountToAccountMessage{From: owner(2), To: customtx.Recipients{
		{To: owner(3), Amounts: ledger.Balances{{Token: 0, Amount: 10}}},
	}}, 0, []inter.OutPoint{c.genesisCoin(2)}, inter.TxOut{Amount: opera.Coin, Script: owner(2)})

	b := c.block(1, 0, deposit, overdraft)
	cache := c.view.NewCache()
	state, err := c.p.ConnectBlock(cache, b)
	require.NoError(err)
	require.NoError(cache.Flush())

	require.Equal(uint32(1), state.Applied)
	require.Len(state.Rejected, 1)
	require.Equal(uint32(1), state.Rejected[0].Index)
	require.Equal(byte(customtx.AccountToAccount), state.Rejected[0].Type)
	require.Equal(uint8(ledger.NotEnoughBalance), state.Rejected[0].Code)
	require.Nil(state.DoubleSigner)
	require.False(state.Rotated)

	require.Equal(int64(50), c.view.GetBalance(owner(1), 0))
	require.Equal(uint64(1), c.view.GetMasternode(nodeID).MintedBlocks)
	_, ok := c.view.GetCoin(c.genesisCoin(1))
	require.False(ok)
	// the refused transfer still spent its coin
	_, ok = c.view.GetCoin(c.genesisCoin(2))
	require.False(ok)
	change, ok := c.view.GetCoin(inter.OutPoint{TxHash: deposit.Hash(), Index: 1})
	require.True(ok)
	require.Equal(opera.Coin-50, change.Amount)
	tip, _ := c.view.GetTip()
	require.Equal(ledger.Tip{Height: 1, Hash: b.Hash()}, tip)

	require.NoError(c.disconnect(b))
	require.Equal(int64(0), c.view.GetBalance(owner(1), 0))
	require.Equal(uint64(0), c.view.GetMasternode(nodeID).MintedBlocks)
	_, ok = c.view.GetCoin(c.genesisCoin(1))
	require.True(ok)
	_, ok = c.view.GetCoin(c.genesisCoin(2))
	require.True(ok)
	_, ok = c.view.GetCoin(inter.OutPoint{TxHash: deposit.Hash(), Index: 1})
	require.False(ok)
	tip, _ = c.view.GetTip()
	require.Equal(genesisTip, tip)

	// the same block connects again
	c.mustConnect(b)
	require.Equal(int64(50), c.view.GetBalance(owner(1), 0))
}

func TestConnectErrors(t *testing.T) {
	require := require.New(t)
	c := newTestChain(t, opera.FakeNetRules())

	b := c.block(1, 0)
	b.Header.PrevHash = hash.Of([]byte("elsewhere"))
	require.ErrorIs(c.connect(b), ErrNotNext)

	b = c.block(1, 0)
	b.Header.Height++
	require.ErrorIs(c.connect(b), ErrNotNext)

	b = c.block(1, 0)
	b.Header.Minter = opera.FakeKeyID(50)
	require.ErrorIs(c.connect(b), ErrUnknownMinter)

	b = c.block(1, 0)
	b.Header.MintedBlocks = 5
	require.ErrorIs(c.connect(b), ErrMintedBlocks)

	b = c.block(1, 0)
	c.mustConnect(b)
	require.ErrorIs(c.disconnect(c.block(2, 0)), ErrNotTip)

	empty := ledger.NewView(memorydb.New())
	_, err := c.p.ConnectBlock(empty, b)
	require.ErrorIs(err, ErrNoGenesis)
}

func TestDoubleSignAcrossFork(t *testing.T) {
	require := require.New(t)
	c := newTestChain(t, opera.FakeNetRules())
	nodeID := genesis.MasternodeID(0)

	a := c.block(1, 0)
	c.mustConnect(a)
	require.NoError(c.disconnect(a))
	require.Empty(c.p.PendingProofs(c.view))

	b := c.block(1, 1)
	require.NotEqual(a.Hash(), b.Hash())
	cache := c.view.NewCache()
	state, err := c.p.ConnectBlock(cache, b)
	require.NoError(err)
	require.NoError(cache.Flush())
	require.NotNil(state.DoubleSigner)
	require.Equal(nodeID, *state.DoubleSigner)

	// the state before the fork block knows neither header nor proof
	require.Len(c.view.FetchMintedHeaders(nodeID, 1), 2)
	past, err := c.view.HistoryAt(0)
	require.NoError(err)
	require.Empty(past.FetchMintedHeaders(nodeID, 1))
	require.Empty(past.GetUnpunishedCriminals(ledger.Page{}))
	_, ok := past.GetCriminalProof(nodeID)
	require.False(ok)
	_, ok = past.NewCache().GetCriminalProof(nodeID)
	require.False(ok)

	proofs := c.p.PendingProofs(c.view)
	require.Len(proofs, 1)
	require.True(c.p.CheckTx(c.view, proofs[0]).Ok)

	ban := c.block(2, 0, proofs...)
	c.mustConnect(ban)
	node := c.view.GetMasternode(nodeID)
	require.Equal(int64(2), node.BanHeight)
	require.Equal(proofs[0].Hash(), node.BanTx)
	require.Empty(c.view.GetUnpunishedCriminals(ledger.Page{}))

	// unbanned again when the ban is disconnected
	require.NoError(c.disconnect(ban))
	require.Equal(int64(-1), c.view.GetMasternode(nodeID).BanHeight)
	require.Len(c.view.GetUnpunishedCriminals(ledger.Page{}), 1)
}

func TestTeamRotation(t *testing.T) {
	require := require.New(t)
	rules := opera.FakeNetRules()
	rules.Masternodes.TeamSize = 2
	c := newTestChain(t, rules)
	interval := rules.Masternodes.TeamRotationInterval

	for h := idx.Block(1); h <= interval; h++ {
		b := c.block(int(h%3)+1, 0)
		cache := c.view.NewCache()
		state, err := c.p.ConnectBlock(cache, b)
		require.NoError(err)
		require.NoError(cache.Flush())
		require.Equal(h == interval, state.Rotated, "height %d", h)
		if state.Rotated {
			require.Len(state.Team, 2)
			require.Equal(ledger.Team(state.Team), c.view.GetCurrentTeam())
		}
	}
}

func TestCheckTx(t *testing.T) {
	require := require.New(t)
	c := newTestChain(t, opera.FakeNetRules())

	overdraft := customTx(t, &customtx.AccountToAccountMessage{From: owner(2), To: customtx.Recipients{
		{To: owner(3), Amounts: ledger.Balances{{Token: 0, Amount: 10}}},
	}}, 0, []inter.OutPoint{c.genesisCoin(2)})
	require.Equal(ledger.NotEnoughBalance, c.p.CheckTx(c.view, overdraft).Code)

	deposit := customTx(t, &customtx.UtxosToAccountMessage{To: customtx.Recipients{
		{To: owner(1), Amounts: ledger.Balances{{Token: 0, Amount: 50}}},
	}}, 50, []inter.OutPoint{c.genesisCoin(1)})
	require.True(c.p.CheckTx(c.view, deposit).Ok)
	// checking leaves no trace
	require.Equal(int64(0), c.view.GetBalance(owner(1), 0))
	_, ok := c.view.GetCoin(c.genesisCoin(1))
	require.True(ok)

	plain := &inter.Transaction{Inputs: []inter.TxIn{{Prev: c.genesisCoin(3)}}, Outputs: []inter.TxOut{{Amount: 1, Script: owner(3)}}}
	require.True(c.p.CheckTx(c.view, plain).Ok)

	require.Equal(ledger.Rejected, c.p.CheckTx(ledger.NewView(memorydb.New()), plain).Code)
}

func TestLockedCollateral(t *testing.T) {
	require := require.New(t)
	rules := opera.FakeNetRules()
	c := newTestChain(t, rules)
	mn := rules.Masternodes

	create := customTx(t, &customtx.CreateMasternodeMessage{OperatorType: 1, OperatorAuthAddress: opera.FakeKeyID(40)},
		mn.CreationFee, []inter.OutPoint{c.genesisCoin(1)}, inter.TxOut{Amount: mn.Collateral, Script: owner(41)})
	c.mustConnect(c.block(1, 0, create))
	require.NotNil(c.view.GetMasternode(create.Hash()))

	spend := &inter.Transaction{
		Inputs:  []inter.TxIn{{Prev: inter.OutPoint{TxHash: create.Hash(), Index: 1}}},
		Outputs: []inter.TxOut{{Amount: mn.Collateral, Script: owner(41)}},
	}
	require.Equal(ledger.Forbidden, c.p.CheckTx(c.view, spend).Code)
	require.ErrorIs(c.connect(c.block(2, 0, spend)), ErrLockedCollateral)
}

func TestHistoryWindow(t *testing.T) {
	require := require.New(t)
	rules := opera.FakeNetRules()
	rules.Masternodes.HistoryFrame = 4
	c := newTestChain(t, rules)

	var deposits []*inter.Transaction
	for h := 1; h <= 8; h++ {
		var txs []*inter.Transaction
		if h <= 3 {
			tx := customTx(t, &customtx.UtxosToAccountMessage{To: customtx.Recipients{
				{To: owner(h), Amounts: ledger.Balances{{Token: 0, Amount: int64(h)}}},
			}}, int64(h), []inter.OutPoint{c.genesisCoin(h)})
			txs = append(txs, tx)
			deposits = append(deposits, tx)
		}
		c.mustConnect(c.block(1, 0, txs...))
	}
	require.Len(deposits, 3)

	_, err := c.view.HistoryAt(3)
	require.Error(err)

	past, err := c.view.HistoryAt(4)
	require.NoError(err)
	tip, ok := past.GetTip()
	require.True(ok)
	require.Equal(idx.Block(4), tip.Height)
	require.Equal(int64(3), past.GetBalance(owner(3), 0))
	require.Equal(uint64(4), past.GetMasternode(genesis.MasternodeID(0)).MintedBlocks)
	require.Equal(uint64(8), c.view.GetMasternode(genesis.MasternodeID(0)).MintedBlocks)
}
