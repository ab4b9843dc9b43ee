package integration

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/blockproc"
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/opera/genesis"
)

func openTestLedger(t *testing.T, dir string, preset PresetConfig) *Ledger {
	l, err := Open(Config{DataDir: dir, Preset: preset}, opera.FakeNetRules())
	require.NoError(t, err)
	return l
}

// nextBlock builds an empty block on the tip minted by genesis node i.
func nextBlock(t *testing.T, l *Ledger, i int) *inter.Block {
	var b *inter.Block
	require.NoError(t, l.Read(func(view *ledger.View) error {
		tip, ok := view.GetTip()
		require.True(t, ok)
		operator := opera.FakeKeyID(100 + i)
		_, node, ok := view.GetMasternodeByOperator(operator)
		require.True(t, ok)
		height := tip.Height + 1
		b = &inter.Block{Header: inter.BlockHeader{
			Version:       1,
			PrevHash:      tip.Hash,
			Height:        height,
			Time:          inter.FromUnix(1600000000 + int64(height)*30),
			StakeModifier: hash.Of(bigendian.Uint64ToBytes(uint64(height))),
			MintedBlocks:  node.MintedBlocks + 1,
			Minter:        operator,
		}}
		return nil
	}))
	return b
}

func TestLedgerInMemory(t *testing.T) {
	require := require.New(t)
	l := openTestLedger(t, "", LitePreset())
	defer l.Close()

	_, ok := l.Tip()
	require.False(ok)

	g := genesis.FakeGenesis(3)
	tip, err := l.ApplyGenesis(g)
	require.NoError(err)
	require.Equal(idx.Block(0), tip.Height)

	_, err = l.ApplyGenesis(g)
	require.ErrorIs(err, genesis.ErrAlreadyApplied)

	var blocks []*inter.Block
	for h := 1; h <= 3; h++ {
		b := nextBlock(t, l, h)
		state, err := l.ConnectBlock(b)
		require.NoError(err)
		require.Equal(b.Hash(), state.LastBlock.Hash)
		blocks = append(blocks, b)
	}
	tip, _ = l.Tip()
	require.Equal(idx.Block(3), tip.Height)

	stored, err := l.GetBlock(2)
	require.NoError(err)
	require.Equal(blocks[1].Hash(), stored.Hash())

	require.NoError(l.ReadAt(1, func(view *ledger.View) error {
		got, ok := view.GetTip()
		require.True(ok)
		require.Equal(blocks[0].Hash(), got.Hash)
		return nil
	}))

	// a block that does not extend the tip leaves the ledger untouched
	_, err = l.ConnectBlock(blocks[0])
	require.ErrorIs(err, blockproc.ErrNotNext)

	rec, err := l.GetBlockRecord(3)
	require.NoError(err)
	require.Equal(idx.Block(3), rec.Idx)

	b, err := l.DisconnectTip()
	require.NoError(err)
	require.Equal(blocks[2].Hash(), b.Hash())
	tip, _ = l.Tip()
	require.Equal(blocks[1].Hash(), tip.Hash)
	_, err = l.GetBlock(3)
	require.ErrorIs(err, ErrNoBlock)

	// reconnecting the same block to the same state gives the same record
	_, err = l.ConnectBlock(b)
	require.NoError(err)
	again, err := l.GetBlockRecord(3)
	require.NoError(err)
	require.Equal(rec.Hash(), again.Hash())
}

var errDiskFull = errors.New("disk full")

// readOnlyStore refuses every write.
type readOnlyStore struct {
	kvdb.Store
}

func (readOnlyStore) Put(key []byte, value []byte) error {
	return errDiskFull
}

func TestLedgerBlockRecordFailure(t *testing.T) {
	require := require.New(t)
	l := openTestLedger(t, "", LitePreset())
	defer l.Close()
	_, err := l.ApplyGenesis(genesis.FakeGenesis(3))
	require.NoError(err)

	b := nextBlock(t, l, 1)
	blocks := l.blocks
	l.blocks = readOnlyStore{blocks}
	_, err = l.ConnectBlock(b)
	require.ErrorIs(err, errDiskFull)

	// the state did not move past the stored blocks
	tip, _ := l.Tip()
	require.Equal(idx.Block(0), tip.Height)
	require.NoError(l.Read(func(view *ledger.View) error {
		_, node, ok := view.GetMasternodeByOperator(opera.FakeKeyID(101))
		require.True(ok)
		require.Zero(node.MintedBlocks)
		return nil
	}))

	l.blocks = blocks
	_, err = l.ConnectBlock(b)
	require.NoError(err)
	got, err := l.DisconnectTip()
	require.NoError(err)
	require.Equal(b.Hash(), got.Hash())
}

func TestLedgerGenesisMismatch(t *testing.T) {
	l, err := Open(Config{Preset: DefaultPreset()}, opera.MainNetRules())
	require.NoError(t, err)
	defer l.Close()

	_, err = l.ApplyGenesis(genesis.FakeGenesis(1))
	require.ErrorIs(t, err, ErrGenesisMismatch)
}

func TestLedgerReopen(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	preset := LitePreset()
	preset.FlushEvery = 5

	l := openTestLedger(t, dir, preset)
	_, err := l.ApplyGenesis(genesis.FakeGenesis(3))
	require.NoError(err)
	var last *inter.Block
	for h := 1; h <= 2; h++ {
		last = nextBlock(t, l, h)
		_, err = l.ConnectBlock(last)
		require.NoError(err)
	}
	require.NoError(l.Close())

	l = openTestLedger(t, dir, preset)
	defer l.Close()
	tip, ok := l.Tip()
	require.True(ok)
	require.Equal(idx.Block(2), tip.Height)
	require.Equal(last.Hash(), tip.Hash)

	require.NoError(l.Read(func(view *ledger.View) error {
		_, node, ok := view.GetMasternodeByOperator(opera.FakeKeyID(102))
		require.True(ok)
		require.Equal(uint64(1), node.MintedBlocks)
		return nil
	}))
}

func TestPresetHistory(t *testing.T) {
	require := require.New(t)

	l := openTestLedger(t, "", ArchivePreset())
	defer l.Close()
	require.Equal(idx.Block(0), l.Rules().Masternodes.HistoryFrame)

	lite := openTestLedger(t, "", LitePreset())
	defer lite.Close()
	require.Equal(idx.Block(50), lite.Rules().Masternodes.HistoryFrame)

	def := openTestLedger(t, "", DefaultPreset())
	defer def.Close()
	require.Equal(opera.FakeNetRules().Masternodes.HistoryFrame, def.Rules().Masternodes.HistoryFrame)
}
