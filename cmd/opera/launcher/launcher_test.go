package launcher

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/integration"
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/opera/genesis"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(append([]string{"opera-ledger"}, args...))
	return out.String(), err
}

// buildBlocks mints n empty blocks on the fake genesis in a scratch ledger,
// rotating through the genesis masternodes, and writes them to a block file.
func buildBlocks(t *testing.T, nodes, n int) string {
	l, err := integration.Open(integration.Config{Preset: integration.DefaultPreset()}, opera.FakeNetRules())
	require.NoError(t, err)
	defer l.Close()
	_, err = l.ApplyGenesis(genesis.FakeGenesis(nodes))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "blocks.hex")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for i := 0; i < n; i++ {
		minter := opera.FakeKeyID(100 + 1 + i%nodes)
		var b *inter.Block
		require.NoError(t, l.Read(func(view *ledger.View) error {
			tip, _ := view.GetTip()
			_, node, ok := view.GetMasternodeByOperator(minter)
			require.True(t, ok)
			height := tip.Height + 1
			b = &inter.Block{Header: inter.BlockHeader{
				Version:       1,
				PrevHash:      tip.Hash,
				Height:        height,
				Time:          inter.FromUnix(1600000000 + int64(height)*30),
				StakeModifier: hash.Of(bigendian.Uint64ToBytes(uint64(height))),
				MintedBlocks:  node.MintedBlocks + 1,
				Minter:        minter,
			}}
			return nil
		}))
		_, err := l.ConnectBlock(b)
		require.NoError(t, err)
		require.NoError(t, writeBlock(f, b))
	}
	return path
}

func TestLedgerCommands(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	node := []string{"--datadir", dir, "--fakenet", "3", "--log.verbosity", "1"}
	cmd := func(name string, args ...string) (string, error) {
		return run(t, append(append([]string{name}, node...), args...)...)
	}

	_, err := cmd("tip")
	require.Error(err)

	out, err := cmd("init")
	require.NoError(err)
	require.Contains(out, genesis.FakeGenesis(3).Hash().Hex())

	_, err = cmd("init")
	require.Error(err)

	blocks := buildBlocks(t, 3, 5)
	_, err = run(t, append(append([]string{"import"}, node...), blocks)...)
	require.NoError(err)

	out, err = cmd("tip")
	require.NoError(err)
	require.True(strings.HasPrefix(out, "5 "), out)

	out, err = cmd("masternodes")
	require.NoError(err)
	require.Contains(out, "ENABLED")
	require.Contains(out, opera.FakeKeyID(101).String())

	out, err = cmd("tokens")
	require.NoError(err)
	require.Contains(out, "DFI")

	out, err = cmd("team")
	require.NoError(err)
	require.Len(strings.Fields(out), opera.FakeNetRules().Masternodes.TeamSize)

	out, err = cmd("anchors")
	require.NoError(err)
	require.Contains(out, "Anchor")

	out, err = cmd("tip", "--height", "2")
	require.NoError(err)
	require.True(strings.HasPrefix(out, "2 "), out)

	_, err = cmd("tip", "--height", "9")
	require.Error(err)

	exported := filepath.Join(t.TempDir(), "export.hex")
	_, err = run(t, append(append([]string{"export"}, node...), exported, "4")...)
	require.NoError(err)
	raw, err := os.ReadFile(exported)
	require.NoError(err)
	require.Len(strings.Fields(string(raw)), 2)

	out, err = run(t, append(append([]string{"rollback"}, node...), "2")...)
	require.NoError(err)
	require.Equal(2, strings.Count(out, "disconnected"))

	// the exported tail connects again
	_, err = run(t, append(append([]string{"import"}, node...), exported)...)
	require.NoError(err)
	out, err = cmd("tip")
	require.NoError(err)
	require.True(strings.HasPrefix(out, fmt.Sprintf("%d ", 5)), out)
}

func TestReadBlocksErrors(t *testing.T) {
	for name, data := range map[string]string{
		"not hex":   "zz\n",
		"no prefix": "00\n",
		"truncated": "0x0001\n",
	} {
		t.Run(name, func(t *testing.T) {
			err := readBlocks(strings.NewReader(data), func(*inter.Block) error { return nil })
			require.Error(t, err)
		})
	}

	n := 0
	err := readBlocks(strings.NewReader("# comment\n\n"), func(*inter.Block) error {
		n++
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, n)
}
