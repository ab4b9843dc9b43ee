package launcher

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-ledger/customtx"
	"github.com/rony4d/go-opera-ledger/flags"
	"github.com/rony4d/go-opera-ledger/inter"
)

// maxLineSize bounds one hex encoded block in a block file.
const maxLineSize = 64 * 1024 * 1024

var (
	initCommand = cli.Command{
		Name:      "init",
		Usage:     "Write the genesis into an empty ledger",
		ArgsUsage: " ",
		Flags:     flags.NodeFlags(),
		Action:    nodeAction(initLedger),
		Description: `
Applies the genesis file given by --genesis, or a generated one with
--fakenet N, to the database in --datadir.`,
	}
	importCommand = cli.Command{
		Name:      "import",
		Usage:     "Connect the blocks of a block file",
		ArgsUsage: "<file>",
		Flags:     flags.NodeFlags(),
		Action:    nodeAction(importBlocks),
		Description: `
Each line of the file is one hex encoded block. Import stops at the first
block that cannot be connected.`,
	}
	exportCommand = cli.Command{
		Name:      "export",
		Usage:     "Write stored blocks to a block file",
		ArgsUsage: "<file> [<from> [<to>]]",
		Flags:     flags.NodeFlags(),
		Action:    nodeAction(exportBlocks),
	}
	rollbackCommand = cli.Command{
		Name:      "rollback",
		Usage:     "Disconnect blocks from the tip",
		ArgsUsage: "[<count>]",
		Flags:     flags.NodeFlags(),
		Action:    nodeAction(rollback),
	}
	checkTxCommand = cli.Command{
		Name:      "checktx",
		Usage:     "Check whether a transaction would be accepted in the next block",
		ArgsUsage: "<hex>",
		Flags:     flags.NodeFlags(),
		Action:    nodeAction(checkTx),
	}
)

func initLedger(ctx *cli.Context, n *node) error {
	g, err := n.cfg.Genesis()
	if err != nil {
		return err
	}
	tip, err := n.ledger.ApplyGenesis(g)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "genesis %s applied to %s\n", tip.Hash.Hex(), n.cfg.DataDir)
	return nil
}

// readBlocks calls fn for each block of a block file.
func readBlocks(r io.Reader, fn func(b *inter.Block) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		raw, err := hexutil.Decode(text)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		b := new(inter.Block)
		if err := b.UnmarshalBinary(raw); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		if err := fn(b); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
	return scanner.Err()
}

// writeBlock appends b to a block file.
func writeBlock(w io.Writer, b *inter.Block) error {
	raw, err := b.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hexutil.Encode(raw))
	return err
}

func importBlocks(ctx *cli.Context, n *node) error {
	if ctx.NArg() != 1 {
		return errors.New("expected one block file")
	}
	f, err := os.Open(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	var connected, refused int
	err = readBlocks(f, func(b *inter.Block) error {
		state, err := n.ledger.ConnectBlock(b)
		if err != nil {
			return err
		}
		connected++
		refused += len(state.Rejected)
		return nil
	})
	if flushErr := n.ledger.Flush(); err == nil {
		err = flushErr
	}
	log.Info("Imported blocks", "blocks", connected, "refused txs", refused)
	return err
}

func parseHeight(s string) (idx.Block, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad height %q", s)
	}
	return idx.Block(v), nil
}

func exportBlocks(ctx *cli.Context, n *node) error {
	if ctx.NArg() < 1 {
		return errors.New("expected a block file")
	}
	tip, ok := n.ledger.Tip()
	if !ok {
		return errors.New("ledger has no genesis")
	}
	from, to := idx.Block(1), tip.Height
	var err error
	if ctx.NArg() > 1 {
		if from, err = parseHeight(ctx.Args().Get(1)); err != nil {
			return err
		}
	}
	if ctx.NArg() > 2 {
		if to, err = parseHeight(ctx.Args().Get(2)); err != nil {
			return err
		}
	}

	if from == 0 {
		from = 1 // genesis has no block body
	}

	f, err := os.Create(ctx.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for h := from; h <= to; h++ {
		b, err := n.ledger.GetBlock(h)
		if err != nil {
			return err
		}
		if err := writeBlock(w, b); err != nil {
			return err
		}
	}
	log.Info("Exported blocks", "from", from, "to", to)
	return w.Flush()
}

func rollback(ctx *cli.Context, n *node) error {
	count := idx.Block(1)
	if ctx.NArg() > 0 {
		c, err := parseHeight(ctx.Args().First())
		if err != nil {
			return err
		}
		count = c
	}
	for i := idx.Block(0); i < count; i++ {
		b, err := n.ledger.DisconnectTip()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "disconnected %d %s\n", b.Header.Height, b.Hash().Hex())
	}
	return nil
}

func checkTx(ctx *cli.Context, n *node) error {
	if ctx.NArg() != 1 {
		return errors.New("expected one hex encoded transaction")
	}
	raw, err := hexutil.Decode(ctx.Args().First())
	if err != nil {
		return err
	}
	tx := new(inter.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return err
	}
	t, _ := customtx.GuessTxType(tx)
	res := n.ledger.CheckTx(tx)
	fmt.Fprintf(ctx.App.Writer, "%s %s: %s\n", tx.Hash().Hex(), t, res)
	if !res.Ok {
		return res.Err()
	}
	return nil
}
