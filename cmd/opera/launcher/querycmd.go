package launcher

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-ledger/flags"
	"github.com/rony4d/go-opera-ledger/ledger"
)

func queryCommand(name, usage string, fn func(q *query) error) cli.Command {
	return cli.Command{
		Name:   name,
		Usage:  usage,
		Flags:  append(flags.NodeFlags(), flags.QueryFlags()...),
		Action: nodeAction(runQuery(fn)),
	}
}

var (
	tipCommand         = queryCommand("tip", "Print the last connected block", printTip)
	masternodesCommand = queryCommand("masternodes", "List masternodes with their state", printMasternodes)
	tokensCommand      = queryCommand("tokens", "List tokens with their supply", printTokens)
	balancesCommand    = queryCommand("balances", "List account balances", printBalances)
	ordersCommand      = queryCommand("orders", "List open orders", printOrders)
	oraclesCommand     = queryCommand("oracles", "List appointed oracles", printOracles)
	pricesCommand      = queryCommand("prices", "List posted prices", printPrices)
	teamCommand        = queryCommand("team", "List the operators of the current team", printTeam)
	proofsCommand      = queryCommand("proofs", "List unpunished double sign proofs", printProofs)
	anchorsCommand     = queryCommand("anchors", "List rewarded anchors", printAnchors)
)

// query is one read of the state at a fixed height.
type query struct {
	n      *node
	view   *ledger.View
	height idx.Block
	page   ledger.Page
	out    io.Writer
}

func runQuery(fn func(q *query) error) func(ctx *cli.Context, n *node) error {
	return func(ctx *cli.Context, n *node) error {
		tip, ok := n.ledger.Tip()
		if !ok {
			return errors.New("ledger has no genesis, run init first")
		}
		q := &query{
			n:      n,
			height: tip.Height,
			page:   ledger.Page{Limit: ctx.Int("limit")},
			out:    ctx.App.Writer,
		}
		if h := ctx.Int64("height"); h >= 0 && idx.Block(h) != tip.Height {
			if idx.Block(h) > tip.Height {
				return fmt.Errorf("height %d is above the tip %d", h, tip.Height)
			}
			q.height = idx.Block(h)
			return n.ledger.ReadAt(q.height, func(view *ledger.View) error {
				q.view = view
				return fn(q)
			})
		}
		return n.ledger.Read(func(view *ledger.View) error {
			q.view = view
			return fn(q)
		})
	}
}

func (q *query) table(header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(q.out)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	return t
}

func i64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func height(v int64) string {
	if v < 0 {
		return "-"
	}
	return i64(v)
}

func printTip(q *query) error {
	tip, _ := q.view.GetTip()
	fmt.Fprintf(q.out, "%d %s\n", tip.Height, tip.Hash.Hex())
	return nil
}

func printMasternodes(q *query) error {
	rules := q.n.ledger.Rules().Masternodes
	t := q.table("ID", "Owner", "Operator", "State", "Minted", "Created", "Resigned", "Banned")
	for _, e := range q.view.ListMasternodes(q.page) {
		m := e.Node
		t.Append([]string{
			e.ID.Hex(),
			m.OwnerAuthAddress.String(),
			m.OperatorAuthAddress.String(),
			m.State(q.height, rules).String(),
			strconv.FormatUint(m.MintedBlocks, 10),
			height(m.CreationHeight),
			height(m.ResignHeight),
			height(m.BanHeight),
		})
	}
	t.Render()
	return nil
}

func printTokens(q *query) error {
	t := q.table("ID", "Symbol", "Name", "Supply", "Limit", "Mintable", "Tradeable", "Price", "Destroyed")
	for _, e := range q.view.ListTokens(q.page) {
		tok := e.Token
		price := "-"
		if p, ok := q.view.GetPrice(e.ID, q.height); ok {
			price = i64(p)
		}
		t.Append([]string{
			strconv.FormatUint(uint64(e.ID), 10),
			tok.Symbol,
			tok.Name,
			i64(q.view.GetSupply(e.ID)),
			i64(tok.Limit),
			strconv.FormatBool(tok.Mintable),
			strconv.FormatBool(tok.Tradeable),
			price,
			height(tok.DestructionHeight),
		})
	}
	t.Render()
	return nil
}

func printBalances(q *query) error {
	t := q.table("Owner", "Token", "Amount")
	for _, e := range q.view.ListAccounts(q.page) {
		t.Append([]string{e.Owner.String(), strconv.FormatUint(uint64(e.Token), 10), i64(e.Amount)})
	}
	t.Render()
	return nil
}

func printOrders(q *query) error {
	t := q.table("ID", "Owner", "Give", "Take", "Premium", "Created", "Expired")
	for _, e := range q.view.ListOrders(q.page) {
		o := e.Order
		t.Append([]string{
			e.ID.Hex(),
			o.Owner.String(),
			fmt.Sprintf("%d@%d", o.Give.Amount, o.Give.Token),
			fmt.Sprintf("%d@%d", o.Take.Amount, o.Take.Token),
			i64(o.Premium),
			height(o.CreationHeight),
			strconv.FormatBool(o.IsExpired(q.height + 1)),
		})
	}
	t.Render()
	return nil
}

func printOracles(q *query) error {
	t := q.table("Oracle", "Weight")
	for _, e := range q.view.ListOracles(q.page) {
		t.Append([]string{e.Oracle.String(), i64(e.Weight)})
	}
	t.Render()
	return nil
}

func printPrices(q *query) error {
	t := q.table("Token", "Oracle", "Price", "Posted", "Valid until")
	for _, e := range q.view.ListPrices(q.page) {
		t.Append([]string{
			strconv.FormatUint(uint64(e.Token), 10),
			e.Oracle.String(),
			i64(e.Point.Price),
			height(e.Point.Height),
			height(e.Point.ValidUntil),
		})
	}
	t.Render()
	return nil
}

func printTeam(q *query) error {
	for _, op := range q.view.GetCurrentTeam() {
		fmt.Fprintln(q.out, op.String())
	}
	return nil
}

func printProofs(q *query) error {
	t := q.table("Node", "Height", "First", "Second")
	for _, e := range q.view.GetUnpunishedCriminals(q.page) {
		t.Append([]string{
			e.ID.Hex(),
			strconv.FormatUint(uint64(e.Proof.Pair[0].Height), 10),
			e.Proof.Pair[0].Hash().Hex(),
			e.Proof.Pair[1].Hash().Hex(),
		})
	}
	t.Render()
	return nil
}

func printAnchors(q *query) error {
	t := q.table("Anchor", "Reward")
	for _, e := range q.view.ListAnchorRewards(q.page) {
		t.Append([]string{e.Anchor.Hex(), e.Reward.Hex()})
	}
	t.Render()
	return nil
}
