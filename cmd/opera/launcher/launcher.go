package launcher

import (
	"io"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-ledger/flags"
	"github.com/rony4d/go-opera-ledger/integration"
	"github.com/rony4d/go-opera-ledger/logger"
)

// Version of the ledger node.
const Version = "0.2.0"

func newApp() *cli.App {
	app := flags.NewApp(Version)
	app.Commands = []cli.Command{
		initCommand,
		importCommand,
		exportCommand,
		rollbackCommand,
		checkTxCommand,
		tipCommand,
		masternodesCommand,
		tokensCommand,
		balancesCommand,
		ordersCommand,
		oraclesCommand,
		pricesCommand,
		teamCommand,
		proofsCommand,
		anchorsCommand,
	}
	return app
}

// Launch runs the command line.
func Launch(args []string) error {
	return newApp().Run(args)
}

// node is what every command works with: the merged configuration and the
// opened ledger.
type node struct {
	cfg    Config
	ledger *integration.Ledger

	logCloser io.Closer
	metrics   *metricsServer
}

func openNode(ctx *cli.Context) (*node, error) {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return nil, err
	}
	closer, err := logger.SetupRoot(cfg.Log)
	if err != nil {
		return nil, err
	}
	n := &node{cfg: cfg, logCloser: closer}

	if cfg.Metrics.Enabled {
		n.metrics = startMetrics(cfg.Metrics)
	}

	rules, _ := cfg.Rules()
	if err := ensureDir(cfg.DataDir); err != nil {
		n.close()
		return nil, err
	}
	n.ledger, err = integration.Open(cfg.LedgerConfig(), rules)
	if err != nil {
		n.close()
		return nil, err
	}
	return n, nil
}

func (n *node) close() {
	if n.ledger != nil {
		if err := n.ledger.Close(); err != nil {
			log.Error("Failed to close ledger", "err", err)
		}
	}
	if n.metrics != nil {
		n.metrics.stop()
	}
	_ = n.logCloser.Close()
}

// nodeAction opens the node around fn.
func nodeAction(fn func(ctx *cli.Context, n *node) error) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		n, err := openNode(ctx)
		if err != nil {
			return err
		}
		defer n.close()
		return fn(ctx, n)
	}
}
