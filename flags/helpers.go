package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp creates the bare application. Commands register the flags they
// read.
func NewApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = "opera-ledger"
	app.Usage = "Masternode ledger state of the Opera DeFi chain"
	app.Version = version
	app.Writer = os.Stdout
	return app
}

// NodeFlags is every flag that shapes the node configuration.
func NodeFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, NetworkFlags()...)
	all = append(all, StoreFlags()...)
	return all
}
