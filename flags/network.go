package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags select the consensus rules and the genesis.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules to apply (main|test|fake)",
			Value: "main",
		},
		cli.StringFlag{
			Name:  "genesis",
			Usage: "Genesis TOML file used by init",
		},
		cli.IntFlag{
			Name:  "fakenet",
			Usage: "Use the fake network with N generated genesis masternodes",
		},
	}
}
