package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// StoreFlags tune the ledger database and its history.

func StoreFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset",
			Usage: "Storage profile (lite|full|archive|default)",
			Value: "default",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the database cache",
			Value: 1024,
		},
		cli.IntFlag{
			Name:  "handles",
			Usage: "Number of open files the database may use",
			Value: 512,
		},
		cli.IntFlag{
			Name:  "flush.every",
			Usage: "Number of blocks buffered in memory between disk writes",
			Value: 10,
		},
		cli.Uint64Flag{
			Name:  "history.frame",
			Usage: "Number of blocks of undo records kept (0 uses the network default)",
		},
		cli.BoolFlag{
			Name:  "history.all",
			Usage: "Keep every undo record",
		},
	}
}

// QueryFlags narrow the output of the inspection commands.

func QueryFlags() []cli.Flag {
	return []cli.Flag{
		cli.Int64Flag{
			Name:  "height",
			Usage: "Read the state right after this block (-1 is the tip)",
			Value: -1,
		},
		cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of entries to print (0 prints all)",
		},
	}
}
