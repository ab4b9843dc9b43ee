// Package logger wires the node's logging. Components embed an Instance and
// log through it; SetupRoot decides where the records go.
package logger

import (
	"github.com/ethereum/go-ethereum/log"
)

// Instance is the logger of a component.
type Instance struct {
	Log log.Logger
}

// New returns a logger tagged with the component name. Without a name it
// logs through the root logger.
func New(name ...string) Instance {
	if len(name) == 0 {
		return Instance{Log: log.New()}
	}
	return Instance{Log: log.New("module", name[0])}
}
