package launcher

import (
	"path/filepath"

	"github.com/rony4d/go-opera-ledger/integration"
	"github.com/rony4d/go-opera-ledger/logger"
)

// NetworkConfig selects the rules and the genesis of the chain.
type NetworkConfig struct {
	Name    string // main, test or fake
	Genesis string // genesis TOML file read by init
	// FakeNet, when positive, switches to the fake network with that many
	// generated genesis masternodes.
	FakeNet int
}

// MetricsConfig exposes the Prometheus registry over HTTP.
type MetricsConfig struct {
	Enabled bool
	Addr    string
	Port    int
}

// DefaultConfig is the configuration before the config file and flags are
// applied.
func DefaultConfig() Config {
	return Config{
		DataDir: filepath.Join(GuessHomeDir(), ".opera-ledger"),
		Network: NetworkConfig{
			Name: "main",
		},
		Store: integration.DefaultPreset(),
		Log:   logger.DefaultConfig(),
		Metrics: MetricsConfig{
			Addr: "127.0.0.1",
			Port: 6060,
		},
	}
}
