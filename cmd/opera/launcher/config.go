package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-ledger/integration"
	"github.com/rony4d/go-opera-ledger/logger"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/opera/genesis"
)

// Config aggregates everything the launcher needs.
type Config struct {
	DataDir string
	Network NetworkConfig
	Store   integration.PresetConfig
	Log     logger.Config
	Metrics MetricsConfig
}

// MakeAllConfigs merges defaults, the optional config file, then CLI flag
// overrides.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := DefaultConfig()

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return cfg, err
	}
	if _, err := cfg.Rules(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrapf(err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.IsSet("datadir") {
		cfg.DataDir = ctx.String("datadir")
	}
	cfg.DataDir = resolvePath(cfg.DataDir)

	if ctx.IsSet("network") {
		cfg.Network.Name = ctx.String("network")
	}
	if ctx.IsSet("genesis") {
		cfg.Network.Genesis = ctx.String("genesis")
	}
	if ctx.IsSet("fakenet") {
		cfg.Network.FakeNet = ctx.Int("fakenet")
	}

	if ctx.IsSet("preset") {
		preset, err := integration.GetPresetByName(ctx.String("preset"))
		if err != nil {
			return err
		}
		integration.ApplyPreset(&cfg.Store, preset)
	}
	if ctx.IsSet("cache") {
		cfg.Store.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("handles") {
		cfg.Store.Handles = ctx.Int("handles")
	}
	if ctx.IsSet("flush.every") {
		cfg.Store.FlushEvery = ctx.Int("flush.every")
	}
	if ctx.IsSet("history.frame") {
		cfg.Store.HistoryFrame = idx.Block(ctx.Uint64("history.frame"))
	}
	if ctx.IsSet("history.all") {
		cfg.Store.KeepAll = ctx.Bool("history.all")
	}

	if ctx.IsSet("log.format") {
		cfg.Log.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Log.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Log.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("log.file") {
		cfg.Log.File = resolvePath(ctx.String("log.file"))
	}
	if ctx.IsSet("log.sentry") {
		cfg.Log.SentryDSN = ctx.String("log.sentry")
	}

	if ctx.IsSet("metrics") {
		cfg.Metrics.Enabled = ctx.Bool("metrics")
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Metrics.Addr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Metrics.Port = ctx.Int("metrics.port")
	}
	// presets may switch metrics on
	cfg.Metrics.Enabled = cfg.Metrics.Enabled || cfg.Store.EnableMetrics
	return nil
}

// Rules returns the consensus rules of the configured network.
func (c Config) Rules() (opera.Rules, error) {
	name := c.Network.Name
	if c.Network.FakeNet > 0 {
		name = "fake"
	}
	rules, ok := opera.NetworkRules(name)
	if !ok {
		return opera.Rules{}, fmt.Errorf("unknown network %q", name)
	}
	return rules, nil
}

// Genesis returns the genesis init writes.
func (c Config) Genesis() (*genesis.Genesis, error) {
	if c.Network.FakeNet > 0 {
		return genesis.FakeGenesis(c.Network.FakeNet), nil
	}
	if c.Network.Genesis == "" {
		return nil, errors.New("no genesis file, use --genesis or --fakenet")
	}
	return genesis.LoadFile(c.Network.Genesis)
}

// LedgerConfig locates the database.
func (c Config) LedgerConfig() integration.Config {
	return integration.Config{DataDir: c.DataDir, Preset: c.Store}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if p == "" {
		return p
	}
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
