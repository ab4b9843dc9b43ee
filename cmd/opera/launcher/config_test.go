package launcher

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-opera-ledger/flags"
)

// runConfigFromArgs runs MakeAllConfigs under a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.NodeFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	if err := app.Run(append([]string{"opera-ledger"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, cfgErr
}

// TestMakeAllConfigs_flagOverrides checks that every flag lands in its
// field of Config.
func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			args: nil,
			want: func(t *testing.T, cfg Config) {
				if cfg.Network.Name != "main" {
					t.Fatalf("Network = %q, want main", cfg.Network.Name)
				}
				if cfg.Store.Name != "default" {
					t.Fatalf("Preset = %q, want default", cfg.Store.Name)
				}
				if cfg.Metrics.Enabled {
					t.Fatal("metrics enabled by default")
				}
			},
		},
		{
			name: "datadir and network",
			args: []string{"--datadir", dir, "--network", "test"},
			want: func(t *testing.T, cfg Config) {
				if cfg.DataDir != dir {
					t.Fatalf("DataDir = %q, want %q", cfg.DataDir, dir)
				}
				rules, err := cfg.Rules()
				if err != nil || rules.Name != "test" {
					t.Fatalf("Rules = %v, %v, want test", rules.Name, err)
				}
			},
		},
		{
			name: "fakenet",
			args: []string{"--fakenet", "4"},
			want: func(t *testing.T, cfg Config) {
				rules, err := cfg.Rules()
				if err != nil || rules.Name != "fake" {
					t.Fatalf("Rules = %v, %v, want fake", rules.Name, err)
				}
				g, err := cfg.Genesis()
				if err != nil {
					t.Fatal(err)
				}
				if len(g.Masternodes) != 4 {
					t.Fatalf("genesis masternodes = %d, want 4", len(g.Masternodes))
				}
			},
		},
		{
			name: "preset then explicit store flags",
			args: []string{"--preset", "archive", "--cache", "128", "--flush.every", "3"},
			want: func(t *testing.T, cfg Config) {
				if cfg.Store.Name != "archive" || !cfg.Store.KeepAll {
					t.Fatalf("Store = %+v, want archive", cfg.Store)
				}
				if cfg.Store.CacheMB != 128 {
					t.Fatalf("CacheMB = %d, want 128", cfg.Store.CacheMB)
				}
				if cfg.Store.FlushEvery != 3 {
					t.Fatalf("FlushEvery = %d, want 3", cfg.Store.FlushEvery)
				}
				if !cfg.Metrics.Enabled {
					t.Fatal("archive preset should enable metrics")
				}
			},
		},
		{
			name: "history",
			args: []string{"--history.frame", "77"},
			want: func(t *testing.T, cfg Config) {
				if cfg.Store.HistoryFrame != 77 {
					t.Fatalf("HistoryFrame = %d, want 77", cfg.Store.HistoryFrame)
				}
			},
		},
		{
			name: "logging and metrics",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--metrics", "--metrics.port", "7070"},
			want: func(t *testing.T, cfg Config) {
				if cfg.Log.Format != "json" || cfg.Log.Verbosity != 5 {
					t.Fatalf("Log = %+v", cfg.Log)
				}
				if !cfg.Metrics.Enabled || cfg.Metrics.Port != 7070 {
					t.Fatalf("Metrics = %+v", cfg.Metrics)
				}
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, test.args)
			if err != nil {
				t.Fatalf("MakeAllConfigs: %v", err)
			}
			test.want(t, cfg)
		})
	}
}

func TestMakeAllConfigs_errors(t *testing.T) {
	for name, args := range map[string][]string{
		"unknown network": {"--network", "moon"},
		"unknown preset":  {"--preset", "huge"},
		"missing config":  {"--config", filepath.Join(t.TempDir(), "none.toml")},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := runConfigFromArgs(t, args); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `DataDir = "` + filepath.ToSlash(dir) + `"

[Network]
Name = "fake"

[Store]
Name = "custom"
CacheMB = 16
FlushEvery = 2

[Log]
Verbosity = 4
Format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	// flags win over the file
	cfg, err := runConfigFromArgs(t, []string{"--config", path, "--cache", "32"})
	if err != nil {
		t.Fatalf("MakeAllConfigs: %v", err)
	}
	if cfg.Network.Name != "fake" {
		t.Fatalf("Network = %q, want fake", cfg.Network.Name)
	}
	if cfg.Store.CacheMB != 32 || cfg.Store.FlushEvery != 2 || cfg.Store.Name != "custom" {
		t.Fatalf("Store = %+v", cfg.Store)
	}
	if cfg.Log.Verbosity != 4 || cfg.Log.Format != "json" {
		t.Fatalf("Log = %+v", cfg.Log)
	}

	if err := os.WriteFile(path, []byte("Unknown = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := runConfigFromArgs(t, []string{"--config", path}); err == nil {
		t.Fatal("expected an error for an unknown key")
	}
}
