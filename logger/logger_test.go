package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestConfigHandler(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  func(*Config)
		ok   bool
	}{
		{"default", func(*Config) {}, true},
		{"json", func(c *Config) { c.Format = "json" }, true},
		{"unknown format", func(c *Config) { c.Format = "xml" }, false},
		{"too verbose", func(c *Config) { c.Verbosity = 6 }, false},
		{"negative", func(c *Config) { c.Verbosity = -1 }, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.cfg(&cfg)
			h, closer, err := cfg.Handler()
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, h)
			require.NoError(t, closer.Close())
		})
	}
}

func TestFileOutput(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "node.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Format = "json"

	h, closer, err := cfg.Handler()
	require.NoError(err)
	l := log.New("module", "test")
	l.SetHandler(h)
	l.Info("block connected", "height", 7)
	l.Debug("filtered out")
	require.NoError(closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(err)
	require.Contains(string(data), "block connected")
	require.Contains(string(data), `"height":7`)
	require.NotContains(string(data), "filtered out")
}

func TestSentryForwardsErrors(t *testing.T) {
	require := require.New(t)
	l, hook := test.NewNullLogger()
	h := sentryHandler(l)

	lg := log.New("module", "test")
	lg.SetHandler(h)
	lg.Info("ignored")
	lg.Warn("ignored too")
	lg.Error("flush failed", "height", 12)

	require.Len(hook.Entries, 1)
	entry := hook.LastEntry()
	require.Equal(logrus.ErrorLevel, entry.Level)
	require.Equal("flush failed", entry.Message)
	require.Equal(12, entry.Data["height"])
	require.Equal("test", entry.Data["module"])
}

func TestNew(t *testing.T) {
	require.NotNil(t, New().Log)
	require.NotNil(t, New("ledger").Log)
}
