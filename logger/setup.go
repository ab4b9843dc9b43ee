package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects the level, format and destination of the root logger.
type Config struct {
	// Verbosity is 0 (crit) to 5 (trace).
	Verbosity int
	// Format is "text" or "json".
	Format string
	Color  bool

	// File, when set, receives the records instead of stderr and is rotated
	// once it grows past MaxSizeMB.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// SentryDSN, when set, forwards errors to Sentry.
	SentryDSN string
}

// DefaultConfig logs info and above to stderr as text.
func DefaultConfig() Config {
	return Config{
		Verbosity:  int(log.LvlInfo),
		Format:     "text",
		MaxSizeMB:  100,
		MaxBackups: 10,
		MaxAgeDays: 30,
	}
}

func (c Config) format() (log.Format, error) {
	switch c.Format {
	case "", "text":
		return log.TerminalFormat(c.Color), nil
	case "json":
		return log.JSONFormat(), nil
	}
	return nil, fmt.Errorf("unknown log format %q", c.Format)
}

// Handler builds the handler described by c. The returned closer releases
// the log file, if any.
func (c Config) Handler() (log.Handler, io.Closer, error) {
	if c.Verbosity < int(log.LvlCrit) || c.Verbosity > int(log.LvlTrace) {
		return nil, nil, fmt.Errorf("verbosity %d out of range", c.Verbosity)
	}
	format, err := c.format()
	if err != nil {
		return nil, nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if c.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   true,
		}
		out, closer = rotating, rotating
	}

	handler := log.StreamHandler(out, format)
	if c.SentryDSN != "" {
		sentry, err := SentryHandler(c.SentryDSN)
		if err != nil {
			return nil, nil, errors.Wrap(err, "sentry")
		}
		handler = log.MultiHandler(handler, sentry)
	}
	return log.LvlFilterHandler(log.Lvl(c.Verbosity), handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SetupRoot installs the handler described by c on the root logger.
func SetupRoot(c Config) (io.Closer, error) {
	handler, closer, err := c.Handler()
	if err != nil {
		return nil, err
	}
	log.Root().SetHandler(handler)
	return closer, nil
}
