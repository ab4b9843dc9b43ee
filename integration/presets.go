package integration

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

// PresetConfig captures the settings that vary across profiles.
type PresetConfig struct {
	Name    string // "lite", "full", "archive" or "default"
	CacheMB int    // leveldb cache
	Handles int    // leveldb file handles
	// FlushEvery is how many connected blocks are buffered in memory before
	// they are written to disk. 1 writes every block.
	FlushEvery int
	// HistoryFrame overrides how many blocks of undo records are kept. Zero
	// keeps them all.
	HistoryFrame  idx.Block
	KeepAll       bool // keep every undo record regardless of HistoryFrame
	EnableMetrics bool
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:          "default",
		CacheMB:       1024,
		Handles:       512,
		FlushEvery:    10,
		EnableMetrics: false,
	}
}

// LitePreset is for development machines and CI: small caches, writes to
// disk on every block and a short history.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.CacheMB = 64
	cfg.Handles = 64
	cfg.FlushEvery = 1
	cfg.HistoryFrame = 50
	cfg.EnableMetrics = true
	return cfg
}

// FullPreset is for minting nodes: large caches and the network's history
// frame.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 4096
	cfg.Handles = 2048
	cfg.FlushEvery = 20
	cfg.EnableMetrics = true
	return cfg
}

// ArchivePreset keeps every undo record so that any past height can be
// queried.
func ArchivePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "archive"
	cfg.CacheMB = 8192
	cfg.Handles = 2048
	cfg.FlushEvery = 20
	cfg.KeepAll = true
	cfg.EnableMetrics = true
	return cfg
}

// GetPresetByName looks a preset up by name.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "archive":
		return ArchivePreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: lite, full, archive, default)", name)
	}
}

// ApplyPreset merges preset into target. Zero numeric fields of preset
// leave target alone; booleans are always copied.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.Handles > 0 {
		target.Handles = preset.Handles
	}
	if preset.FlushEvery > 0 {
		target.FlushEvery = preset.FlushEvery
	}
	if preset.HistoryFrame > 0 {
		target.HistoryFrame = preset.HistoryFrame
	}
	target.KeepAll = preset.KeepAll
	target.EnableMetrics = preset.EnableMetrics
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
