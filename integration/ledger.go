package integration

import (
	"path/filepath"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/Fantom-foundation/lachesis-base/kvdb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/flushable"
	"github.com/Fantom-foundation/lachesis-base/kvdb/leveldb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/memorydb"
	"github.com/Fantom-foundation/lachesis-base/kvdb/table"
	"github.com/pkg/errors"

	"github.com/rony4d/go-opera-ledger/blockproc"
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/iblockproc"
	"github.com/rony4d/go-opera-ledger/inter/ibr"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/logger"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/opera/genesis"
)

var (
	// ErrGenesisMismatch is returned when a genesis of another network is
	// applied.
	ErrGenesisMismatch = errors.New("genesis is for another network")
	// ErrNoBlock is returned when the tip block body is not stored.
	ErrNoBlock = errors.New("block is not stored")
)

// Config locates and sizes the ledger database.
type Config struct {
	// DataDir holds the database. Empty keeps everything in memory.
	DataDir string
	Preset  PresetConfig
}

// Ledger is an open ledger database with its block processor. It is safe
// for concurrent use: blocks are connected one at a time and readers see
// the state between blocks.
type Ledger struct {
	logger.Instance

	cfg   Config
	rules opera.Rules

	mu        sync.RWMutex
	raw       kvdb.Store
	store     *flushable.Flushable
	blocks    kvdb.Store
	state     *ledger.View
	proc      *blockproc.Processor
	unflushed int
}

// Open opens or creates the ledger database of cfg for the network of
// rules. The preset may shorten or disable undo pruning.
func Open(cfg Config, rules opera.Rules) (*Ledger, error) {
	if cfg.Preset.KeepAll {
		rules.Masternodes.HistoryFrame = 0
	} else if cfg.Preset.HistoryFrame != 0 {
		rules.Masternodes.HistoryFrame = cfg.Preset.HistoryFrame
	}
	if cfg.Preset.FlushEvery <= 0 {
		cfg.Preset.FlushEvery = 1
	}

	var raw kvdb.Store
	if cfg.DataDir == "" {
		raw = memorydb.New()
	} else {
		db, err := leveldb.New(filepath.Join(cfg.DataDir, "ledger"), cfg.Preset.CacheMB, cfg.Preset.Handles, nil, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "open ledger database in %s", cfg.DataDir)
		}
		raw = db
	}
	store := flushable.Wrap(raw)

	l := &Ledger{
		Instance: logger.New("ledger"),
		cfg:      cfg,
		rules:    rules,
		raw:      raw,
		store:    store,
		blocks:   table.New(store, []byte("b")),
		state:    ledger.NewView(table.New(store, []byte("L"))),
		proc:     blockproc.New(rules),
	}
	if tip, ok := l.state.GetTip(); ok {
		l.Log.Info("Opened ledger", "network", rules.Name, "height", tip.Height, "hash", tip.Hash.Hex())
	} else {
		l.Log.Info("Opened empty ledger", "network", rules.Name)
	}
	return l, nil
}

// Rules returns the effective rules, preset overrides included.
func (l *Ledger) Rules() opera.Rules {
	return l.rules
}

// ApplyGenesis writes g into an empty ledger and flushes it to disk.
func (l *Ledger) ApplyGenesis(g *genesis.Genesis) (ledger.Tip, error) {
	if g.Network != l.rules.Name {
		return ledger.Tip{}, errors.Wrapf(ErrGenesisMismatch, "genesis %q, ledger %q", g.Network, l.rules.Name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.state.NewCache()
	tip, err := g.Apply(cache)
	if err != nil {
		cache.Discard()
		return ledger.Tip{}, err
	}
	if err := cache.Flush(); err != nil {
		return ledger.Tip{}, err
	}
	if err := l.flush(); err != nil {
		return ledger.Tip{}, err
	}
	l.Log.Info("Applied genesis", "network", g.Network, "hash", tip.Hash.Hex(),
		"masternodes", len(g.Masternodes), "tokens", len(g.Tokens))
	return tip, nil
}

// Tip returns the last connected block.
func (l *Ledger) Tip() (ledger.Tip, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.GetTip()
}

func blockKey(n idx.Block) []byte {
	return bigendian.Uint64ToBytes(uint64(n))
}

// ConnectBlock applies b on top of the tip and stores its record. A block
// that fails leaves the ledger untouched.
func (l *Ledger) ConnectBlock(b *inter.Block) (*iblockproc.BlockState, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cache := l.state.NewCache()
	state, err := l.proc.ConnectBlock(cache, b)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	rec := ibr.FullBlockRecord{Block: b, State: state.Hash()}
	raw, err := rec.MarshalBinary()
	if err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "encode block record")
	}
	// the record goes first, so the state is never ahead of the stored blocks
	key := blockKey(b.Header.Height)
	if err := l.blocks.Put(key, raw); err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "store block record")
	}
	if err := cache.Flush(); err != nil {
		_ = l.blocks.Delete(key)
		return nil, err
	}
	l.unflushed++
	if l.unflushed >= l.cfg.Preset.FlushEvery {
		if err := l.flush(); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// GetBlock returns a connected block that is still stored.
func (l *Ledger) GetBlock(n idx.Block) (*inter.Block, error) {
	rec, err := l.GetBlockRecord(n)
	if err != nil {
		return nil, err
	}
	return rec.Block, nil
}

// GetBlockRecord returns the record of a connected block.
func (l *Ledger) GetBlockRecord(n idx.Block) (*ibr.IdxFullBlockRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.getRecord(n)
}

func (l *Ledger) getRecord(n idx.Block) (*ibr.IdxFullBlockRecord, error) {
	raw, err := l.blocks.Get(blockKey(n))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrapf(ErrNoBlock, "block %d", n)
	}
	rec := &ibr.IdxFullBlockRecord{Idx: n}
	if err := rec.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrapf(err, "decode block %d", n)
	}
	return rec, nil
}

// DisconnectTip reverts the tip block and returns it.
func (l *Ledger) DisconnectTip() (*inter.Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip, ok := l.state.GetTip()
	if !ok {
		return nil, blockproc.ErrNoGenesis
	}
	rec, err := l.getRecord(tip.Height)
	if err != nil {
		return nil, err
	}
	b := rec.Block
	cache := l.state.NewCache()
	if err := l.proc.DisconnectBlock(cache, b); err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Flush(); err != nil {
		return nil, err
	}
	if err := l.blocks.Delete(blockKey(tip.Height)); err != nil {
		return nil, err
	}
	l.unflushed++
	if err := l.flush(); err != nil {
		return nil, err
	}
	return b, nil
}

// CheckTx tells whether tx would be accepted in the next block.
func (l *Ledger) CheckTx(tx *inter.Transaction) ledger.Res {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.proc.CheckTx(l.state, tx)
}

// PendingProofs returns the proof transactions the next block should carry.
func (l *Ledger) PendingProofs() []*inter.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.proc.PendingProofs(l.state)
}

// Read runs fn against the current state. fn must not keep the view or
// write to it.
func (l *Ledger) Read(fn func(view *ledger.View) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cache := l.state.NewCache()
	defer cache.Discard()
	return fn(cache)
}

// ReadAt runs fn against the state right after block height.
func (l *Ledger) ReadAt(height idx.Block, fn func(view *ledger.View) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	view, err := l.state.HistoryAt(height)
	if err != nil {
		return errors.Wrapf(err, "state at %d", height)
	}
	return fn(view)
}

// Flush writes buffered blocks to disk.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flush()
}

func (l *Ledger) flush() error {
	if l.unflushed == 0 && l.store.NotFlushedPairs() == 0 {
		return nil
	}
	if err := l.store.Flush(); err != nil {
		return errors.Wrap(err, "flush ledger")
	}
	l.Log.Debug("Flushed ledger", "blocks", l.unflushed)
	l.unflushed = 0
	return nil
}

// Close flushes and closes the database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.flush(); err != nil {
		return err
	}
	return l.raw.Close()
}
