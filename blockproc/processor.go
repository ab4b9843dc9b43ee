// Package blockproc drives the ledger along the chain. It connects blocks
// in order, disconnects them on reorganization and checks mempool
// transactions against the current state.
//
// The Processor never owns a view. Callers pass a disposable cache opened
// on the committed state and flush it only when the call succeeded.
package blockproc

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"

	"github.com/rony4d/go-opera-ledger/customtx"
	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/iblockproc"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/logger"
	"github.com/rony4d/go-opera-ledger/opera"
)

var (
	// ErrNoGenesis is returned when the view holds no chain yet.
	ErrNoGenesis = errors.New("no genesis applied")
	// ErrNotNext is returned for a block that does not extend the tip.
	ErrNotNext = errors.New("block does not extend the tip")
	// ErrNotTip is returned when disconnecting a block other than the tip.
	ErrNotTip = errors.New("block is not the tip")
	// ErrUnknownMinter is returned for a block minted by no masternode.
	ErrUnknownMinter = errors.New("minter is not a masternode")
	// ErrInactiveMinter is returned for a block minted by a node that may
	// not mint at that height.
	ErrInactiveMinter = errors.New("minter is not active")
	// ErrMintedBlocks is returned when the header's counter does not follow
	// the minter's.
	ErrMintedBlocks = errors.New("wrong minted blocks counter")
	// ErrLockedCollateral is returned for a block spending locked collateral.
	ErrLockedCollateral = errors.New("collateral is locked")
	// ErrNoUndo is returned when the tip has no undo records left.
	ErrNoUndo = errors.New("no undo records")
)

// Processor applies blocks of one network.
type Processor struct {
	logger.Instance

	rules opera.Rules
	stats *processorMetrics
}

// New returns a processor for the network of rules.
func New(rules opera.Rules) *Processor {
	return &Processor{
		Instance: logger.New("blockproc"),
		rules:    rules,
		stats:    processorStats(),
	}
}

// Rules returns the network rules the processor applies.
func (p *Processor) Rules() opera.Rules {
	return p.rules
}

func (p *Processor) checkMinter(view *ledger.View, h *inter.BlockHeader) error {
	_, node, ok := view.GetMasternodeByOperator(h.Minter)
	if !ok {
		return errors.Wrapf(ErrUnknownMinter, "block %d by %s", h.Height, h.Minter)
	}
	if !node.IsActive(h.Height, p.rules.Masternodes) {
		return errors.Wrapf(ErrInactiveMinter, "block %d by %s in state %s", h.Height, h.Minter, node.State(h.Height, p.rules.Masternodes))
	}
	if h.MintedBlocks != node.MintedBlocks+1 {
		return errors.Wrapf(ErrMintedBlocks, "block %d carries %d, minter is at %d", h.Height, h.MintedBlocks, node.MintedBlocks)
	}
	return nil
}

// ConnectBlock applies b on top of the tip of view.
//
// Every transaction is applied in its own cache and committed under its
// index, so that DisconnectBlock can revert it. A custom transaction whose
// ledger effects are refused still moves its coins; the refusal is
// reported in the returned state. Minted counters, team rotation and the
// tip are committed last, under ledger.BlockLevelTxn.
//
// The minted header itself is remembered outside undo records, so a
// conflicting header on another fork is still caught after a reorg.
func (p *Processor) ConnectBlock(view *ledger.View, b *inter.Block) (*iblockproc.BlockState, error) {
	start := time.Now()
	header := &b.Header
	height := header.Height
	blockHash := b.Hash()

	tip, ok := view.GetTip()
	if !ok {
		return nil, ErrNoGenesis
	}
	if height != tip.Height+1 || header.PrevHash != tip.Hash {
		return nil, errors.Wrapf(ErrNotNext, "block %d %s on tip %d %s", height, blockHash.Hex(), tip.Height, tip.Hash.Hex())
	}
	if err := p.checkMinter(view, header); err != nil {
		return nil, err
	}

	state := &iblockproc.BlockState{
		LastBlock: iblockproc.BlockCtx{Idx: height, Time: header.Time, Hash: blockHash},
		Minter:    header.Minter,
	}

	if offender, found := view.CheckDoubleSign(header); found {
		state.DoubleSigner = &offender
		p.stats.doubleSigns.Inc()
		p.Log.Warn("Double sign detected", "node", offender.Hex(), "height", height, "block", blockHash.Hex())
	}

	for i, tx := range b.Txs {
		if res := customtx.CheckSpends(view, tx, height, p.rules); !res.Ok {
			return nil, errors.Wrapf(ErrLockedCollateral, "tx %d %s: %s", i, tx.Hash().Hex(), res.Msg)
		}
		cache := view.NewCache()
		t, res := customtx.Apply(cache, view, tx, height, p.rules)
		if t != customtx.None {
			if res.Ok {
				state.Applied++
				p.stats.applied.WithLabelValues(t.String()).Inc()
			} else {
				cache.Discard()
				cache = view.NewCache()
				state.Rejected = append(state.Rejected, iblockproc.Rejection{
					Index: uint32(i),
					Type:  byte(t),
					Code:  uint8(res.Code),
					Msg:   res.Msg,
				})
				p.stats.rejected.WithLabelValues(t.String(), res.Code.String()).Inc()
				p.Log.Debug("Custom tx refused", "height", height, "index", i, "type", t, "code", res.Code, "msg", res.Msg)
			}
		}
		cache.SpendCoins(tx)
		cache.AddCoins(tx)
		view.CommitTx(cache, height, uint32(i))
	}

	block := view.NewCache()
	block.IncrementMintedBy(header.Minter)
	if interval := p.rules.Masternodes.TeamRotationInterval; interval != 0 && height%interval == 0 {
		block.SetTeam(block.CalcNextTeam(header.StakeModifier, height, p.rules.Masternodes))
		state.Rotated = true
	}
	block.SetTip(ledger.Tip{Height: height, Hash: blockHash})
	state.Team = block.GetCurrentTeam()
	view.CommitTx(block, height, ledger.BlockLevelTxn)

	p.prune(view, height)

	elapsed := time.Since(start)
	p.stats.connected.Inc()
	p.stats.connectTime.Observe(elapsed.Seconds())
	p.Log.Info("New block", "height", height, "hash", blockHash.Hex(), "txs", len(b.Txs),
		"applied", state.Applied, "refused", len(state.Rejected), "elapsed", elapsed)
	return state, nil
}

// prune drops bookkeeping that fell out of its window. It is not undone.
func (p *Processor) prune(view *ledger.View, height idx.Block) {
	rules := p.rules.Masternodes
	if rules.HistoryFrame != 0 && height > rules.HistoryFrame {
		if n := view.PruneUndo(height - rules.HistoryFrame + 1); n != 0 {
			p.Log.Trace("Pruned undo records", "height", height, "records", n)
		}
	}
	view.PruneCriminals(height, rules.CriminalRetention)
	view.PruneMintedHeaders(height, rules.DoubleSignInterval)
}

// DisconnectBlock reverts b, which must be the tip of view.
func (p *Processor) DisconnectBlock(view *ledger.View, b *inter.Block) error {
	tip, ok := view.GetTip()
	if !ok {
		return ErrNoGenesis
	}
	blockHash := b.Hash()
	if tip.Height != b.Header.Height || tip.Hash != blockHash {
		return errors.Wrapf(ErrNotTip, "block %d %s, tip %d %s", b.Header.Height, blockHash.Hex(), tip.Height, tip.Hash.Hex())
	}
	// the tip was credited to its minter, so the node must still be there
	if _, _, ok := view.GetMasternodeByOperator(b.Header.Minter); !ok {
		panic("blockproc: disconnecting block of unknown operator " + b.Header.Minter.String())
	}
	// the undo records take back the minted credit, bans and every tx change
	if !view.UndoHeight(tip.Height) {
		return errors.Wrapf(ErrNoUndo, "block %d", tip.Height)
	}
	p.stats.disconnected.Inc()
	p.Log.Info("Disconnected block", "height", tip.Height, "hash", blockHash.Hex())
	return nil
}

// CheckTx tells whether tx would be accepted in the next block. view is
// left untouched.
func (p *Processor) CheckTx(view *ledger.View, tx *inter.Transaction) ledger.Res {
	tip, ok := view.GetTip()
	if !ok {
		return ledger.Resf(ledger.Rejected, "no chain yet")
	}
	height := tip.Height + 1
	cache := view.NewCache()
	defer cache.Discard()
	if res := customtx.CheckSpends(cache, tx, height, p.rules); !res.Ok {
		return res
	}
	_, res := customtx.Apply(cache, view, tx, height, p.rules)
	return res
}

// PendingProofs builds a transaction for every unpunished double sign, for
// the minter to include in its next block.
func (p *Processor) PendingProofs(view *ledger.View) []*inter.Transaction {
	var txs []*inter.Transaction
	for _, e := range view.GetUnpunishedCriminals(ledger.Page{}) {
		marker, err := customtx.Encode(&customtx.CriminalProofMessage{Proof: *e.Proof})
		if err != nil {
			panic("blockproc: encode proof: " + err.Error())
		}
		txs = append(txs, &inter.Transaction{
			Version: 1,
			Outputs: []inter.TxOut{{Script: marker}},
		})
	}
	return txs
}
