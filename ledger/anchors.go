package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
)

// AddRewardForAnchor records that rewardTx paid for the anchor anchorTx.
// An anchor is rewarded once.
func (v *View) AddRewardForAnchor(anchorTx, rewardTx hash.Hash) Res {
	if anchorTx == (hash.Hash{}) || rewardTx == (hash.Hash{}) {
		return Resf(InvalidPayload, "empty anchor or reward tx hash")
	}
	if prev, ok := v.GetRewardForAnchor(anchorTx); ok {
		return Resf(AlreadyExists, "anchor %s was rewarded by %s", anchorTx.Hex(), prev.Hex())
	}
	v.put(anchorRewardKey(anchorTx), rewardTx.Bytes())
	return ResOk()
}

// GetRewardForAnchor returns the tx that rewarded anchorTx.
func (v *View) GetRewardForAnchor(anchorTx hash.Hash) (hash.Hash, bool) {
	raw := v.get(anchorRewardKey(anchorTx))
	if raw == nil {
		return hash.Hash{}, false
	}
	if len(raw) != len(hash.Hash{}) {
		panic("ledger: corrupted anchor reward")
	}
	return hash.BytesToHash(raw), true
}

// AnchorRewardEntry pairs an anchor with its reward tx.
type AnchorRewardEntry struct {
	Anchor hash.Hash
	Reward hash.Hash
}

// ListAnchorRewards lists rewarded anchors in anchor hash order.
func (v *View) ListAnchorRewards(p Page) []AnchorRewardEntry {
	var out []AnchorRewardEntry
	v.forPage([]byte{prefixAnchorReward}, p, func(k, val []byte) bool {
		out = append(out, AnchorRewardEntry{Anchor: hash.BytesToHash(k), Reward: hash.BytesToHash(val)})
		return true
	})
	return out
}
