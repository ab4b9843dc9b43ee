package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// GetFoundationsDebt returns the amount still owed to the foundation.
func (v *View) GetFoundationsDebt() int64 {
	raw := v.get([]byte{prefixDebt})
	if raw == nil {
		return 0
	}
	return int64(bigendian.BytesToUint64(raw))
}

// SetFoundationsDebt replaces the foundation debt.
func (v *View) SetFoundationsDebt(debt int64) {
	v.put([]byte{prefixDebt}, bigendian.Uint64ToBytes(uint64(debt)))
}
