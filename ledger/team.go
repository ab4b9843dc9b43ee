package ledger

import (
	"bytes"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/holiman/uint256"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// maxTeamSize bounds a decoded team.
const maxTeamSize = 10000

// Team is the set of operators empowered for the current rotation window,
// sorted by key id.
type Team []validatorpk.KeyID

// Contains reports whether operator is in the team.
func (t Team) Contains(operator validatorpk.KeyID) bool {
	i := sort.Search(len(t), func(i int) bool { return t[i].Compare(operator) >= 0 })
	return i < len(t) && t[i] == operator
}

func (t Team) sorted() Team {
	out := append(Team{}, t...)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

func (t *Team) MarshalCSER(w *cser.Writer) error {
	w.U56(uint64(len(*t)))
	for _, id := range *t {
		w.FixedBytes(id[:])
	}
	return nil
}

func (t *Team) UnmarshalCSER(r *cser.Reader) error {
	n := r.U56()
	if n > maxTeamSize {
		return cser.ErrTooLargeAlloc
	}
	*t = make(Team, n)
	for i := range *t {
		r.FixedBytes((*t)[i][:])
	}
	return nil
}

// TeamCandidate is an active node competing for a team seat.
type TeamCandidate struct {
	ID           hash.Hash
	Operator     validatorpk.KeyID
	MintedBlocks uint64
}

type rankedCandidate struct {
	TeamCandidate
	priority *uint256.Int
}

// CalcNextTeam picks up to size operators from pool. It depends only on
// seed and the contents of pool, not on its order.
//
// Each candidate draws hash(id, seed) as a 256-bit number and divides it by
// minted blocks + 1, so nodes that minted more tend to rank lower. The
// lowest ranks win. Equal ranks are broken by node id.
func CalcNextTeam(seed hash.Hash, pool []TeamCandidate, size int) Team {
	ranked := make([]rankedCandidate, len(pool))
	for i, c := range pool {
		draw := hash.Of(c.ID.Bytes(), seed.Bytes())
		p := new(uint256.Int).SetBytes(draw.Bytes())
		p.Div(p, new(uint256.Int).AddUint64(uint256.NewInt(c.MintedBlocks), 1))
		ranked[i] = rankedCandidate{TeamCandidate: c, priority: p}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if c := ranked[i].priority.Cmp(ranked[j].priority); c != 0 {
			return c < 0
		}
		return bytes.Compare(ranked[i].ID.Bytes(), ranked[j].ID.Bytes()) < 0
	})
	if size < 0 {
		size = 0
	}
	if size > len(ranked) {
		size = len(ranked)
	}
	team := make(Team, 0, size)
	for _, c := range ranked[:size] {
		team = append(team, c.Operator)
	}
	return team.sorted()
}

// TeamCandidates returns the active nodes at height as a rotation pool.
func (v *View) TeamCandidates(height idx.Block, rules opera.MasternodeRules) []TeamCandidate {
	active := v.ActiveMasternodes(height, rules)
	pool := make([]TeamCandidate, 0, len(active))
	for _, e := range active {
		pool = append(pool, TeamCandidate{
			ID:           e.ID,
			Operator:     e.Node.OperatorAuthAddress,
			MintedBlocks: e.Node.MintedBlocks,
		})
	}
	return pool
}

// CalcNextTeam draws the next team from the nodes active at height.
func (v *View) CalcNextTeam(seed hash.Hash, height idx.Block, rules opera.MasternodeRules) Team {
	return CalcNextTeam(seed, v.TeamCandidates(height, rules), rules.TeamSize)
}

// GetCurrentTeam returns the committed team, empty before the first rotation.
func (v *View) GetCurrentTeam() Team {
	var t Team
	if !v.getRecord([]byte{prefixTeam}, &t) {
		return Team{}
	}
	return t
}

// SetTeam replaces the committed team.
func (v *View) SetTeam(t Team) {
	sorted := t.sorted()
	v.putRecord([]byte{prefixTeam}, &sorted)
}
