package ledger

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"
)

func TestAnchorRewards(t *testing.T) {
	require := require.New(t)
	v := newTestView()

	anchors := []hash.Hash{hash.Of([]byte("a1")), hash.Of([]byte("a2")), hash.Of([]byte("a3"))}
	for i, a := range anchors {
		require.True(v.AddRewardForAnchor(a, hash.Of([]byte{byte(i)})).Ok)
	}
	require.Equal(AlreadyExists, v.AddRewardForAnchor(anchors[0], hash.Of([]byte("other"))).Code)
	require.Equal(InvalidPayload, v.AddRewardForAnchor(hash.Hash{}, hash.Of([]byte("r"))).Code)
	require.Equal(InvalidPayload, v.AddRewardForAnchor(hash.Of([]byte("a4")), hash.Hash{}).Code)

	got, ok := v.GetRewardForAnchor(anchors[1])
	require.True(ok)
	require.Equal(hash.Of([]byte{1}), got)
	_, ok = v.GetRewardForAnchor(hash.Of([]byte("missing")))
	require.False(ok)

	all := v.ListAnchorRewards(Page{})
	require.Len(all, 3)
	first := v.ListAnchorRewards(Page{Limit: 1})
	require.Len(first, 1)
	rest := v.ListAnchorRewards(Page{Start: first[0].Anchor.Bytes()})
	require.Equal(all[1:], rest)

	// a cache sees the parent records and its own
	cache := v.NewCache()
	require.True(cache.AddRewardForAnchor(hash.Of([]byte("a4")), hash.Of([]byte("r4"))).Ok)
	require.Len(cache.ListAnchorRewards(Page{}), 4)
	require.Len(v.ListAnchorRewards(Page{}), 3)
}
