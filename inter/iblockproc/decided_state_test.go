package iblockproc

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

func TestBlockStateCopy(t *testing.T) {
	require := require.New(t)
	signer := hash.Of([]byte("node"))
	bs := BlockState{
		LastBlock:    BlockCtx{Idx: 5, Time: 10, Hash: hash.Of([]byte("block"))},
		Applied:      2,
		Rejected:     []Rejection{{Index: 1, Type: 'B', Code: 1, Msg: "not enough balance"}},
		DoubleSigner: &signer,
		Team:         []validatorpk.KeyID{{1}, {2}},
	}
	cp := bs.Copy()
	require.Equal(bs, cp)
	require.Equal(bs.Hash(), cp.Hash())

	cp.Rejected[0].Msg = "changed"
	cp.Team[0] = validatorpk.KeyID{9}
	*cp.DoubleSigner = hash.Hash{}
	require.Equal("not enough balance", bs.Rejected[0].Msg)
	require.Equal(validatorpk.KeyID{1}, bs.Team[0])
	require.Equal(signer, *bs.DoubleSigner)
	require.NotEqual(bs.Hash(), cp.Hash())
}

func TestBlockStateHashWithoutSigner(t *testing.T) {
	a := BlockState{LastBlock: BlockCtx{Idx: 1}}
	b := a.Copy()
	require.Equal(t, a.Hash(), b.Hash())
	b.Rotated = true
	require.NotEqual(t, a.Hash(), b.Hash())
}
