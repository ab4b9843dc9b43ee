package ibr

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
)

func testRecord() FullBlockRecord {
	return FullBlockRecord{
		Block: &inter.Block{
			Header: inter.BlockHeader{
				Version: 1,
				Height:  7,
				Time:    inter.FromUnix(1600000210),
			},
			Txs: inter.Transactions{{
				Version: 1,
				Outputs: []inter.TxOut{{Amount: 5, Script: inter.Script{0x51}}},
			}},
		},
		State: hash.Of([]byte("state")),
	}
}

func TestRecordVote(t *testing.T) {
	require := require.New(t)
	rec := testRecord()
	vote := rec.Vote()
	require.Equal(rec.Block.Hash(), vote.Block)
	require.Equal(rec.Hash(), vote.Hash())

	other := testRecord()
	other.State = hash.Of([]byte("other state"))
	require.NotEqual(rec.Hash(), other.Hash())
}

func TestRecordEncoding(t *testing.T) {
	require := require.New(t)
	rec := testRecord()
	raw, err := rec.MarshalBinary()
	require.NoError(err)

	var got FullBlockRecord
	require.NoError(got.UnmarshalBinary(raw))
	require.Equal(rec.Hash(), got.Hash())
	require.Len(got.Block.Txs, 1)
}
