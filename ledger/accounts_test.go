package ledger

import (
	"math"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
)

func TestBalancesNormalize(t *testing.T) {
	require := require.New(t)

	got, res := Balances{{Token: 5, Amount: 1}, {Token: 2, Amount: 3}, {Token: 5, Amount: 4}}.Normalize()
	require.True(res.Ok)
	require.Equal(Balances{{Token: 2, Amount: 3}, {Token: 5, Amount: 5}}, got)

	_, res = Balances{{Token: 1, Amount: 0}}.Normalize()
	require.Equal(InvalidAmount, res.Code)
	_, res = Balances{{Token: 1, Amount: math.MaxInt64}, {Token: 1, Amount: 1}}.Normalize()
	require.Equal(InvalidAmount, res.Code)

	sum, res := got.Add(Balances{{Token: 2, Amount: 1}})
	require.True(res.Ok)
	require.Equal(Balances{{Token: 2, Amount: 4}, {Token: 5, Amount: 5}}, sum)
}

func TestBalances(t *testing.T) {
	require := require.New(t)
	v := newTestView()
	alice, bob := testScript(1), testScript(2)

	require.Equal(int64(0), v.GetBalance(alice, 0))
	require.True(v.AddBalance(alice, TokenAmount{Token: 0, Amount: 10}).Ok)
	require.True(v.AddBalance(alice, TokenAmount{Token: 128, Amount: 7}).Ok)
	require.Equal(int64(10), v.GetBalance(alice, 0))
	require.Equal(int64(0), v.GetBalance(bob, 0))

	res := v.SubBalance(alice, TokenAmount{Token: 0, Amount: 11})
	require.Equal(NotEnoughBalance, res.Code)
	require.Equal(int64(10), v.GetBalance(alice, 0))
	require.Equal(InvalidAmount, v.AddBalance(alice, TokenAmount{Token: 0, Amount: -1}).Code)
	require.Equal(InvalidAmount, v.AddBalance(alice, TokenAmount{Token: 0, Amount: math.MaxInt64}).Code)

	// either every debit happens or none
	res = v.SubBalances(alice, Balances{{Token: 0, Amount: 5}, {Token: 128, Amount: 8}})
	require.Equal(NotEnoughBalance, res.Code)
	require.Equal(int64(10), v.GetBalance(alice, 0))
	require.Equal(int64(7), v.GetBalance(alice, 128))

	require.True(v.SubBalances(alice, Balances{{Token: 0, Amount: 5}, {Token: 128, Amount: 7}}).Ok)
	require.Equal(Balances{{Token: 0, Amount: 5}}, v.GetBalances(alice))

	require.True(v.AddBalances(bob, Balances{{Token: 0, Amount: 1}, {Token: 129, Amount: 2}}).Ok)

	// a script that is a prefix of another one does not leak balances
	short := inter.Script(alice[:len(alice)-1])
	require.Empty(v.GetBalances(short))

	all := v.ListAccounts(Page{})
	require.Len(all, 3)
	for _, e := range all {
		require.Equal(v.GetBalance(e.Owner, e.Token), e.Amount)
	}
	page := v.ListAccounts(Page{Start: AccountPageStart(all[0].Owner, all[0].Token), Limit: 5})
	require.Len(page, 2)
}

func TestCoins(t *testing.T) {
	require := require.New(t)
	v := newTestView()

	tx := &inter.Transaction{
		Version: 1,
		Inputs:  []inter.TxIn{{Prev: inter.OutPoint{TxHash: hash.Of([]byte("prev")), Index: 0}}},
		Outputs: []inter.TxOut{
			{Amount: 0, Script: inter.NullDataScript([]byte("data"))},
			{Amount: 50, Token: 0, Script: testScript(1)},
			{Amount: 7, Token: 128, Script: testScript(2)},
		},
	}
	v.AddCoins(tx)

	_, ok := v.GetCoin(inter.OutPoint{TxHash: tx.Hash(), Index: 0})
	require.False(ok)
	out, ok := v.GetCoin(inter.OutPoint{TxHash: tx.Hash(), Index: 1})
	require.True(ok)
	require.Equal(int64(50), out.Amount)
	require.Equal(testScript(1), out.Script)
	out, ok = v.GetCoin(inter.OutPoint{TxHash: tx.Hash(), Index: 2})
	require.True(ok)
	require.Equal(uint32(128), out.Token)

	spend := &inter.Transaction{
		Version: 1,
		Inputs: []inter.TxIn{
			{Prev: inter.OutPoint{TxHash: tx.Hash(), Index: 1}},
			{Prev: inter.OutPoint{TxHash: hash.Of([]byte("unknown")), Index: 3}},
		},
	}
	v.SpendCoins(spend)
	_, ok = v.GetCoin(inter.OutPoint{TxHash: tx.Hash(), Index: 1})
	require.False(ok)
	_, ok = v.GetCoin(inter.OutPoint{TxHash: tx.Hash(), Index: 2})
	require.True(ok)
}
