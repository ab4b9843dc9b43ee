package ledger

import (
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/opera"
)

func TestCheckTokenFields(t *testing.T) {
	rules := opera.DefaultTokenRules()
	for _, tc := range []struct {
		name  string
		token Token
		code  Code
	}{
		{"ok", Token{Symbol: "GOLD", Name: "Gold"}, CodeOk},
		{"empty symbol", Token{Symbol: ""}, InvalidPayload},
		{"long symbol", Token{Symbol: "ABCDEFGHI"}, InvalidPayload},
		{"leading digit", Token{Symbol: "1ABC"}, InvalidPayload},
		{"space", Token{Symbol: "A B"}, InvalidPayload},
		{"hash sign", Token{Symbol: "A#1"}, InvalidPayload},
		{"long name", Token{Symbol: "A", Name: string(make([]byte, 129))}, InvalidPayload},
		{"negative limit", Token{Symbol: "A", Limit: -1}, InvalidAmount},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckTokenFields(&tc.token, rules)
			require.Equal(t, tc.code == CodeOk, res.Ok, res.String())
			require.Equal(t, tc.code, res.Code)
		})
	}
}

func TestTokenLifecycle(t *testing.T) {
	require := require.New(t)
	v := newTestView()
	owner := testScript(1)

	require.True(v.CreateNativeToken(inter.NativeToken, &Token{Symbol: "DFI", Name: "Native", Decimal: DefaultDecimal, Tradeable: true}).Ok)
	require.Equal(InvalidPayload, v.CreateNativeToken(TokenIDStart, &Token{Symbol: "X"}).Code)

	gold := addTestToken(t, v, "GOLD", owner)
	require.Equal(TokenIDStart, gold)
	silver := addTestToken(t, v, "SILVER", owner)
	require.Equal(TokenIDStart+1, silver)

	_, res := v.CreateToken(&Token{Symbol: "GOLD"}, opera.DefaultTokenRules())
	require.Equal(AlreadyExists, res.Code)

	id, tok := v.GetTokenBySymbol("GOLD")
	require.Equal(gold, id)
	require.Equal("GOLD token", tok.Name)
	require.Equal(owner, tok.Owner)
	require.False(tok.IsDestroyed())
	_, tok = v.GetTokenBySymbol("gold")
	require.Nil(tok)

	destroyTx := hash.Of([]byte("destroy"))
	require.Equal(Forbidden, v.DestroyToken(inter.NativeToken, destroyTx, 5).Code)
	require.Equal(NotFound, v.DestroyToken(999, destroyTx, 5).Code)
	require.True(v.DestroyToken(gold, destroyTx, 5).Ok)
	require.Equal(Rejected, v.DestroyToken(gold, destroyTx, 6).Code)
	tok = v.GetToken(gold)
	require.True(tok.IsDestroyed())
	require.Equal(destroyTx, tok.DestructionTx)

	// the symbol of a destroyed token stays taken
	_, res = v.CreateToken(&Token{Symbol: "GOLD"}, opera.DefaultTokenRules())
	require.Equal(AlreadyExists, res.Code)

	list := v.ListTokens(Page{})
	require.Len(list, 3)
	require.Equal(inter.NativeToken, list[0].ID)
	list = v.ListTokens(Page{Start: TokenPageStart(gold), Limit: 1})
	require.Len(list, 1)
	require.Equal(silver, list[0].ID)
}

func TestSupply(t *testing.T) {
	require := require.New(t)
	v := newTestView()

	id, res := v.CreateToken(&Token{Symbol: "CAP", Limit: 100, Mintable: true}, opera.DefaultTokenRules())
	require.True(res.Ok)

	require.Equal(NotFound, v.AddSupply(id+1, 1).Code)
	require.True(v.AddSupply(id, 60).Ok)
	require.Equal(InvalidAmount, v.AddSupply(id, 41).Code)
	require.True(v.AddSupply(id, 40).Ok)
	require.Equal(int64(100), v.GetSupply(id))
	require.Equal(InvalidAmount, v.AddSupply(id, -101).Code)
	require.True(v.AddSupply(id, -100).Ok)
	require.Equal(int64(0), v.GetSupply(id))
}
