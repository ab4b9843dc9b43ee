package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// TokenIDStart is the first id handed to user tokens. Lower ids are native
// or stable tokens created by genesis and cannot be destroyed.
const TokenIDStart uint32 = 128

// DefaultDecimal is the precision of every token.
const DefaultDecimal uint8 = 8

const (
	maxScriptSize = 10000
	maxTextSize   = 1024
)

// Token is a registered token.
type Token struct {
	Symbol    string
	Name      string
	Decimal   uint8
	Limit     int64 // 0 means unlimited
	Mintable  bool
	Tradeable bool

	Owner inter.Script

	CreationTx     hash.Hash
	CreationHeight int64
	// DestructionHeight is -1 while the token is alive.
	DestructionTx     hash.Hash
	DestructionHeight int64
}

// IsDestroyed reports whether the token was destroyed.
func (t *Token) IsDestroyed() bool {
	return t.DestructionHeight >= 0
}

func (t *Token) MarshalCSER(w *cser.Writer) error {
	w.String(t.Symbol)
	w.String(t.Name)
	w.U8(t.Decimal)
	w.I64(t.Limit)
	w.Bool(t.Mintable)
	w.Bool(t.Tradeable)
	w.SliceBytes(t.Owner)
	w.FixedBytes(t.CreationTx.Bytes())
	w.I64(t.CreationHeight)
	w.FixedBytes(t.DestructionTx.Bytes())
	w.I64(t.DestructionHeight)
	return nil
}

func (t *Token) UnmarshalCSER(r *cser.Reader) error {
	t.Symbol = r.String(maxTextSize)
	t.Name = r.String(maxTextSize)
	t.Decimal = r.U8()
	t.Limit = r.I64()
	t.Mintable = r.Bool()
	t.Tradeable = r.Bool()
	t.Owner = r.SliceBytes(maxScriptSize)
	r.FixedBytes(t.CreationTx[:])
	t.CreationHeight = r.I64()
	r.FixedBytes(t.DestructionTx[:])
	t.DestructionHeight = r.I64()
	return nil
}

// CheckTokenFields validates user supplied token fields.
func CheckTokenFields(t *Token, rules opera.TokenRules) Res {
	if len(t.Symbol) == 0 || len(t.Symbol) > rules.MaxSymbolLength {
		return Resf(InvalidPayload, "token symbol must be 1 to %d characters", rules.MaxSymbolLength)
	}
	if t.Symbol[0] >= '0' && t.Symbol[0] <= '9' {
		return Resf(InvalidPayload, "token symbol must not start with a digit")
	}
	for _, c := range t.Symbol {
		if c <= ' ' || c > '~' || c == '#' {
			return Resf(InvalidPayload, "token symbol contains an invalid character %q", c)
		}
	}
	if len(t.Name) > rules.MaxNameLength {
		return Resf(InvalidPayload, "token name is longer than %d", rules.MaxNameLength)
	}
	if t.Limit < 0 {
		return Resf(InvalidAmount, "negative token limit")
	}
	return ResOk()
}

// GetToken returns nil for an unknown id.
func (v *View) GetToken(id uint32) *Token {
	var t Token
	if !v.getRecord(tokenKey(id), &t) {
		return nil
	}
	return &t
}

// GetTokenBySymbol resolves the symbol index. Symbols are case sensitive.
func (v *View) GetTokenBySymbol(symbol string) (uint32, *Token) {
	raw := v.get(symbolKey(symbol))
	if raw == nil {
		return 0, nil
	}
	id := bigendian.BytesToUint32(raw)
	t := v.GetToken(id)
	if t == nil {
		panic("ledger: symbol index points to a missing token " + symbol)
	}
	return id, t
}

func (v *View) lastTokenID() uint32 {
	raw := v.get([]byte{prefixLastTokenID})
	if raw == nil {
		return TokenIDStart - 1
	}
	return bigendian.BytesToUint32(raw)
}

// CreateToken registers a user token under the next free id.
func (v *View) CreateToken(t *Token, rules opera.TokenRules) (uint32, Res) {
	if res := CheckTokenFields(t, rules); !res.Ok {
		return 0, res
	}
	if v.has(symbolKey(t.Symbol)) {
		return 0, Resf(AlreadyExists, "token %s already exists", t.Symbol)
	}
	id := v.lastTokenID() + 1
	v.put([]byte{prefixLastTokenID}, bigendian.Uint32ToBytes(id))
	v.storeToken(id, t)
	return id, ResOk()
}

// CreateNativeToken registers a token under a reserved id. Genesis only.
func (v *View) CreateNativeToken(id uint32, t *Token) Res {
	if id >= TokenIDStart {
		return Resf(InvalidPayload, "token id %d is not reserved", id)
	}
	if v.has(tokenKey(id)) || v.has(symbolKey(t.Symbol)) {
		return Resf(AlreadyExists, "token %d %s already exists", id, t.Symbol)
	}
	v.storeToken(id, t)
	return ResOk()
}

func (v *View) storeToken(id uint32, t *Token) {
	t.DestructionHeight = -1
	t.DestructionTx = hash.Hash{}
	v.putRecord(tokenKey(id), t)
	v.put(symbolKey(t.Symbol), bigendian.Uint32ToBytes(id))
}

// DestroyToken marks a user token destroyed. Its symbol stays taken.
func (v *View) DestroyToken(id uint32, txHash hash.Hash, height idx.Block) Res {
	if id < TokenIDStart {
		return Resf(Forbidden, "token %d is a native token", id)
	}
	t := v.GetToken(id)
	if t == nil {
		return Resf(NotFound, "token %d not found", id)
	}
	if t.IsDestroyed() {
		return Resf(Rejected, "token %d is already destroyed", id)
	}
	t.DestructionTx = txHash
	t.DestructionHeight = int64(height)
	v.putRecord(tokenKey(id), t)
	return ResOk()
}

// TokenEntry is a token with its id.
type TokenEntry struct {
	ID    uint32
	Token *Token
}

// ListTokens returns one page of tokens in id order. Page.Start is a
// 4-byte big-endian id.
func (v *View) ListTokens(p Page) []TokenEntry {
	var out []TokenEntry
	v.forPage([]byte{prefixToken}, p, func(k, val []byte) bool {
		var t Token
		if err := cser.Unmarshal(val, &t); err != nil {
			fatal(err, "ledger: corrupted token")
		}
		out = append(out, TokenEntry{ID: bigendian.BytesToUint32(k), Token: &t})
		return true
	})
	return out
}

// TokenPageStart encodes a token id as a Page.Start.
func TokenPageStart(id uint32) []byte {
	return bigendian.Uint32ToBytes(id)
}

// GetSupply returns the amount of a token minted into existence.
func (v *View) GetSupply(id uint32) int64 {
	raw := v.get(supplyKey(id))
	if raw == nil {
		return 0
	}
	return int64(bigendian.BytesToUint64(raw))
}

// AddSupply changes the supply of a token by delta, respecting its limit.
func (v *View) AddSupply(id uint32, delta int64) Res {
	t := v.GetToken(id)
	if t == nil {
		return Resf(NotFound, "token %d not found", id)
	}
	cur := v.GetSupply(id)
	next, ok := safeAdd(cur, delta)
	if !ok || next < 0 {
		return Resf(InvalidAmount, "supply of token %d out of range", id)
	}
	if t.Limit > 0 && next > t.Limit {
		return Resf(InvalidAmount, "supply of token %d exceeds its limit %d", id, t.Limit)
	}
	if next == 0 {
		v.del(supplyKey(id))
	} else {
		v.put(supplyKey(id), bigendian.Uint64ToBytes(uint64(next)))
	}
	return ResOk()
}
