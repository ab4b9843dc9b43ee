// Package opera holds the consensus rules of each network. Every node of a
// network must run with the same Rules, or it will fork.
package opera

import (
	"crypto/ecdsa"
	"encoding/json"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
)

const (
	MainNetworkID uint64 = 0x444631
	TestNetworkID uint64 = 0x444632
	FakeNetworkID uint64 = 0x444633

	// Coin is the number of base units in one native coin.
	Coin int64 = 100000000
)

// Rules describes a network.
type Rules struct {
	Name      string
	NetworkID uint64

	// Address encodes owner and operator keys for display.
	Address validatorpk.Params

	Masternodes MasternodeRules

	Tokens TokenRules

	// Foundation are the scripts allowed to appoint and remove oracles.
	Foundation []inter.Script

	Upgrades Upgrades
}

// MasternodeRules are the lifecycle and rotation constants.
type MasternodeRules struct {
	// ActivationDelay is the number of blocks a new masternode stays PreEnabled.
	ActivationDelay idx.Block
	// ResignDelay is the number of blocks collateral stays locked after resignation.
	ResignDelay idx.Block
	// DoubleSignInterval is the window for conflicting headers and the PreBanned grace period.
	DoubleSignInterval idx.Block
	// CriminalRetention is how long an unpunished proof stays usable.
	CriminalRetention idx.Block
	// HistoryFrame is how many blocks of undo records are kept.
	HistoryFrame idx.Block

	TeamSize             int
	TeamRotationInterval idx.Block

	// Collateral is the exact amount the second output of a creation tx must lock.
	Collateral int64
	// CreationFee is burnt by the marker output of a creation tx.
	CreationFee int64
}

// TokenRules bound user created tokens.
type TokenRules struct {
	CreationFee     int64
	MaxSymbolLength int
	MaxNameLength   int
}

// Upgrades toggles transaction families.
type Upgrades struct {
	Orders  bool
	Oracles bool
}

// IsFoundation reports whether script is a foundation member.
func (r Rules) IsFoundation(script inter.Script) bool {
	for _, s := range r.Foundation {
		if s.Equal(script) {
			return true
		}
	}
	return false
}

func MainNetRules() Rules {
	return Rules{
		Name:        "main",
		NetworkID:   MainNetworkID,
		Address:     validatorpk.MainNetParams,
		Masternodes: DefaultMasternodeRules(),
		Tokens:      DefaultTokenRules(),
		Foundation: []inter.Script{
			inter.P2PKHScript(mustKeyID("0x2ea3eb2a22bef3c5a07d4ac2fb7e9dab8a4e7ab5")),
		},
	}
}

func TestNetRules() Rules {
	return Rules{
		Name:        "test",
		NetworkID:   TestNetworkID,
		Address:     validatorpk.TestNetParams,
		Masternodes: DefaultMasternodeRules(),
		Tokens:      DefaultTokenRules(),
		Foundation: []inter.Script{
			inter.P2PKHScript(mustKeyID("0x8a5e2fa2c2c9f8dcf2e6dbb8d9e3f6e5e3a9c3d1")),
		},
		Upgrades: Upgrades{
			Orders:  true,
			Oracles: true,
		},
	}
}

// FakeNetRules are the rules of a local network. Its foundation is the
// first fake key.
func FakeNetRules() Rules {
	return Rules{
		Name:        "fake",
		NetworkID:   FakeNetworkID,
		Address:     validatorpk.FakeNetParams,
		Masternodes: FakeNetMasternodeRules(),
		Tokens:      DefaultTokenRules(),
		Foundation: []inter.Script{
			inter.P2PKHScript(FakeKeyID(1)),
		},
		Upgrades: Upgrades{
			Orders:  true,
			Oracles: true,
		},
	}
}

// NetworkRules looks a preset up by its Name.
func NetworkRules(name string) (Rules, bool) {
	switch name {
	case "main":
		return MainNetRules(), true
	case "test":
		return TestNetRules(), true
	case "fake":
		return FakeNetRules(), true
	}
	return Rules{}, false
}

func DefaultMasternodeRules() MasternodeRules {
	return MasternodeRules{
		ActivationDelay:      10,
		ResignDelay:          60,
		DoubleSignInterval:   inter.DoubleSignMinimumProofInterval,
		CriminalRetention:    1000,
		HistoryFrame:         300,
		TeamSize:             5,
		TeamRotationInterval: 120,
		Collateral:           1000000 * Coin,
		CreationFee:          10 * Coin,
	}
}

// FakeNetMasternodeRules shorten every delay so that a local network goes
// through the whole lifecycle quickly.
func FakeNetMasternodeRules() MasternodeRules {
	cfg := DefaultMasternodeRules()
	cfg.ResignDelay = 10
	cfg.TeamSize = 3
	cfg.TeamRotationInterval = 20
	cfg.Collateral = 10 * Coin
	cfg.CreationFee = 1 * Coin
	return cfg
}

func DefaultTokenRules() TokenRules {
	return TokenRules{
		CreationFee:     100 * Coin,
		MaxSymbolLength: 8,
		MaxNameLength:   128,
	}
}

// FakeKey returns the n-th deterministic key of fake networks. n starts at 1.
func FakeKey(n int) *ecdsa.PrivateKey {
	seed := crypto.Keccak256(big.NewInt(int64(n)).Bytes())
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeKeyID is the key id of FakeKey(n).
func FakeKeyID(n int) validatorpk.KeyID {
	return validatorpk.FromPubKey(crypto.CompressPubkey(&FakeKey(n).PublicKey))
}

func mustKeyID(s string) validatorpk.KeyID {
	id, err := validatorpk.FromString(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Copy returns a deep copy.
func (r Rules) Copy() Rules {
	cp := r
	cp.Foundation = make([]inter.Script, len(r.Foundation))
	for i, s := range r.Foundation {
		cp.Foundation[i] = s.Copy()
	}
	return cp
}

func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
