// Package genesis describes and applies the initial ledger state of a
// network: the native tokens, the masternodes that may mint the first
// blocks, the initial coins and balances and the oracle set.
//
// A genesis is either built in code (FakeGenesis) or read from a TOML file
// with LoadFile. Every node of a network must start from the same genesis,
// which Hash fingerprints.
package genesis

import (
	"crypto/sha256"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/opera"
)

// Masternode is a node registered at height 0. It is enabled from the first
// block.
type Masternode struct {
	Owner        validatorpk.KeyID
	OwnerType    validatorpk.AddrType
	Operator     validatorpk.KeyID
	OperatorType validatorpk.AddrType
}

// Token is a native token. Id 0 is the chain's own coin and is created even
// when absent from the list.
type Token struct {
	ID        uint32
	Symbol    string
	Name      string
	Mintable  bool
	Tradeable bool
}

// Balance credits an account of a P2PKH owner.
type Balance struct {
	Owner  validatorpk.KeyID
	Token  uint32
	Amount uint64
}

// Coin is an output of the genesis coinbase, locked to a P2PKH owner.
type Coin struct {
	Owner  validatorpk.KeyID
	Token  uint32
	Amount uint64
}

// Oracle is a price feeder appointed at genesis.
type Oracle struct {
	Owner  validatorpk.KeyID
	Weight uint64
}

// Genesis is the initial state of a network.
type Genesis struct {
	// Network names the opera.Rules preset the genesis belongs to.
	Network string
	Time    inter.Timestamp

	Masternodes []Masternode
	Tokens      []Token
	Balances    []Balance
	Coins       []Coin
	Oracles     []Oracle

	FoundationsDebt uint64
}

// Rules returns the rules of the genesis network.
func (g *Genesis) Rules() (opera.Rules, error) {
	rules, ok := opera.NetworkRules(g.Network)
	if !ok {
		return opera.Rules{}, fmt.Errorf("unknown network %q", g.Network)
	}
	return rules, nil
}

// Hash fingerprints the genesis. It is the hash of block 0.
func (g *Genesis) Hash() hash.Hash {
	hasher := sha256.New()
	if err := rlp.Encode(hasher, g); err != nil {
		panic("can't hash genesis: " + err.Error())
	}
	return hash.BytesToHash(hasher.Sum(nil))
}

// LoadFile reads a genesis from a TOML file.
func LoadFile(path string) (*Genesis, error) {
	g := &Genesis{}
	if _, err := toml.DecodeFile(path, g); err != nil {
		return nil, errors.Wrapf(err, "read genesis %s", path)
	}
	if _, err := g.Rules(); err != nil {
		return nil, errors.Wrapf(err, "genesis %s", path)
	}
	return g, nil
}

// FakeGenesis is the genesis of a local network of n masternodes. Node i
// is owned by fake key i and operated by fake key 100+i, and each owner
// gets one coin to pay fees with.
func FakeGenesis(n int) *Genesis {
	g := &Genesis{
		Network: "fake",
		Time:    inter.FromUnix(1600000000),
	}
	for i := 1; i <= n; i++ {
		g.Masternodes = append(g.Masternodes, Masternode{
			Owner:        opera.FakeKeyID(i),
			OwnerType:    validatorpk.Types.PubKeyHash,
			Operator:     opera.FakeKeyID(100 + i),
			OperatorType: validatorpk.Types.PubKeyHash,
		})
		g.Coins = append(g.Coins, Coin{
			Owner:  opera.FakeKeyID(i),
			Amount: uint64(opera.Coin),
		})
	}
	return g
}
