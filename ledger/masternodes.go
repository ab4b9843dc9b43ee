package ledger

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/opera"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

// Masternode is a registered validator. Its id is the hash of the
// transaction that created it.
type Masternode struct {
	OwnerAuthAddress    validatorpk.KeyID
	OwnerType           validatorpk.AddrType
	OperatorAuthAddress validatorpk.KeyID
	OperatorType        validatorpk.AddrType

	CreationHeight int64
	// ResignHeight is -1 while the node has not resigned.
	ResignHeight int64
	// BanHeight is -1 while the node is not banned.
	BanHeight int64

	ResignTx hash.Hash
	BanTx    hash.Hash

	MintedBlocks uint64
}

// NewMasternode returns a node created at height with no resignation or ban.
func NewMasternode(owner validatorpk.KeyID, ownerType validatorpk.AddrType, operator validatorpk.KeyID, operatorType validatorpk.AddrType, height idx.Block) *Masternode {
	return &Masternode{
		OwnerAuthAddress:    owner,
		OwnerType:           ownerType,
		OperatorAuthAddress: operator,
		OperatorType:        operatorType,
		CreationHeight:      int64(height),
		ResignHeight:        -1,
		BanHeight:           -1,
	}
}

// State is the lifecycle stage of a masternode at some height.
type State uint8

const (
	PreEnabled State = iota
	Enabled
	PreResigned
	Resigned
	PreBanned
	Banned
	Unknown State = 255
)

var stateNames = map[State]string{
	PreEnabled:  "PRE_ENABLED",
	Enabled:     "ENABLED",
	PreResigned: "PRE_RESIGNED",
	Resigned:    "RESIGNED",
	PreBanned:   "PRE_BANNED",
	Banned:      "BANNED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// State derives the lifecycle stage at height. It is a pure function of the
// record and the height. A ban takes precedence over a resignation.
func (m *Masternode) State(height idx.Block, rules opera.MasternodeRules) State {
	h := int64(height)
	if m.BanHeight >= 0 {
		if h < m.BanHeight+int64(rules.DoubleSignInterval) {
			return PreBanned
		}
		return Banned
	}
	if m.ResignHeight >= 0 {
		if h < m.ResignHeight+int64(rules.ResignDelay) {
			return PreResigned
		}
		return Resigned
	}
	// genesis nodes are enabled right away
	if m.CreationHeight > 0 && h < m.CreationHeight+int64(rules.ActivationDelay) {
		return PreEnabled
	}
	return Enabled
}

// IsActive reports whether the node may mint at height. Grace windows
// still count.
func (m *Masternode) IsActive(height idx.Block, rules opera.MasternodeRules) bool {
	switch m.State(height, rules) {
	case Enabled, PreResigned, PreBanned:
		return true
	}
	return false
}

func (m *Masternode) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.OwnerAuthAddress[:])
	w.U8(uint8(m.OwnerType))
	w.FixedBytes(m.OperatorAuthAddress[:])
	w.U8(uint8(m.OperatorType))
	w.I64(m.CreationHeight)
	w.I64(m.ResignHeight)
	w.I64(m.BanHeight)
	w.FixedBytes(m.ResignTx.Bytes())
	w.FixedBytes(m.BanTx.Bytes())
	w.U64(m.MintedBlocks)
	return nil
}

func (m *Masternode) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.OwnerAuthAddress[:])
	m.OwnerType = validatorpk.AddrType(r.U8())
	r.FixedBytes(m.OperatorAuthAddress[:])
	m.OperatorType = validatorpk.AddrType(r.U8())
	m.CreationHeight = r.I64()
	m.ResignHeight = r.I64()
	m.BanHeight = r.I64()
	r.FixedBytes(m.ResignTx[:])
	r.FixedBytes(m.BanTx[:])
	m.MintedBlocks = r.U64()
	return nil
}

// GetMasternode returns nil for an unknown id.
func (v *View) GetMasternode(id hash.Hash) *Masternode {
	var m Masternode
	if !v.getRecord(masternodeKey(id), &m) {
		return nil
	}
	return &m
}

func (v *View) setMasternode(id hash.Hash, m *Masternode) {
	v.putRecord(masternodeKey(id), m)
}

func (v *View) getIndex(k []byte) (hash.Hash, bool) {
	raw := v.get(k)
	if raw == nil {
		return hash.Hash{}, false
	}
	return hash.BytesToHash(raw), true
}

// GetMasternodeIDByOwner resolves the owner index.
func (v *View) GetMasternodeIDByOwner(owner validatorpk.KeyID) (hash.Hash, bool) {
	return v.getIndex(ownerKey(owner))
}

// GetMasternodeIDByOperator resolves the operator index.
func (v *View) GetMasternodeIDByOperator(operator validatorpk.KeyID) (hash.Hash, bool) {
	return v.getIndex(operatorKey(operator))
}

// GetMasternodeByOperator resolves the operator index and loads the node.
// An index entry without its node is fatal.
func (v *View) GetMasternodeByOperator(operator validatorpk.KeyID) (hash.Hash, *Masternode, bool) {
	id, ok := v.GetMasternodeIDByOperator(operator)
	if !ok {
		return hash.Hash{}, nil, false
	}
	m := v.GetMasternode(id)
	if m == nil {
		panic("ledger: operator index points to a missing masternode " + id.Hex())
	}
	return id, m, true
}

// CreateMasternode registers a node and both of its auth indices. Owner and
// operator keys must not be used by any other node, in either role.
func (v *View) CreateMasternode(id hash.Hash, m *Masternode) Res {
	if v.has(masternodeKey(id)) {
		return Resf(AlreadyExists, "masternode %s already exists", id.Hex())
	}
	for _, k := range [][]byte{
		ownerKey(m.OwnerAuthAddress), operatorKey(m.OwnerAuthAddress),
		ownerKey(m.OperatorAuthAddress), operatorKey(m.OperatorAuthAddress),
	} {
		if v.has(k) {
			return Resf(AlreadyExists, "masternode with key %s already exists", keyIDOf(k))
		}
	}
	v.setMasternode(id, m)
	v.put(ownerKey(m.OwnerAuthAddress), id.Bytes())
	v.put(operatorKey(m.OperatorAuthAddress), id.Bytes())
	return ResOk()
}

func keyIDOf(indexKey []byte) validatorpk.KeyID {
	var id validatorpk.KeyID
	copy(id[:], indexKey[1:])
	return id
}

// ResignMasternode marks a node resigned at height. Its collateral unlocks
// ResignDelay blocks later.
func (v *View) ResignMasternode(id hash.Hash, txHash hash.Hash, height idx.Block) Res {
	m := v.GetMasternode(id)
	if m == nil {
		return Resf(NotFound, "masternode %s not found", id.Hex())
	}
	if m.BanHeight >= 0 {
		return Resf(Forbidden, "masternode %s is banned", id.Hex())
	}
	if m.ResignHeight >= 0 {
		return Resf(Rejected, "masternode %s already resigned", id.Hex())
	}
	m.ResignHeight = int64(height)
	m.ResignTx = txHash
	v.setMasternode(id, m)
	return ResOk()
}

// IncrementMintedBy credits a block to the node operating operator. A block
// minted by an unregistered operator cannot have passed validation, so a
// miss is fatal. The credit is taken back by the block's undo record.
func (v *View) IncrementMintedBy(operator validatorpk.KeyID) {
	id, m, ok := v.GetMasternodeByOperator(operator)
	if !ok {
		panic("ledger: minted block by unknown operator " + operator.String())
	}
	m.MintedBlocks++
	v.setMasternode(id, m)
}

// CanSpend reports whether the collateral output of node id may be spent:
// always for coins that are not collateral, otherwise only once the node
// is Resigned or Banned.
func (v *View) CanSpend(id hash.Hash, height idx.Block, rules opera.MasternodeRules) bool {
	m := v.GetMasternode(id)
	if m == nil {
		return true
	}
	s := m.State(height, rules)
	return s == Resigned || s == Banned
}

// MasternodeEntry is a node together with its id.
type MasternodeEntry struct {
	ID   hash.Hash
	Node *Masternode
}

// ForEachMasternode walks nodes in id order from start.
func (v *View) ForEachMasternode(start hash.Hash, fn func(id hash.Hash, m *Masternode) bool) {
	v.forEach([]byte{prefixMasternode}, start.Bytes(), func(k, val []byte) bool {
		var m Masternode
		if err := cser.Unmarshal(val, &m); err != nil {
			fatal(err, "ledger: corrupted masternode")
		}
		return fn(hash.BytesToHash(k), &m)
	})
}

// ListMasternodes returns one page of nodes in id order.
func (v *View) ListMasternodes(p Page) []MasternodeEntry {
	var out []MasternodeEntry
	v.forPage([]byte{prefixMasternode}, p, func(k, val []byte) bool {
		var m Masternode
		if err := cser.Unmarshal(val, &m); err != nil {
			fatal(err, "ledger: corrupted masternode")
		}
		out = append(out, MasternodeEntry{ID: hash.BytesToHash(k), Node: &m})
		return true
	})
	return out
}

// ActiveMasternodes returns the nodes eligible to mint at height, in id
// order.
func (v *View) ActiveMasternodes(height idx.Block, rules opera.MasternodeRules) []MasternodeEntry {
	var out []MasternodeEntry
	v.ForEachMasternode(hash.Hash{}, func(id hash.Hash, m *Masternode) bool {
		if m.IsActive(height, rules) {
			out = append(out, MasternodeEntry{ID: id, Node: m})
		}
		return true
	})
	return out
}
