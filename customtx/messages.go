package customtx

import (
	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/go-opera-ledger/inter"
	"github.com/rony4d/go-opera-ledger/inter/validatorpk"
	"github.com/rony4d/go-opera-ledger/ledger"
	"github.com/rony4d/go-opera-ledger/utils/cser"
)

const (
	maxScriptSize = 10000
	maxTextSize   = 1024
	maxRecipients = 1000
)

// Message is the decoded payload of an operation.
type Message interface {
	cser.Marshaler
	cser.Unmarshaler
	Type() TxType
}

// NewMessage returns an empty message of type t, or nil for an unknown
// type.
func NewMessage(t TxType) Message {
	switch t {
	case CreateMasternode:
		return &CreateMasternodeMessage{}
	case ResignMasternode:
		return &ResignMasternodeMessage{}
	case CreateToken:
		return &CreateTokenMessage{}
	case DestroyToken:
		return &DestroyTokenMessage{}
	case MintToken:
		return &MintTokenMessage{}
	case CreateOrder:
		return &CreateOrderMessage{}
	case DestroyOrder:
		return &DestroyOrderMessage{}
	case MatchOrders:
		return &MatchOrdersMessage{}
	case UtxosToAccount:
		return &UtxosToAccountMessage{}
	case AccountToAccount:
		return &AccountToAccountMessage{}
	case AccountToUtxos:
		return &AccountToUtxosMessage{}
	case AppointOracle:
		return &AppointOracleMessage{}
	case RemoveOracle:
		return &RemoveOracleMessage{}
	case SetOracleData:
		return &SetOracleDataMessage{}
	case CriminalProof:
		return &CriminalProofMessage{}
	case AnchorReward:
		return &AnchorRewardMessage{}
	}
	return nil
}

// Decode parses the payload of an operation of type t.
func Decode(t TxType, payload []byte) (Message, error) {
	msg := NewMessage(t)
	if msg == nil {
		return nil, ErrUnknownType
	}
	if err := cser.Unmarshal(payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode builds the marker output script carrying msg.
func Encode(msg Message) (inter.Script, error) {
	payload, err := cser.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return MarkerScript(msg.Type(), payload), nil
}

// CreateMasternodeMessage registers a node. The owner is the key the
// collateral output (the second output) is locked to.
type CreateMasternodeMessage struct {
	OperatorType        validatorpk.AddrType
	OperatorAuthAddress validatorpk.KeyID
}

func (*CreateMasternodeMessage) Type() TxType { return CreateMasternode }

func (m *CreateMasternodeMessage) MarshalCSER(w *cser.Writer) error {
	w.U8(uint8(m.OperatorType))
	w.FixedBytes(m.OperatorAuthAddress[:])
	return nil
}

func (m *CreateMasternodeMessage) UnmarshalCSER(r *cser.Reader) error {
	m.OperatorType = validatorpk.AddrType(r.U8())
	r.FixedBytes(m.OperatorAuthAddress[:])
	return nil
}

type ResignMasternodeMessage struct {
	ID hash.Hash
}

func (*ResignMasternodeMessage) Type() TxType { return ResignMasternode }

func (m *ResignMasternodeMessage) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.ID.Bytes())
	return nil
}

func (m *ResignMasternodeMessage) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.ID[:])
	return nil
}

// CreateTokenMessage registers a token owned by the script of the second
// output.
type CreateTokenMessage struct {
	Symbol    string
	Name      string
	Decimal   uint8
	Limit     int64
	Mintable  bool
	Tradeable bool
}

func (*CreateTokenMessage) Type() TxType { return CreateToken }

func (m *CreateTokenMessage) MarshalCSER(w *cser.Writer) error {
	w.String(m.Symbol)
	w.String(m.Name)
	w.U8(m.Decimal)
	w.I64(m.Limit)
	w.Bool(m.Mintable)
	w.Bool(m.Tradeable)
	return nil
}

func (m *CreateTokenMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Symbol = r.String(maxTextSize)
	m.Name = r.String(maxTextSize)
	m.Decimal = r.U8()
	m.Limit = r.I64()
	m.Mintable = r.Bool()
	m.Tradeable = r.Bool()
	return nil
}

type DestroyTokenMessage struct {
	Token uint32
}

func (*DestroyTokenMessage) Type() TxType { return DestroyToken }

func (m *DestroyTokenMessage) MarshalCSER(w *cser.Writer) error {
	w.U32(m.Token)
	return nil
}

func (m *DestroyTokenMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Token = r.U32()
	return nil
}

// MintTokenMessage credits freshly minted amounts to To.
type MintTokenMessage struct {
	To      inter.Script
	Amounts ledger.Balances
}

func (*MintTokenMessage) Type() TxType { return MintToken }

func (m *MintTokenMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.To)
	return m.Amounts.MarshalCSER(w)
}

func (m *MintTokenMessage) UnmarshalCSER(r *cser.Reader) error {
	m.To = r.SliceBytes(maxScriptSize)
	return m.Amounts.UnmarshalCSER(r)
}

// CreateOrderMessage places an order under the id of its transaction.
type CreateOrderMessage struct {
	Owner       inter.Script
	Give        ledger.TokenAmount
	Take        ledger.TokenAmount
	Premium     int64
	TimeInForce uint32
}

func (*CreateOrderMessage) Type() TxType { return CreateOrder }

func (m *CreateOrderMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.Owner)
	_ = m.Give.MarshalCSER(w)
	_ = m.Take.MarshalCSER(w)
	w.I64(m.Premium)
	w.U32(m.TimeInForce)
	return nil
}

func (m *CreateOrderMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Owner = r.SliceBytes(maxScriptSize)
	_ = m.Give.UnmarshalCSER(r)
	_ = m.Take.UnmarshalCSER(r)
	m.Premium = r.I64()
	m.TimeInForce = r.U32()
	return nil
}

type DestroyOrderMessage struct {
	ID hash.Hash
}

func (*DestroyOrderMessage) Type() TxType { return DestroyOrder }

func (m *DestroyOrderMessage) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.ID.Bytes())
	return nil
}

func (m *DestroyOrderMessage) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.ID[:])
	return nil
}

// MatchOrdersMessage settles Alice against Carol. The spread and premiums
// go to Matcher.
type MatchOrdersMessage struct {
	Alice   hash.Hash
	Carol   hash.Hash
	Matcher inter.Script
}

func (*MatchOrdersMessage) Type() TxType { return MatchOrders }

func (m *MatchOrdersMessage) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.Alice.Bytes())
	w.FixedBytes(m.Carol.Bytes())
	w.SliceBytes(m.Matcher)
	return nil
}

func (m *MatchOrdersMessage) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.Alice[:])
	r.FixedBytes(m.Carol[:])
	m.Matcher = r.SliceBytes(maxScriptSize)
	return nil
}

// Recipient is one destination of a transfer.
type Recipient struct {
	To      inter.Script
	Amounts ledger.Balances
}

// Recipients is the destination list of a transfer.
type Recipients []Recipient

// Total sums every amount.
func (rs Recipients) Total() (ledger.Balances, ledger.Res) {
	var all ledger.Balances
	for _, r := range rs {
		if len(r.To) == 0 {
			return nil, ledger.Resf(ledger.InvalidPayload, "empty recipient script")
		}
		all = append(all, r.Amounts...)
	}
	return all.Normalize()
}

func (rs *Recipients) MarshalCSER(w *cser.Writer) error {
	w.U56(uint64(len(*rs)))
	for i := range *rs {
		w.SliceBytes((*rs)[i].To)
		_ = (*rs)[i].Amounts.MarshalCSER(w)
	}
	return nil
}

func (rs *Recipients) UnmarshalCSER(r *cser.Reader) error {
	n := r.U56()
	if n > maxRecipients {
		return cser.ErrTooLargeAlloc
	}
	*rs = make(Recipients, n)
	for i := range *rs {
		(*rs)[i].To = r.SliceBytes(maxScriptSize)
		if err := (*rs)[i].Amounts.UnmarshalCSER(r); err != nil {
			return err
		}
	}
	return nil
}

// UtxosToAccountMessage moves the tokens burnt by the unspendable outputs
// of the transaction into accounts.
type UtxosToAccountMessage struct {
	To Recipients
}

func (*UtxosToAccountMessage) Type() TxType { return UtxosToAccount }

func (m *UtxosToAccountMessage) MarshalCSER(w *cser.Writer) error {
	return m.To.MarshalCSER(w)
}

func (m *UtxosToAccountMessage) UnmarshalCSER(r *cser.Reader) error {
	return m.To.UnmarshalCSER(r)
}

type AccountToAccountMessage struct {
	From inter.Script
	To   Recipients
}

func (*AccountToAccountMessage) Type() TxType { return AccountToAccount }

func (m *AccountToAccountMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.From)
	return m.To.MarshalCSER(w)
}

func (m *AccountToAccountMessage) UnmarshalCSER(r *cser.Reader) error {
	m.From = r.SliceBytes(maxScriptSize)
	return m.To.UnmarshalCSER(r)
}

// AccountToUtxosMessage debits From. The outputs starting at
// MintingOutputsStart must carry exactly Amounts.
type AccountToUtxosMessage struct {
	From                inter.Script
	Amounts             ledger.Balances
	MintingOutputsStart uint32
}

func (*AccountToUtxosMessage) Type() TxType { return AccountToUtxos }

func (m *AccountToUtxosMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.From)
	_ = m.Amounts.MarshalCSER(w)
	w.U32(m.MintingOutputsStart)
	return nil
}

func (m *AccountToUtxosMessage) UnmarshalCSER(r *cser.Reader) error {
	m.From = r.SliceBytes(maxScriptSize)
	if err := m.Amounts.UnmarshalCSER(r); err != nil {
		return err
	}
	m.MintingOutputsStart = r.U32()
	return nil
}

type AppointOracleMessage struct {
	Oracle inter.Script
	Weight int64
}

func (*AppointOracleMessage) Type() TxType { return AppointOracle }

func (m *AppointOracleMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.Oracle)
	w.I64(m.Weight)
	return nil
}

func (m *AppointOracleMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Oracle = r.SliceBytes(maxScriptSize)
	m.Weight = r.I64()
	return nil
}

type RemoveOracleMessage struct {
	Oracle inter.Script
}

func (*RemoveOracleMessage) Type() TxType { return RemoveOracle }

func (m *RemoveOracleMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.Oracle)
	return nil
}

func (m *RemoveOracleMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Oracle = r.SliceBytes(maxScriptSize)
	return nil
}

// SetOracleDataMessage posts a price valid for ValidFor blocks.
type SetOracleDataMessage struct {
	Oracle   inter.Script
	Token    uint32
	Price    int64
	ValidFor uint32
}

func (*SetOracleDataMessage) Type() TxType { return SetOracleData }

func (m *SetOracleDataMessage) MarshalCSER(w *cser.Writer) error {
	w.SliceBytes(m.Oracle)
	w.U32(m.Token)
	w.I64(m.Price)
	w.U32(m.ValidFor)
	return nil
}

func (m *SetOracleDataMessage) UnmarshalCSER(r *cser.Reader) error {
	m.Oracle = r.SliceBytes(maxScriptSize)
	m.Token = r.U32()
	m.Price = r.I64()
	m.ValidFor = r.U32()
	return nil
}

// CriminalProofMessage bans the minter of a double signed pair.
type CriminalProofMessage struct {
	Proof inter.DoubleSignProof
}

func (*CriminalProofMessage) Type() TxType { return CriminalProof }

func (m *CriminalProofMessage) MarshalCSER(w *cser.Writer) error {
	return m.Proof.MarshalCSER(w)
}

func (m *CriminalProofMessage) UnmarshalCSER(r *cser.Reader) error {
	return m.Proof.UnmarshalCSER(r)
}

// AnchorRewardMessage marks its tx as the reward of an anchor.
type AnchorRewardMessage struct {
	AnchorTx hash.Hash
}

func (*AnchorRewardMessage) Type() TxType { return AnchorReward }

func (m *AnchorRewardMessage) MarshalCSER(w *cser.Writer) error {
	w.FixedBytes(m.AnchorTx.Bytes())
	return nil
}

func (m *AnchorRewardMessage) UnmarshalCSER(r *cser.Reader) error {
	r.FixedBytes(m.AnchorTx[:])
	return nil
}
