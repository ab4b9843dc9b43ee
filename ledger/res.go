package ledger

import "fmt"

// Code classifies why a ledger operation was refused.
type Code uint8

const (
	CodeOk Code = iota
	NotEnoughBalance
	AlreadyExists
	NotFound
	NotAuthorized
	InvalidPayload
	InvalidAmount
	Expired
	Forbidden
	Rejected
)

var codeNames = map[Code]string{
	CodeOk:           "Ok",
	NotEnoughBalance: "NotEnoughBalance",
	AlreadyExists:    "AlreadyExists",
	NotFound:         "NotFound",
	NotAuthorized:    "NotAuthorized",
	InvalidPayload:   "InvalidPayload",
	InvalidAmount:    "InvalidAmount",
	Expired:          "Expired",
	Forbidden:        "Forbidden",
	Rejected:         "Rejected",
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", uint8(c))
}

// Res is the outcome of applying user supplied data. A failed Res never
// leaves partial state behind as long as the caller discards the cache the
// operation ran in.
type Res struct {
	Ok   bool
	Code Code
	Msg  string
}

// ResOk is the successful result.
func ResOk() Res {
	return Res{Ok: true}
}

// Resf builds a failed result.
func Resf(code Code, format string, args ...interface{}) Res {
	return Res{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func (r Res) String() string {
	if r.Ok {
		return "ok"
	}
	return r.Code.String() + ": " + r.Msg
}

// Err converts a failed result into an error, nil on success.
func (r Res) Err() error {
	if r.Ok {
		return nil
	}
	return ResError{r}
}

// ResError carries a failed Res through error returns.
type ResError struct {
	Res Res
}

func (e ResError) Error() string {
	return e.Res.String()
}
