package cards

import (
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

// Kind is the kind of operation a card represents.
type Kind int

const (
	KindCall Kind = iota
	KindTransaction
	KindLog
)

func (k Kind) String() string {
	switch k {
	case KindCall:
		return "Call"
	case KindTransaction:
		return "Transaction"
	case KindLog:
		return "Log"
	}
	return "Unknown"
}

// Status is the lifecycle of a transaction card.
type Status int

const (
	Pending Status = iota
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Success:
		return "Success"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
	SeverityError
)

// ErrAlreadyResolved is returned when resolving a transaction that left
// Pending.
var ErrAlreadyResolved = errors.New("transaction already resolved")

// Card is one entry of the session's output: a call, a transaction or a
// log message. Exactly one of Call, Tx and Log is set, matching Kind.
type Card struct {
	ID        uint64
	Kind      Kind
	CreatedAt time.Time

	Call *Call
	Tx   *Transaction
	Log  *Log
}

// Call is a read-only invocation and its outcome.
type Call struct {
	Method  string
	Params  []soltype.Field
	Outputs []soltype.Field
	Args    []soltype.Value
	From    common.Address
	To      common.Address
	Value   *big.Int

	Result []soltype.Value
	// Err is the execution error when the call reverted.
	Err error
}

// Signature is the canonical method signature.
func (c *Call) Signature() string {
	return soltype.Signature(c.Method, c.Params)
}

// Transaction is a submitted state-changing invocation.
type Transaction struct {
	Hash   common.Hash
	Method string
	Params []soltype.Field
	Args   []soltype.Value
	From   common.Address
	To     common.Address
	Value  *big.Int

	Status      Status
	GasUsed     *uint64
	BlockNumber *uint64
	Logs        []*types.Log
	Receipt     *types.Receipt

	// Stalled is set when background polling gave up while the
	// transaction was still pending.
	Stalled bool
}

func (t *Transaction) Signature() string {
	return soltype.Signature(t.Method, t.Params)
}

// Resolve moves a pending transaction to Success or Failed according to the
// receipt status, filling gas, block and logs in the same step. A
// transaction resolves at most once.
func (t *Transaction) Resolve(r *types.Receipt) error {
	if t.Status != Pending {
		return ErrAlreadyResolved
	}
	if r == nil {
		return errors.New("nil receipt")
	}
	status := Failed
	if r.Status == types.ReceiptStatusSuccessful {
		status = Success
	}
	gas := r.GasUsed
	var block *uint64
	if r.BlockNumber != nil {
		n := r.BlockNumber.Uint64()
		block = &n
	}

	t.Status = status
	t.GasUsed = &gas
	t.BlockNumber = block
	t.Logs = r.Logs
	t.Receipt = r
	t.Stalled = false
	return nil
}

// Log is an informational or error message.
type Log struct {
	Severity Severity
	Message  string
}

// NewCall returns a call card.
func NewCall(c Call) *Card {
	return &Card{Kind: KindCall, Call: &c}
}

// NewTransaction returns a pending transaction card.
func NewTransaction(tx Transaction) *Card {
	tx.Status = Pending
	tx.GasUsed = nil
	tx.BlockNumber = nil
	tx.Logs = nil
	tx.Receipt = nil
	return &Card{Kind: KindTransaction, Tx: &tx}
}

// NewLog returns a log card.
func NewLog(sev Severity, msg string) *Card {
	return &Card{Kind: KindLog, Log: &Log{Severity: sev, Message: msg}}
}

func Info(msg string) *Card  { return NewLog(SeverityInfo, msg) }
func Warn(msg string) *Card  { return NewLog(SeverityWarn, msg) }
func Error(msg string) *Card { return NewLog(SeverityError, msg) }
