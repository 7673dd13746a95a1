package chain

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// TransportError is a failure to reach the node: dial errors, timeouts,
// broken connections and HTTP errors. Polling retries these; one-shot
// operations surface them.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExecutionError is a call or transaction the node refused to execute.
type ExecutionError struct {
	Reason string
	Data   []byte
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.Reason != "" {
		return "execution reverted: " + e.Reason
	}
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsTransport reports whether err means the node could not be reached.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// classify sorts an RPC error into transport, execution, or a plain node
// error wrapped with op.
func classify(op string, err error) error {
	if err == nil || errors.Is(err, ethereum.NotFound) {
		return err
	}
	var rpcErr rpc.Error
	if !errors.As(err, &rpcErr) {
		var httpErr rpc.HTTPError
		if errors.As(err, &httpErr) {
			return &TransportError{Op: op, Err: err}
		}
		if strings.Contains(err.Error(), "execution reverted") {
			return newExecutionError(err)
		}
		return &TransportError{Op: op, Err: err}
	}
	if rpcErr.ErrorCode() == 3 || strings.Contains(err.Error(), "execution reverted") {
		return newExecutionError(err)
	}
	return errors.Wrap(err, op)
}

func newExecutionError(err error) *ExecutionError {
	e := &ExecutionError{Err: err}
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return e
	}
	s, ok := dataErr.ErrorData().(string)
	if !ok {
		return e
	}
	data, decErr := hexutil.Decode(s)
	if decErr != nil {
		return e
	}
	e.Data = data
	if reason, uerr := abi.UnpackRevert(data); uerr == nil {
		e.Reason = reason
	}
	return e
}

func errType(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransport(err):
		return "transport"
	}
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return "execution"
	}
	return "node"
}
