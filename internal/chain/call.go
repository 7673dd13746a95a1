package chain

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/yolodolo42/evmcli/internal/soltype"
	"github.com/yolodolo42/evmcli/internal/trace"
)

// Invocation is a contract method applied to typed arguments.
type Invocation struct {
	From    common.Address
	To      common.Address
	Method  string
	Params  []soltype.Field
	Outputs []soltype.Field
	Args    []soltype.Value
	Value   *big.Int
}

// Signature is the canonical method signature.
func (inv Invocation) Signature() string {
	return soltype.Signature(inv.Method, inv.Params)
}

// Calldata encodes the selector and arguments.
func (inv Invocation) Calldata() ([]byte, error) {
	data, err := soltype.EncodeCall(inv.Method, inv.Params, inv.Args)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", inv.Signature())
	}
	return data, nil
}

// TraceRequest is the same message as seen by debug_traceCall.
func (inv Invocation) TraceRequest() (trace.CallRequest, error) {
	data, err := inv.Calldata()
	if err != nil {
		return trace.CallRequest{}, err
	}
	return trace.CallRequest{From: inv.From, To: inv.To, Data: data, Value: inv.Value}, nil
}

// SubmitCall runs inv as a read-only call and decodes its outputs.
func (c *Client) SubmitCall(ctx context.Context, inv Invocation) ([]soltype.Value, error) {
	data, err := inv.Calldata()
	if err != nil {
		return nil, err
	}
	to := inv.To
	out, err := c.CallContract(ctx, ethereum.CallMsg{From: inv.From, To: &to, Data: data, Value: inv.Value})
	if err != nil {
		return nil, err
	}
	if len(inv.Outputs) == 0 {
		return nil, nil
	}
	values, err := soltype.Decode(inv.Outputs, out)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s result", inv.Signature())
	}
	return values, nil
}
