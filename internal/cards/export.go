package cards

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

type jsonValue struct {
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type callJSON struct {
	Signature string      `json:"signature"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Value     string      `json:"value,omitempty"`
	Args      []jsonValue `json:"args"`
	Result    []jsonValue `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// JSON renders the call, its arguments and its outcome as indented JSON.
func (c *Call) JSON() ([]byte, error) {
	out := callJSON{
		Signature: c.Signature(),
		From:      c.From.Hex(),
		To:        c.To.Hex(),
		Args:      values(c.Params, c.Args),
		Result:    values(c.Outputs, c.Result),
	}
	if c.Value != nil && c.Value.Sign() > 0 {
		out.Value = c.Value.String()
	}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode call")
	}
	return data, nil
}

// ReceiptJSON renders the receipt of a resolved transaction.
func (t *Transaction) ReceiptJSON() ([]byte, error) {
	if t.Receipt == nil {
		return nil, errors.Newf("transaction %s has no receipt yet", t.Hash.Hex())
	}
	data, err := json.MarshalIndent(t.Receipt, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode receipt")
	}
	return data, nil
}

func values(fields []soltype.Field, vals []soltype.Value) []jsonValue {
	if len(vals) == 0 {
		return []jsonValue{}
	}
	out := make([]jsonValue, len(vals))
	for i, v := range vals {
		out[i] = jsonValue{Value: soltype.Format(v)}
		if v != nil {
			out[i].Type = v.Type().String()
		}
		if i < len(fields) {
			out[i].Name = fields[i].Name
		}
	}
	return out
}
