// Package contract loads ABI files and turns their methods into form
// requests and their events into readable log lines.
package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/afero"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/form"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

// Contract is a deployed instance of an ABI.
type Contract struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
}

// Tag classifies a method for the method list.
type Tag string

const (
	TagView    Tag = "view"
	TagSend    Tag = "send"
	TagPayable Tag = "payable"
)

// Method is one callable function of a contract.
type Method struct {
	Contract *Contract
	Name     string
	Params   []soltype.Field
	Outputs  []soltype.Field
	Tag      Tag
}

// IsCall reports whether the method is read-only and runs as eth_call.
func (m Method) IsCall() bool { return m.Tag == TagView }

// Signature is the canonical signature, e.g. transfer(address,uint256).
func (m Method) Signature() string { return soltype.Signature(m.Name, m.Params) }

// Label renders the method for a list: name(type name, ...) -> (outputs).
func (m Method) Label() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = strings.TrimSpace(p.Type.String() + " " + p.Name)
	}
	label := m.Name + "(" + strings.Join(params, ", ") + ")"
	if len(m.Outputs) > 0 {
		outs := make([]string, len(m.Outputs))
		for i, o := range m.Outputs {
			outs[i] = o.Type.String()
		}
		label += " -> " + strings.Join(outs, ", ")
	}
	return label
}

// Request is the form request that collects the method's arguments.
func (m Method) Request() form.Request {
	return form.Request{
		Title:   fmt.Sprintf("%s.%s", m.Contract.Name, m.Signature()),
		Method:  m.Name,
		Params:  m.Params,
		Payable: m.Tag == TagPayable,
	}
}

// Invocation applies args to the method on behalf of from.
func (m Method) Invocation(from common.Address, args []soltype.Value, value *big.Int) chain.Invocation {
	return chain.Invocation{
		From:    from,
		To:      m.Contract.Address,
		Method:  m.Name,
		Params:  m.Params,
		Outputs: m.Outputs,
		Args:    args,
		Value:   value,
	}
}

// Methods lists the contract's functions, read-only ones first, then by
// name.
func (c *Contract) Methods() ([]Method, error) {
	methods := make([]Method, 0, len(c.ABI.Methods))
	for _, am := range c.ABI.Methods {
		params, err := soltype.FieldsFromArguments(am.Inputs)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s inputs", c.Name, am.RawName)
		}
		outputs, err := soltype.FieldsFromArguments(am.Outputs)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s outputs", c.Name, am.RawName)
		}
		methods = append(methods, Method{
			Contract: c,
			Name:     am.RawName,
			Params:   params,
			Outputs:  outputs,
			Tag:      tagOf(am),
		})
	}
	sort.Slice(methods, func(i, j int) bool {
		a, b := methods[i], methods[j]
		if a.IsCall() != b.IsCall() {
			return a.IsCall()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Signature() < b.Signature()
	})
	return methods, nil
}

func tagOf(m abi.Method) Tag {
	switch {
	case m.IsConstant():
		return TagView
	case m.IsPayable():
		return TagPayable
	default:
		return TagSend
	}
}

// LoadABI reads an ABI from path. Both a bare ABI array and a compiler
// artifact with an "abi" key are accepted.
func LoadABI(fs afero.Fs, path string) (abi.ABI, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "read abi %s", path)
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return abi.ABI{}, errors.Wrapf(err, "parse artifact %s", path)
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, errors.Newf("%s has no abi field", path)
		}
		data = artifact.ABI
	}
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "parse abi %s", path)
	}
	return parsed, nil
}

// Load reads the ABI at path and binds it to address. An empty name is
// taken from the file name.
func Load(fs afero.Fs, name string, address common.Address, path string) (*Contract, error) {
	parsed, err := LoadABI(fs, path)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Contract{Name: name, Address: address, ABI: parsed}, nil
}
