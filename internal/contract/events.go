package contract

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

// DescribeLog renders a receipt log. Logs emitted by a known contract are
// decoded against its events; anything else is shown raw.
func (r *Registry) DescribeLog(index int, l *types.Log) []string {
	if lines, ok := r.decodeLog(index, l); ok {
		return lines
	}
	lines := []string{fmt.Sprintf("[%d] Address: %s", index, l.Address.Hex())}
	if len(l.Topics) > 0 {
		topics := make([]string, len(l.Topics))
		for i, t := range l.Topics {
			topics[i] = t.Hex()
		}
		lines = append(lines, "    Topics: "+strings.Join(topics, ", "))
	}
	if len(l.Data) > 0 {
		lines = append(lines, "    Data: "+hexutil.Encode(l.Data))
	}
	return lines
}

// DescribeLogs renders every log of a receipt.
func (r *Registry) DescribeLogs(logs []*types.Log) []string {
	if len(logs) == 0 {
		return []string{"no logs"}
	}
	var lines []string
	for i, l := range logs {
		lines = append(lines, r.DescribeLog(i, l)...)
	}
	return lines
}

func (r *Registry) decodeLog(index int, l *types.Log) ([]string, bool) {
	if len(l.Topics) == 0 {
		return nil, false
	}
	c, ok := r.ByAddress(l.Address)
	if !ok {
		return nil, false
	}
	ev, err := c.ABI.EventByID(l.Topics[0])
	if err != nil {
		return nil, false
	}

	body, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, false
	}
	var indexed abi.Arguments
	for _, in := range ev.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if len(l.Topics)-1 != len(indexed) {
		return nil, false
	}
	topics := make(map[string]any, len(indexed))
	if err := abi.ParseTopicsIntoMap(topics, indexed, l.Topics[1:]); err != nil {
		return nil, false
	}

	lines := []string{fmt.Sprintf("[%d] %s @ %s", index, ev.Name, l.Address.Hex())}
	bodyIdx, topicIdx := 0, 0
	for i, in := range ev.Inputs {
		name := in.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		var rendered string
		if in.Indexed {
			rendered = renderTopic(in, topics[in.Name], l.Topics[1+topicIdx].Hex())
			topicIdx++
		} else {
			rendered = renderNative(in.Type, body[bodyIdx])
			bodyIdx++
		}
		lines = append(lines, fmt.Sprintf("    %s: %s", name, rendered))
	}
	return lines, true
}

// renderTopic shows an indexed argument. Dynamic types are stored as their
// hash, so only the topic itself can be shown.
func renderTopic(in abi.Argument, native any, topic string) string {
	switch in.Type.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return topic
	}
	if native == nil {
		return topic
	}
	return renderNative(in.Type, native)
}

func renderNative(at abi.Type, native any) string {
	t, err := soltype.FromABI(at)
	if err != nil {
		return fmt.Sprint(native)
	}
	v, err := soltype.FromNative(t, native)
	if err != nil {
		return fmt.Sprint(native)
	}
	return soltype.Format(v)
}
