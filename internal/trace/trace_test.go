package trace

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hexops/autogold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTracer struct {
	raw      json.RawMessage
	err      error
	txHashes []common.Hash
	calls    []CallRequest
	params   []Params
}

func (f *fakeTracer) TraceTransaction(_ context.Context, hash common.Hash, params Params) (json.RawMessage, error) {
	f.txHashes = append(f.txHashes, hash)
	f.params = append(f.params, params)
	return f.raw, f.err
}

func (f *fakeTracer) TraceCall(_ context.Context, call CallRequest, params Params) (json.RawMessage, error) {
	f.calls = append(f.calls, call)
	f.params = append(f.params, params)
	return f.raw, f.err
}

func TestDefaultConfig(t *testing.T) {
	autogold.Want("call tracer", `{"tracer":"callTracer","tracerConfig":{"onlyTopCall":false,"withLog":true}}`).Equal(t, DefaultConfig(CallTracer).JSON())
	autogold.Want("prestate tracer", `{"tracer":"prestateTracer","tracerConfig":{"diffMode":true}}`).Equal(t, DefaultConfig(PrestateTracer).JSON())
	autogold.Want("oplog tracer", `{}`).Equal(t, DefaultConfig(OplogTracer).JSON())
	autogold.Want("flat call tracer", `{"tracer":"flatCallTracer","tracerConfig":{"includePrecompiles":false}}`).Equal(t, DefaultConfig(FlatCallTracer).JSON())
}

func TestConfig_Edit(t *testing.T) {
	cfg := DefaultConfig(CallTracer)
	cfg.Toggle(0)
	v, ok := cfg.Get("onlyTopCall")
	require.True(t, ok)
	assert.True(t, v)

	require.NoError(t, cfg.Set("withLog", false))
	assert.Error(t, cfg.Set("diffMode", true))
	cfg.Toggle(7)

	assert.Equal(t, `{"tracer":"callTracer","tracerConfig":{"onlyTopCall":true,"withLog":false}}`, cfg.JSON())

	t.Run("defaults are fresh", func(t *testing.T) {
		v, _ := DefaultConfig(CallTracer).Get("withLog")
		assert.True(t, v)
	})
}

func TestTransaction(t *testing.T) {
	hash := common.HexToHash("0x01")
	tracer := &fakeTracer{raw: json.RawMessage(`{"type":"CALL","from":"0x0000000000000000000000000000000000000001","to":"0x0000000000000000000000000000000000000002","gas":"0x5208","gasUsed":"0x5208","input":"0xa9059cbb"}`)}

	cfg := DefaultConfig(PrestateTracer)
	res, err := Transaction(context.Background(), tracer, hash, cfg)
	require.NoError(t, err)

	require.Len(t, tracer.txHashes, 1)
	assert.Equal(t, hash, tracer.txHashes[0])
	assert.Empty(t, tracer.calls)
	assert.Equal(t, "prestateTracer", tracer.params[0].Tracer)
	assert.Equal(t, map[string]bool{"diffMode": true}, tracer.params[0].TracerConfig)
	assert.Equal(t, hash.Hex(), res.Target)
	assert.NotEmpty(t, res.ID)

	t.Run("result keeps its own config", func(t *testing.T) {
		cfg.Toggle(0)
		v, _ := res.Config.Get("diffMode")
		assert.True(t, v)
	})

	t.Run("errors are wrapped", func(t *testing.T) {
		boom := errors.New("method not found")
		_, err := Transaction(context.Background(), &fakeTracer{err: boom}, hash, cfg)
		assert.ErrorIs(t, err, boom)
	})
}

func TestCall_UsesCallTracerDefaults(t *testing.T) {
	tracer := &fakeTracer{raw: json.RawMessage(`{}`)}
	req := CallRequest{
		From:  common.HexToAddress("0x01"),
		To:    common.HexToAddress("0x02"),
		Data:  []byte{0xa9, 0x05, 0x9c, 0xbb},
		Value: big.NewInt(0),
	}
	res, err := Call(context.Background(), tracer, req, "transfer(address,uint256)")
	require.NoError(t, err)

	require.Len(t, tracer.calls, 1)
	assert.Empty(t, tracer.txHashes)
	assert.Equal(t, DefaultConfig(CallTracer).Params(), tracer.params[0])
	assert.Equal(t, CallTracer, res.Config.Kind)
}

func TestCallRequest_MarshalJSON(t *testing.T) {
	req := CallRequest{
		From:  common.HexToAddress("0x01"),
		To:    common.HexToAddress("0x02"),
		Data:  []byte{0x12, 0x34},
		Value: big.NewInt(255),
	}
	b, err := json.Marshal(req)
	require.NoError(t, err)
	autogold.Want("call request", `{"data":"0x1234","from":"0x0000000000000000000000000000000000000001","to":"0x0000000000000000000000000000000000000002","value":"0xff"}`).Equal(t, string(b))
}

func TestSummary(t *testing.T) {
	t.Run("call tree", func(t *testing.T) {
		raw := `{
			"type":"CALL","from":"0x1111111111111111111111111111111111111111","to":"0x2222222222222222222222222222222222222222",
			"gas":"0x10000","gasUsed":"0x5208","input":"0xa9059cbb0000",
			"calls":[
				{"type":"STATICCALL","from":"0x2222222222222222222222222222222222222222","to":"0x3333333333333333333333333333333333333333","gas":"0x100","gasUsed":"0x64","input":"0x70a08231"},
				{"type":"CALL","from":"0x2222222222222222222222222222222222222222","to":"0x4444444444444444444444444444444444444444","gas":"0x100","gasUsed":"0x10","input":"0x","error":"execution reverted","revertReason":"nope"}
			]
		}`
		res := &Result{Config: DefaultConfig(CallTracer), Raw: json.RawMessage(raw)}
		autogold.Want("call tree", `CALL 0x11111111→0x22222222 gas 21000 0xa9059cbb
├ STATICCALL 0x22222222→0x33333333 gas 100 0x70a08231
└ CALL 0x22222222→0x44444444 gas 16 [execution reverted: nope]`).Equal(t, res.Summary())
	})

	t.Run("prestate diff", func(t *testing.T) {
		res := &Result{Config: DefaultConfig(PrestateTracer), Raw: json.RawMessage(`{"pre":{"0x01":{},"0x02":{}},"post":{"0x01":{}}}`)}
		assert.Equal(t, "2 accounts before, 1 after", res.Summary())
	})

	t.Run("struct logs", func(t *testing.T) {
		res := &Result{Config: DefaultConfig(OplogTracer), Raw: json.RawMessage(`{"gas":21000,"failed":false,"returnValue":"","structLogs":[{},{},{}]}`)}
		assert.Equal(t, "3 steps, gas 21000, ok", res.Summary())
	})

	t.Run("flat calls", func(t *testing.T) {
		res := &Result{Config: DefaultConfig(FlatCallTracer), Raw: json.RawMessage(`[{},{}]`)}
		assert.Equal(t, "2 call frames", res.Summary())
	})

	t.Run("unparseable", func(t *testing.T) {
		res := &Result{Config: DefaultConfig(CallTracer), Raw: json.RawMessage(`"oops"`)}
		assert.Equal(t, "6 bytes of trace output", res.Summary())
		assert.Equal(t, `"oops"`, res.Pretty())
	})
}
