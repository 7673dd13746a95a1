package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/evmcli/internal/soltype"
	"github.com/yolodolo42/evmcli/internal/trace"
)

type revertError struct {
	data string
}

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return e.data }

type ethService struct {
	receipts map[common.Hash]*types.Receipt
	result   hexutil.Bytes
	revert   string
}

func (s *ethService) ChainId() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(31337))
}

func (s *ethService) GetBalance(addr common.Address, block string) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1500000000000000000))
}

func (s *ethService) GetTransactionReceipt(hash common.Hash) (*types.Receipt, error) {
	return s.receipts[hash], nil
}

func (s *ethService) Call(args map[string]any, block string) (hexutil.Bytes, error) {
	if s.revert != "" {
		return nil, &revertError{data: s.revert}
	}
	return s.result, nil
}

type debugService struct {
	lastTracer map[string]any
}

func (s *debugService) TraceTransaction(hash common.Hash, cfg map[string]any) (map[string]any, error) {
	s.lastTracer = cfg
	return map[string]any{"type": "CALL", "hash": hash}, nil
}

func (s *debugService) TraceCall(args map[string]any, block string, cfg map[string]any) (map[string]any, error) {
	s.lastTracer = cfg
	return map[string]any{"type": "CALL", "to": args["to"], "block": block}, nil
}

func newTestNode(t *testing.T) (*Client, *ethService, *debugService) {
	t.Helper()
	eth := &ethService{receipts: make(map[common.Hash]*types.Receipt)}
	debug := &debugService{}

	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", eth))
	require.NoError(t, srv.RegisterName("debug", debug))
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Stop()
	})

	c := NewClient(httpSrv.URL, Options{Logger: zerolog.Nop()})
	t.Cleanup(c.Close)
	return c, eth, debug
}

func TestClient_ChainID(t *testing.T) {
	c, _, _ := newTestNode(t)
	id, err := c.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(31337), id.Int64())

	t.Run("mismatch", func(t *testing.T) {
		other := NewClient(c.URL(), Options{ChainID: big.NewInt(1), Logger: zerolog.Nop()})
		_, err := other.ChainID(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chain ID mismatch")
		assert.False(t, IsTransport(err))
	})
}

func TestClient_GetReceipt(t *testing.T) {
	c, eth, _ := newTestNode(t)
	hash := common.HexToHash("0xabc")

	r, err := c.GetReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Nil(t, r, "unmined transaction has no receipt")

	eth.receipts[hash] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		GasUsed:     21000,
		BlockNumber: big.NewInt(3),
		TxHash:      hash,
		Logs:        []*types.Log{},
	}
	r, err = c.GetReceipt(context.Background(), hash)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(21000), r.GasUsed)
	assert.Equal(t, types.ReceiptStatusSuccessful, r.Status)
}

func TestClient_SubmitCall(t *testing.T) {
	c, eth, _ := newTestNode(t)
	inv := Invocation{
		To:      common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Method:  "balanceOf",
		Params:  []soltype.Field{{Name: "owner", Type: soltype.Address()}},
		Outputs: []soltype.Field{{Type: soltype.Uint(256)}},
		Args:    []soltype.Value{soltype.AddressValue{V: common.HexToAddress("0x01")}},
	}

	out, err := soltype.Encode(inv.Outputs, []soltype.Value{soltype.UintValue{Bits: 256, V: big.NewInt(1000)}})
	require.NoError(t, err)
	eth.result = out

	values, err := c.SubmitCall(context.Background(), inv)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "1000", values[0].String())

	t.Run("revert reason", func(t *testing.T) {
		data, err := soltype.EncodeCall("Error", []soltype.Field{{Type: soltype.String()}}, []soltype.Value{soltype.StringValue{V: "paused"}})
		require.NoError(t, err)
		eth.revert = hexutil.Encode(data)
		defer func() { eth.revert = "" }()

		_, err = c.SubmitCall(context.Background(), inv)
		var ee *ExecutionError
		require.True(t, errors.As(err, &ee), "got %v", err)
		assert.Equal(t, "paused", ee.Reason)
		assert.Equal(t, "execution reverted: paused", err.Error())
		assert.False(t, IsTransport(err))
	})
}

func TestClient_Balance(t *testing.T) {
	c, _, _ := newTestNode(t)
	bal, err := c.GetAccountBalance(context.Background(), common.HexToAddress("0x01"))
	require.NoError(t, err)
	assert.Equal(t, "1.500000 ETH", bal.String())
}

func TestClient_Trace(t *testing.T) {
	c, _, debug := newTestNode(t)
	hash := common.HexToHash("0x01")

	raw, err := c.TraceTransaction(context.Background(), hash, trace.DefaultConfig(trace.PrestateTracer).Params())
	require.NoError(t, err)
	assert.Equal(t, "prestateTracer", debug.lastTracer["tracer"])
	assert.Equal(t, map[string]any{"diffMode": true}, debug.lastTracer["tracerConfig"])

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, hash.Hex(), got["hash"])

	t.Run("trace call", func(t *testing.T) {
		req := trace.CallRequest{To: common.HexToAddress("0x02"), Data: []byte{1}}
		raw, err := c.TraceCall(context.Background(), req, trace.DefaultConfig(trace.CallTracer).Params())
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "latest", got["block"])
		assert.Equal(t, "callTracer", debug.lastTracer["tracer"])
	})

	t.Run("opcode logger sends no tracer", func(t *testing.T) {
		_, err := c.TraceTransaction(context.Background(), hash, trace.DefaultConfig(trace.OplogTracer).Params())
		require.NoError(t, err)
		assert.Empty(t, debug.lastTracer)
	})
}

func TestClient_TransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", Options{Logger: zerolog.Nop()})
	defer c.Close()

	_, err := c.GetReceipt(context.Background(), common.Hash{})
	require.Error(t, err)
	assert.True(t, IsTransport(err), "got %v", err)

	_, err = c.TraceTransaction(context.Background(), common.Hash{}, trace.Params{})
	assert.True(t, IsTransport(err))
}
