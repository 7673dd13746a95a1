package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/metrics"
	"github.com/yolodolo42/evmcli/internal/trace"
)

// Client talks to a single EVM node. The connection is opened on first use
// and reopened after Close. Methods are safe for concurrent use.
type Client struct {
	url     string
	want    *big.Int
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	rpc     *rpc.Client
	eth     *ethclient.Client
	chainID *big.Int
}

// Options configure a Client.
type Options struct {
	// ChainID, when set, must match the node's chain id.
	ChainID *big.Int
	// Timeout bounds each RPC call. Zero means 15 seconds.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewClient returns a client for url. No connection is made yet.
func NewClient(url string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:     url,
		want:    opts.ChainID,
		timeout: timeout,
		log:     opts.Logger.With().Str("component", "chain").Logger(),
	}
}

// URL is the endpoint the client talks to.
func (c *Client) URL() string { return c.url }

// getClient returns the live connection, dialing and verifying the chain
// id when there is none.
func (c *Client) getClient(ctx context.Context) (*ethclient.Client, *rpc.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		return c.eth, c.rpc, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	rc, err := rpc.DialContext(dialCtx, c.url)
	if err != nil {
		return nil, nil, &TransportError{Op: "dial " + c.url, Err: err}
	}
	ec := ethclient.NewClient(rc)

	chainID, err := ec.ChainID(dialCtx)
	if err != nil {
		rc.Close()
		return nil, nil, classify("eth_chainId", err)
	}
	if c.want != nil && c.want.Sign() > 0 && chainID.Cmp(c.want) != 0 {
		rc.Close()
		return nil, nil, fmt.Errorf("chain ID mismatch: expected %s, got %s", c.want, chainID)
	}

	c.log.Info().Str("url", c.url).Str("chain_id", chainID.String()).Msg("connected to node")
	c.rpc, c.eth, c.chainID = rc, ec, chainID
	return ec, rc, nil
}

// call runs fn with a per-call timeout, records metrics and classifies the
// error. A transport failure drops the connection so the next call redials.
func (c *Client) call(ctx context.Context, method string, fn func(ctx context.Context, ec *ethclient.Client, rc *rpc.Client) error) error {
	start := time.Now()
	ec, rc, err := c.getClient(ctx)
	if err == nil {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = classify(method, fn(callCtx, ec, rc))
		cancel()
	}
	if errors.Is(err, ethereum.NotFound) {
		metrics.Observe(method, start, nil, "")
		return err
	}
	metrics.Observe(method, start, err, errType(err))
	if IsTransport(err) {
		c.log.Debug().Err(err).Str("method", method).Msg("transport failure")
		c.Close()
	}
	return err
}

// ChainID returns the node's chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if _, _, err := c.getClient(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID == nil {
		return nil, &TransportError{Op: "eth_chainId", Err: errors.New("connection closed")}
	}
	return new(big.Int).Set(c.chainID), nil
}

// GetBalance returns the native balance of address at the latest block.
func (c *Client) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var bal *big.Int
	err := c.call(ctx, "eth_getBalance", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		bal, err = ec.BalanceAt(ctx, address, nil)
		return err
	})
	return bal, err
}

// GetNonce returns the pending nonce for an address
func (c *Client) GetNonce(ctx context.Context, address common.Address) (uint64, error) {
	var nonce uint64
	err := c.call(ctx, "eth_getTransactionCount", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		nonce, err = ec.PendingNonceAt(ctx, address)
		return err
	})
	return nonce, err
}

// EstimateGas estimates gas for a message
func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := c.call(ctx, "eth_estimateGas", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		gas, err = ec.EstimateGas(ctx, msg)
		return err
	})
	return gas, err
}

// SuggestGasPrice returns the suggested gas price
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	var price *big.Int
	err := c.call(ctx, "eth_gasPrice", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		price, err = ec.SuggestGasPrice(ctx)
		return err
	})
	return price, err
}

// SuggestGasTipCap returns the suggested gas tip cap for EIP-1559 transactions
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var tip *big.Int
	err := c.call(ctx, "eth_maxPriorityFeePerGas", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		tip, err = ec.SuggestGasTipCap(ctx)
		return err
	})
	return tip, err
}

// SendTransaction broadcasts a signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.call(ctx, "eth_sendRawTransaction", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		return ec.SendTransaction(ctx, tx)
	})
}

// GetReceipt returns the receipt for hash, or nil when the transaction is
// not mined yet.
func (c *Client) GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.call(ctx, "eth_getTransactionReceipt", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		receipt, err = ec.TransactionReceipt(ctx, hash)
		return err
	})
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	return receipt, err
}

// CallContract executes a read-only call at the latest block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	var out []byte
	err := c.call(ctx, "eth_call", func(ctx context.Context, ec *ethclient.Client, _ *rpc.Client) error {
		var err error
		out, err = ec.CallContract(ctx, msg, nil)
		return err
	})
	return out, err
}

// TraceTransaction replays a mined transaction through debug_traceTransaction.
func (c *Client) TraceTransaction(ctx context.Context, hash common.Hash, params trace.Params) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "debug_traceTransaction", func(ctx context.Context, _ *ethclient.Client, rc *rpc.Client) error {
		return rc.CallContext(ctx, &raw, "debug_traceTransaction", hash, params)
	})
	return raw, err
}

// TraceCall replays a call against the latest block through debug_traceCall.
func (c *Client) TraceCall(ctx context.Context, call trace.CallRequest, params trace.Params) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.call(ctx, "debug_traceCall", func(ctx context.Context, _ *ethclient.Client, rc *rpc.Client) error {
		return rc.CallContext(ctx, &raw, "debug_traceCall", call, "latest", params)
	})
	return raw, err
}

// Close drops the connection. The next call redials.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rpc != nil {
		c.rpc.Close()
	}
	c.rpc, c.eth, c.chainID = nil, nil, nil
}
