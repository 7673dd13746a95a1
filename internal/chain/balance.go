package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

// AccountBalance is the native balance of an account on the connected
// network.
type AccountBalance struct {
	Address common.Address
	Symbol  string
	Balance *big.Int
}

// String renders the balance as "1.500000 ETH".
func (b AccountBalance) String() string {
	return FormatBalance(b.Balance, 18) + " " + b.Symbol
}

// GetAccountBalance returns the native balance of address with the
// network's currency symbol.
func (c *Client) GetAccountBalance(ctx context.Context, address common.Address) (*AccountBalance, error) {
	bal, err := c.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}
	id, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	return &AccountBalance{
		Address: address,
		Symbol:  NetworkByChainID(id).NativeCurrency,
		Balance: bal,
	}, nil
}

// TokenBalance represents an ERC20 balance
type TokenBalance struct {
	Token    common.Address
	Symbol   string
	Balance  *big.Int
	Decimals uint8
}

func (b TokenBalance) String() string {
	return FormatBalance(b.Balance, b.Decimals) + " " + b.Symbol
}

// GetTokenBalance reads balanceOf, symbol and decimals from an ERC20 token.
func (c *Client) GetTokenBalance(ctx context.Context, token, holder common.Address) (*TokenBalance, error) {
	values, err := c.SubmitCall(ctx, Invocation{
		To:      token,
		Method:  "balanceOf",
		Params:  []soltype.Field{{Name: "owner", Type: soltype.Address()}},
		Outputs: []soltype.Field{{Type: soltype.Uint(256)}},
		Args:    []soltype.Value{soltype.AddressValue{V: holder}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}
	bal := values[0].(soltype.UintValue).V

	return &TokenBalance{
		Token:    token,
		Symbol:   c.tokenSymbol(ctx, token),
		Balance:  bal,
		Decimals: c.tokenDecimals(ctx, token),
	}, nil
}

func (c *Client) tokenSymbol(ctx context.Context, token common.Address) string {
	out, err := c.CallContract(ctx, ethereum.CallMsg{To: &token, Data: soltype.Selector("symbol", nil)})
	if err != nil {
		return "?"
	}
	return decodeString(out)
}

func (c *Client) tokenDecimals(ctx context.Context, token common.Address) uint8 {
	values, err := c.SubmitCall(ctx, Invocation{
		To:      token,
		Method:  "decimals",
		Outputs: []soltype.Field{{Type: soltype.Uint(8)}},
	})
	if err != nil {
		return 18
	}
	return uint8(values[0].(soltype.UintValue).V.Uint64())
}

// decodeString decodes an ABI-encoded string, accepting the bytes32
// symbols some older tokens return.
func decodeString(data []byte) string {
	if len(data) < 64 {
		return strings.TrimRight(string(data), "\x00")
	}
	values, err := soltype.Decode([]soltype.Field{{Type: soltype.String()}}, data)
	if err != nil {
		return ""
	}
	return values[0].(soltype.StringValue).V
}

// FormatBalance formats a balance with decimals as a human-readable string
func FormatBalance(balance *big.Int, decimals uint8) string {
	if balance == nil {
		return "0"
	}

	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	balFloat := new(big.Float).SetInt(balance)
	result := new(big.Float).Quo(balFloat, divisor)

	if decimals > 6 {
		return result.Text('f', 6)
	}
	return result.Text('f', int(decimals))
}

// ParseEther converts a non-negative decimal amount of ether such as
// "0.25" to wei. Empty input is zero.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 18 {
		return nil, fmt.Errorf("amount %q has more than 18 decimals", s)
	}
	digits := whole + frac + strings.Repeat("0", 18-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok || wei.Sign() < 0 || strings.ContainsAny(digits, "+-") {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return wei, nil
}
