package tx

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/wallet"
)

// Backend is the node access needed to build and broadcast a transaction.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	GetNonce(ctx context.Context, address common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Intent captures a state-changing transaction the user wants to perform.
type Intent struct {
	From        common.Address // signer address
	To          common.Address // contract
	ValueWei    *big.Int       // native value
	Data        []byte         // calldata
	Nonce       *uint64        // optional override
	GasLimit    *uint64        // optional override
	MaxFeePerG  *big.Int       // optional override
	MaxPriority *big.Int       // optional override
}

// Policy enforces safety limits before sending.
type Policy struct {
	MaxPerTxWei *big.Int
}

// SuggestedFees carries the gas parameters a transaction was built with.
type SuggestedFees struct {
	GasLimit         uint64
	MaxFeePerGas     *big.Int
	MaxPriorityFee   *big.Int
	EstimatedCostWei *big.Int
}

// Validate applies the spend limit.
func Validate(intent Intent, policy Policy) error {
	if intent.ValueWei == nil {
		return fmt.Errorf("value missing")
	}
	if intent.ValueWei.Sign() < 0 {
		return fmt.Errorf("value is negative")
	}
	if policy.MaxPerTxWei != nil && intent.ValueWei.Cmp(policy.MaxPerTxWei) > 0 {
		return fmt.Errorf("value exceeds max per tx limit")
	}
	return nil
}

// BuildUnsignedTx estimates and prepares an unsigned EIP-1559 transaction.
func BuildUnsignedTx(ctx context.Context, b Backend, intent Intent) (*types.Transaction, SuggestedFees, error) {
	if intent.ValueWei == nil {
		return nil, SuggestedFees{}, fmt.Errorf("value missing")
	}

	nonce := uint64(0)
	if intent.Nonce != nil {
		nonce = *intent.Nonce
	} else {
		n, err := b.GetNonce(ctx, intent.From)
		if err != nil {
			return nil, SuggestedFees{}, err
		}
		nonce = n
	}

	maxFee := intent.MaxFeePerG
	maxPrio := intent.MaxPriority
	if maxFee == nil || maxPrio == nil {
		tip, err := b.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, SuggestedFees{}, err
		}
		fee, err := b.SuggestGasPrice(ctx)
		if err != nil {
			return nil, SuggestedFees{}, err
		}
		if maxPrio == nil {
			maxPrio = tip
		}
		if maxFee == nil {
			maxFee = fee
		}
	}
	if maxFee.Cmp(maxPrio) < 0 {
		maxFee = new(big.Int).Set(maxPrio)
	}

	gasLimit := uint64(0)
	if intent.GasLimit != nil {
		gasLimit = *intent.GasLimit
	} else {
		gl, err := b.EstimateGas(ctx, ethereum.CallMsg{
			From:      intent.From,
			To:        &intent.To,
			GasFeeCap: maxFee,
			GasTipCap: maxPrio,
			Value:     intent.ValueWei,
			Data:      intent.Data,
		})
		if err != nil {
			return nil, SuggestedFees{}, err
		}
		gasLimit = gl
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		Nonce:     nonce,
		GasTipCap: maxPrio,
		GasFeeCap: maxFee,
		Gas:       gasLimit,
		To:        &intent.To,
		Value:     intent.ValueWei,
		Data:      intent.Data,
	})

	total := new(big.Int).Mul(maxFee, new(big.Int).SetUint64(gasLimit))
	total.Add(total, intent.ValueWei)

	return tx, SuggestedFees{
		GasLimit:         gasLimit,
		MaxFeePerGas:     maxFee,
		MaxPriorityFee:   maxPrio,
		EstimatedCostWei: total,
	}, nil
}

// Submit encodes inv, builds, signs and broadcasts it, and returns the
// transaction hash. The signer's address is the sender and the nonce is the
// node's pending nonce.
func Submit(ctx context.Context, b Backend, signer wallet.Signer, inv chain.Invocation, policy Policy, log zerolog.Logger) (common.Hash, error) {
	return SubmitWithNonce(ctx, b, signer, inv, policy, nil, log)
}

// SubmitWithNonce is Submit with an explicit nonce. A nil nonce asks the
// node.
func SubmitWithNonce(ctx context.Context, b Backend, signer wallet.Signer, inv chain.Invocation, policy Policy, nonce *uint64, log zerolog.Logger) (common.Hash, error) {
	data, err := inv.Calldata()
	if err != nil {
		return common.Hash{}, err
	}
	value := inv.Value
	if value == nil {
		value = new(big.Int)
	}
	intent := Intent{From: signer.Address(), To: inv.To, ValueWei: value, Data: data, Nonce: nonce}
	if err := Validate(intent, policy); err != nil {
		return common.Hash{}, err
	}

	unsigned, fees, err := BuildUnsignedTx(ctx, b, intent)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "prepare %s", inv.Signature())
	}
	chainID, err := b.ChainID(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	signed, err := signer.SignTransaction(unsigned, chainID)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign transaction")
	}
	if err := b.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	log.Info().
		Str("hash", signed.Hash().Hex()).
		Str("method", inv.Signature()).
		Uint64("nonce", signed.Nonce()).
		Uint64("gas_limit", fees.GasLimit).
		Msg("transaction sent")
	return signed.Hash(), nil
}
