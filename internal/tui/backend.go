package tui

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/soltype"
	"github.com/yolodolo42/evmcli/internal/trace"
	"github.com/yolodolo42/evmcli/internal/tracker"
	"github.com/yolodolo42/evmcli/internal/tx"
	"github.com/yolodolo42/evmcli/internal/viewer"
	"github.com/yolodolo42/evmcli/internal/wallet"
)

// Backend is the node access the TUI needs. *chain.Client implements it.
type Backend interface {
	trace.Tracer
	SubmitCall(ctx context.Context, inv chain.Invocation) ([]soltype.Value, error)
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// Submitter signs and broadcasts state-changing invocations.
type Submitter interface {
	SubmitTransaction(ctx context.Context, inv chain.Invocation) (common.Hash, error)
}

// Tracker follows pending transactions. *tracker.Tracker implements it.
type Tracker interface {
	Events() <-chan tracker.Event
	Track(hash common.Hash) bool
	Check(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Deps wires a Model to the outside world.
type Deps struct {
	Backend   Backend
	Submitter Submitter // nil when no signer is configured
	Tracker   Tracker
	Contracts *contract.Registry
	Viewer    *viewer.Viewer
	Logger    zerolog.Logger

	// Account is the sender of calls and transactions.
	Account common.Address
	Network *chain.Network

	BalanceRefresh time.Duration
	RPCTimeout     time.Duration
}

// TxSubmitter submits transactions through tx.Submit with a fixed signer
// and spend policy. Sends are serialized and numbered from a local nonce
// cursor, so submissions in flight together never share a nonce. The
// cursor is seeded from the node and dropped after a failed send.
type TxSubmitter struct {
	Backend tx.Backend
	Signer  wallet.Signer
	Policy  tx.Policy
	Logger  zerolog.Logger

	mu    sync.Mutex
	nonce *uint64
}

func (s *TxSubmitter) SubmitTransaction(ctx context.Context, inv chain.Invocation) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nonce == nil {
		n, err := s.Backend.GetNonce(ctx, s.Signer.Address())
		if err != nil {
			return common.Hash{}, err
		}
		s.nonce = &n
	}
	next := *s.nonce
	hash, err := tx.SubmitWithNonce(ctx, s.Backend, s.Signer, inv, s.Policy, &next, s.Logger)
	if err != nil {
		s.nonce = nil
		return common.Hash{}, err
	}
	next++
	s.nonce = &next
	return hash, nil
}
