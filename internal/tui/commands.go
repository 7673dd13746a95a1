package tui

import (
	"context"
	"fmt"
	"math/big"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/form"
	"github.com/yolodolo42/evmcli/internal/trace"
	"github.com/yolodolo42/evmcli/internal/tracker"
)

// submittedMsg carries the card produced by a submission. seq is the
// submission's position in call-site order.
type submittedMsg struct {
	seq   uint64
	card  *cards.Card
	track bool
}

// traceDoneMsg carries a replay result for the detail pane.
type traceDoneMsg struct {
	result *trace.Result
	err    error
}

// trackerMsg wraps one tracker event.
type trackerMsg struct {
	ev tracker.Event
}

// checkDoneMsg is the outcome of a manual receipt lookup.
type checkDoneMsg struct {
	hash    common.Hash
	receipt *types.Receipt
	err     error
}

type balanceMsg struct {
	balance *big.Int
	err     error
}

type balanceTickMsg time.Time

func (m *Model) rpcContext() (context.Context, context.CancelFunc) {
	if m.deps.RPCTimeout <= 0 {
		return context.WithCancel(m.ctx)
	}
	return context.WithTimeout(m.ctx, m.deps.RPCTimeout)
}

// submit runs a Ready form's invocation. View and pure methods run as
// calls, everything else is signed and sent.
func (m *Model) submit(method contract.Method, sub *form.Submission) tea.Cmd {
	seq := m.nextSeq
	m.nextSeq++
	sig := method.Signature()

	var value *big.Int
	if sub.Amount != "" {
		v, err := chain.ParseEther(sub.Amount)
		if err != nil {
			return message(submittedMsg{seq: seq, card: cards.Error(fmt.Sprintf("%s: value: %v", sig, err))})
		}
		value = v
	}
	inv := method.Invocation(m.deps.Account, sub.Args, value)

	if !method.IsCall() && m.deps.Submitter == nil {
		return message(submittedMsg{seq: seq, card: cards.Error(sig + ": no signer configured, set account or private_key")})
	}

	backend, submitter, log := m.deps.Backend, m.deps.Submitter, m.log
	ctx, cancel := m.rpcContext()
	return func() tea.Msg {
		defer cancel()
		if method.IsCall() {
			result, err := backend.SubmitCall(ctx, inv)
			if err != nil && !isExecution(err) {
				log.Error().Err(err).Str("method", sig).Msg("call failed")
				return submittedMsg{seq: seq, card: cards.Error(fmt.Sprintf("%s: %v", sig, err))}
			}
			return submittedMsg{seq: seq, card: cards.NewCall(cards.Call{
				Method:  inv.Method,
				Params:  inv.Params,
				Outputs: inv.Outputs,
				Args:    inv.Args,
				From:    inv.From,
				To:      inv.To,
				Value:   inv.Value,
				Result:  result,
				Err:     err,
			})}
		}

		hash, err := submitter.SubmitTransaction(ctx, inv)
		if err != nil {
			log.Error().Err(err).Str("method", sig).Msg("transaction not sent")
			return submittedMsg{seq: seq, card: cards.Error(fmt.Sprintf("%s: %v", sig, err))}
		}
		return submittedMsg{seq: seq, track: true, card: cards.NewTransaction(cards.Transaction{
			Hash:   hash,
			Method: inv.Method,
			Params: inv.Params,
			Args:   inv.Args,
			From:   inv.From,
			To:     inv.To,
			Value:  inv.Value,
		})}
	}
}

func isExecution(err error) bool {
	var ee *chain.ExecutionError
	return errors.As(err, &ee)
}

func (m *Model) traceTransaction(hash common.Hash, cfg trace.Config) tea.Cmd {
	backend := m.deps.Backend
	ctx, cancel := m.rpcContext()
	m.inflight++
	return func() tea.Msg {
		defer cancel()
		res, err := trace.Transaction(ctx, backend, hash, cfg)
		return traceDoneMsg{result: res, err: err}
	}
}

func (m *Model) traceCall(c *cards.Call) tea.Cmd {
	inv := chain.Invocation{
		From:    c.From,
		To:      c.To,
		Method:  c.Method,
		Params:  c.Params,
		Outputs: c.Outputs,
		Args:    c.Args,
		Value:   c.Value,
	}
	req, err := inv.TraceRequest()
	if err != nil {
		return message(traceDoneMsg{err: err})
	}
	backend := m.deps.Backend
	ctx, cancel := m.rpcContext()
	m.inflight++
	return func() tea.Msg {
		defer cancel()
		res, err := trace.Call(ctx, backend, req, c.Signature())
		return traceDoneMsg{result: res, err: err}
	}
}

func (m *Model) checkReceipt(hash common.Hash) tea.Cmd {
	tr := m.deps.Tracker
	ctx, cancel := m.rpcContext()
	m.inflight++
	return func() tea.Msg {
		defer cancel()
		r, err := tr.Check(ctx, hash)
		return checkDoneMsg{hash: hash, receipt: r, err: err}
	}
}

// waitForEvent blocks on the tracker's channel. It is issued again after
// every event so exactly one reader is outstanding.
func waitForEvent(tr Tracker) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-tr.Events()
		if !ok {
			return nil
		}
		return trackerMsg{ev: ev}
	}
}

func (m *Model) fetchBalance() tea.Cmd {
	if m.deps.Account == (common.Address{}) {
		return nil
	}
	backend, account := m.deps.Backend, m.deps.Account
	ctx, cancel := m.rpcContext()
	return func() tea.Msg {
		defer cancel()
		bal, err := backend.GetBalance(ctx, account)
		return balanceMsg{balance: bal, err: err}
	}
}

func (m *Model) balanceTick() tea.Cmd {
	if m.deps.Account == (common.Address{}) || m.deps.BalanceRefresh <= 0 {
		return nil
	}
	return tea.Tick(m.deps.BalanceRefresh, func(t time.Time) tea.Msg {
		return balanceTickMsg(t)
	})
}

func message(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
