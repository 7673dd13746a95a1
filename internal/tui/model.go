// Package tui is the interactive card view: submitted calls and
// transactions become cards, pending transactions resolve in the
// background, and each card offers its own actions.
package tui

import (
	"context"
	"fmt"
	"math/big"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/menu"
	"github.com/yolodolo42/evmcli/internal/metrics"
	"github.com/yolodolo42/evmcli/internal/tracker"
	"github.com/yolodolo42/evmcli/internal/ui"
	"github.com/yolodolo42/evmcli/internal/viewer"
)

// connState is the node connectivity shown in the status bar.
type connState int

const (
	connUnknown connState = iota
	connConnected
	connDisconnected
)

// Model is the bubbletea model of the card view. The card store, the
// overlay stack and the open form are only touched from Update.
type Model struct {
	ctx  context.Context
	deps Deps
	log  zerolog.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	store   *cards.Store
	menu    *menu.Stack
	methods []contract.Method
	picker  *ui.Selector
	form    *formView
	detail  *detailView

	// Submissions complete in any order but their cards are inserted in
	// the order they were submitted.
	nextSeq  uint64
	flushSeq uint64
	arrived  map[uint64]submittedMsg
	inflight int

	conn    connState
	connErr error
	balance *big.Int

	width    int
	height   int
	quitting bool
}

// New creates the model. The context bounds every RPC the model starts.
func New(ctx context.Context, deps Deps) (Model, error) {
	if deps.Contracts == nil {
		deps.Contracts = contract.NewRegistry()
	}
	if deps.Network == nil {
		deps.Network = chain.NetworkByChainID(nil)
	}
	methods, err := deps.Contracts.Methods()
	if err != nil {
		return Model{}, err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorPrimary)

	store := cards.NewStore()
	if len(methods) == 0 {
		store.Insert(cards.Warn("no contracts configured, add them under contracts in the config file"))
	}

	return Model{
		ctx:     ctx,
		deps:    deps,
		log:     deps.Logger.With().Str("component", "tui").Logger(),
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		store:   store,
		menu:    &menu.Stack{},
		methods: methods,
		arrived: make(map[uint64]submittedMsg),
	}, nil
}

// Store exposes the cards, mainly for tests.
func (m Model) Store() *cards.Store { return m.store }

// Init starts the tracker reader, the spinner and the balance refresh.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchBalance()}
	if m.deps.Tracker != nil {
		cmds = append(cmds, waitForEvent(m.deps.Tracker))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.detail != nil {
			m.detail.resize(m.width, m.height)
		}
		if m.picker != nil {
			m.picker.SetHeight(m.height - 8)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submittedMsg:
		m.arrived[msg.seq] = msg
		m.flush()
		return m, nil

	case trackerMsg:
		m.handleEvent(msg.ev)
		return m, waitForEvent(m.deps.Tracker)

	case checkDoneMsg:
		m.inflight--
		cmd := m.handleCheck(msg)
		return m, cmd

	case traceDoneMsg:
		m.inflight--
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("trace failed")
			m.store.Insert(cards.Error(msg.err.Error()))
			return m, nil
		}
		m.detail = newTraceDetail(msg.result, m.width, m.height)
		return m, nil

	case balanceMsg:
		if msg.err != nil {
			m.setConnected(false, msg.err)
		} else {
			m.setConnected(true, nil)
			m.balance = msg.balance
		}
		return m, m.balanceTick()

	case balanceTickMsg:
		return m, m.fetchBalance()

	case viewer.ClosedMsg:
		if msg.Err != nil {
			m.store.Insert(cards.Error(fmt.Sprintf("%s: %v", msg.Title, msg.Err)))
		}
		return m, nil

	case viewer.CopiedMsg:
		if msg.Err != nil {
			m.store.Insert(cards.Error(fmt.Sprintf("copy %s: %v", msg.What, msg.Err)))
		} else {
			m.store.Insert(cards.Info("copied " + msg.What))
		}
		return m, nil
	}

	return m, nil
}

// flush inserts every card whose predecessors have all arrived.
func (m *Model) flush() {
	for {
		msg, ok := m.arrived[m.flushSeq]
		if !ok {
			return
		}
		delete(m.arrived, m.flushSeq)
		m.flushSeq++
		m.store.Insert(msg.card)
		if msg.track && m.deps.Tracker != nil {
			m.deps.Tracker.Track(msg.card.Tx.Hash)
			m.log.Info().Str("hash", msg.card.Tx.Hash.Hex()).Msg("tracking transaction")
		}
	}
}

func (m *Model) handleEvent(ev tracker.Event) {
	switch ev := ev.(type) {
	case tracker.Resolved:
		m.resolve(ev.Hash, ev.Receipt)
	case tracker.Stalled:
		c := m.store.FindTransaction(ev.Hash)
		if c == nil || c.Tx.Status != cards.Pending {
			return
		}
		c.Tx.Stalled = true
		m.store.Insert(cards.Warn(fmt.Sprintf(
			"%s not mined after %d checks, use View Receipt to check again", ev.Hash.Hex(), ev.Polls)))
	case tracker.Connectivity:
		m.setConnected(ev.Connected, ev.Err)
	}
}

// resolve flips the transaction card for hash. A receipt for a card that
// already resolved or was cleared is ignored.
func (m *Model) resolve(hash common.Hash, r *types.Receipt) bool {
	c := m.store.FindTransaction(hash)
	if c == nil {
		return false
	}
	if err := c.Tx.Resolve(r); err != nil {
		return false
	}
	status := c.Tx.Status.String()
	metrics.TransactionsResolved.WithLabelValues(status).Inc()
	m.log.Info().Str("hash", hash.Hex()).Str("status", status).Uint64("gas_used", r.GasUsed).Msg("transaction resolved")
	return true
}

func (m *Model) handleCheck(msg checkDoneMsg) tea.Cmd {
	if msg.err != nil {
		m.store.Insert(cards.Error(fmt.Sprintf("receipt for %s: %v", msg.hash.Hex(), msg.err)))
		return nil
	}
	if msg.receipt == nil {
		c := m.store.FindTransaction(msg.hash)
		if c != nil {
			c.Tx.Stalled = false
		}
		if m.deps.Tracker != nil {
			m.deps.Tracker.Track(msg.hash)
		}
		m.store.Insert(cards.Info(msg.hash.Hex() + " is still pending, tracking again"))
		return nil
	}
	m.resolve(msg.hash, msg.receipt)
	if c := m.store.FindTransaction(msg.hash); c != nil {
		m.detail = newReceiptDetail(c, m.deps.Contracts, m.width, m.height)
	}
	return nil
}

func (m *Model) setConnected(ok bool, err error) {
	if ok {
		m.conn = connConnected
		m.connErr = nil
		return
	}
	if chain.IsTransport(err) || m.conn != connConnected {
		m.conn = connDisconnected
	}
	m.connErr = err
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.form != nil:
		sub, cmd := m.form.Update(msg)
		if sub != nil {
			method := m.form.method
			m.form = nil
			submit := m.submit(method, sub)
			return m, tea.Batch(cmd, submit)
		}
		if m.form.form.Closed() {
			m.form = nil
		}
		return m, cmd

	case m.picker != nil:
		m.picker.Update(msg)
		if !m.picker.Active() {
			i, ok := m.picker.Selected()
			m.picker = nil
			if ok {
				return m.openForm(m.methods[i])
			}
		}
		return m, nil

	case m.detail != nil:
		return m.handleDetailKey(msg)

	case m.menu.Mode() != menu.Browsing:
		return m.handleMenuKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.store.SelectPrev()
	case key.Matches(msg, m.keys.Down):
		m.store.SelectNext()
	case key.Matches(msg, m.keys.Actions):
		m.menu.Open(m.store.Selected())
	case key.Matches(msg, m.keys.Methods):
		m.openPicker()
	case key.Matches(msg, m.keys.Detail):
		if c := m.store.Selected(); c != nil {
			m.detail = newCardDetail(c, m.width, m.height)
		}
	case key.Matches(msg, m.keys.Clear):
		m.store.Clear()
		m.menu.Reset()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) openPicker() {
	if len(m.methods) == 0 {
		m.store.Insert(cards.Warn("no contract methods to call"))
		return
	}
	items := make([]ui.SelectorItem, len(m.methods))
	for i, method := range m.methods {
		items[i] = ui.SelectorItem{
			ID:          method.Signature(),
			Label:       method.Contract.Name + "." + method.Label(),
			Description: string(method.Tag),
		}
	}
	picker := ui.NewSelector("Methods", items)
	if m.height > 0 {
		picker.SetHeight(m.height - 8)
	}
	m.picker = &picker
}

// openForm starts a parameter form for method. A method without
// parameters that is not payable is submitted right away.
func (m Model) openForm(method contract.Method) (tea.Model, tea.Cmd) {
	fv := newFormView(method)
	if fv.form.Len() == 0 {
		sub, err := fv.form.Submit()
		if err != nil {
			return m, nil
		}
		cmd := m.submit(method, sub)
		return m, cmd
	}
	m.form = fv
	return m, fv.syncFocus()
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.menu.Back()
	case key.Matches(msg, m.keys.Up):
		m.menu.Up()
	case key.Matches(msg, m.keys.Down):
		m.menu.Down()
	case key.Matches(msg, m.keys.Toggle):
		m.menu.Toggle()
	case key.Matches(msg, m.keys.Actions):
		choice, ok := m.menu.Confirm()
		if ok {
			cmd := m.perform(choice)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.Open):
		if m.deps.Viewer == nil || m.detail.raw == "" {
			return m, nil
		}
		return m, m.deps.Viewer.Open(m.detail.title, m.detail.ext, m.detail.raw)
	}
	var cmd tea.Cmd
	m.detail.viewport, cmd = m.detail.viewport.Update(msg)
	return m, cmd
}
