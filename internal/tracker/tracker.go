// Package tracker polls the node for the receipts of submitted
// transactions and reports what it learns as events.
package tracker

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/yolodolo42/evmcli/internal/metrics"
)

// ReceiptSource looks up receipts. A transaction that is not mined yet
// yields a nil receipt and a nil error; any error is treated as a
// connectivity failure and retried.
type ReceiptSource interface {
	GetReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Config controls polling.
type Config struct {
	Interval        time.Duration
	MaxNotFound     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultConfig polls every two seconds for about half an hour.
var DefaultConfig = Config{
	Interval:        2 * time.Second,
	MaxNotFound:     900,
	InitialBackoff:  1 * time.Second,
	MaxBackoff:      30 * time.Second,
	BackoffMultiple: 2.0,
}

// Event is reported on the tracker's channel.
type Event interface {
	isEvent()
}

// Resolved carries the receipt of a mined transaction.
type Resolved struct {
	Hash    common.Hash
	Receipt *types.Receipt
}

// Stalled is reported when a hash was not found MaxNotFound times in a
// row. Tracking of that hash stops; the transaction may still be mined.
type Stalled struct {
	Hash  common.Hash
	Polls int
}

// Connectivity is reported when polls start failing or recover.
type Connectivity struct {
	Connected bool
	Err       error
}

func (Resolved) isEvent()     {}
func (Stalled) isEvent()      {}
func (Connectivity) isEvent() {}

// Tracker runs one polling goroutine per tracked hash. Loops end on
// resolution, on stalling, or when the tracker is closed.
type Tracker struct {
	src    ReceiptSource
	cfg    Config
	log    zerolog.Logger
	events chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[common.Hash]struct{}

	// connMu orders connectivity transitions with their events.
	connMu sync.Mutex
	online bool
}

// New starts a tracker whose loops live until ctx is done or Close.
func New(ctx context.Context, src ReceiptSource, cfg Config, log zerolog.Logger) *Tracker {
	ctx, cancel := context.WithCancel(ctx)
	return &Tracker{
		src:    src,
		cfg:    cfg,
		log:    log.With().Str("component", "tracker").Logger(),
		events: make(chan Event, 64),
		ctx:    ctx,
		cancel: cancel,
		active: make(map[common.Hash]struct{}),
		online: true,
	}
}

// Events is the stream of tracker reports.
func (t *Tracker) Events() <-chan Event {
	return t.events
}

// Track starts polling for hash. It reports false when the hash is already
// tracked or the tracker is closed.
func (t *Tracker) Track(hash common.Hash) bool {
	if t.ctx.Err() != nil {
		return false
	}
	t.mu.Lock()
	if _, ok := t.active[hash]; ok {
		t.mu.Unlock()
		return false
	}
	t.active[hash] = struct{}{}
	t.mu.Unlock()

	metrics.PendingTransactions.Inc()
	t.wg.Add(1)
	go t.poll(hash)
	return true
}

// Tracking reports whether a loop is polling for hash.
func (t *Tracker) Tracking(hash common.Hash) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[hash]
	return ok
}

// Check does a single lookup for hash outside any loop.
func (t *Tracker) Check(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	r, err := t.src.GetReceipt(ctx, hash)
	t.observe(err)
	return r, err
}

// Close stops every loop and waits for them to return.
func (t *Tracker) Close() {
	t.cancel()
	t.wg.Wait()
}

func (t *Tracker) poll(hash common.Hash) {
	defer t.wg.Done()
	defer func() {
		t.mu.Lock()
		delete(t.active, hash)
		t.mu.Unlock()
		metrics.PendingTransactions.Dec()
	}()

	log := t.log.With().Str("hash", hash.Hex()).Logger()
	log.Debug().Msg("tracking transaction")

	notFound := 0
	failures := 0
	delay := time.Duration(0)
	for {
		if !sleep(t.ctx, delay) {
			log.Debug().Msg("tracking cancelled")
			return
		}

		r, err := t.src.GetReceipt(t.ctx, hash)
		if t.ctx.Err() != nil {
			return
		}
		t.observe(err)
		if err != nil {
			delay = calculateBackoff(failures, t.cfg)
			failures++
			metrics.ReceiptPollsTotal.WithLabelValues("error").Inc()
			log.Warn().Err(err).Dur("retry_in", delay).Msg("receipt poll failed")
			continue
		}
		failures = 0

		if r != nil {
			metrics.ReceiptPollsTotal.WithLabelValues("found").Inc()
			log.Info().Uint64("status", r.Status).Uint64("gas_used", r.GasUsed).Msg("receipt found")
			t.emit(Resolved{Hash: hash, Receipt: r})
			return
		}

		metrics.ReceiptPollsTotal.WithLabelValues("not_found").Inc()
		notFound++
		if t.cfg.MaxNotFound > 0 && notFound >= t.cfg.MaxNotFound {
			log.Warn().Int("polls", notFound).Msg("giving up on receipt")
			t.emit(Stalled{Hash: hash, Polls: notFound})
			return
		}
		delay = t.cfg.Interval
	}
}

// observe reports connectivity transitions shared by every loop.
func (t *Tracker) observe(err error) {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.online == (err == nil) {
		return
	}
	t.online = err == nil
	t.emit(Connectivity{Connected: t.online, Err: err})
}

func (t *Tracker) emit(ev Event) {
	select {
	case t.events <- ev:
	case <-t.ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func calculateBackoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffMultiple, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}
	return time.Duration(delay)
}
