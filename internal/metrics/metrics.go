package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RPCCallsTotal tracks RPC calls by method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmcli_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"method"},
	)

	// RPCErrorsTotal tracks RPC errors by method and error type
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmcli_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"method", "error_type"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evmcli_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// PendingTransactions is the number of transactions being polled
	PendingTransactions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evmcli_pending_transactions",
			Help: "Transactions awaiting a receipt",
		},
	)

	// ReceiptPollsTotal tracks receipt polls by outcome (found, not_found, error)
	ReceiptPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmcli_receipt_polls_total",
			Help: "Total number of receipt polls",
		},
		[]string{"outcome"},
	)

	// TransactionsResolved tracks resolved transactions by final status
	TransactionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmcli_transactions_resolved_total",
			Help: "Transactions that reached a final status",
		},
		[]string{"status"},
	)

	// TracesTotal tracks replay requests by tracer
	TracesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmcli_traces_total",
			Help: "Total number of trace replays",
		},
		[]string{"tracer"},
	)
)

// Observe records one RPC call of method that started at start.
func Observe(method string, start time.Time, err error, errType string) {
	RPCCallsTotal.WithLabelValues(method).Inc()
	RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		RPCErrorsTotal.WithLabelValues(method, errType).Inc()
	}
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
