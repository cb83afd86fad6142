// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	TradesReceived prometheus.Counter
	TradesSkipped  *prometheus.CounterVec
	ParseRejects   *prometheus.CounterVec
	FeedReconnects prometheus.Counter

	// Lottery metrics
	DrawsTotal       *prometheus.CounterVec
	HolderSelections *prometheus.CounterVec

	// Payout metrics
	PayoutsTotal   *prometheus.CounterVec
	PayoutDuration *prometheus.HistogramVec
	PoolBalanceSOL *prometheus.GaugeVec

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// Price metrics
	PriceRefreshes *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solanajackbot"
	}

	return &Metrics{
		TradesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trades_received_total",
			Help:      "Total number of trade events received from the feed",
		}),
		TradesSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trades_skipped_total",
			Help:      "Total number of trade events skipped before drawing",
		}, []string{"reason"}),
		ParseRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "parse_rejects_total",
			Help:      "Total number of feed payloads rejected at the parse boundary",
		}, []string{"reason"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of websocket feed reconnections",
		}),
		DrawsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lottery",
			Name:      "draws_total",
			Help:      "Total number of lottery draws executed",
		}, []string{"pipeline", "result"}),
		HolderSelections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lottery",
			Name:      "holder_selections_total",
			Help:      "Total number of holder selection attempts",
		}, []string{"outcome"}),
		PayoutsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "payouts_total",
			Help:      "Total number of payout attempts by terminal status",
		}, []string{"pool", "status"}),
		PayoutDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "duration_seconds",
			Help:      "Duration of successful payout submission and confirmation",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"pool"}),
		PoolBalanceSOL: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "pool_balance_sol",
			Help:      "Last observed pool balance in SOL",
		}, []string{"pool"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_latency_seconds",
			Help:      "Latency of Solana RPC calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PriceRefreshes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "refreshes_total",
			Help:      "Total number of SOL price refresh attempts",
		}, []string{"status"}),
	}
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTradeReceived increments the received trade counter.
func RecordTradeReceived() {
	DefaultMetrics.TradesReceived.Inc()
}

// RecordTradeSkipped increments the skipped trade counter for a reason.
func RecordTradeSkipped(reason string) {
	DefaultMetrics.TradesSkipped.WithLabelValues(reason).Inc()
}

// RecordParseReject increments the parse rejection counter for a reason.
func RecordParseReject(reason string) {
	DefaultMetrics.ParseRejects.WithLabelValues(reason).Inc()
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordDraw records one lottery draw outcome.
func RecordDraw(pipeline string, won bool) {
	result := "lose"
	if won {
		result = "win"
	}
	DefaultMetrics.DrawsTotal.WithLabelValues(pipeline, result).Inc()
}

// RecordHolderSelection records a holder selection attempt outcome.
func RecordHolderSelection(outcome string) {
	DefaultMetrics.HolderSelections.WithLabelValues(outcome).Inc()
}

// RecordPayout records a payout attempt by terminal status.
func RecordPayout(pool, status string) {
	DefaultMetrics.PayoutsTotal.WithLabelValues(pool, status).Inc()
}

// ObservePayoutDuration records how long a successful payout took.
func ObservePayoutDuration(pool string, seconds float64) {
	DefaultMetrics.PayoutDuration.WithLabelValues(pool).Observe(seconds)
}

// SetPoolBalance updates the last observed pool balance gauge.
func SetPoolBalance(pool string, balanceSOL float64) {
	DefaultMetrics.PoolBalanceSOL.WithLabelValues(pool).Set(balanceSOL)
}

// RecordRPCLatency records the latency of an RPC call.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordPriceRefresh records a price refresh attempt.
func RecordPriceRefresh(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.PriceRefreshes.WithLabelValues(status).Inc()
}
