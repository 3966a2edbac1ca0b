// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// オーケストレーターとハンドラー層から利用する。
type MetricsCollector interface {
	RecordMessage(intent string)
	RecordReply(kind string)
	RecordAuthFailure()
	RecordLedgerAppend()
	RecordAssistantFallback()
	RecordAssistantLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	messages          *prometheus.CounterVec
	replies           *prometheus.CounterVec
	authFailures      prometheus.Counter
	ledgerAppends     prometheus.Counter
	assistantFallback prometheus.Counter
	assistantLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankman_messages_total",
			Help: "分類された意図別の処理メッセージ数",
		}, []string{"intent"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bankman_replies_total",
			Help: "結果記述子の種別ごとの応答数",
		}, []string{"kind"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankman_auth_failures_total",
			Help: "暗証番号不一致の合計数",
		}),
		ledgerAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankman_ledger_appends_total",
			Help: "台帳への取引追記の合計数",
		}),
		assistantFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bankman_assistant_fallback_total",
			Help: "アシスタント失敗によるフォールバック応答の合計数",
		}),
		assistantLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankman_assistant_latency_seconds",
			Help:    "アシスタント呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.messages,
		c.replies,
		c.authFailures,
		c.ledgerAppends,
		c.assistantFallback,
		c.assistantLatency,
	)

	return c
}

// RecordMessage は分類済みメッセージを記録する。
func (c *Collector) RecordMessage(intent string) {
	c.messages.WithLabelValues(intent).Inc()
}

// RecordReply は応答の種別を記録する。
func (c *Collector) RecordReply(kind string) {
	c.replies.WithLabelValues(kind).Inc()
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure() {
	c.authFailures.Inc()
}

// RecordLedgerAppend は台帳追記を記録する。
func (c *Collector) RecordLedgerAppend() {
	c.ledgerAppends.Inc()
}

// RecordAssistantFallback はフォールバック応答を記録する。
func (c *Collector) RecordAssistantFallback() {
	c.assistantFallback.Inc()
}

// RecordAssistantLatency はアシスタント呼び出しのレイテンシを記録する。
func (c *Collector) RecordAssistantLatency(duration time.Duration) {
	c.assistantLatency.Observe(duration.Seconds())
}

// Nop は何も記録しないMetricsCollector。テストや無効化時に使う。
type Nop struct{}

func (Nop) RecordMessage(intent string)                   {}
func (Nop) RecordReply(kind string)                       {}
func (Nop) RecordAuthFailure()                            {}
func (Nop) RecordLedgerAppend()                           {}
func (Nop) RecordAssistantFallback()                      {}
func (Nop) RecordAssistantLatency(duration time.Duration) {}

// compile-time interface checks
var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
