// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// リマインダースイープワーカーから利用する。
type MetricsCollector interface {
	RecordReminderSent()
	RecordSendFailure()
	RecordPersistFailure()
	RecordSweepFailure()
	RecordCandidateEvents(count int)
	RecordSweepDuration(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	remindersSent   prometheus.Counter
	sendFailures    prometheus.Counter
	persistFailures prometheus.Counter
	sweepFailures   prometheus.Counter
	candidateEvents prometheus.Histogram
	sweepDuration   prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onecalendar_reminders_sent_total",
			Help: "送信されたリマインダーの合計数",
		}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onecalendar_reminder_send_failures_total",
			Help: "リマインダー送信失敗の合計数",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onecalendar_reminder_persist_failures_total",
			Help: "通知済みフラグの永続化失敗の合計数",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "onecalendar_sweep_failures_total",
			Help: "候補イベントの読み取りに失敗したスイープの合計数",
		}),
		candidateEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onecalendar_sweep_candidate_events",
			Help:    "スイープ1回あたりの候補イベント数",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "onecalendar_sweep_duration_seconds",
			Help:    "スイープ1回の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.remindersSent,
		c.sendFailures,
		c.persistFailures,
		c.sweepFailures,
		c.candidateEvents,
		c.sweepDuration,
	)

	return c
}

// RecordReminderSent はリマインダー送信成功を記録する。
func (c *Collector) RecordReminderSent() {
	c.remindersSent.Inc()
}

// RecordSendFailure はリマインダー送信失敗を記録する。
func (c *Collector) RecordSendFailure() {
	c.sendFailures.Inc()
}

// RecordPersistFailure は通知済みフラグの書き込み失敗を記録する。
func (c *Collector) RecordPersistFailure() {
	c.persistFailures.Inc()
}

// RecordSweepFailure は候補読み取り失敗によるスイープ中断を記録する。
func (c *Collector) RecordSweepFailure() {
	c.sweepFailures.Inc()
}

// RecordCandidateEvents はスイープ1回あたりの候補イベント数を記録する。
func (c *Collector) RecordCandidateEvents(count int) {
	c.candidateEvents.Observe(float64(count))
}

// RecordSweepDuration はスイープの所要時間を記録する。
func (c *Collector) RecordSweepDuration(duration time.Duration) {
	c.sweepDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
