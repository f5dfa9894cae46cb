package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal 对话轮次，status: success, error
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_chat_turns_total",
			Help: "Total number of chat turns",
		},
		[]string{"mode", "status"},
	)

	// StageDuration 各阶段耗时，stage: search, fetch, generate, stream
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_chat_stage_duration_seconds",
			Help:    "Pipeline stage latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	FetchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_chat_fetch_failures_total",
			Help: "Total number of result pages that could not be fetched",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_chat_active_sessions",
			Help: "Number of open chat sessions",
		},
	)
)

// ObserveStage 记录某阶段从 start 到现在的耗时
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordTurn 记录一轮对话结果
func RecordTurn(mode string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	TurnsTotal.WithLabelValues(mode, status).Inc()
}
