package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics содержит метрики сессий оформления заказа.
type SessionMetrics struct {
	transitions      *prometheus.CounterVec
	catalogSyncs     prometheus.Counter
	syncedItems      *prometheus.CounterVec
	inputRejected    *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec

	sessionDuration prometheus.Histogram
}

// NewSessionMetrics создаёт метрики в DefaultRegisterer.
func NewSessionMetrics() *SessionMetrics {
	return NewSessionMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewSessionMetricsWithRegisterer создаёт метрики в переданном registerer.
func NewSessionMetricsWithRegisterer(registerer prometheus.Registerer) *SessionMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SessionMetrics{
		transitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "smartmeal_session_transitions_total",
			Help: "Total number of session state transitions by target state",
		}, []string{"state"}),
		catalogSyncs: registerCounter(registerer, prometheus.CounterOpts{
			Name: "smartmeal_catalog_syncs_total",
			Help: "Total number of completed catalog synchronizations",
		}),
		syncedItems: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "smartmeal_catalog_synced_items_total",
			Help: "Total number of menu items written during synchronization",
		}, []string{"operation"}),
		inputRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "smartmeal_order_input_rejected_total",
			Help: "Total number of rejected order inputs by error code",
		}, []string{"code"}),
		sessionsFinished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "smartmeal_sessions_finished_total",
			Help: "Total number of finished sessions by final state",
		}, []string{"state"}),
		sessionDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "smartmeal_session_duration_seconds",
			Help:    "Duration of ordering sessions in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
	}
}

// RecordTransition увеличивает счётчик переходов в состояние state.
func (m *SessionMetrics) RecordTransition(state string) {
	m.transitions.WithLabelValues(state).Inc()
}

// RecordCatalogSync учитывает результат синхронизации каталога.
func (m *SessionMetrics) RecordCatalogSync(inserted, updated int) {
	m.catalogSyncs.Inc()
	m.syncedItems.WithLabelValues("insert").Add(float64(inserted))
	m.syncedItems.WithLabelValues("update").Add(float64(updated))
}

// RecordInputRejected учитывает отклонённый ввод пользователя.
func (m *SessionMetrics) RecordInputRejected(code string) {
	m.inputRejected.WithLabelValues(code).Inc()
}

// RecordSessionFinished учитывает завершение сессии и её длительность.
func (m *SessionMetrics) RecordSessionFinished(state string, duration time.Duration) {
	m.sessionsFinished.WithLabelValues(state).Inc()
	m.sessionDuration.Observe(duration.Seconds())
}
