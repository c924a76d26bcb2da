package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the triage flow.
type TriageMetrics struct {
	sessionsStarted    prometheus.Counter
	sessionsCompleted  *prometheus.CounterVec
	criticalDetections *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	handleDuration     prometheus.Histogram
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "triagem",
			Subsystem: "sessions",
			Name:      "started_total",
			Help:      "Total triage sessions started",
		}),
		sessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triagem",
			Subsystem: "sessions",
			Name:      "completed_total",
			Help:      "Total triage sessions that reached a terminal state",
		}, []string{"tier"}),
		criticalDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triagem",
			Subsystem: "triage",
			Name:      "critical_detections_total",
			Help:      "Total urgent short-circuits by detection source",
		}, []string{"source"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triagem",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total medical-team notifications by tier and outcome",
		}, []string{"tier", "status"}),
		handleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "triagem",
			Subsystem: "triage",
			Name:      "handle_duration_seconds",
			Help:      "Latency of processing one inbound message",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.sessionsCompleted, m.criticalDetections, m.notifications, m.handleDuration)
	return m
}

func (m *TriageMetrics) ObserveSessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *TriageMetrics) ObserveCompleted(tier string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(tier).Inc()
}

func (m *TriageMetrics) ObserveCriticalDetection(source string) {
	if m == nil {
		return
	}
	m.criticalDetections.WithLabelValues(source).Inc()
}

func (m *TriageMetrics) ObserveNotification(tier string, delivered bool) {
	if m == nil {
		return
	}
	status := "failed"
	if delivered {
		status = "delivered"
	}
	m.notifications.WithLabelValues(tier, status).Inc()
}

func (m *TriageMetrics) ObserveHandleDuration(seconds float64) {
	if m == nil {
		return
	}
	m.handleDuration.Observe(seconds)
}
