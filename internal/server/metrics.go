package server

import "github.com/prometheus/client_golang/prometheus"

type routerMetrics struct {
	sessionsActive  prometheus.Gauge
	sessionsTotal   prometheus.Counter
	requestsHandled *prometheus.CounterVec
	messagesRouted  *prometheus.CounterVec
	typingForwarded *prometheus.CounterVec
}

func newRouterMetrics(reg prometheus.Registerer) *routerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &routerMetrics{
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "community_sessions_active",
			Help: "Current number of open chat sessions.",
		}),
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "community_sessions_total",
			Help: "Total sessions opened since start.",
		}),
		requestsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "community_connection_requests_total",
			Help: "Connection request operations grouped by operation and result.",
		}, []string{"op", "result"}),
		messagesRouted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "community_messages_routed_total",
			Help: "Chat messages persisted, grouped by live delivery outcome.",
		}, []string{"delivery"}),
		typingForwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "community_typing_signals_total",
			Help: "Typing signals received, grouped by forwarding outcome.",
		}, []string{"delivery"}),
	}

	reg.MustRegister(
		m.sessionsActive,
		m.sessionsTotal,
		m.requestsHandled,
		m.messagesRouted,
		m.typingForwarded,
	)
	return m
}

func (m *routerMetrics) SessionOpened(replaced bool) {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
	if !replaced {
		m.sessionsActive.Inc()
	}
}

func (m *routerMetrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *routerMetrics) RequestHandled(op, result string) {
	if m == nil {
		return
	}
	m.requestsHandled.WithLabelValues(op, result).Inc()
}

func (m *routerMetrics) MessageRouted(delivered bool) {
	if m == nil {
		return
	}
	m.messagesRouted.WithLabelValues(deliveryLabel(delivered)).Inc()
}

func (m *routerMetrics) TypingForwarded(delivered bool) {
	if m == nil {
		return
	}
	m.typingForwarded.WithLabelValues(deliveryLabel(delivered)).Inc()
}

func deliveryLabel(delivered bool) string {
	if delivered {
		return "pushed"
	}
	return "offline"
}
