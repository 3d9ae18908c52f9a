// Package metrics exposes Prometheus instrumentation for procurement activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "seamonger"
	subsystem = "procurement"
)

// Message directions used as label values.
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
	DirectionMirror   = "mirror"
)

// Poll results used as label values.
const (
	PollOK    = "ok"
	PollError = "error"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "messages_total",
			Help:      "Messages handled, by direction",
		},
		[]string{"direction"},
	)

	blockedSendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "blocked_sends_total",
			Help:      "Outbound requests suppressed because the supplier is cancelled",
		},
	)

	pollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_cycles_total",
			Help:      "Order poll cycles, by result",
		},
		[]string{"result"},
	)

	emergencyStopsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "emergency_stops_total",
			Help:      "Emergency stops issued by the founder",
		},
	)

	trustUpdatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trust_updates_total",
			Help:      "Supplier trust score increments",
		},
	)

	cancelledSuppliers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cancelled_suppliers",
			Help:      "Suppliers currently blocked from outbound requests",
		},
	)
)

// IncMessage counts one message in the given direction.
func IncMessage(direction string) {
	messagesTotal.WithLabelValues(direction).Inc()
}

// IncBlockedSend counts a request suppressed by cancellation.
func IncBlockedSend() {
	blockedSendsTotal.Inc()
}

// IncPollCycle counts a poll cycle with its result.
func IncPollCycle(result string) {
	pollCyclesTotal.WithLabelValues(result).Inc()
}

// IncEmergencyStop counts an emergency stop.
func IncEmergencyStop() {
	emergencyStopsTotal.Inc()
}

// IncTrustUpdate counts a trust score increment.
func IncTrustUpdate() {
	trustUpdatesTotal.Inc()
}

// SetCancelledSuppliers records the current cancelled set size.
func SetCancelledSuppliers(n int) {
	cancelledSuppliers.Set(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
