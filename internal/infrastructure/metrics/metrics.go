package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devmeet_connections_total",
		Help: "WebSocket connections accepted since start.",
	})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devmeet_active_connections",
		Help: "Currently open WebSocket connections.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devmeet_events_total",
		Help: "Inbound events dispatched, by type.",
	}, []string{"type"})

	DroppedDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devmeet_dropped_deliveries_total",
		Help: "Outbound events dropped because a client buffer was full.",
	})

	TimerExpirationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "devmeet_timer_expirations_total",
		Help: "Countdowns that reached zero.",
	})

	RunnerExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devmeet_runner_executions_total",
		Help: "Code runner invocations, by language.",
	}, []string{"language"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
