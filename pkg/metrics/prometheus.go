package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Alert engine metrics
	AlertCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptiq_alert_cycles_total",
			Help: "Total number of alert evaluation cycles",
		},
		[]string{"status"}, // status: success|error|partial|no_data
	)

	AlertCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cryptiq_alert_cycle_duration_seconds",
			Help:    "Alert evaluation cycle duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	AlertsTriggered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cryptiq_alerts_triggered_total",
			Help: "Total number of price alerts that fired",
		},
	)

	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptiq_notifications_total",
			Help: "Total number of user notifications sent",
		},
		[]string{"status"}, // status: success|error
	)

	// Upstream API metrics
	UpstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptiq_upstream_calls_total",
			Help: "Total number of calls to market, news and AI providers",
		},
		[]string{"provider", "endpoint", "status"},
	)

	UpstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cryptiq_upstream_latency_seconds",
			Help:    "Latency of calls to market, news and AI providers",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "endpoint"},
	)

	// Telegram metrics
	TelegramUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cryptiq_telegram_updates_total",
			Help: "Total number of handled Telegram updates",
		},
		[]string{"handler", "status"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AlertCycles)
		prometheus.MustRegister(AlertCycleDuration)
		prometheus.MustRegister(AlertsTriggered)
		prometheus.MustRegister(Notifications)
		prometheus.MustRegister(UpstreamCalls)
		prometheus.MustRegister(UpstreamLatency)
		prometheus.MustRegister(TelegramUpdates)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func RecordAlertCycle(cycleStatus string, duration time.Duration, triggered int) {
	AlertCycles.WithLabelValues(cycleStatus).Inc()
	AlertCycleDuration.Observe(duration.Seconds())
	AlertsTriggered.Add(float64(triggered))
}

func RecordNotification(err error) {
	Notifications.WithLabelValues(status(err)).Inc()
}

func RecordUpstreamCall(provider, endpoint string, latency time.Duration, err error) {
	UpstreamCalls.WithLabelValues(provider, endpoint, status(err)).Inc()
	UpstreamLatency.WithLabelValues(provider, endpoint).Observe(latency.Seconds())
}

func RecordTelegramUpdate(handler string, err error) {
	TelegramUpdates.WithLabelValues(handler, status(err)).Inc()
}
