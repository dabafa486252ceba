package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the bot.
type Metrics struct {
	Events        *prometheus.CounterVec
	Submissions   *prometheus.CounterVec
	Uploads       *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Sessions      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_events_total",
			Help: "Inbound user events by step and event kind",
		}, []string{"step", "kind"}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_submissions_total",
			Help: "Registration submissions by outcome",
		}, []string{"outcome"}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_media_uploads_total",
			Help: "Media uploads by slot and result",
		}, []string{"slot", "result"}),
		Notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_notifications_total",
			Help: "Observer notifications by result",
		}, []string{"result"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "regbot_active_sessions",
			Help: "Registration sessions currently in progress",
		}),
	}
}

// NewNoop returns collectors registered with a private registry.
func NewNoop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveEvent(step, kind string) {
	m.Events.WithLabelValues(step, kind).Inc()
}

func (m *Metrics) ObserveSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpload(slot string, err error) {
	m.Uploads.WithLabelValues(slot, result(err)).Inc()
}

func (m *Metrics) ObserveNotification(err error) {
	m.Notifications.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
