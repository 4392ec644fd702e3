package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgig_jobs_created_total",
		Help: "Jobs posted by clients.",
	})
	ProposalsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgig_proposals_submitted_total",
		Help: "Proposals submitted by students.",
	})
	ProposalsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgig_proposals_accepted_total",
		Help: "Proposals accepted by job owners.",
	})
	ProposalsWithdrawn = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgig_proposals_withdrawn_total",
		Help: "Proposals withdrawn by their submitters.",
	})
	NotificationsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campusgig_notifications_dispatched_total",
		Help: "Notifications created by lifecycle events.",
	})
	RealtimeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campusgig_realtime_sessions",
		Help: "Open notification websocket sessions.",
	})
)

// Handler exposes the prometheus registry on an echo route.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
