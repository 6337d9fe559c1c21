package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector aggregates the access-control and realtime metrics exposed on
// /metrics.
type Collector struct {
	requestsTotal       *prometheus.CounterVec
	authDenialsTotal    *prometheus.CounterVec
	rateLimitedTotal    prometheus.Counter
	realtimeConnections prometheus.Gauge
	realtimeEventsTotal prometheus.Counter
	broadcastFanout     prometheus.Histogram
}

func NewCollector() *Collector {
	return &Collector{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shipshape_requests_total",
			Help: "API requests by route and outcome",
		}, []string{"route", "outcome"}),

		authDenialsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "shipshape_auth_denials_total",
			Help: "Authorization denials by reason",
		}, []string{"reason"}),

		rateLimitedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shipshape_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),

		realtimeConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "shipshape_realtime_connections",
			Help: "Currently open realtime connections",
		}),

		realtimeEventsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shipshape_realtime_events_total",
			Help: "Events broadcast to realtime subscribers",
		}),

		broadcastFanout: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "shipshape_broadcast_fanout",
			Help:    "Subscribers reached per broadcast",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
}

func (c *Collector) RequestObserved(route, outcome string) {
	c.requestsTotal.WithLabelValues(route, outcome).Inc()
}

func (c *Collector) AuthDenied(reason string) {
	c.authDenialsTotal.WithLabelValues(reason).Inc()
}

func (c *Collector) RateLimited() {
	c.rateLimitedTotal.Inc()
}

func (c *Collector) RealtimeConnectionOpened() {
	c.realtimeConnections.Inc()
}

func (c *Collector) RealtimeConnectionClosed() {
	c.realtimeConnections.Dec()
}

func (c *Collector) RealtimeEventBroadcast(delivered int) {
	c.realtimeEventsTotal.Inc()
	c.broadcastFanout.Observe(float64(delivered))
}
