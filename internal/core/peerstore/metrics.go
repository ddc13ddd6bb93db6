package peerstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "megaengine"

var (
	routingPeers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "routing",
		Name:      "peers",
		Help:      "Number of entries in the peer routing table.",
	})

	routingExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "routing",
		Name:      "expired_total",
		Help:      "Number of routing entries removed by the expiry sweep.",
	})
)
