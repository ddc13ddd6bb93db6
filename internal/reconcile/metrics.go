package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "megaengine"

// 循环名称
const (
	loopBundle = "bundle"
	loopRefs   = "refs"
)

// 出错阶段
const (
	stageList    = "list"
	stageParse   = "parse_owner"
	stageRequest = "request"
	stageRead    = "read_refs"
	stageCompare = "compare"
	stageSave    = "save"
)

var (
	ticksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconcile",
		Name:      "ticks_total",
		Help:      "Number of reconciliation passes.",
	}, []string{"loop"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconcile",
		Name:      "errors_total",
		Help:      "Number of per-repository reconciliation failures.",
	}, []string{"loop", "stage"})

	bundleRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconcile",
		Name:      "bundle_requests_total",
		Help:      "Number of successful bundle requests.",
	})

	refsUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "reconcile",
		Name:      "refs_updates_total",
		Help:      "Number of ref snapshots replaced.",
	})
)
