package permission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "storybb_permissions"

var (
	checksTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "checks_total",
			Help:      "Number of permission checks, differentiated by result.",
		},
		[]string{"result"},
	)

	checkDuration = promauto.NewHistogram( //nolint:gochecknoglobals
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent answering a permission check.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), //nolint:mnd
		},
	)

	cacheLookups = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "cache_lookups_total",
			Help:      "Number of evaluator cache lookups, differentiated by outcome.",
		},
		[]string{"outcome"},
	)

	quickOperations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "quick_operations_total",
			Help:      "Number of quick permission operations, differentiated by operation.",
		},
		[]string{"operation"},
	)

	propagatedGroups = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "propagated_groups_total",
			Help:      "Number of child groups rewritten from their parent.",
		},
	)
)
