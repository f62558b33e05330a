package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo, dbPoolConns, dbPoolAcquires)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trip_itinerary_build_info",
			Help: "Constant 1, labeled with the running build.",
		},
		[]string{"version", "commit", "go_version"},
	)

	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Connections held by the Postgres pool, by state.",
		},
		[]string{"state"}, // 'total', 'idle', 'acquired', 'max'
	)

	dbPoolAcquires = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_acquires",
			Help: "Cumulative pool acquisitions as reported by the pool, by kind.",
		},
		[]string{"kind"}, // 'total', 'empty', 'canceled'
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.Reset()
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

// PoolStats is a snapshot of the database pool counters.
type PoolStats struct {
	Total, Idle, Acquired, Max        int32
	Acquires, EmptyAcquires, Canceled int64
}

func SetDBPoolStats(s PoolStats) {
	dbPoolConns.WithLabelValues("total").Set(float64(s.Total))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolConns.WithLabelValues("acquired").Set(float64(s.Acquired))
	dbPoolConns.WithLabelValues("max").Set(float64(s.Max))
	dbPoolAcquires.WithLabelValues("total").Set(float64(s.Acquires))
	dbPoolAcquires.WithLabelValues("empty").Set(float64(s.EmptyAcquires))
	dbPoolAcquires.WithLabelValues("canceled").Set(float64(s.Canceled))
}
