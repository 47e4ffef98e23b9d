package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sarchlab/cachesim/simulation"
)

type metrics struct {
	registry *prometheus.Registry

	processed     prometheus.Gauge
	ignored       prometheus.Gauge
	events        *prometheus.GaugeVec
	missRate      *prometheus.GaugeVec
	memoryTraffic prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,
		processed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cachesim_processed_accesses",
			Help: "Trace records replayed so far.",
		}),
		ignored: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cachesim_ignored_accesses",
			Help: "Trace records with an unknown operation.",
		}),
		events: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cachesim_cache_events",
			Help: "Cache level counters.",
		}, []string{"level", "event"}),
		missRate: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cachesim_cache_miss_rate",
			Help: "Miss rate of a cache level.",
		}, []string{"level"}),
		memoryTraffic: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cachesim_memory_traffic",
			Help: "Blocks read from and written to memory.",
		}),
	}
}

func (m *metrics) update(processed uint64, s simulation.Snapshot) {
	m.processed.Set(float64(processed))
	m.ignored.Set(float64(s.Ignored))
	m.memoryTraffic.Set(float64(s.MemoryTraffic))

	for _, level := range []simulation.LevelStats{s.L1, s.L2} {
		if !level.Enabled {
			continue
		}

		m.events.WithLabelValues(level.Name, "reads").Set(float64(level.Reads))
		m.events.WithLabelValues(level.Name, "read_misses").
			Set(float64(level.ReadMisses))
		m.events.WithLabelValues(level.Name, "writes").Set(float64(level.Writes))
		m.events.WithLabelValues(level.Name, "write_misses").
			Set(float64(level.WriteMisses))
		m.events.WithLabelValues(level.Name, "writebacks").
			Set(float64(level.Writebacks))
		m.missRate.WithLabelValues(level.Name).Set(level.MissRate)
	}
}
