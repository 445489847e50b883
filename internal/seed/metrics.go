package seed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records seeding activity. A nil *Metrics records nothing.
type Metrics struct {
	Inserts  *prometheus.CounterVec
	Records  *prometheus.GaugeVec
	Duration prometheus.Histogram
}

// NewMetrics creates seeding metrics registered with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Inserts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seedbed",
			Subsystem: "seed",
			Name:      "inserts_total",
			Help:      "Fixture inserts by collection and result.",
		}, []string{"collection", "result"}),
		Records: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "seedbed",
			Subsystem: "seed",
			Name:      "snapshot_records",
			Help:      "Records per collection in the published snapshot.",
		}, []string{"collection"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seedbed",
			Subsystem: "seed",
			Name:      "duration_seconds",
			Help:      "Wall time of a full seeding run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) insert(collection string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Inserts.WithLabelValues(collection, result).Inc()
}

func (m *Metrics) snapshot(snap Snapshot, seconds float64) {
	if m == nil {
		return
	}
	for name, records := range snap {
		m.Records.WithLabelValues(name).Set(float64(len(records)))
	}
	m.Duration.Observe(seconds)
}
