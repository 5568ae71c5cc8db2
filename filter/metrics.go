package filter

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts records flowing through each filter of a pipeline.
type Metrics struct {
	in      *prometheus.CounterVec
	out     *prometheus.CounterVec
	failed  *prometheus.CounterVec
	ignored *prometheus.CounterVec
}

// NewMetrics registers the pipeline counters with reg. Counters already
// registered by another pipeline are shared.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		in: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filepulse", Subsystem: "filter", Name: "records_in_total",
			Help: "Records received by a filter.",
		}, []string{"filter"}),
		out: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filepulse", Subsystem: "filter", Name: "records_out_total",
			Help: "Records produced by a filter.",
		}, []string{"filter"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filepulse", Subsystem: "filter", Name: "records_failed_total",
			Help: "Records a filter failed on.",
		}, []string{"filter"}),
		ignored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "filepulse", Subsystem: "filter", Name: "failures_ignored_total",
			Help: "Failures swallowed by filters configured to ignore them.",
		}, []string{"filter"}),
	}
	for _, c := range []**prometheus.CounterVec{&m.in, &m.out, &m.failed, &m.ignored} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}

func (m *Metrics) observe(filter string, out int, err error, ignored bool) {
	if m == nil {
		return
	}
	m.in.WithLabelValues(filter).Inc()
	switch {
	case ignored:
		m.ignored.WithLabelValues(filter).Inc()
		m.out.WithLabelValues(filter).Inc()
	case err != nil:
		m.failed.WithLabelValues(filter).Inc()
	default:
		m.out.WithLabelValues(filter).Add(float64(out))
	}
}
