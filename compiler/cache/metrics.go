package cache

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors shared by both tiers. Every
// counter is labeled with the tier name.
type metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	writes *prometheus.CounterVec
	errors *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphdef",
			Subsystem: "cache",
			Name:      name,
			Help:      help,
		}, []string{"tier"})
	}
	m := &metrics{
		hits:   counter("hits_total", "Total number of cache hits"),
		misses: counter("misses_total", "Total number of cache misses"),
		writes: counter("writes_total", "Total number of cache entries written"),
		errors: counter("errors_total", "Total number of cache read and write failures"),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []**prometheus.CounterVec{&m.hits, &m.misses, &m.writes, &m.errors} {
		existing, err := register(reg, *c)
		if err != nil {
			return nil, err
		}
		*c = existing
	}
	return m, nil
}

// register registers c, reusing the collector of an earlier instance when
// several caches share one registry.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing, nil
		}
	}
	return nil, err
}

func (m *metrics) hit(tier string)     { m.hits.WithLabelValues(tier).Inc() }
func (m *metrics) miss(tier string)    { m.misses.WithLabelValues(tier).Inc() }
func (m *metrics) write(tier string)   { m.writes.WithLabelValues(tier).Inc() }
func (m *metrics) failure(tier string) { m.errors.WithLabelValues(tier).Inc() }
