package observability

import (
	"net/http"

	"github.com/jmylchreest/decodechain/internal/decoder"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "decodechain"

// Metrics owns a private prometheus registry and the collectors on it.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
}

// NewMetrics creates a registry exposing decoder availability from cache
// and a resolution counter. A nil cache registers only the counter.
func NewMetrics(cache *decoder.AvailabilityCache) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Decoder resolutions by codec and selected decoder kind",
		}, []string{"codec", "kind"}),
	}

	if err := m.registry.Register(m.resolutions); err != nil {
		return nil, err
	}
	if cache != nil {
		if err := m.registry.Register(NewAvailabilityCollector(cache)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveResolution implements decoder.ResolutionObserver.
func (m *Metrics) ObserveResolution(codec decoder.Codec, kind string) {
	m.resolutions.WithLabelValues(codec.String(), kind).Inc()
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPHandler serves the registry in the prometheus exposition format.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(m.registry, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

type availabilityCollector struct {
	cache *decoder.AvailabilityCache

	availableDesc *prometheus.Desc
}

// NewAvailabilityCollector reports one gauge per catalog entry of every
// codec whose availability has already been computed. Scraping never
// queries the element registry.
func NewAvailabilityCollector(cache *decoder.AvailabilityCache) prometheus.Collector {
	return &availabilityCollector{
		cache: cache,
		availableDesc: prometheus.NewDesc(
			namespace+"_decoder_available",
			"Whether a decoder element is installed (1) or not (0)",
			[]string{"codec", "decoder", "kind"}, nil),
	}
}

func (c *availabilityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.availableDesc
}

func (c *availabilityCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := c.cache.Snapshot()
	for _, catalog := range c.cache.Catalogs().All() {
		avail, ok := snapshot[catalog.Codec]
		if !ok {
			continue
		}
		for i, def := range catalog.Decoders {
			v := 0.0
			if avail.At(i) {
				v = 1
			}
			ch <- prometheus.MustNewConstMetric(c.availableDesc, prometheus.GaugeValue, v,
				catalog.Codec.String(), def.Name, def.Kind())
		}
	}
}
