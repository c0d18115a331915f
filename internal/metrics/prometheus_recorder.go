package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	resolveDuration prom.Histogram
	runDuration     prom.Histogram
	resolutions     *prom.CounterVec
	warnings        *prom.CounterVec
	cacheResults    *prom.CounterVec
	pages           prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		resolveDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "lastupdated",
			Name:      "resolve_duration_seconds",
			Help:      "Duration of individual file resolutions",
			Buckets:   prom.DefBuckets,
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "lastupdated",
			Name:      "run_duration_seconds",
			Help:      "Total duration of full resolution runs",
			Buckets:   prom.DefBuckets,
		}),
		resolutions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lastupdated",
			Name:      "resolutions_total",
			Help:      "File resolutions by outcome",
		}, []string{"outcome"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lastupdated",
			Name:      "warnings_total",
			Help:      "Resolution warnings by kind",
		}, []string{"kind"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "lastupdated",
			Name:      "cache_results_total",
			Help:      "Resolution cache lookups by result",
		}, []string{"result"}),
		pages: prom.NewGauge(prom.GaugeOpts{
			Namespace: "lastupdated",
			Name:      "pages",
			Help:      "Number of pages in the last resolution run",
		}),
	}
	reg.MustRegister(pr.resolveDuration, pr.runDuration, pr.resolutions, pr.warnings, pr.cacheResults, pr.pages)
	return pr
}

func (p *PrometheusRecorder) ObserveResolveDuration(d time.Duration) {
	p.resolveDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncResolution(outcome OutcomeLabel) {
	p.resolutions.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncWarning(kind string) {
	p.warnings.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncCacheHit() {
	p.cacheResults.WithLabelValues("hit").Inc()
}

func (p *PrometheusRecorder) IncCacheMiss() {
	p.cacheResults.WithLabelValues("miss").Inc()
}

func (p *PrometheusRecorder) SetPages(n int) {
	p.pages.Set(float64(n))
}
