package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	pluginDuration *prom.HistogramVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	files          prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		pluginDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "plugin_duration_seconds",
			Help:      "Duration of individual pipeline plugins",
			Buckets:   prom.DefBuckets,
		}, []string{"plugin"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "blogsmith",
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "blogsmith",
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		files: prom.NewGauge(prom.GaugeOpts{
			Namespace: "blogsmith",
			Name:      "files",
			Help:      "Number of files written by the last build",
		}),
	}
	reg.MustRegister(pr.pluginDuration, pr.buildDuration, pr.buildOutcome, pr.files)
	return pr
}

func (p *PrometheusRecorder) ObservePluginDuration(plugin string, d time.Duration) {
	if p == nil {
		return
	}
	p.pluginDuration.WithLabelValues(plugin).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetFileCount(n int) {
	if p == nil {
		return
	}
	p.files.Set(float64(n))
}

// Handler serves the recorder's registry.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
