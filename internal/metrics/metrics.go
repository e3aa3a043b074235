// Package metrics exposes delivery counters for the webhook handler.
package metrics

import (
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hooklog/pkg/hooklog"
	"hooklog/pkg/hooklog/webhook"
)

// Collector implements hooklog.Observer on Prometheus counters.
type Collector struct {
	reg *prometheus.Registry

	delivered *prometheus.CounterVec
	failed    *prometheus.CounterVec
	dropped   *prometheus.CounterVec
}

// New registers the hooklog counters plus Go runtime collectors on a fresh
// registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		delivered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hooklog_records_delivered_total",
			Help: "Records delivered to the chat endpoint",
		}, []string{"level"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hooklog_records_failed_total",
			Help: "Records that could not be rendered or delivered",
		}, []string{"level", "reason"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hooklog_records_dropped_total",
			Help: "Records dropped by the sink rate limiter",
		}, []string{"level"}),
	}
}

func (c *Collector) Delivered(level string) { c.delivered.WithLabelValues(levelLabel(level)).Inc() }

func (c *Collector) Failed(level string, err error) {
	c.failed.WithLabelValues(levelLabel(level), reason(err)).Inc()
}

func (c *Collector) Dropped(level string) { c.dropped.WithLabelValues(levelLabel(level)).Inc() }

// levelLabel keeps the label set bounded: custom level names collapse to OTHER.
func levelLabel(level string) string {
	switch l := strings.ToUpper(strings.TrimSpace(level)); l {
	case hooklog.LevelNotSet, hooklog.LevelDebug, hooklog.LevelInfo,
		hooklog.LevelWarning, hooklog.LevelError, hooklog.LevelCritical:
		return l
	case "WARN":
		return hooklog.LevelWarning
	default:
		return "OTHER"
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func reason(err error) string {
	var (
		se *webhook.StatusError
		pe *hooklog.PanicError
	)
	switch {
	case err == nil:
		return "unknown"
	case errors.As(err, &pe):
		return "panic"
	case errors.Is(err, hooklog.ErrMissingAttribute):
		return "render"
	case errors.As(err, &se):
		return "status"
	default:
		return "send"
	}
}
