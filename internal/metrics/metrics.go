// Package metrics exposes admission counters to Prometheus, fed from
// the event bus so the core stays free of metric plumbing.
package metrics

import (
	"context"
	"net/http"

	eventbus "github.com/apollosolutions/graphguard/internal/eventbus"
	events "github.com/apollosolutions/graphguard/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type collectors struct {
	admissions *prometheus.CounterVec
	rejections *prometheus.CounterVec
	reloads    *prometheus.CounterVec
}

func newCollectors() *collectors {
	return &collectors{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphguard",
			Name:      "admissions_total",
			Help:      "Admission checks by verdict.",
		}, []string{"verdict"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphguard",
			Name:      "rejections_total",
			Help:      "Rejections by violation code.",
		}, []string{"code"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "graphguard",
			Name:      "config_reloads_total",
			Help:      "Configuration reload attempts by outcome.",
		}, []string{"outcome"}),
	}
}

// Setup registers the collectors with reg (or the default registerer
// when nil), subscribes them to the event bus, and returns the handler
// for the /metrics endpoint.
func Setup(reg *prometheus.Registry) (http.Handler, error) {
	c := newCollectors()

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	gatherer := prometheus.DefaultGatherer
	if reg != nil {
		registerer = reg
		gatherer = reg
	}
	for _, col := range []prometheus.Collector{c.admissions, c.rejections, c.reloads} {
		if err := registerer.Register(col); err != nil {
			return nil, err
		}
	}

	eventbus.Subscribe(func(ctx context.Context, e events.AdmissionFinish) {
		c.admissions.WithLabelValues(e.Verdict).Inc()
		for _, code := range e.Codes {
			c.rejections.WithLabelValues(code).Inc()
		}
	})
	eventbus.Subscribe(func(ctx context.Context, e events.ConfigReloaded) {
		c.reloads.WithLabelValues("ok").Inc()
	})
	eventbus.Subscribe(func(ctx context.Context, e events.ConfigReloadFailed) {
		c.reloads.WithLabelValues("error").Inc()
	})

	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}), nil
}
