package metrics

import (
	"fmt"
	"net/http"
	"time"

	coremetrics "github.com/kilianp07/scuc/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromSink records formulation statistics in Prometheus metrics.
type PromSink struct {
	builds      prometheus.Counter
	variables   prometheus.Gauge
	constraints prometheus.Gauge
	duration    prometheus.Histogram
}

// NewPromSink registers formulation metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (coremetrics.BuildSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.BuildSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	builds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scuc_model_builds_total",
		Help: "Total number of formulation runs",
	})
	variables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scuc_model_variables",
		Help: "Number of decision variables in the last built model",
	})
	constraints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scuc_model_constraints",
		Help: "Number of constraints in the last built model",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scuc_model_build_seconds",
		Help:    "Wall time spent building the model",
		Buckets: prometheus.DefBuckets,
	})

	if err := reg.Register(builds); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			builds = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(variables); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			variables = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(constraints); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			constraints = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	return &PromSink{builds: builds, variables: variables, constraints: constraints, duration: duration}, nil
}

// RecordBuild updates the formulation metrics for one run.
func (s *PromSink) RecordBuild(ev coremetrics.BuildEvent) error {
	s.builds.Inc()
	s.variables.Set(float64(ev.Variables))
	s.constraints.Set(float64(ev.Constraints))
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// StartPromServer exposes the default registry on the given port under /metrics.
func StartPromServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
