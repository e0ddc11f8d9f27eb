// Package observability exposes analysis metrics through Prometheus and
// stage spans through OpenTelemetry.
package observability

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the analysis metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Analyses       *prometheus.CounterVec
	StageDurations *prometheus.HistogramVec
	FreeDOFs       *prometheus.GaugeVec
	ConvergedModes prometheus.Gauge
}

// NewCollector registers the analysis metrics against reg, defaulting to the
// global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	analyses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gofea_analyses_total",
		Help: "Number of analyses run, labeled by analysis kind and outcome.",
	}, []string{"kind", "outcome"})
	if err := register(reg, analyses); err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gofea_stage_duration_seconds",
		Help:    "Duration of analysis stages in seconds.",
		Buckets: []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
	}, []string{"kind", "stage"})
	if err := register(reg, durations); err != nil {
		return nil, err
	}

	free := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gofea_free_dofs",
		Help: "Number of free degrees of freedom of the last analysis.",
	}, []string{"kind"})
	if err := register(reg, free); err != nil {
		return nil, err
	}

	modes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gofea_converged_modes",
		Help: "Number of eigenpairs converged in the last modal analysis.",
	})
	if err := register(reg, modes); err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Analyses:       analyses,
		StageDurations: durations,
		FreeDOFs:       free,
		ConvergedModes: modes,
	}, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return fmt.Errorf("metric already registered: %w", err)
		}
		return err
	}
	return nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *Collector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.gatherer)
}

var active atomic.Pointer[Collector]

// Use installs c as the collector the analyses report to; nil disables.
func Use(c *Collector) { active.Store(c) }

// Active returns the installed collector, nil when none.
func Active() *Collector { return active.Load() }

func RecordAnalysis(kind, outcome string) {
	if c := Active(); c != nil {
		c.Analyses.WithLabelValues(kind, outcome).Inc()
	}
}

func RecordFreeDOFs(kind string, n int) {
	if c := Active(); c != nil {
		c.FreeDOFs.WithLabelValues(kind).Set(float64(n))
	}
}

func RecordConvergedModes(n int) {
	if c := Active(); c != nil {
		c.ConvergedModes.Set(float64(n))
	}
}
