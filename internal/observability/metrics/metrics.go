// Package metrics exposes generation run statistics in Prometheus format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/threshgen/threshgen/internal/alerting"
	"github.com/threshgen/threshgen/internal/eventconf"
	"github.com/threshgen/threshgen/internal/notifconf"
)

const namespace = "threshgen"

// GeneratorMetrics records counters and gauges for a generation run on its
// own registry. It implements alerting.Recorder.
type GeneratorMetrics struct {
	registry *prometheus.Registry

	rulesProcessed    *prometheus.CounterVec
	ueisSynthesized   *prometheus.CounterVec
	rearmsSuppressed  prometheus.Counter
	parseFailures     prometheus.Counter
	duplicatesDropped prometheus.Counter

	eventsBySeverity  *prometheus.GaugeVec
	notifsByDest      *prometheus.GaugeVec
	lastRunTimestamp  prometheus.Gauge
	lastRunDuration   prometheus.Gauge
	lastRunSuccessful prometheus.Gauge
}

var _ alerting.Recorder = (*GeneratorMetrics)(nil)

// NewGeneratorMetrics registers all collectors on a fresh registry.
func NewGeneratorMetrics() *GeneratorMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &GeneratorMetrics{
		registry: reg,
		rulesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_processed_total",
			Help:      "Threshold and expression rules processed by kind.",
		}, []string{"kind"}),
		ueisSynthesized: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ueis_synthesized_total",
			Help:      "Event UEIs synthesized by direction.",
		}, []string{"direction"}),
		rearmsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rearms_suppressed_total",
			Help:      "Rearmed events skipped for one-shot rule kinds.",
		}),
		parseFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expression_parse_failures_total",
			Help:      "Expressions that could not be parsed for metric names.",
		}),
		duplicatesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_events_dropped_total",
			Help:      "Events dropped because their UEI was already generated.",
		}),
		eventsBySeverity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Events generated in the last run by severity.",
		}, []string{"severity"}),
		notifsByDest: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications",
			Help:      "Notifications generated in the last run by destination path.",
		}, []string{"destination_path"}),
		lastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		lastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastRunSuccessful: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run wrote its outputs, 0 otherwise.",
		}),
	}
}

// Registry returns the registry holding the generator collectors.
func (m *GeneratorMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *GeneratorMetrics) RuleProcessed(kind alerting.Kind) {
	m.rulesProcessed.WithLabelValues(kind.String()).Inc()
}

func (m *GeneratorMetrics) UEISynthesized(dir alerting.Direction) {
	m.ueisSynthesized.WithLabelValues(dir.String()).Inc()
}

func (m *GeneratorMetrics) RearmSuppressed() {
	m.rearmsSuppressed.Inc()
}

func (m *GeneratorMetrics) ExpressionParseFailed() {
	m.parseFailures.Inc()
}

func (m *GeneratorMetrics) DuplicateEventDropped() {
	m.duplicatesDropped.Inc()
}

// ObserveEvents sets the per-severity event gauges.
func (m *GeneratorMetrics) ObserveEvents(events []eventconf.Event) {
	m.eventsBySeverity.Reset()
	for i := range events {
		m.eventsBySeverity.WithLabelValues(events[i].Severity).Inc()
	}
}

// ObserveNotifications sets the per-destination notification gauges.
func (m *GeneratorMetrics) ObserveNotifications(notifs []notifconf.Notification) {
	m.notifsByDest.Reset()
	for i := range notifs {
		m.notifsByDest.WithLabelValues(notifs[i].DestinationPath).Inc()
	}
}

// ObserveRun records when the run finished, how long it took and whether it succeeded.
func (m *GeneratorMetrics) ObserveRun(started, finished time.Time, success bool) {
	m.lastRunTimestamp.Set(float64(finished.Unix()))
	m.lastRunDuration.Set(finished.Sub(started).Seconds())
	if success {
		m.lastRunSuccessful.Set(1)
	} else {
		m.lastRunSuccessful.Set(0)
	}
}

// WriteTextfile writes all metrics to path in the node_exporter textfile
// collector format.
func (m *GeneratorMetrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	return nil
}
