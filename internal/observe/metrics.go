// Package observe provides observability primitives for Auriga:
// OpenTelemetry metric instruments for every pipeline stage, and a
// Prometheus-backed meter provider so they can be scraped from a /metrics
// endpoint.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Auriga metrics.
const meterName = "github.com/auriga-voice/auriga"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranscriptionDuration tracks speech-to-text latency per utterance.
	TranscriptionDuration metric.Float64Histogram

	// GrammarDuration tracks grammar-correction round-trip latency.
	GrammarDuration metric.Float64Histogram

	// RepairDuration tracks the fragment-merge repair pass latency.
	RepairDuration metric.Float64Histogram

	// EmbeddingDuration tracks embedding encode latency.
	EmbeddingDuration metric.Float64Histogram

	// --- Counters ---

	// Merges counts merge decisions. Use with attribute:
	//   attribute.String("decision", "accepted"|"rejected")
	Merges metric.Int64Counter

	// Utterances counts processed utterances. Use with attribute:
	//   attribute.String("outcome", "command"|"dictation"|"ignored")
	Utterances metric.Int64Counter

	// CommandsDispatched counts executed command actions. Use with attribute:
	//   attribute.String("trigger", ...)
	CommandsDispatched metric.Int64Counter

	// WakeDetections counts wake-word detections.
	WakeDetections metric.Int64Counter

	// --- Gauges ---

	// Listening tracks whether the assistant is awake (0 or 1).
	Listening metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// local-model inference and HTTP round trips.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranscriptionDuration, err = m.Float64Histogram("auriga.transcription.duration",
		metric.WithDescription("Latency of speech-to-text transcription."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.GrammarDuration, err = m.Float64Histogram("auriga.grammar.duration",
		metric.WithDescription("Latency of grammar correction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.RepairDuration, err = m.Float64Histogram("auriga.repair.duration",
		metric.WithDescription("Latency of the fragment-merge repair pass."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EmbeddingDuration, err = m.Float64Histogram("auriga.embedding.duration",
		metric.WithDescription("Latency of embedding encodes."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Merges, err = m.Int64Counter("auriga.repair.merges",
		metric.WithDescription("Fragment merge decisions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.Utterances, err = m.Int64Counter("auriga.utterances",
		metric.WithDescription("Processed utterances by outcome."),
	); err != nil {
		return nil, err
	}
	if met.CommandsDispatched, err = m.Int64Counter("auriga.commands.dispatched",
		metric.WithDescription("Executed command actions."),
	); err != nil {
		return nil, err
	}
	if met.WakeDetections, err = m.Int64Counter("auriga.wake.detections",
		metric.WithDescription("Wake-word detections."),
	); err != nil {
		return nil, err
	}

	// Gauges.
	if met.Listening, err = m.Int64UpDownCounter("auriga.listening",
		metric.WithDescription("Whether the assistant is awake and listening."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordMerge records one fragment-merge decision.
func (m *Metrics) RecordMerge(ctx context.Context, accepted bool) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	m.Merges.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", decision)))
}

// RecordUtterance records one processed utterance with its outcome.
func (m *Metrics) RecordUtterance(ctx context.Context, outcome string) {
	m.Utterances.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordCommand records one dispatched command action.
func (m *Metrics) RecordCommand(ctx context.Context, trigger string) {
	m.CommandsDispatched.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}
