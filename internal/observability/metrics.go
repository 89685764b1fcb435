package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics provides counter and histogram recording primitives.
type Metrics interface {
	IncCounter(name string, value float64, labels map[string]string)
	ObserveHistogram(name string, value float64, labels map[string]string)
}

// Metric names emitted by the bridge.
const (
	MetricMessagesRelayed   = "fdtbridge.messages.relayed"
	MetricExchangesComplete = "fdtbridge.exchanges.completed"
	MetricDownloads         = "fdtbridge.downloads"
	MetricDownloadFailures  = "fdtbridge.downloads.failed"
	MetricDownloadSeconds   = "fdtbridge.download.seconds"
)

var defaultMetrics Metrics = noopMetrics{}

// SetMetrics overrides the global metrics implementation used by the bridge.
func SetMetrics(metrics Metrics) {
	if metrics == nil {
		defaultMetrics = noopMetrics{}
		return
	}
	defaultMetrics = metrics
}

// Telemetry returns the current global metrics collector.
func Telemetry() Metrics {
	return defaultMetrics
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(string, float64, map[string]string)       {}
func (noopMetrics) ObserveHistogram(string, float64, map[string]string) {}

// OTelMetrics records bridge metrics through an OpenTelemetry meter.
// Instruments are created lazily and cached per metric name.
type OTelMetrics struct {
	meter metric.Meter

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
}

// NewOTelMetrics wraps the provided meter in a Metrics implementation.
func NewOTelMetrics(meter metric.Meter) *OTelMetrics {
	return &OTelMetrics{
		meter:      meter,
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// IncCounter adds value to the named counter.
func (m *OTelMetrics) IncCounter(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	counter, ok := m.counters[name]
	if !ok {
		created, err := m.meter.Float64Counter(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = created
		counter = created
	}
	m.mu.Unlock()
	counter.Add(context.Background(), value, metric.WithAttributes(attrs(labels)...))
}

// ObserveHistogram records value in the named histogram.
func (m *OTelMetrics) ObserveHistogram(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	histogram, ok := m.histograms[name]
	if !ok {
		created, err := m.meter.Float64Histogram(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.histograms[name] = created
		histogram = created
	}
	m.mu.Unlock()
	histogram.Record(context.Background(), value, metric.WithAttributes(attrs(labels)...))
}

func attrs(labels map[string]string) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		kvs = append(kvs, attribute.String(k, v))
	}
	return kvs
}
