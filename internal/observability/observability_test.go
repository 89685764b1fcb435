package observability

import "testing"

type captureLogger struct {
	infos []string
}

func (c *captureLogger) Debug(string, ...Field)      {}
func (c *captureLogger) Info(msg string, _ ...Field) { c.infos = append(c.infos, msg) }
func (c *captureLogger) Error(string, ...Field)      {}

func TestSetLoggerSwapsGlobalAndNilRestoresNoop(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	capture := &captureLogger{}
	SetLogger(capture)
	Log().Info("connected")
	if len(capture.infos) != 1 || capture.infos[0] != "connected" {
		t.Fatalf("expected captured info message, got %v", capture.infos)
	}

	SetLogger(nil)
	Log().Info("dropped")
	if len(capture.infos) != 1 {
		t.Fatalf("noop logger should swallow messages, got %v", capture.infos)
	}
}

func TestFuncLoggerForwardsLevels(t *testing.T) {
	var levels []string
	logger := FuncLogger(func(level, _ string, _ ...Field) {
		levels = append(levels, level)
	})
	logger.Debug("a")
	logger.Info("b")
	logger.Error("c")
	if len(levels) != 3 || levels[0] != "debug" || levels[1] != "info" || levels[2] != "error" {
		t.Fatalf("unexpected levels %v", levels)
	}
}

func TestSetMetricsNilRestoresNoop(t *testing.T) {
	SetMetrics(nil)
	// Must not panic.
	Telemetry().IncCounter(MetricMessagesRelayed, 1, map[string]string{"dataset": "orders"})
	Telemetry().ObserveHistogram(MetricDownloadSeconds, 0.5, nil)
}
