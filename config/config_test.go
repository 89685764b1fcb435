package config

import (
	"testing"
	"time"
)

func TestDefaultPointsAtContainerService(t *testing.T) {
	cfg := Default()
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Fatalf("unexpected default endpoint %s:%d", cfg.Host, cfg.Port)
	}
	if got := cfg.StreamURL(); got != "ws://project-fdt-container:8000/fdtc-api/dataset/get" {
		t.Fatalf("unexpected stream url %q", got)
	}
	if got := cfg.DownloadURL("abc123"); got != "http://project-fdt-container:8000/fdtc-api/dataset/download/csv/abc123" {
		t.Fatalf("unexpected download url %q", got)
	}
}

func TestFromEnvOverridesValues(t *testing.T) {
	t.Setenv("FDTBRIDGE_HOST", "fdt.internal")
	t.Setenv("FDTBRIDGE_PORT", "9100")
	t.Setenv("FDTBRIDGE_STREAM_SCHEME", "WSS")
	t.Setenv("FDTBRIDGE_DOWNLOAD_SCHEME", "HTTPS")
	t.Setenv("FDTBRIDGE_HANDSHAKE_TIMEOUT", "15s")
	t.Setenv("FDTBRIDGE_DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("FDTBRIDGE_OTLP_ENDPOINT", "https://otlp.test")
	t.Setenv("FDTBRIDGE_SERVICE_NAME", "bridge-test")

	cfg := FromEnv()
	if cfg.Host != "fdt.internal" || cfg.Port != 9100 {
		t.Fatalf("expected endpoint overrides, got %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.StreamScheme != "wss" || cfg.DownloadScheme != "https" {
		t.Fatalf("expected lowered schemes, got %s/%s", cfg.StreamScheme, cfg.DownloadScheme)
	}
	if cfg.HandshakeTimeout != 15*time.Second || cfg.DownloadTimeout != 2*time.Minute {
		t.Fatalf("expected timeout overrides, got %v/%v", cfg.HandshakeTimeout, cfg.DownloadTimeout)
	}
	if cfg.Telemetry.OTLPEndpoint != "https://otlp.test" || cfg.Telemetry.ServiceName != "bridge-test" {
		t.Fatalf("expected telemetry overrides, got %+v", cfg.Telemetry)
	}
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FDTBRIDGE_PORT", "not-a-port")
	t.Setenv("FDTBRIDGE_DOWNLOAD_TIMEOUT", "soon")

	cfg := FromEnv()
	if cfg.Port != DefaultPort {
		t.Fatalf("malformed port should keep default, got %d", cfg.Port)
	}
	if cfg.DownloadTimeout != 0 {
		t.Fatalf("malformed timeout should keep default, got %v", cfg.DownloadTimeout)
	}
}
