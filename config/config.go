// Package config centralises runtime configuration for the fdtbridge client.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultHost is the service hostname the bridge connects to.
	DefaultHost = "project-fdt-container"
	// DefaultPort is the service port the bridge connects to.
	DefaultPort = 8000

	datasetPath  = "/fdtc-api/dataset"
	downloadPath = "/fdtc-api/dataset/download"
)

// TelemetryConfig controls the OpenTelemetry bootstrap.
type TelemetryConfig struct {
	OTLPEndpoint string
	ServiceName  string
}

// Settings contains the immutable bridge configuration. A Settings value is
// fixed at construction; concurrent pulls share it without coordination.
type Settings struct {
	Host             string
	Port             int
	StreamScheme     string
	DownloadScheme   string
	HandshakeTimeout time.Duration
	DownloadTimeout  time.Duration
	Telemetry        TelemetryConfig
}

// Default returns the default bridge configuration. Timeouts default to
// zero, meaning a pull waits indefinitely; dataset materialisation on the
// remote side has no bounded duration.
func Default() Settings {
	return Settings{
		Host:             DefaultHost,
		Port:             DefaultPort,
		StreamScheme:     "ws",
		DownloadScheme:   "http",
		HandshakeTimeout: 0,
		DownloadTimeout:  0,
		Telemetry:        TelemetryConfig{OTLPEndpoint: "", ServiceName: "fdtbridge"},
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_STREAM_SCHEME")); v != "" {
		cfg.StreamScheme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_DOWNLOAD_SCHEME")); v != "" {
		cfg.DownloadScheme = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_HANDSHAKE_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.HandshakeTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_DOWNLOAD_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.DownloadTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("FDTBRIDGE_SERVICE_NAME")); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	return cfg
}

// StreamURL returns the websocket endpoint that serves dataset pulls.
func (s Settings) StreamURL() string {
	return fmt.Sprintf("%s://%s:%d%s/get", s.StreamScheme, s.Host, s.Port, datasetPath)
}

// DownloadURL returns the HTTP route serving the CSV artifact named by the
// content pointer.
func (s Settings) DownloadURL(pointer string) string {
	return fmt.Sprintf("%s://%s:%d%s/csv/%s", s.DownloadScheme, s.Host, s.Port, downloadPath, pointer)
}
