// Package download resolves content pointers into materialised tables.
package download

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/t3ls/fdtbridge/config"
	"github.com/t3ls/fdtbridge/internal/observability"
	"github.com/t3ls/fdtbridge/internal/table"
)

// Resolver performs one blocking fetch of a CSV artifact per call.
// Failures never escape as errors; every outcome is a (table, ok) pair so
// streaming callers can report uniformly.
type Resolver struct {
	client   *http.Client
	settings config.Settings
	clock    func() time.Time
}

// NewResolver constructs a resolver for the configured download endpoint.
// A zero DownloadTimeout means the fetch blocks until the server responds.
func NewResolver(cfg config.Settings) *Resolver {
	client := new(http.Client)
	client.Timeout = cfg.DownloadTimeout
	return &Resolver{client: client, settings: cfg, clock: time.Now}
}

// Fetch downloads the artifact named by the content pointer and parses it
// into a table, applying the caller's column type overrides. On any
// failure it returns the failure sentinel and false.
func (r *Resolver) Fetch(ctx context.Context, pointer string, overrides map[string]table.Type) (*table.Table, bool) {
	url := r.settings.DownloadURL(pointer)
	start := r.clock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return r.fail(pointer, "build download request", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return r.fail(pointer, "download artifact", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.Log().Error("download rejected",
			observability.Field{Key: "pointer", Value: pointer},
			observability.Field{Key: "status", Value: resp.StatusCode})
		observability.Telemetry().IncCounter(observability.MetricDownloadFailures, 1, map[string]string{"reason": "status"})
		return table.Failure(), false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return r.fail(pointer, "read artifact body", err)
	}

	tbl, err := table.ReadCSV(bytes.NewReader(body), overrides)
	if err != nil {
		return r.fail(pointer, "parse artifact", err)
	}

	observability.Telemetry().IncCounter(observability.MetricDownloads, 1, nil)
	observability.Telemetry().ObserveHistogram(observability.MetricDownloadSeconds, r.clock().Sub(start).Seconds(), nil)
	observability.Log().Info("downloaded artifact",
		observability.Field{Key: "pointer", Value: pointer},
		observability.Field{Key: "rows", Value: tbl.NumRows()})
	return tbl, true
}

func (r *Resolver) fail(pointer, what string, err error) (*table.Table, bool) {
	observability.Log().Error(what+" failed",
		observability.Field{Key: "pointer", Value: pointer},
		observability.Field{Key: "error", Value: err.Error()})
	observability.Telemetry().IncCounter(observability.MetricDownloadFailures, 1, map[string]string{"reason": "error"})
	return table.Failure(), false
}
