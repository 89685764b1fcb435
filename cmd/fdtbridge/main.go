// Command fdtbridge runs one dataset pull, or evaluates a refresh
// schedule, against the configured container service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/t3ls/fdtbridge/config"
	"github.com/t3ls/fdtbridge/internal/client"
	"github.com/t3ls/fdtbridge/internal/observability"
	"github.com/t3ls/fdtbridge/internal/schedule"
	"github.com/t3ls/fdtbridge/internal/table"
	"github.com/t3ls/fdtbridge/lib/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

func main() {
	var (
		datasets     = flag.String("datasets", "", "comma-separated dataset names to pull")
		fromFlag     = flag.String("from", "", "slice window start (RFC 3339); requires a single dataset and -to")
		toFlag       = flag.String("to", "", "slice window end (RFC 3339)")
		schedulePath = flag.String("schedule", "", "evaluate a YAML schedule file and exit")
		verbose      = flag.Bool("verbose", false, "log client activity to stderr")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "fdtbridge ", log.LstdFlags)
	if *verbose {
		observability.SetLogger(observability.FuncLogger(func(level, msg string, fields ...observability.Field) {
			logger.Printf("%s %s %s", level, msg, formatFields(fields))
		}))
	}

	if *schedulePath != "" {
		if err := evaluateSchedule(*schedulePath); err != nil {
			logger.Fatalf("schedule: %v", err)
		}
		return
	}

	names := splitNames(*datasets)
	if len(names) == 0 {
		logger.Fatalf("no datasets requested; pass -datasets or -schedule")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.FromEnv()
	_, shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatalf("telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer shutdownCancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Printf("telemetry shutdown: %v", err)
		}
	}()
	observability.SetMetrics(observability.NewOTelMetrics(otel.Meter("fdtbridge")))

	relay := client.RelayFunc(func(_ context.Context, payload []byte) error {
		fmt.Println(string(payload))
		return nil
	})
	bridge := client.New(cfg)

	if *fromFlag != "" || *toFlag != "" {
		if err := pullSlice(ctx, bridge, relay, names, *fromFlag, *toFlag); err != nil {
			logger.Fatalf("pull: %v", err)
		}
		return
	}

	if err := bridge.Get(ctx, relay, names, nil); err != nil {
		logger.Fatalf("pull: %v", err)
	}
}

func pullSlice(ctx context.Context, bridge *client.Client, relay client.Relay, names []string, fromRaw, toRaw string) error {
	if len(names) != 1 {
		return fmt.Errorf("slice pulls take exactly one dataset, got %d", len(names))
	}
	from, err := time.Parse(time.RFC3339, fromRaw)
	if err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, toRaw)
	if err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}

	tbl, ok, err := bridge.GetSingle(ctx, relay, names[0], from, to, nil, nil, false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("download failed for dataset %q", names[0])
	}
	printSummary(names[0], tbl)
	return nil
}

func printSummary(name string, tbl *table.Table) {
	fmt.Printf("dataset %s: %d rows, %d columns\n", name, tbl.NumRows(), tbl.NumCols())
	for _, col := range tbl.Columns() {
		fmt.Printf("  %s (%s)\n", col.Name, col.Type)
	}
}

func evaluateSchedule(path string) error {
	sched, err := schedule.LoadFile(path)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	fmt.Printf("now:    %s\n", now.Format(time.RFC3339))
	fmt.Printf("latest: %s\n", sched.LatestRefresh(now).Format(time.RFC3339))
	fmt.Printf("next:   %s\n", sched.NextRefresh(now).Format(time.RFC3339))
	return nil
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

func formatFields(fields []observability.Field) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", field.Key, field.Value))
	}
	return strings.Join(parts, " ")
}
