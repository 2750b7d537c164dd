// Command warnlevel classifies station discharge readings into flood warning
// levels using each station's exceedance curve.
//
// Usage:
//
//	go run ./cmd/warnlevel \
//	  -curves data/exceedances.csv \
//	  -discharges data/readings.csv \
//	  -out levels.csv
//
// Flags override the matching environment variables (CURVE_TABLE_PATH,
// WARNING_LEVELS, OUTPUT_FORMAT). Results go to stdout unless -out is set;
// logs always go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/discharge-warning/internal/adapter/kafka"
	"github.com/couchcryptid/discharge-warning/internal/adapter/table"
	"github.com/couchcryptid/discharge-warning/internal/config"
	"github.com/couchcryptid/discharge-warning/internal/observability"
	"github.com/couchcryptid/discharge-warning/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	curves := flag.String("curves", cfg.CurveTablePath, "exceedance curve table (CSV)")
	discharges := flag.String("discharges", "", "discharge readings (CSV with stn_id,discharge or JSON object)")
	levels := flag.String("levels", cfg.WarningLevels, "warning level thresholds as level:probability pairs")
	format := flag.String("format", cfg.OutputFormat, "output format: csv or json")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if *curves == "" || *discharges == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		curves:     *curves,
		discharges: *discharges,
		levels:     *levels,
		format:     *format,
		out:        *out,
	}
	if err := run(ctx, cfg, opts, logger); err != nil {
		logger.Error("warning level run failed", "error", err)
		os.Exit(1)
	}
}

type options struct {
	curves     string
	discharges string
	levels     string
	format     string
	out        string
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) (err error) {
	mapping, err := cfg.ParseWarningLevels(opts.levels)
	if err != nil {
		return err
	}
	format, err := table.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	tbl, err := table.LoadFile(opts.curves, logger)
	if err != nil {
		return err
	}
	readings, err := table.LoadReadings(opts.discharges)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, cerr := os.Create(opts.out)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}

	loaders := []pipeline.ResultLoader{table.NewWriter(w, format)}
	if cfg.KafkaEnabled() {
		kw := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if cerr := kw.Close(); cerr != nil {
				logger.Error("kafka writer close error", "error", cerr)
			}
		}()
		loaders = append(loaders, kw)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	metrics := observability.NewMetrics()
	p := pipeline.New(pipeline.NewTransformer(tbl.Curves, mapping, logger), logger, metrics, loaders...)

	_, runErr := p.Run(ctx, readings)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics export failed", "error", err, "path", cfg.MetricsTextfile)
		}
	}
	return runErr
}
