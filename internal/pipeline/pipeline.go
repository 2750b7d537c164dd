package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/couchcryptid/discharge-warning/internal/adapter/table"
	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/couchcryptid/discharge-warning/internal/observability"
)

// Transformer converts one station reading into a classification record.
type Transformer interface {
	Transform(stationID string, discharge float64) (domain.StationLevel, error)
}

// ResultLoader writes classification records to a destination.
type ResultLoader interface {
	LoadBatch(ctx context.Context, levels []domain.StationLevel) error
}

// Skip records a reading that could not be classified.
type Skip struct {
	StationID string
	Err       error
}

// Report is the outcome of one batch.
type Report struct {
	Levels  []domain.StationLevel // ordered by station id
	Skipped []Skip
}

// LevelMap returns station id -> warning level for the classified readings.
func (r Report) LevelMap() map[string]int {
	return domain.LevelMap(r.Levels)
}

// Pipeline classifies batches of discharge readings and hands the results to
// its loaders.
type Pipeline struct {
	transformer Transformer
	loaders     []ResultLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// New creates a Pipeline with the given stages and observability.
func New(t Transformer, logger *slog.Logger, metrics *observability.Metrics, loaders ...ResultLoader) *Pipeline {
	return &Pipeline{
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// Evaluate classifies every reading. Readings that cannot be classified are
// logged, counted and reported as skips; they never abort the batch. Stations
// are visited in id order so logs and records are stable between runs.
func (p *Pipeline) Evaluate(discharges map[string]float64) Report {
	p.metrics.ReadingsTotal.Add(float64(len(discharges)))

	report := Report{Levels: make([]domain.StationLevel, 0, len(discharges))}
	for _, id := range slices.Sorted(maps.Keys(discharges)) {
		level, err := p.transformer.Transform(id, discharges[id])
		if err != nil {
			p.logger.Error("skipping station reading", "station", id, "error", err)
			p.metrics.SkippedTotal.WithLabelValues(skipReason(err)).Inc()
			report.Skipped = append(report.Skipped, Skip{StationID: id, Err: err})
			continue
		}

		switch level.Method {
		case domain.MethodAboveRange, domain.MethodBelowRange:
			p.metrics.ClampedTotal.WithLabelValues(string(level.Method)).Inc()
		}
		p.metrics.ObserveLevel(level.Level)
		report.Levels = append(report.Levels, level)
	}
	return report
}

// Classify returns station id -> warning level for every reading whose
// station has a curve.
func (p *Pipeline) Classify(discharges map[string]float64) map[string]int {
	return p.Evaluate(discharges).LevelMap()
}

// Run evaluates a batch and loads the records into every loader in order.
// The report is returned even when a loader fails.
func (p *Pipeline) Run(ctx context.Context, discharges map[string]float64) (Report, error) {
	start := time.Now()
	p.logger.Info("classification started", "readings", len(discharges))

	report := p.Evaluate(discharges)

	for _, l := range p.loaders {
		if err := l.LoadBatch(ctx, report.Levels); err != nil {
			p.metrics.PublishErrors.Inc()
			return report, fmt.Errorf("load results: %w", err)
		}
	}

	elapsed := time.Since(start)
	p.metrics.BatchDuration.Observe(elapsed.Seconds())
	p.metrics.LastRunTimestamp.SetToCurrentTime()
	p.logger.Info("classification finished",
		"classified", len(report.Levels),
		"skipped", len(report.Skipped),
		"duration", elapsed,
	)
	return report, nil
}

// Calculate loads the curve table at source and returns station id -> warning
// level for discharges under mapping.
func Calculate(source string, discharges map[string]float64, mapping domain.LevelMapping, logger *slog.Logger) (map[string]int, error) {
	logger.Info("calculating warning levels", "source", source, "stations", len(discharges))

	tbl, err := table.LoadFile(source, logger)
	if err != nil {
		return nil, fmt.Errorf("load curve table: %w", err)
	}

	p := New(NewTransformer(tbl.Curves, mapping, logger), logger, observability.NewMetrics())
	levels := p.Classify(discharges)

	logger.Info("warning levels calculated", "source", source, "classified", len(levels))
	return levels, nil
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoCurve):
		return "no_curve"
	case errors.Is(err, domain.ErrInvalidDischarge):
		return "invalid_discharge"
	default:
		return "error"
	}
}
