package pipeline

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/discharge-warning/internal/domain"
)

// StationTransformer implements Transformer by looking up the station's curve
// and classifying the reading against a level mapping.
type StationTransformer struct {
	curves  map[string]domain.Curve
	mapping domain.LevelMapping
	logger  *slog.Logger
}

// NewTransformer creates a StationTransformer. curves is not copied and must
// not be modified while the transformer is in use.
func NewTransformer(curves map[string]domain.Curve, mapping domain.LevelMapping, logger *slog.Logger) *StationTransformer {
	return &StationTransformer{
		curves:  curves,
		mapping: mapping,
		logger:  logger,
	}
}

// Transform classifies one reading. NaN and infinite discharges are rejected
// with domain.ErrInvalidDischarge.
func (t *StationTransformer) Transform(stationID string, discharge float64) (domain.StationLevel, error) {
	if math.IsNaN(discharge) || math.IsInf(discharge, 0) {
		return domain.StationLevel{}, fmt.Errorf("station %s: %w", stationID, domain.ErrInvalidDischarge)
	}

	curve, ok := t.curves[stationID]
	if !ok {
		return domain.StationLevel{}, fmt.Errorf("station %s: %w", stationID, domain.ErrNoCurve)
	}

	level := domain.ClassifyReading(stationID, discharge, curve, t.mapping)
	switch level.Method {
	case domain.MethodAboveRange:
		t.logger.Debug("discharge above curve maximum",
			"station", stationID, "discharge", discharge, "max", curve.MaxDischarge())
	case domain.MethodBelowRange:
		t.logger.Debug("discharge below curve minimum",
			"station", stationID, "discharge", discharge, "min", curve.MinDischarge())
	}
	return level, nil
}
