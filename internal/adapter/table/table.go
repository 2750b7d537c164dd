// Package table reads and writes the tabular files around the classifier:
// exceedance curve tables, discharge readings and classification results.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/discharge-warning/internal/domain"
)

var (
	ErrEmptyTable           = errors.New("table has no header row")
	ErrMissingStationColumn = errors.New("missing " + StationColumn + " column")
	ErrNoProbabilityColumns = errors.New("no <number>_percent columns")
	ErrDuplicateStation     = errors.New("duplicate station")
	ErrEmptyStationID       = errors.New("empty station id")

	// ErrNonNumericCell is fatal: the table cannot be trusted once any retained
	// cell fails to parse.
	ErrNonNumericCell = errors.New("non-numeric value")
)

// Table is a loaded curve table: one exceedance curve per station.
type Table struct {
	Source        string
	Probabilities []float64 // column order
	Stations      []string  // row order
	Curves        map[string]domain.Curve
}

// Curve returns the curve for a station.
func (t *Table) Curve(stationID string) (domain.Curve, bool) {
	c, ok := t.Curves[stationID]
	return c, ok
}

// LoadFile reads the curve table at path.
func LoadFile(path string, logger *slog.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curve table: %w", err)
	}
	defer f.Close()
	return Parse(f, path, logger)
}

// Parse reads a curve table from r. source names the input in errors and logs.
// Empty and "NaN" cells leave the station without a point at that probability;
// any other unparsable cell fails the whole table.
func Parse(r io.Reader, source string, logger *slog.Logger) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	cols, err := parseHeaders(names, source, logger)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Source:        source,
		Probabilities: cols.probabilities(),
		Curves:        make(map[string]domain.Curve),
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		id := strings.TrimSpace(record[cols.station])
		if id == "" {
			return nil, fmt.Errorf("%s:%d: %w", source, line, ErrEmptyStationID)
		}
		if _, dup := t.Curves[id]; dup {
			return nil, fmt.Errorf("%s:%d: %w %q", source, line, ErrDuplicateStation, id)
		}

		points := make([]domain.Point, 0, len(cols.probability))
		for _, pc := range cols.probability {
			cell := strings.TrimSpace(record[pc.index])
			if isMissing(cell) {
				continue
			}
			q, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: station %s column %s: %w %q",
					source, line, id, pc.name, ErrNonNumericCell, cell)
			}
			points = append(points, domain.Point{Probability: pc.probability, Discharge: q})
		}

		curve, err := domain.NewCurve(points)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: station %s: %w", source, line, id, err)
		}
		t.Curves[id] = curve
		t.Stations = append(t.Stations, id)
	}

	logger.Info("curve table loaded",
		"source", source,
		"stations", len(t.Stations),
		"probabilities", len(t.Probabilities),
	)
	return t, nil
}

type probabilityColumn struct {
	index       int
	name        string
	probability float64
}

type columns struct {
	station     int
	probability []probabilityColumn
}

func (c columns) probabilities() []float64 {
	out := make([]float64, len(c.probability))
	for i, pc := range c.probability {
		out[i] = pc.probability
	}
	return out
}

func parseHeaders(names []string, source string, logger *slog.Logger) (columns, error) {
	cols := columns{station: -1}
	seen := make(map[float64]string)

	for i, name := range names {
		h, err := ParseHeader(name)
		if err != nil {
			return columns{}, fmt.Errorf("%s: %w", source, err)
		}
		switch h.Kind {
		case HeaderStation:
			if cols.station >= 0 {
				return columns{}, fmt.Errorf("%s: %w: %s appears twice", source, ErrDuplicateColumn, StationColumn)
			}
			cols.station = i
		case HeaderProbability:
			if prev, ok := seen[h.Probability]; ok {
				return columns{}, fmt.Errorf("%s: %w: %q and %q are both %g%%",
					source, ErrDuplicateColumn, prev, h.Name, h.Probability)
			}
			seen[h.Probability] = h.Name
			cols.probability = append(cols.probability, probabilityColumn{index: i, name: h.Name, probability: h.Probability})
		default:
			logger.Debug("ignoring curve table column", "source", source, "column", h.Name)
		}
	}

	if cols.station < 0 {
		return columns{}, fmt.Errorf("%s: %w", source, ErrMissingStationColumn)
	}
	if len(cols.probability) == 0 {
		return columns{}, fmt.Errorf("%s: %w", source, ErrNoProbabilityColumns)
	}
	return cols, nil
}

func isMissing(cell string) bool {
	return cell == "" || strings.EqualFold(cell, "nan")
}
