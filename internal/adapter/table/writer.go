package table

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/couchcryptid/discharge-warning/internal/domain"
)

// Format selects the result encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json" // one object per line
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

var resultHeader = []string{StationColumn, DischargeColumn, "exceedance", "level", "method", "classified_at"}

// Writer encodes classification results to an io.Writer.
// It implements pipeline.ResultLoader.
type Writer struct {
	format      Format
	csv         *csv.Writer
	json        *json.Encoder
	wroteHeader bool
}

// NewWriter creates a Writer for the given format.
func NewWriter(w io.Writer, format Format) *Writer {
	out := &Writer{format: format}
	if format == FormatJSON {
		out.json = json.NewEncoder(w)
	} else {
		out.csv = csv.NewWriter(w)
	}
	return out
}

// LoadBatch writes one record per station. The CSV header is written with the
// first batch only.
func (w *Writer) LoadBatch(_ context.Context, levels []domain.StationLevel) error {
	if w.format == FormatJSON {
		for i := range levels {
			if err := w.json.Encode(levels[i]); err != nil {
				return fmt.Errorf("encode station %s: %w", levels[i].StationID, err)
			}
		}
		return nil
	}

	if !w.wroteHeader {
		if err := w.csv.Write(resultHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.wroteHeader = true
	}
	for _, l := range levels {
		record := []string{
			l.StationID,
			formatFloat(l.Discharge),
			formatFloat(l.Exceedance),
			strconv.Itoa(l.Level),
			string(l.Method),
			l.ClassifiedAt.Format(time.RFC3339),
		}
		if err := w.csv.Write(record); err != nil {
			return fmt.Errorf("write station %s: %w", l.StationID, err)
		}
	}
	w.csv.Flush()
	return w.csv.Error()
}

// WriteCurveTable writes curves in the layout Parse reads: a stn_id column
// followed by one <p>_percent column per probability. A station without a
// point at some probability gets an empty cell.
func WriteCurveTable(w io.Writer, probabilities []float64, stations []string, curves map[string]domain.Curve) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(probabilities)+1)
	header = append(header, StationColumn)
	for _, p := range probabilities {
		header = append(header, formatFloat(p)+probabilitySuffix)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, id := range stations {
		curve, ok := curves[id]
		if !ok {
			return fmt.Errorf("station %s: %w", id, domain.ErrNoCurve)
		}
		record := make([]string, 0, len(header))
		record = append(record, id)
		for _, p := range probabilities {
			q, ok := curve.Discharge(p)
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, formatFloat(q))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write station %s: %w", id, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
