// Command gencurves derives an exceedance curve table from historical
// discharge records. Each station's discharge at p percent exceedance is the
// empirical quantile of its record at 1 - p/100.
//
// Usage:
//
//	go run ./cmd/gencurves \
//	  -history data/daily_discharge.csv \
//	  -probabilities 1,2,5,10,20,50 \
//	  -out data/exceedances.csv
//
// The history CSV needs stn_id and discharge columns; a station may repeat.
// Stations whose record cannot produce a valid curve are reported and left out.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/discharge-warning/internal/adapter/table"
	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/lmittmann/tint"
)

func main() {
	history := flag.String("history", "", "historical discharge CSV (stn_id,discharge rows)")
	probabilities := flag.String("probabilities", joinFloats(domain.DefaultCurveProbabilities), "comma-separated exceedance probabilities")
	out := flag.String("out", "", "output path for the curve table (default stdout)")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stderr, nil))

	if *history == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*history, *probabilities, *out, logger); err != nil {
		logger.Error("generate curves failed", "error", err)
		os.Exit(1)
	}
}

func run(historyPath, probabilities, outPath string, logger *slog.Logger) (err error) {
	probs, err := parseFloats(probabilities)
	if err != nil {
		return fmt.Errorf("parse -probabilities: %w", err)
	}

	f, err := os.Open(historyPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	h, err := table.ParseHistory(f, historyPath)
	if err != nil {
		return err
	}

	stations, curves := buildCurves(h, probs, logger)
	logger.Info("curves generated", "stations", len(stations), "dropped", len(h.Stations)-len(stations))

	var w io.Writer = os.Stdout
	if outPath != "" {
		outFile, cerr := os.Create(outPath)
		if cerr != nil {
			return fmt.Errorf("create output: %w", cerr)
		}
		defer func() {
			err = errors.Join(err, outFile.Close())
		}()
		w = outFile
	}
	return table.WriteCurveTable(w, probs, stations, curves)
}

// buildCurves derives one curve per station, skipping stations whose record is
// too short or too flat.
func buildCurves(h *table.History, probs []float64, logger *slog.Logger) ([]string, map[string]domain.Curve) {
	stations := make([]string, 0, len(h.Stations))
	curves := make(map[string]domain.Curve, len(h.Stations))
	for _, id := range h.Stations {
		curve, err := domain.CurveFromHistory(h.Samples[id], probs)
		if err != nil {
			logger.Warn("skipping station", "station", id, "samples", len(h.Samples[id]), "error", err)
			continue
		}
		stations = append(stations, id)
		curves[id] = curve
	}
	return stations, curves
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	seen := make(map[float64]bool)
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		if !(f >= domain.MinExceedance && f <= domain.MaxExceedance) {
			return nil, fmt.Errorf("%w: %g", domain.ErrProbabilityRange, f)
		}
		if seen[f] {
			return nil, fmt.Errorf("%w: %g%%", domain.ErrDuplicateProbability, f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no probabilities in %q", s)
	}
	return out, nil
}

func joinFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
