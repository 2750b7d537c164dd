// Command validate dry-runs a warning level batch and reports integrity
// problems without producing results: an unreadable curve table, a level
// mapping the table cannot resolve, readings for unknown stations, and readings
// that fall outside their station's curve.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -curves data/exceedances.csv \
//	  -discharges data/readings.csv \
//	  -levels 1:50,2:20,3:10,4:5,5:2
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/discharge-warning/internal/adapter/table"
	"github.com/couchcryptid/discharge-warning/internal/config"
	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/joho/godotenv"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	skipped bool
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load config: %v\n", err)
		os.Exit(1)
	}

	curves := flag.String("curves", cfg.CurveTablePath, "exceedance curve table (CSV)")
	discharges := flag.String("discharges", "", "discharge readings to check against the table (optional)")
	levels := flag.String("levels", cfg.WarningLevels, "warning level thresholds as level:probability pairs")
	flag.Parse()

	if *curves == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *curves, *discharges, *levels); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, curvesPath, dischargesPath, levels string) int {
	fmt.Fprintln(out, "=== Discharge Warning Integrity Validation ===")
	fmt.Fprintln(out)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	load := &phase{name: "Phase 1: Curve table"}
	tbl, err := table.LoadFile(curvesPath, quiet)
	if err != nil {
		load.errorf("%v", err)
	}

	mapping := &phase{name: "Phase 2: Level mapping"}
	m, err := domain.ParseLevelMapping(levels)
	if err != nil {
		mapping.errorf("%v", err)
	}
	if tbl != nil && err == nil {
		validateMapping(mapping, tbl, m)
	}

	var readings map[string]float64
	if dischargesPath != "" {
		readings, err = table.LoadReadings(dischargesPath)
	}
	coverage := &phase{name: "Phase 3: Station coverage", skipped: dischargesPath == ""}
	extent := &phase{name: "Phase 4: Readings within curve range", skipped: dischargesPath == ""}
	switch {
	case dischargesPath == "":
	case err != nil:
		coverage.errorf("%v", err)
		extent.skipped = true
	case tbl == nil:
		coverage.skipped = true
		extent.skipped = true
	default:
		validateCoverage(coverage, tbl, readings)
		validateExtent(extent, tbl, readings)
	}

	phases := []*phase{load, mapping, coverage, extent}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "\033[33mSKIP\033[0m"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	if tbl != nil {
		fmt.Fprintf(out, "Curves: %d stations, %d probability columns\n", len(tbl.Stations), len(tbl.Probabilities))
	}
	if readings != nil {
		fmt.Fprintf(out, "Readings: %d stations\n", len(readings))
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateMapping flags thresholds outside the table's probability columns:
// such levels are only reachable through clamping at the curve extremes.
func validateMapping(p *phase, tbl *table.Table, m domain.LevelMapping) {
	if len(tbl.Probabilities) == 0 {
		return
	}
	lo, hi := slices.Min(tbl.Probabilities), slices.Max(tbl.Probabilities)
	for _, th := range m.Thresholds() {
		if th.Probability < lo || th.Probability > hi {
			p.errorf("level %d threshold %g%% outside table probabilities [%g%%, %g%%]", th.Level, th.Probability, lo, hi)
		}
	}
}

func validateCoverage(p *phase, tbl *table.Table, readings map[string]float64) {
	for _, id := range slices.Sorted(maps.Keys(readings)) {
		if _, ok := tbl.Curve(id); !ok {
			p.errorf("station %s: %v", id, domain.ErrNoCurve)
		}
		if !isFinite(readings[id]) {
			p.errorf("station %s: %v", id, domain.ErrInvalidDischarge)
		}
	}
}

func validateExtent(p *phase, tbl *table.Table, readings map[string]float64) {
	for _, id := range slices.Sorted(maps.Keys(readings)) {
		curve, ok := tbl.Curve(id)
		q := readings[id]
		if !ok || !isFinite(q) {
			continue
		}
		switch est := domain.EstimateExceedance(q, curve); est.Method {
		case domain.MethodAboveRange:
			p.errorf("station %s: discharge %g above curve maximum %g", id, q, curve.MaxDischarge())
		case domain.MethodBelowRange:
			p.errorf("station %s: discharge %g below curve minimum %g", id, q, curve.MinDischarge())
		}
	}
}

func isFinite(q float64) bool {
	return !math.IsNaN(q) && !math.IsInf(q, 0)
}
