package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrTooFewSamples means a discharge history is too short to derive a curve from.
var ErrTooFewSamples = errors.New("need at least two finite discharge samples")

// DefaultCurveProbabilities are the exceedance columns written by curve generators.
var DefaultCurveProbabilities = []float64{1, 2, 5, 10, 20, 50}

// CurveFromHistory derives an exceedance curve from a station's historical
// discharge samples. The discharge for probability p is the empirical quantile
// at 1 - p/100, interpolated linearly between order statistics. NaN and
// infinite samples are dropped.
func CurveFromHistory(samples, probabilities []float64) (Curve, error) {
	finite := make([]float64, 0, len(samples))
	for _, s := range samples {
		if !math.IsNaN(s) && !math.IsInf(s, 0) {
			finite = append(finite, s)
		}
	}
	if len(finite) < 2 {
		return Curve{}, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(finite))
	}
	slices.Sort(finite)

	points := make([]Point, 0, len(probabilities))
	for _, p := range probabilities {
		if math.IsNaN(p) || p < MinExceedance || p > MaxExceedance {
			return Curve{}, fmt.Errorf("%w: %g", ErrProbabilityRange, p)
		}
		points = append(points, Point{Probability: p, Discharge: quantile(finite, 1-p/100)})
	}
	return NewCurve(points)
}

// quantile expects sorted input and q in [0, 1].
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
