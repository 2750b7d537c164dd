package domain

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

const (
	// MinExceedance is returned for readings above the largest curve discharge.
	MinExceedance = 0.0
	// MaxExceedance is returned for readings below the smallest curve discharge.
	MaxExceedance = 100.0
)

// Point pairs an exceedance probability (percent) with the discharge (m^3/s)
// that is equaled or exceeded that often.
type Point struct {
	Probability float64 `json:"probability"`
	Discharge   float64 `json:"discharge"`
}

// Curve is one station's exceedance curve. The zero value has no points and
// estimates every reading as undefined; build curves with NewCurve.
type Curve struct {
	// sorted by ascending discharge; tied discharges keep the lowest probability first
	points []Point
}

// NewCurve validates points and returns an immutable curve. Probabilities must
// be unique and within [0, 100], discharges finite, and discharge must not
// increase as probability increases. At least two distinct discharge values are
// required. Tied discharges are allowed (flat stretches of the curve, common at
// zero flow).
func NewCurve(points []Point) (Curve, error) {
	if len(points) < 2 {
		return Curve{}, fmt.Errorf("%w: got %d point(s)", ErrTooFewPoints, len(points))
	}

	byProbability := slices.Clone(points)
	slices.SortFunc(byProbability, func(a, b Point) int {
		return cmp.Compare(a.Probability, b.Probability)
	})

	for i, p := range byProbability {
		if math.IsNaN(p.Probability) || p.Probability < MinExceedance || p.Probability > MaxExceedance {
			return Curve{}, fmt.Errorf("%w: %g", ErrProbabilityRange, p.Probability)
		}
		if math.IsNaN(p.Discharge) || math.IsInf(p.Discharge, 0) {
			return Curve{}, fmt.Errorf("%w at %g%%", ErrNonFiniteDischarge, p.Probability)
		}
		if i == 0 {
			continue
		}
		prev := byProbability[i-1]
		if p.Probability == prev.Probability {
			return Curve{}, fmt.Errorf("%w: %g%%", ErrDuplicateProbability, p.Probability)
		}
		if p.Discharge > prev.Discharge {
			return Curve{}, fmt.Errorf("%w: %g%% -> %g, %g%% -> %g",
				ErrNonMonotonic, prev.Probability, prev.Discharge, p.Probability, p.Discharge)
		}
	}

	if byProbability[0].Discharge == byProbability[len(byProbability)-1].Discharge {
		return Curve{}, fmt.Errorf("%w: every point has discharge %g", ErrTooFewPoints, byProbability[0].Discharge)
	}

	sorted := byProbability
	slices.SortStableFunc(sorted, func(a, b Point) int {
		if c := cmp.Compare(a.Discharge, b.Discharge); c != 0 {
			return c
		}
		return cmp.Compare(a.Probability, b.Probability)
	})
	return Curve{points: sorted}, nil
}

// Points returns a copy of the curve ordered by ascending discharge.
func (c Curve) Points() []Point {
	return slices.Clone(c.points)
}

// Len reports the number of points on the curve.
func (c Curve) Len() int {
	return len(c.points)
}

// MinDischarge returns the smallest discharge on the curve, or 0 for an empty curve.
func (c Curve) MinDischarge() float64 {
	if len(c.points) == 0 {
		return 0
	}
	return c.points[0].Discharge
}

// MaxDischarge returns the largest discharge on the curve, or 0 for an empty curve.
func (c Curve) MaxDischarge() float64 {
	if len(c.points) == 0 {
		return 0
	}
	return c.points[len(c.points)-1].Discharge
}

// Discharge returns the discharge recorded for probability, if the curve has that point.
func (c Curve) Discharge(probability float64) (float64, bool) {
	for _, p := range c.points {
		if p.Probability == probability {
			return p.Discharge, true
		}
	}
	return 0, false
}

// Exceedance is shorthand for EstimateExceedance(value, c).Probability.
func (c Curve) Exceedance(value float64) float64 {
	return EstimateExceedance(value, c).Probability
}

// Method names the estimation branch that produced an Estimate.
type Method string

const (
	MethodExact        Method = "exact"
	MethodInterpolated Method = "interpolated"
	MethodAboveRange   Method = "above_range"
	MethodBelowRange   Method = "below_range"
	MethodUndefined    Method = "undefined"
)

// Estimate is an exceedance probability together with how it was derived.
type Estimate struct {
	Probability float64
	Method      Method
}

// Clamped reports whether the reading fell outside the curve's discharge range.
func (e Estimate) Clamped() bool {
	return e.Method == MethodAboveRange || e.Method == MethodBelowRange
}

// EstimateExceedance returns the probability (0–100) that value is equaled or
// exceeded according to curve. A NaN value or a curve without points yields
// MethodUndefined with a NaN probability.
func EstimateExceedance(value float64, curve Curve) Estimate {
	pts := curve.points
	if math.IsNaN(value) || len(pts) == 0 {
		return Estimate{Probability: math.NaN(), Method: MethodUndefined}
	}

	// i is the first point whose discharge is >= value.
	i, found := slices.BinarySearchFunc(pts, value, func(p Point, v float64) int {
		return cmp.Compare(p.Discharge, v)
	})

	switch {
	case found:
		return Estimate{Probability: pts[i].Probability, Method: MethodExact}
	case i == len(pts):
		return Estimate{Probability: MinExceedance, Method: MethodAboveRange}
	case i == 0:
		return Estimate{Probability: MaxExceedance, Method: MethodBelowRange}
	}

	upper := pts[i]
	lower := pts[firstOfTie(pts, i-1)]

	slope := (upper.Probability - lower.Probability) / (upper.Discharge - lower.Discharge)
	intercept := upper.Probability - upper.Discharge*slope
	return Estimate{Probability: slope*value + intercept, Method: MethodInterpolated}
}

// firstOfTie walks back from i to the first point sharing its discharge.
func firstOfTie(pts []Point, i int) int {
	for i > 0 && pts[i-1].Discharge == pts[i].Discharge {
		i--
	}
	return i
}
