package domain

import "errors"

var (
	// ErrTooFewPoints means a curve has fewer than two distinct discharge values,
	// so interpolation between neighbours is undefined.
	ErrTooFewPoints = errors.New("curve needs at least two distinct discharge values")

	ErrDuplicateProbability = errors.New("duplicate exceedance probability")
	ErrProbabilityRange     = errors.New("probability outside [0, 100]")
	ErrNonFiniteDischarge   = errors.New("discharge is not a finite number")

	// ErrNonMonotonic means discharge rises with exceedance probability somewhere on the curve.
	ErrNonMonotonic = errors.New("discharge must not increase with exceedance probability")

	ErrInvalidLevelMapping = errors.New("invalid warning level mapping")

	// ErrNoCurve is reported for a reading whose station has no exceedance curve.
	ErrNoCurve = errors.New("no exceedance curve for station")

	ErrInvalidDischarge = errors.New("discharge reading is not a finite number")
)
