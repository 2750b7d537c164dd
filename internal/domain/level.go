package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// NoWarning is the level for an exceedance of exactly 100 percent.
const NoWarning = 0

// Threshold assigns a warning level to an exceedance probability.
type Threshold struct {
	Level       int     `json:"level"`
	Probability float64 `json:"probability"`
}

// LevelMapping is an immutable set of thresholds. Higher levels have strictly
// lower probabilities, so "the smallest level whose threshold is below p" is
// always the tightest bound p fails to beat.
type LevelMapping struct {
	thresholds []Threshold // ascending level
}

// DefaultLevelMapping returns {1:50, 2:20, 3:10, 4:5, 5:2}.
func DefaultLevelMapping() LevelMapping {
	return LevelMapping{thresholds: []Threshold{
		{Level: 1, Probability: 50},
		{Level: 2, Probability: 20},
		{Level: 3, Probability: 10},
		{Level: 4, Probability: 5},
		{Level: 5, Probability: 2},
	}}
}

// NewLevelMapping validates thresholds: at least one, levels >= 1 and unique,
// probabilities in [0, 100) and strictly decreasing as the level rises.
func NewLevelMapping(thresholds []Threshold) (LevelMapping, error) {
	if len(thresholds) == 0 {
		return LevelMapping{}, fmt.Errorf("%w: no thresholds", ErrInvalidLevelMapping)
	}

	sorted := slices.Clone(thresholds)
	slices.SortFunc(sorted, func(a, b Threshold) int { return cmp.Compare(a.Level, b.Level) })

	for i, t := range sorted {
		if t.Level <= NoWarning {
			return LevelMapping{}, fmt.Errorf("%w: level %d must be positive", ErrInvalidLevelMapping, t.Level)
		}
		if !(t.Probability >= MinExceedance && t.Probability < MaxExceedance) {
			return LevelMapping{}, fmt.Errorf("%w: level %d probability %g outside [0, 100)", ErrInvalidLevelMapping, t.Level, t.Probability)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if t.Level == prev.Level {
			return LevelMapping{}, fmt.Errorf("%w: duplicate level %d", ErrInvalidLevelMapping, t.Level)
		}
		if t.Probability >= prev.Probability {
			return LevelMapping{}, fmt.Errorf("%w: level %d (%g%%) must have a lower probability than level %d (%g%%)",
				ErrInvalidLevelMapping, t.Level, t.Probability, prev.Level, prev.Probability)
		}
	}
	return LevelMapping{thresholds: sorted}, nil
}

// ParseLevelMapping parses "level:probability" pairs separated by commas,
// e.g. "1:50,2:20,3:10,4:5,5:2".
func ParseLevelMapping(s string) (LevelMapping, error) {
	var thresholds []Threshold
	for pair := range strings.SplitSeq(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		levelStr, probStr, ok := strings.Cut(pair, ":")
		if !ok {
			return LevelMapping{}, fmt.Errorf("%w: %q is not level:probability", ErrInvalidLevelMapping, pair)
		}
		level, err := strconv.Atoi(strings.TrimSpace(levelStr))
		if err != nil {
			return LevelMapping{}, fmt.Errorf("%w: level %q: %v", ErrInvalidLevelMapping, levelStr, err)
		}
		prob, err := strconv.ParseFloat(strings.TrimSpace(probStr), 64)
		if err != nil {
			return LevelMapping{}, fmt.Errorf("%w: probability %q: %v", ErrInvalidLevelMapping, probStr, err)
		}
		thresholds = append(thresholds, Threshold{Level: level, Probability: prob})
	}
	return NewLevelMapping(thresholds)
}

// Thresholds returns a copy of the thresholds in ascending level order.
func (m LevelMapping) Thresholds() []Threshold {
	return slices.Clone(m.thresholds)
}

// MaxLevel is the level given to probabilities below every threshold.
func (m LevelMapping) MaxLevel() int {
	if len(m.thresholds) == 0 {
		return NoWarning
	}
	return m.thresholds[len(m.thresholds)-1].Level + 1
}

// String formats the mapping in the form accepted by ParseLevelMapping.
func (m LevelMapping) String() string {
	parts := make([]string, len(m.thresholds))
	for i, t := range m.thresholds {
		parts[i] = strconv.Itoa(t.Level) + ":" + strconv.FormatFloat(t.Probability, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// Classify maps an exceedance probability to a warning level:
//
//	probability == 100                 -> 0
//	probability equals a threshold     -> that threshold's level
//	probability below every threshold  -> MaxLevel
//	otherwise                          -> smallest level whose threshold is below probability
//
// An empty mapping or a NaN probability yields NoWarning.
func Classify(mapping LevelMapping, probability float64) int {
	ths := mapping.thresholds
	if probability == MaxExceedance || len(ths) == 0 {
		return NoWarning
	}

	for _, t := range ths {
		if t.Probability == probability {
			return t.Level
		}
	}

	if lowest := ths[len(ths)-1]; probability < lowest.Probability {
		return lowest.Level + 1
	}

	for _, t := range ths {
		if t.Probability < probability {
			return t.Level
		}
	}
	return NoWarning
}
