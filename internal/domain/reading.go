package domain

import "time"

// StationLevel is the classification outcome for one station's discharge reading.
type StationLevel struct {
	StationID    string    `json:"stn_id"`
	Discharge    float64   `json:"discharge"`             // m^3/s
	Exceedance   float64   `json:"exceedance"`            // percent, 0–100
	Method       Method    `json:"method"`                // estimation branch taken
	Level        int       `json:"warning_level"`         // 0 (none) to mapping.MaxLevel()
	ClassifiedAt time.Time `json:"classified_at"`
}

// ClassifyReading estimates the exceedance of discharge on curve and maps it
// to a warning level. The caller guarantees discharge is finite.
func ClassifyReading(stationID string, discharge float64, curve Curve, mapping LevelMapping) StationLevel {
	est := EstimateExceedance(discharge, curve)
	return StationLevel{
		StationID:    stationID,
		Discharge:    discharge,
		Exceedance:   est.Probability,
		Method:       est.Method,
		Level:        Classify(mapping, est.Probability),
		ClassifiedAt: clock.Now().UTC(),
	}
}

// LevelMap collapses classification records into station id -> warning level.
func LevelMap(levels []StationLevel) map[string]int {
	out := make(map[string]int, len(levels))
	for _, l := range levels {
		out[l.StationID] = l.Level
	}
	return out
}
