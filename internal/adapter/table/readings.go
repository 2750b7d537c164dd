package table

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DischargeColumn is the header of the readings column holding discharge values.
const DischargeColumn = "discharge"

var ErrMissingDischargeColumn = errors.New("missing " + DischargeColumn + " column")

// LoadReadings reads station discharge readings from path. Files ending in
// .json hold a single object of station id to discharge; anything else is
// read as CSV with stn_id and discharge columns.
func LoadReadings(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open readings: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseReadingsJSON(f, path)
	}
	return ParseReadings(f, path)
}

// ParseReadings reads CSV readings. "NaN" is accepted and left for the
// classifier to reject; blank or unparsable values fail the load.
func ParseReadings(r io.Reader, source string) (map[string]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	stationIdx, dischargeIdx, err := readingColumns(header, source)
	if err != nil {
		return nil, err
	}

	readings := make(map[string]float64)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		id := strings.TrimSpace(record[stationIdx])
		if id == "" {
			return nil, fmt.Errorf("%s:%d: %w", source, line, ErrEmptyStationID)
		}
		if _, dup := readings[id]; dup {
			return nil, fmt.Errorf("%s:%d: %w %q", source, line, ErrDuplicateStation, id)
		}

		cell := strings.TrimSpace(record[dischargeIdx])
		q, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: station %s: %w %q", source, line, id, ErrNonNumericCell, cell)
		}
		readings[id] = q
	}
	return readings, nil
}

// ParseReadingsJSON reads {"<station>": <discharge>, ...}. Station ids are
// trimmed like CSV ids. Null values and ids that collide after trimming fail
// the load.
func ParseReadingsJSON(r io.Reader, source string) (map[string]float64, error) {
	var raw map[string]*float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: decode readings: %w", source, err)
	}

	readings := make(map[string]float64, len(raw))
	for key, q := range raw {
		id := strings.TrimSpace(key)
		if id == "" {
			return nil, fmt.Errorf("%s: %w", source, ErrEmptyStationID)
		}
		if _, dup := readings[id]; dup {
			return nil, fmt.Errorf("%s: %w %q", source, ErrDuplicateStation, id)
		}
		if q == nil {
			return nil, fmt.Errorf("%s: station %s: %w null", source, id, ErrNonNumericCell)
		}
		readings[id] = *q
	}
	return readings, nil
}

// History is a discharge series per station, e.g. years of daily readings.
type History struct {
	Stations []string // first-appearance order
	Samples  map[string][]float64
}

// ParseHistory reads CSV rows of stn_id and discharge where a station may
// repeat. Blank and "NaN" discharges are dropped as gaps in the record.
func ParseHistory(r io.Reader, source string) (*History, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyTable)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}

	stationIdx, dischargeIdx, err := readingColumns(header, source)
	if err != nil {
		return nil, err
	}

	h := &History{Samples: make(map[string][]float64)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		line, _ := cr.FieldPos(0)

		id := strings.TrimSpace(record[stationIdx])
		if id == "" {
			return nil, fmt.Errorf("%s:%d: %w", source, line, ErrEmptyStationID)
		}
		if _, seen := h.Samples[id]; !seen {
			h.Stations = append(h.Stations, id)
			h.Samples[id] = nil
		}

		cell := strings.TrimSpace(record[dischargeIdx])
		if isMissing(cell) {
			continue
		}
		q, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: station %s: %w %q", source, line, id, ErrNonNumericCell, cell)
		}
		h.Samples[id] = append(h.Samples[id], q)
	}
	return h, nil
}

func readingColumns(header []string, source string) (station, discharge int, err error) {
	station, discharge = -1, -1
	for i, name := range header {
		switch cleanHeader(name) {
		case StationColumn:
			station = i
		case DischargeColumn:
			discharge = i
		}
	}
	if station < 0 {
		return 0, 0, fmt.Errorf("%s: %w", source, ErrMissingStationColumn)
	}
	if discharge < 0 {
		return 0, 0, fmt.Errorf("%s: %w", source, ErrMissingDischargeColumn)
	}
	return station, discharge, nil
}
