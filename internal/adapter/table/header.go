package table

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/discharge-warning/internal/domain"
)

// StationColumn is the header of the station id column.
const StationColumn = "stn_id"

const probabilitySuffix = "_percent"

var (
	ErrMalformedHeader = errors.New("malformed probability column header")
	ErrDuplicateColumn = errors.New("duplicate probability column")
)

var probabilityHeader = regexp.MustCompile(`^(\d+(?:\.\d+)?)` + probabilitySuffix + `$`)

// HeaderKind classifies a curve table column.
type HeaderKind int

const (
	HeaderIgnored HeaderKind = iota
	HeaderStation
	HeaderProbability
)

func (k HeaderKind) String() string {
	switch k {
	case HeaderStation:
		return "station"
	case HeaderProbability:
		return "probability"
	default:
		return "ignored"
	}
}

// Header is a parsed column name.
type Header struct {
	Name        string
	Kind        HeaderKind
	Probability float64 // set for HeaderProbability
}

// ParseHeader classifies a column name. "<number>_percent" columns carry the
// exceedance probability <number>; StationColumn names the station id; any
// other name is ignored. A probability column above 100 is malformed.
func ParseHeader(name string) (Header, error) {
	name = cleanHeader(name)
	if name == StationColumn {
		return Header{Name: name, Kind: HeaderStation}, nil
	}

	m := probabilityHeader.FindStringSubmatch(name)
	if m == nil {
		if strings.HasSuffix(name, probabilitySuffix) && looksNumeric(strings.TrimSuffix(name, probabilitySuffix)) {
			return Header{}, fmt.Errorf("%w: %q", ErrMalformedHeader, name)
		}
		return Header{Name: name, Kind: HeaderIgnored}, nil
	}

	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil || p > domain.MaxExceedance {
		return Header{}, fmt.Errorf("%w: %q is not a probability in [0, 100]", ErrMalformedHeader, name)
	}
	return Header{Name: name, Kind: HeaderProbability, Probability: p}, nil
}

// looksNumeric catches prefixes such as "-5" or "1e2" that read as numbers
// but are not plain decimals.
func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// cleanHeader strips surrounding space and a UTF-8 byte order mark.
func cleanHeader(name string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
}
