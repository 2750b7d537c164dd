package table

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = "testdata/exceedances.csv"

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		kind        HeaderKind
		probability float64
	}{
		{"stn_id", HeaderStation, 0},
		{"\ufeffstn_id", HeaderStation, 0},
		{" 5_percent ", HeaderProbability, 5},
		{"0_percent", HeaderProbability, 0},
		{"100_percent", HeaderProbability, 100},
		{"2.5_percent", HeaderProbability, 2.5},
		{"name", HeaderIgnored, 0},
		{"percent", HeaderIgnored, 0},
		{"five_percent", HeaderIgnored, 0},
		{"5_percentile", HeaderIgnored, 0},
		{"5percent", HeaderIgnored, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, h.Kind)
			assert.Equal(t, tt.probability, h.Probability)
		})
	}
}

func TestParseHeader_Malformed(t *testing.T) {
	for _, name := range []string{"101_percent", "250.5_percent", "-5_percent", "1e1_percent", "NaN_percent"} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHeader(name)
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}

func TestLoadFile_Fixture(t *testing.T) {
	tbl, err := LoadFile(fixture, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, fixture, tbl.Source)
	assert.Equal(t, []float64{1, 2, 5, 10, 20, 50}, tbl.Probabilities)
	assert.Equal(t, []string{"61000", "60190", "60210"}, tbl.Stations)

	c, ok := tbl.Curve("61000")
	require.True(t, ok)
	assert.Equal(t, 6, c.Len())
	assert.InDelta(t, 9.375, c.Exceedance(50), 1e-9)

	c, ok = tbl.Curve("60190")
	require.True(t, ok)
	assert.Equal(t, 6.0, c.MinDischarge())
	assert.Equal(t, 90.0, c.MaxDischarge())
}

func TestLoadFile_MissingCellsDropPoints(t *testing.T) {
	tbl, err := LoadFile(fixture, slog.Default())
	require.NoError(t, err)

	c, ok := tbl.Curve("60210")
	require.True(t, ok)
	assert.Equal(t, []domain.Point{
		{Probability: 20, Discharge: 80},
		{Probability: 10, Discharge: 150},
		{Probability: 2, Discharge: 400},
		{Probability: 1, Discharge: 500},
	}, c.Points())

	_, ok = c.Discharge(5)
	assert.False(t, ok)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("testdata/missing.csv", slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open curve table")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		err      error
		contains []string
	}{
		{
			name:  "empty input",
			input: "",
			err:   ErrEmptyTable,
		},
		{
			name:  "missing station column",
			input: "station,1_percent,50_percent\n1,10,2\n",
			err:   ErrMissingStationColumn,
		},
		{
			name:  "no probability columns",
			input: "stn_id,name\n1,x\n",
			err:   ErrNoProbabilityColumns,
		},
		{
			name:  "probability header above 100",
			input: "stn_id,1_percent,150_percent\n1,10,2\n",
			err:   ErrMalformedHeader,
		},
		{
			name:     "duplicate probability column",
			input:    "stn_id,5_percent,5.0_percent\n1,10,2\n",
			err:      ErrDuplicateColumn,
			contains: []string{"5_percent", "5.0_percent"},
		},
		{
			name:  "duplicate station column",
			input: "stn_id,1_percent,stn_id\n1,10,1\n",
			err:   ErrDuplicateColumn,
		},
		{
			name:     "non-numeric cell",
			input:    "stn_id,1_percent,50_percent\n61000,250,abc\n",
			err:      ErrNonNumericCell,
			contains: []string{"curves.csv:2", "station 61000", "50_percent", `"abc"`},
		},
		{
			name:     "duplicate station",
			input:    "stn_id,1_percent,50_percent\n7,10,2\n7,11,3\n",
			err:      ErrDuplicateStation,
			contains: []string{"curves.csv:3"},
		},
		{
			name:  "empty station id",
			input: "stn_id,1_percent,50_percent\n,10,2\n",
			err:   ErrEmptyStationID,
		},
		{
			name:     "single point after missing cells",
			input:    "stn_id,1_percent,50_percent\n7,10,\n",
			err:      domain.ErrTooFewPoints,
			contains: []string{"station 7"},
		},
		{
			name:  "discharge rises with probability",
			input: "stn_id,1_percent,50_percent\n7,2,10\n",
			err:   domain.ErrNonMonotonic,
		},
		{
			name:  "infinite discharge",
			input: "stn_id,1_percent,50_percent\n7,Inf,10\n",
			err:   domain.ErrNonFiniteDischarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "curves.csv", slog.Default())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "curves.csv")
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestParse_RaggedRow(t *testing.T) {
	_, err := Parse(strings.NewReader("stn_id,1_percent,50_percent\n7,10\n"), "curves.csv", slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curves.csv")
}

func TestParse_IgnoresUnknownColumnsAndWhitespace(t *testing.T) {
	input := "\ufeffstn_id, gauge , 10_percent, 90_percent\n 42 , x , 12.5 , 0\n"
	tbl, err := Parse(strings.NewReader(input), "inline", slog.Default())
	require.NoError(t, err)

	c, ok := tbl.Curve("42")
	require.True(t, ok)
	assert.Equal(t, []domain.Point{
		{Probability: 90, Discharge: 0},
		{Probability: 10, Discharge: 12.5},
	}, c.Points())
}

func TestParse_HeaderOnly(t *testing.T) {
	tbl, err := Parse(strings.NewReader("stn_id,1_percent\n"), "inline", slog.Default())
	require.NoError(t, err)
	assert.Empty(t, tbl.Stations)
	assert.Empty(t, tbl.Curves)
}
