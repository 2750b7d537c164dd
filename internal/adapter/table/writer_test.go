package table

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/discharge-warning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classifiedAt = time.Date(2019, 12, 30, 6, 0, 0, 0, time.UTC)

func sampleLevels() []domain.StationLevel {
	return []domain.StationLevel{
		{StationID: "61000", Discharge: 50, Exceedance: 9.375, Method: domain.MethodInterpolated, Level: 4, ClassifiedAt: classifiedAt},
		{StationID: "60190", Discharge: 0, Exceedance: 100, Method: domain.MethodBelowRange, Level: 0, ClassifiedAt: classifiedAt},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriter_CSV(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatCSV)

	levels := sampleLevels()
	require.NoError(t, w.LoadBatch(context.Background(), levels[:1]))
	require.NoError(t, w.LoadBatch(context.Background(), levels[1:]))

	want := "stn_id,discharge,exceedance,level,method,classified_at\n" +
		"61000,50,9.375,4,interpolated,2019-12-30T06:00:00Z\n" +
		"60190,0,100,0,below_range,2019-12-30T06:00:00Z\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatJSON)
	require.NoError(t, w.LoadBatch(context.Background(), sampleLevels()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"stn_id":"61000","discharge":50,"exceedance":9.375,"method":"interpolated","warning_level":4,"classified_at":"2019-12-30T06:00:00Z"}`, lines[0])
	assert.JSONEq(t, `{"stn_id":"60190","discharge":0,"exceedance":100,"method":"below_range","warning_level":0,"classified_at":"2019-12-30T06:00:00Z"}`, lines[1])
}

func TestWriter_EmptyBatchWritesHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, FormatCSV)
	require.NoError(t, w.LoadBatch(context.Background(), nil))
	assert.Equal(t, "stn_id,discharge,exceedance,level,method,classified_at\n", buf.String())
}

func TestWriteCurveTable_RoundTrip(t *testing.T) {
	tbl, err := LoadFile(fixture, slog.Default())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCurveTable(&buf, tbl.Probabilities, tbl.Stations, tbl.Curves))

	assert.Equal(t,
		"stn_id,1_percent,2_percent,5_percent,10_percent,20_percent,50_percent\n"+
			"61000,250,210,120,40,25,10\n"+
			"60190,90,70,45,30,18,6\n"+
			"60210,500,400,,150,80,\n",
		buf.String())

	again, err := Parse(&buf, "roundtrip", slog.Default())
	require.NoError(t, err)
	assert.Equal(t, tbl.Stations, again.Stations)
	for _, id := range tbl.Stations {
		assert.Equal(t, tbl.Curves[id].Points(), again.Curves[id].Points(), "station %s", id)
	}
}

func TestWriteCurveTable_UnknownStation(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCurveTable(&buf, []float64{1, 50}, []string{"x"}, map[string]domain.Curve{})
	assert.ErrorIs(t, err, domain.ErrNoCurve)
}
