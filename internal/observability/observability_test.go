package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/discharge-warning/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.ReadingsTotal.Add(3)
	assert.InDelta(t, 3.0, testutil.ToFloat64(a.ReadingsTotal), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(b.ReadingsTotal), 0)
}

func TestMetrics_ObserveLevel(t *testing.T) {
	m := NewMetrics()
	m.ObserveLevel(4)
	m.ObserveLevel(4)
	m.ObserveLevel(0)

	assert.InDelta(t, 3.0, testutil.ToFloat64(m.ClassifiedTotal), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.WarningLevels.WithLabelValues("4")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.WarningLevels.WithLabelValues("0")), 0)
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ReadingsTotal.Add(2)
	m.SkippedTotal.WithLabelValues("no_curve").Inc()

	path := filepath.Join(t.TempDir(), "discharge_warning.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "discharge_warning_readings_total 2")
	assert.Contains(t, string(data), `discharge_warning_skipped_total{reason="no_curve"} 1`)
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	m := NewMetrics()
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics textfile")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("station skipped", "station", "61000")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "station skipped", entry["msg"])
	assert.Equal(t, "61000", entry["station"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "text")

	logger.Debug("curve clamped", "station", "61000")
	assert.Contains(t, buf.String(), "curve clamped")
	assert.Contains(t, buf.String(), "61000")
}

func TestNewLogger_FromConfig(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "error", LogFormat: "json"})
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(t.Context(), 0))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"bogus": "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in).String(), in)
	}
}
