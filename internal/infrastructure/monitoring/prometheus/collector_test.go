package prometheus

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

func newTestCollector(t *testing.T) MetricsCollector {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, nil)
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.True(t, errors.IsConfiguration(err))
}

func TestRegisterCounter_AndScrape(t *testing.T) {
	c := newTestCollector(t)
	vec := c.RegisterCounter("things_total", "Things", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_things_total{kind="a"} 3`)
}

func TestRegister_DuplicateReturnsExisting(t *testing.T) {
	c := newTestCollector(t)
	a := c.RegisterCounter("dup_total", "Dup")
	b := c.RegisterCounter("dup_total", "Dup")
	a.WithLabelValues().Inc()
	b.WithLabelValues().Inc()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_dup_total 2")
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "Mixed")
	g := c.RegisterGauge("mixed", "Mixed")
	assert.IsType(t, noopGaugeVec{}, g)
	g.WithLabelValues().Set(5)
}

func TestGaugeAndHistogram(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterGauge("level", "Level").WithLabelValues().Set(7)
	h := c.RegisterHistogram("latency_seconds", "Latency", []float64{1, 2})
	NewTimer(h.WithLabelValues()).ObserveDuration()

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, "test_unit_level 7")
	assert.Contains(t, out, "test_unit_latency_seconds_count 1")
}

func TestWriteTextfile(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("written_total", "Written").WithLabelValues().Add(4)

	path := filepath.Join(t.TempDir(), "textfile", "orphamine.prom")
	require.NoError(t, c.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_unit_written_total 4")
}

func TestTimer_NilHistogram(t *testing.T) {
	tm := &Timer{start: time.Now()}
	assert.GreaterOrEqual(t, tm.ObserveDuration(), time.Duration(0))
}

//Personal.AI order the ending
