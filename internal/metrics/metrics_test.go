package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTurn(t *testing.T) {
	m := New()

	m.RecordTurn(KindText, OutcomeSuccess, 150*time.Millisecond)
	m.RecordTurn(KindText, OutcomeSuccess, 0)
	m.RecordTurn(KindAudio, OutcomeUnsupported, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues(KindText, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Turns.WithLabelValues(KindAudio, OutcomeUnsupported)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.BackendDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTurn(KindImage, OutcomeBackendErr, time.Second)
		m.RecordSessionStart("initialize")
		m.RecordInitFailure()
		m.SetSurfaceAttached(true)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordSessionStart("initialize")
	m.SetSurfaceAttached(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `llmdesk_sessions_started_total{reason="initialize"} 1`)
	assert.Contains(t, rec.Body.String(), "llmdesk_ui_surface_attached 1")
}
