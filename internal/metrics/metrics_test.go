package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ExpenseRecorded("equal")
	m.ExpenseRecorded("equal")
	m.ExpenseRecorded("percentage")
	m.SettlementRecorded()
	m.InvariantViolated()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ExpensesRecorded.WithLabelValues("equal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExpensesRecorded.WithLabelValues("percentage")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SettlementsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InvariantViolations))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ExpenseRecorded("equal")
		m.SettlementRecorded()
		m.InvariantViolated()
		m.ObserveHTTP("GET", "/groups", "200", 0.1)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/groups/{id}", "200", 0.02)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body),
		`splitledger_http_requests_total{method="GET",route="/groups/{id}",status="200"} 1`))
	assert.Contains(t, string(body), "splitledger_http_request_duration_seconds_bucket")
}
