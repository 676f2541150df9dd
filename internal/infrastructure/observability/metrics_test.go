package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gates-backend/internal/domain/gate"
)

func TestCollector_Independent(t *testing.T) {
	a := NewCollector("gates")
	b := NewCollector("gates")

	a.GateCreated()
	a.GateCreated()

	assert.Equal(t, float64(2), testutil.ToFloat64(a.GatesCreated))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.GatesCreated))
}

func TestCollector_BusinessMetrics(t *testing.T) {
	c := NewCollector("gates")

	c.StateChanged(gate.Open)
	c.StateChanged(gate.Open)
	c.StateChanged(gate.Closed)
	c.BusinessHoursVeto()
	c.CommentAdded()
	c.GateDeleted()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.StateChanges.WithLabelValues("open")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.StateChanges.WithLabelValues("closed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.BusinessHoursVetoes))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.CommentsAdded))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.GatesDeleted))
}

func TestCollector_BreakerState(t *testing.T) {
	c := NewCollector("gates")

	c.BreakerStateChanged("repo", gobreaker.StateClosed, gobreaker.StateOpen)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.CircuitBreakerState.WithLabelValues("repo")))

	c.BreakerStateChanged("repo", gobreaker.StateOpen, gobreaker.StateHalfOpen)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.CircuitBreakerState.WithLabelValues("repo")))

	c.BreakerStateChanged("repo", gobreaker.StateHalfOpen, gobreaker.StateClosed)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.CircuitBreakerState.WithLabelValues("repo")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("gates")
	c.GateCreated()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gates_gates_created_total 1")
}
