package observability

import (
	"github.com/sony/gobreaker"

	"gates-backend/internal/domain/gate"
)

// GateCreated counts a successful insert.
func (c *Collector) GateCreated() { c.GatesCreated.Inc() }

// GateDeleted counts a successful delete.
func (c *Collector) GateDeleted() { c.GatesDeleted.Inc() }

// StateChanged counts a state write by its target state.
func (c *Collector) StateChanged(state gate.State) {
	c.StateChanges.WithLabelValues(state.String()).Inc()
}

// BusinessHoursVeto counts an open request rejected outside business hours.
func (c *Collector) BusinessHoursVeto() { c.BusinessHoursVetoes.Inc() }

// CommentAdded counts a new comment.
func (c *Collector) CommentAdded() { c.CommentsAdded.Inc() }

// BreakerStateChanged mirrors a circuit breaker transition into the gauge.
func (c *Collector) BreakerStateChanged(name string, _, to gobreaker.State) {
	var value float64
	switch to {
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}
	c.CircuitBreakerState.WithLabelValues(name).Set(value)
}
