package api

import (
	"time"

	"gates-backend/internal/domain/businesshours"
	"gates-backend/internal/domain/gate"
)

// CreateGateRequest is the body of POST /api/gates.
type CreateGateRequest struct {
	Group        string  `json:"group" validate:"required,notblank,max=256"`
	Service      string  `json:"service" validate:"required,notblank,max=256"`
	Environment  string  `json:"environment" validate:"required,notblank,max=256"`
	DisplayOrder *uint32 `json:"display_order,omitempty"`
}

// UpdateStateRequest is the body of PUT .../state.
type UpdateStateRequest struct {
	State string `json:"state" validate:"required,oneof=open closed"`
}

// UpdateDisplayOrderRequest is the body of PUT .../display-order.
type UpdateDisplayOrderRequest struct {
	DisplayOrder *uint32 `json:"display_order" validate:"required"`
}

// AddCommentRequest is the body of POST .../comments.
type AddCommentRequest struct {
	Message string `json:"message" validate:"required,notblank,max=4096"`
}

// CommentResponse is a single comment.
type CommentResponse struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// GateResponse is the public representation of a gate.
type GateResponse struct {
	Group        string            `json:"group"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	State        string            `json:"state"`
	Comments     []CommentResponse `json:"comments"`
	LastUpdated  time.Time         `json:"last_updated"`
	DisplayOrder *uint32           `json:"display_order,omitempty"`
}

// StateResponse is returned by GET .../state.
type StateResponse struct {
	State string `json:"state"`
}

// ServiceResponse groups the environments of one service.
type ServiceResponse struct {
	Name         string         `json:"name"`
	Environments []GateResponse `json:"environments"`
}

// GroupResponse groups the services of one group.
type GroupResponse struct {
	Name     string            `json:"name"`
	Services []ServiceResponse `json:"services"`
}

// ConfigResponse describes the business-hours configuration in effect.
type ConfigResponse struct {
	SystemTime   time.Time                  `json:"system_time"`
	Enabled      bool                       `json:"business_hours_enabled"`
	BusinessWeek businesshours.BusinessWeek `json:"business_week"`
}

// InfoResponse is returned by GET /api.
type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string            `json:"error"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// FromGate converts a gate into its wire form, ordering comments by creation.
func FromGate(g gate.Gate) GateResponse {
	comments := make([]CommentResponse, 0, len(g.Comments))
	for _, c := range g.SortedComments() {
		comments = append(comments, CommentResponse{ID: c.ID, Message: c.Message, Created: c.Created})
	}
	return GateResponse{
		Group:        g.Key.Group,
		Service:      g.Key.Service,
		Environment:  g.Key.Environment,
		State:        g.State.String(),
		Comments:     comments,
		LastUpdated:  g.LastUpdated,
		DisplayOrder: g.DisplayOrder,
	}
}
