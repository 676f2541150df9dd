package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/interfaces/http/validation"
	"gates-backend/internal/service/gates"
	"gates-backend/pkg/api"
)

// GateHandler serves /api/gates.
type GateHandler struct {
	service   *gates.Service
	validator *validation.Validator
	logger    *zap.Logger
}

// NewGateHandler creates a gate handler.
func NewGateHandler(service *gates.Service, validator *validation.Validator, logger *zap.Logger) *GateHandler {
	return &GateHandler{service: service, validator: validator, logger: logger}
}

// decode reads and validates the request body into dst. It writes the error
// response itself and reports whether the handler should continue.
func (h *GateHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := api.DecodeJSON(r, dst); err != nil {
		badRequest(w, r, err.Error())
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		writeError(w, r, h.logger, err)
		return false
	}
	return true
}

// List handles GET /api/gates.
func (h *GateHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGates(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp := make([]api.GroupResponse, 0, len(groups))
	for _, g := range groups {
		group := api.GroupResponse{Name: g.Name, Services: make([]api.ServiceResponse, 0, len(g.Services))}
		for _, s := range g.Services {
			service := api.ServiceResponse{Name: s.Name, Environments: make([]api.GateResponse, 0, len(s.Gates))}
			for _, env := range s.Gates {
				service.Environments = append(service.Environments, api.FromGate(env))
			}
			group.Services = append(group.Services, service)
		}
		resp = append(resp, group)
	}
	api.Success(w, http.StatusOK, resp)
}

// Create handles POST /api/gates.
func (h *GateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.CreateGateRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.CreateGate(r.Context(), gates.CreateGateInput{
		Group:        req.Group,
		Service:      req.Service,
		Environment:  req.Environment,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, api.FromGate(g))
}

// Get handles GET /api/gates/{group}/{service}/{environment}.
func (h *GateHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGate(r.Context(), gateKey(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.FromGate(g))
}

// Delete handles DELETE /api/gates/{group}/{service}/{environment}.
func (h *GateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGate(r.Context(), gateKey(r)); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}

// GetState handles GET .../state.
func (h *GateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetGateState(r.Context(), gateKey(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.StateResponse{State: state.String()})
}

// UpdateState handles PUT .../state.
func (h *GateHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateStateRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, err := gate.ParseState(req.State)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}

	g, err := h.service.UpdateGateState(r.Context(), gateKey(r), state)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.FromGate(g))
}

// UpdateDisplayOrder handles PUT .../display-order.
func (h *GateHandler) UpdateDisplayOrder(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateDisplayOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.UpdateDisplayOrder(r.Context(), gateKey(r), *req.DisplayOrder)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.FromGate(g))
}

// AddComment handles POST .../comments.
func (h *GateHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req api.AddCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	g, err := h.service.AddComment(r.Context(), gateKey(r), req.Message)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, api.FromGate(g))
}

// DeleteComment handles DELETE .../comments/{commentID}.
func (h *GateHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.DeleteComment(r.Context(), gateKey(r), pathParam(r, "commentID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, api.FromGate(g))
}
