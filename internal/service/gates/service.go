// Package gates implements the gate use cases on top of a
// repository.GateRepository and the business-hours switch.
//
// Reads are masked: outside business hours every gate reports Closed, while
// storage keeps whatever was written. Writes that would open a gate outside
// business hours are vetoed before the repository is touched.
package gates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gates-backend/internal/clock"
	"gates-backend/internal/domain/businesshours"
	"gates-backend/internal/domain/gate"
	"gates-backend/internal/idgen"
	"gates-backend/internal/repository"
	apperrors "gates-backend/pkg/errors"
)

// EventPublisher delivers domain events. Delivery failures never fail the
// use case that raised the event.
type EventPublisher interface {
	PublishStateChanged(ctx context.Context, event gate.StateChanged) error
	PublishCommentAdded(ctx context.Context, event gate.CommentAdded) error
}

// Recorder receives business metrics.
type Recorder interface {
	GateCreated()
	GateDeleted()
	StateChanged(state gate.State)
	BusinessHoursVeto()
	CommentAdded()
}

// Service implements the gate use cases.
type Service struct {
	repo    repository.GateRepository
	hours   *businesshours.Switch
	clock   clock.Clock
	ids     idgen.Generator
	events  EventPublisher
	metrics Recorder
	logger  *zap.Logger
}

// Option configures optional collaborators.
type Option func(*Service)

// WithEventPublisher publishes domain events after successful writes.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithRecorder records business metrics.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// NewService wires the use cases.
func NewService(
	repo repository.GateRepository,
	hours *businesshours.Switch,
	clk clock.Clock,
	ids idgen.Generator,
	logger *zap.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:    repo,
		hours:   hours,
		clock:   clk,
		ids:     ids,
		events:  nopPublisher{},
		metrics: nopRecorder{},
		logger:  logger.Named("gates"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGateInput describes a new gate.
type CreateGateInput struct {
	Group        string
	Service      string
	Environment  string
	DisplayOrder *uint32
}

// CreateGate inserts a new closed gate without comments.
func (s *Service) CreateGate(ctx context.Context, in CreateGateInput) (gate.Gate, error) {
	key, err := gate.NewKey(in.Group, in.Service, in.Environment)
	if err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}

	g := gate.New(key, s.clock.Now())
	if in.DisplayOrder != nil {
		g = g.WithDisplayOrder(*in.DisplayOrder)
	}

	created, err := s.repo.Insert(ctx, g)
	if err != nil {
		return gate.Gate{}, s.translate(err, key)
	}
	s.metrics.GateCreated()
	s.logger.Info("gate created", zap.String("gate", key.String()))
	return created, nil
}

// GetGate returns the gate as readers see it at this moment.
func (s *Service) GetGate(ctx context.Context, key gate.Key) (gate.Gate, error) {
	if err := key.Validate(); err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}

	g, found, err := s.repo.FindOne(ctx, key)
	if err != nil {
		return gate.Gate{}, s.translate(err, key)
	}
	if !found {
		return gate.Gate{}, apperrors.NewNotFound(fmt.Sprintf("gate %s not found", key), repository.NewNotFound(repository.OpFindOne, key))
	}
	return s.hours.CloseIfTime(s.clock.Now(), g), nil
}

// GetGateState returns only the masked state.
func (s *Service) GetGateState(ctx context.Context, key gate.Key) (gate.State, error) {
	g, err := s.GetGate(ctx, key)
	if err != nil {
		return "", err
	}
	return g.State, nil
}

// ListGates returns every gate, masked and ordered for display.
func (s *Service) ListGates(ctx context.Context) ([]Group, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, s.translate(err, gate.Key{})
	}

	now := s.clock.Now()
	for i := range all {
		all[i] = s.hours.CloseIfTime(now, all[i])
	}
	return GroupGates(all), nil
}

// UpdateGateState writes a new state. Opening outside business hours is
// rejected with a conflict.
func (s *Service) UpdateGateState(ctx context.Context, key gate.Key, state gate.State) (gate.Gate, error) {
	if err := key.Validate(); err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}
	if !state.IsValid() {
		return gate.Gate{}, apperrors.NewValidation(fmt.Sprintf("invalid state %q", state), gate.ErrInvalidState)
	}

	now := s.clock.Now()
	if err := s.hours.CheckStateChange(now, state); err != nil {
		s.metrics.BusinessHoursVeto()
		s.logger.Info("state change vetoed outside business hours",
			zap.String("gate", key.String()),
			zap.String("state", state.String()),
		)
		return gate.Gate{}, apperrors.NewConflict(businesshours.ConflictMessage, err)
	}

	updated, err := s.repo.UpdateState(ctx, key, state, now)
	if err != nil {
		return gate.Gate{}, s.translate(err, key)
	}
	s.metrics.StateChanged(state)

	event := gate.StateChanged{Key: key, State: state, Timestamp: now}
	if err := s.events.PublishStateChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish state change", zap.String("gate", key.String()), zap.Error(err))
	}
	return updated, nil
}

// UpdateDisplayOrder changes where the gate is listed among its siblings.
func (s *Service) UpdateDisplayOrder(ctx context.Context, key gate.Key, order uint32) (gate.Gate, error) {
	if err := key.Validate(); err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}
	updated, err := s.repo.UpdateDisplayOrder(ctx, key, order, s.clock.Now())
	if err != nil {
		return gate.Gate{}, s.translate(err, key)
	}
	return updated, nil
}

// AddComment attaches a new comment. The comment's creation time is also the
// gate's new last_updated.
func (s *Service) AddComment(ctx context.Context, key gate.Key, message string) (gate.Gate, error) {
	if err := key.Validate(); err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return gate.Gate{}, apperrors.NewValidation("comment message must not be empty", nil)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return gate.Gate{}, apperrors.NewInternal("failed to generate comment id", err)
	}

	now := s.clock.Now()
	comment := gate.Comment{ID: id, Message: message, Created: now}
	updated, err := s.repo.UpsertComment(ctx, key, comment, now)
	if err != nil {
		return gate.Gate{}, s.translate(err, key)
	}
	s.metrics.CommentAdded()

	event := gate.CommentAdded{Key: key, CommentID: id, Timestamp: now}
	if err := s.events.PublishCommentAdded(ctx, event); err != nil {
		s.logger.Warn("failed to publish comment", zap.String("gate", key.String()), zap.Error(err))
	}
	return updated, nil
}

// DeleteComment removes one comment from a gate.
func (s *Service) DeleteComment(ctx context.Context, key gate.Key, commentID string) (gate.Gate, error) {
	if err := key.Validate(); err != nil {
		return gate.Gate{}, apperrors.NewValidation(err.Error(), err)
	}
	if strings.TrimSpace(commentID) == "" {
		return gate.Gate{}, apperrors.NewValidation("comment id must not be empty", nil)
	}

	updated, err := s.repo.DeleteCommentByID(ctx, key, commentID, s.clock.Now())
	if err != nil {
		if repository.IsNotFound(err) {
			return gate.Gate{}, apperrors.NewNotFound(fmt.Sprintf("comment %s not found on gate %s", commentID, key), err)
		}
		return gate.Gate{}, s.translate(err, key)
	}
	return updated, nil
}

// DeleteGate removes a gate.
func (s *Service) DeleteGate(ctx context.Context, key gate.Key) error {
	if err := key.Validate(); err != nil {
		return apperrors.NewValidation(err.Error(), err)
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return s.translate(err, key)
	}
	s.metrics.GateDeleted()
	s.logger.Info("gate deleted", zap.String("gate", key.String()))
	return nil
}

// ConfigView describes the schedule currently applied.
type ConfigView struct {
	SystemTime   time.Time
	Enabled      bool
	BusinessWeek businesshours.BusinessWeek
}

// Config reports the current time and the active business week.
func (s *Service) Config() ConfigView {
	return ConfigView{
		SystemTime:   s.clock.Now().In(s.hours.Location()),
		Enabled:      s.hours.Enabled(),
		BusinessWeek: s.hours.Week(),
	}
}

// translate maps repository outcomes to application errors.
func (s *Service) translate(err error, key gate.Key) error {
	switch repository.KindOf(err) {
	case repository.KindNotFound:
		return apperrors.NewNotFound(fmt.Sprintf("gate %s not found", key), err)
	case repository.KindAlreadyExists:
		return apperrors.NewConflict(fmt.Sprintf("gate %s already exists", key), err)
	case repository.KindNotPermitted:
		return apperrors.NewForbidden("operation not permitted", err)
	case repository.KindDecodeFailure:
		s.logger.Error("stored gate could not be decoded", zap.Error(err))
		return apperrors.NewInternal("stored gate is corrupt", err)
	default:
		return apperrors.NewInternal("gate storage unavailable", err)
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishStateChanged(context.Context, gate.StateChanged) error { return nil }
func (nopPublisher) PublishCommentAdded(context.Context, gate.CommentAdded) error { return nil }

type nopRecorder struct{}

func (nopRecorder) GateCreated()            {}
func (nopRecorder) GateDeleted()            {}
func (nopRecorder) StateChanged(gate.State) {}
func (nopRecorder) BusinessHoursVeto()      {}
func (nopRecorder) CommentAdded()           {}
