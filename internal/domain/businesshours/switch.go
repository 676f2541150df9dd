package businesshours

import (
	"fmt"
	"sync/atomic"
	"time"

	"gates-backend/internal/domain/gate"
)

// ConflictMessage is reported when an open is attempted outside business hours.
const ConflictMessage = "Already after business hours - rejecting attempt to change state"

// IsClosed reports whether at lies outside the window configured for its
// weekday. Only the wall-clock part of at is compared, inclusive on both ends.
func IsClosed(week BusinessWeek, at time.Time) bool {
	times, ok := week[at.Weekday()]
	if !ok {
		return true
	}
	return !times.Contains(ClockOf(at))
}

// CloseIfTime returns g with its state forced to Closed when at is outside
// business hours. The returned value is a read-time view only.
func CloseIfTime(week BusinessWeek, at time.Time, g gate.Gate) gate.Gate {
	if IsClosed(week, at) {
		g.State = gate.Closed
	}
	return g
}

// ConflictError is the veto raised when a write is not allowed at this time.
type ConflictError struct {
	At      time.Time
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("business hours conflict at %s: %s", e.At.Format(time.RFC3339), e.Message)
}

// Switch applies a BusinessWeek in a fixed location. The active week can be
// replaced at runtime, e.g. when the configuration file changes.
type Switch struct {
	enabled  bool
	location *time.Location
	week     atomic.Pointer[BusinessWeek]
}

// Option configures a Switch.
type Option func(*Switch)

// WithLocation evaluates timestamps in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Switch) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithEnabled turns masking and vetoing on or off.
func WithEnabled(enabled bool) Option {
	return func(s *Switch) {
		s.enabled = enabled
	}
}

// NewSwitch returns an enabled switch over week.
func NewSwitch(week BusinessWeek, opts ...Option) *Switch {
	s := &Switch{enabled: true, location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	s.SetWeek(week)
	return s
}

// Week returns a copy of the active schedule.
func (s *Switch) Week() BusinessWeek {
	return s.week.Load().Clone()
}

// SetWeek swaps the active schedule.
func (s *Switch) SetWeek(week BusinessWeek) {
	w := week.Clone()
	s.week.Store(&w)
}

// Enabled reports whether the switch has any effect.
func (s *Switch) Enabled() bool {
	return s.enabled
}

// Location is the zone timestamps are evaluated in.
func (s *Switch) Location() *time.Location {
	return s.location
}

// IsClosed evaluates at against the active week.
func (s *Switch) IsClosed(at time.Time) bool {
	if !s.enabled {
		return false
	}
	return IsClosed(*s.week.Load(), at.In(s.location))
}

// CloseIfTime masks g for readers during closed hours.
func (s *Switch) CloseIfTime(at time.Time, g gate.Gate) gate.Gate {
	if s.IsClosed(at) {
		g.State = gate.Closed
	}
	return g
}

// CheckStateChange vetoes opening a gate during closed hours. Closing is
// always allowed.
func (s *Switch) CheckStateChange(at time.Time, target gate.State) error {
	if target != gate.Open {
		return nil
	}
	if s.IsClosed(at) {
		return &ConflictError{At: at, Message: ConflictMessage}
	}
	return nil
}
