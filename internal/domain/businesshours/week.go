// Package businesshours evaluates gate state against a weekly schedule.
//
// A BusinessWeek maps each weekday to an optional open window. Outside the
// window (or on a day without one) the schedule is considered closed. The
// package is pure: it never performs I/O and never mutates a gate in storage.
package businesshours

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeOfDay is a wall-clock time with no date component, kept as the offset
// from midnight.
type TimeOfDay time.Duration

const timeOfDayLayout = "15:04:05"

// NewTimeOfDay builds a TimeOfDay from its components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second)
}

// ParseTimeOfDay reads an "HH:MM:SS" value.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM:SS", s)
	}
	return TimeOfDay(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())), nil
}

// ClockOf extracts the time of day of t in t's own location.
func ClockOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return NewTimeOfDay(h, m, s) + TimeOfDay(t.Nanosecond())
}

func (t TimeOfDay) String() string {
	d := time.Duration(t)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return t.UnmarshalText([]byte(s))
}

// BusinessTimes is the inclusive open window of a single day.
type BusinessTimes struct {
	Start TimeOfDay `json:"start" yaml:"start"`
	End   TimeOfDay `json:"end" yaml:"end"`
}

// Contains reports whether tod falls inside [Start, End].
func (b BusinessTimes) Contains(tod TimeOfDay) bool {
	return tod >= b.Start && tod <= b.End
}

// BusinessWeek maps weekdays to their open window. A missing weekday has no
// window and is closed all day.
type BusinessWeek map[time.Weekday]BusinessTimes

// DefaultWeek is used when no schedule is configured.
func DefaultWeek() BusinessWeek {
	return BusinessWeek{
		time.Monday:    {Start: NewTimeOfDay(7, 0, 0), End: NewTimeOfDay(18, 30, 0)},
		time.Tuesday:   {Start: NewTimeOfDay(8, 0, 0), End: NewTimeOfDay(18, 0, 0)},
		time.Wednesday: {Start: NewTimeOfDay(8, 0, 0), End: NewTimeOfDay(17, 0, 0)},
		time.Thursday:  {Start: NewTimeOfDay(8, 0, 0), End: NewTimeOfDay(18, 0, 0)},
		time.Friday:    {Start: NewTimeOfDay(10, 0, 0), End: NewTimeOfDay(16, 0, 0)},
	}
}

// Validate rejects windows whose start is after their end.
func (w BusinessWeek) Validate() error {
	for day, times := range w {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("invalid weekday %d", day)
		}
		if times.Start > times.End {
			return fmt.Errorf("%s: start %s is after end %s", weekdayName(day), times.Start, times.End)
		}
	}
	return nil
}

// Clone returns an independent copy of w.
func (w BusinessWeek) Clone() BusinessWeek {
	out := make(BusinessWeek, len(w))
	for day, times := range w {
		out[day] = times
	}
	return out
}

func weekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekday accepts full ("monday") or short ("mon") names in any case.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := weekdayName(d)
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (w BusinessWeek) toNamed() map[string]BusinessTimes {
	named := make(map[string]BusinessTimes, len(w))
	for day, times := range w {
		named[weekdayName(day)] = times
	}
	return named
}

func fromNamed(named map[string]BusinessTimes) (BusinessWeek, error) {
	week := make(BusinessWeek, len(named))
	for name, times := range named {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}
		if _, dup := week[day]; dup {
			return nil, fmt.Errorf("weekday %q configured twice", name)
		}
		week[day] = times
	}
	if err := week.Validate(); err != nil {
		return nil, err
	}
	return week, nil
}

// Days returns the configured weekdays in calendar order starting Monday.
func (w BusinessWeek) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(w))
	for day := range w {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return (days[i]+6)%7 < (days[j]+6)%7
	})
	return days
}

func (w BusinessWeek) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.toNamed())
}

func (w *BusinessWeek) UnmarshalJSON(b []byte) error {
	var named map[string]BusinessTimes
	if err := json.Unmarshal(b, &named); err != nil {
		return err
	}
	week, err := fromNamed(named)
	if err != nil {
		return err
	}
	*w = week
	return nil
}

func (w BusinessWeek) MarshalYAML() (interface{}, error) {
	return w.toNamed(), nil
}

func (w *BusinessWeek) UnmarshalYAML(value *yaml.Node) error {
	var named map[string]BusinessTimes
	if err := value.Decode(&named); err != nil {
		return err
	}
	week, err := fromNamed(named)
	if err != nil {
		return err
	}
	*w = week
	return nil
}
