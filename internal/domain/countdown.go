package domain

import (
	"strings"
	"time"
)

// CountdownStatus is derived from the active flag and the launch date on every read.
type CountdownStatus string

const (
	CountdownActive   CountdownStatus = "active"
	CountdownInactive CountdownStatus = "inactive"
	CountdownExpired  CountdownStatus = "expired"
)

// Countdown is a launch countdown shown to end users.
type Countdown struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	LaunchDate      time.Time       `json:"launchDate"`
	IsActive        bool            `json:"isActive"`
	Status          CountdownStatus `json:"status"`
	ShowDays        bool            `json:"showDays"`
	ShowHours       bool            `json:"showHours"`
	ShowMinutes     bool            `json:"showMinutes"`
	ShowSeconds     bool            `json:"showSeconds"`
	BackgroundColor string          `json:"backgroundColor,omitempty"`
	TextColor       string          `json:"textColor,omitempty"`
	AccentColor     string          `json:"accentColor,omitempty"`
	BackgroundImage string          `json:"backgroundImage,omitempty"`
	ButtonText      string          `json:"buttonText,omitempty"`
	ButtonLink      string          `json:"buttonLink,omitempty"`
	Timezone        string          `json:"timezone,omitempty"`
	ExpiredMessage  string          `json:"expiredMessage,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// StatusAt reports the countdown status at now. A launch date in the past always wins.
func (c Countdown) StatusAt(now time.Time) CountdownStatus {
	if c.LaunchDate.IsZero() || !now.Before(c.LaunchDate) {
		return CountdownExpired
	}
	if c.IsActive {
		return CountdownActive
	}
	return CountdownInactive
}

// RemainingAt computes the remaining time until the countdown's launch date.
func (c Countdown) RemainingAt(now time.Time) TimeRemaining {
	return Remaining(c.LaunchDate, now)
}

// Units returns the display toggles of the countdown.
func (c Countdown) Units() DisplayUnits {
	return DisplayUnits{
		Days:    c.ShowDays,
		Hours:   c.ShowHours,
		Minutes: c.ShowMinutes,
		Seconds: c.ShowSeconds,
	}
}

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
)

// TimeRemaining is the breakdown of the time left until a target. Total is in milliseconds.
type TimeRemaining struct {
	Days      int64 `json:"days"`
	Hours     int64 `json:"hours"`
	Minutes   int64 `json:"minutes"`
	Seconds   int64 `json:"seconds"`
	Total     int64 `json:"total"`
	IsExpired bool  `json:"isExpired"`
}

// ExpiredRemaining is the value reported once a target has passed.
var ExpiredRemaining = TimeRemaining{IsExpired: true}

// Remaining decomposes target-now into fixed 24h days, hours, minutes and seconds.
// A zero target is treated as already passed.
func Remaining(target, now time.Time) TimeRemaining {
	if target.IsZero() {
		return ExpiredRemaining
	}
	diff := target.Sub(now).Milliseconds()
	if diff <= 0 {
		return ExpiredRemaining
	}
	return TimeRemaining{
		Days:    diff / msPerDay,
		Hours:   (diff % msPerDay) / msPerHour,
		Minutes: (diff % msPerHour) / msPerMinute,
		Seconds: (diff % msPerMinute) / msPerSecond,
		Total:   diff,
	}
}

// RemainingFor parses raw as a launch date and computes the remaining time.
// Unparseable input is reported as expired.
func RemainingFor(raw string, now time.Time) TimeRemaining {
	target, err := ParseLaunchDate(raw)
	if err != nil {
		return ExpiredRemaining
	}
	return Remaining(target, now)
}

var launchDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLaunchDate accepts ISO-8601 timestamps with or without an offset.
// Timestamps without an offset are read as UTC. The result is always in UTC.
func ParseLaunchDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrInvalidLaunchDate
	}
	for _, layout := range launchDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidLaunchDate
}

// DisplayUnits selects which components of a TimeRemaining are rendered.
type DisplayUnits struct {
	Days    bool
	Hours   bool
	Minutes bool
	Seconds bool
}

// AllUnits shows every component.
var AllUnits = DisplayUnits{Days: true, Hours: true, Minutes: true, Seconds: true}

// UnitValue is a single rendered countdown component.
type UnitValue struct {
	Unit  string `json:"unit"`
	Value int64  `json:"value"`
}

// Visible returns the components enabled in units, largest first.
// Hiding a unit never changes the value of the others.
func (r TimeRemaining) Visible(units DisplayUnits) []UnitValue {
	out := make([]UnitValue, 0, 4)
	if units.Days {
		out = append(out, UnitValue{Unit: "days", Value: r.Days})
	}
	if units.Hours {
		out = append(out, UnitValue{Unit: "hours", Value: r.Hours})
	}
	if units.Minutes {
		out = append(out, UnitValue{Unit: "minutes", Value: r.Minutes})
	}
	if units.Seconds {
		out = append(out, UnitValue{Unit: "seconds", Value: r.Seconds})
	}
	return out
}
