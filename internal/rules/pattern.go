// internal/rules/pattern.go
package rules

import (
	"errors"
	"fmt"
	"time"
)

// DatePatternKind selects how a rule expresses the dates it covers. The
// values are the `tipo_fecha` discriminators the admin dashboard sends.
type DatePatternKind string

const (
	DateSpecific DatePatternKind = "especifica"
	DateRange    DatePatternKind = "rango"
	DateWeekly   DatePatternKind = "semanal"
)

// TimePatternKind selects how a rule expresses the hours it covers
// (`tipo_horario` on the wire).
type TimePatternKind string

const (
	TimeSpecific TimePatternKind = "especifica"
	TimeRange    TimePatternKind = "rango"
	TimeAllDay   TimePatternKind = "todo_el_dia"
)

// RulePattern is the date/time vocabulary shared by blocks and promotions.
// Exactly one date field group and one time field group may be populated,
// matching the declared kinds; anything else is a validation error, never a
// silent default.
type RulePattern struct {
	DateKind     DatePatternKind `json:"tipo_fecha"`
	SpecificDate *Date           `json:"fecha_especifica,omitempty"`
	RangeStart   *Date           `json:"fecha_inicio,omitempty"`
	RangeEnd     *Date           `json:"fecha_fin,omitempty"`
	Weekdays     []Weekday       `json:"dias_semana,omitempty"`

	TimeKind     TimePatternKind `json:"tipo_horario"`
	SpecificHour *TimeOfDay      `json:"hora_especifica,omitempty"`
	HourStart    *TimeOfDay      `json:"hora_inicio,omitempty"`
	HourEnd      *TimeOfDay      `json:"hora_fin,omitempty"`
}

var errMalformedPattern = errors.New("malformed rule pattern")

// Validate enforces the exactly-one-field-group invariant for both the date
// and the time side of the pattern.
func (p RulePattern) Validate() error {
	switch p.DateKind {
	case DateSpecific:
		if p.SpecificDate == nil {
			return fmt.Errorf("%w: tipo_fecha %q requires fecha_especifica", errMalformedPattern, p.DateKind)
		}
		if p.RangeStart != nil || p.RangeEnd != nil || len(p.Weekdays) > 0 {
			return fmt.Errorf("%w: tipo_fecha %q admits only fecha_especifica", errMalformedPattern, p.DateKind)
		}
	case DateRange:
		if p.RangeStart == nil || p.RangeEnd == nil {
			return fmt.Errorf("%w: tipo_fecha %q requires fecha_inicio and fecha_fin", errMalformedPattern, p.DateKind)
		}
		if p.SpecificDate != nil || len(p.Weekdays) > 0 {
			return fmt.Errorf("%w: tipo_fecha %q admits only fecha_inicio/fecha_fin", errMalformedPattern, p.DateKind)
		}
		if p.RangeEnd.Before(*p.RangeStart) {
			return fmt.Errorf("%w: fecha_inicio %s is after fecha_fin %s", errMalformedPattern, p.RangeStart, p.RangeEnd)
		}
	case DateWeekly:
		if len(p.Weekdays) == 0 {
			return fmt.Errorf("%w: tipo_fecha %q requires a non-empty dias_semana", errMalformedPattern, p.DateKind)
		}
		if p.SpecificDate != nil || p.RangeStart != nil || p.RangeEnd != nil {
			return fmt.Errorf("%w: tipo_fecha %q admits only dias_semana", errMalformedPattern, p.DateKind)
		}
		for _, day := range p.Weekdays {
			if day < 0 || int(day) >= len(weekdayNames) {
				return fmt.Errorf("%w: unknown weekday %d", errMalformedPattern, int(day))
			}
		}
	default:
		return fmt.Errorf("%w: unknown tipo_fecha %q", errMalformedPattern, p.DateKind)
	}

	switch p.TimeKind {
	case TimeSpecific:
		if p.SpecificHour == nil {
			return fmt.Errorf("%w: tipo_horario %q requires hora_especifica", errMalformedPattern, p.TimeKind)
		}
		if p.HourStart != nil || p.HourEnd != nil {
			return fmt.Errorf("%w: tipo_horario %q admits only hora_especifica", errMalformedPattern, p.TimeKind)
		}
	case TimeRange:
		if p.HourStart == nil || p.HourEnd == nil {
			return fmt.Errorf("%w: tipo_horario %q requires hora_inicio and hora_fin", errMalformedPattern, p.TimeKind)
		}
		if p.SpecificHour != nil {
			return fmt.Errorf("%w: tipo_horario %q admits only hora_inicio/hora_fin", errMalformedPattern, p.TimeKind)
		}
		if !p.HourStart.Before(*p.HourEnd) {
			return fmt.Errorf("%w: hora_inicio %s must be before hora_fin %s", errMalformedPattern, p.HourStart, p.HourEnd)
		}
	case TimeAllDay:
		if p.SpecificHour != nil || p.HourStart != nil || p.HourEnd != nil {
			return fmt.Errorf("%w: tipo_horario %q admits no hour fields", errMalformedPattern, p.TimeKind)
		}
	default:
		return fmt.Errorf("%w: unknown tipo_horario %q", errMalformedPattern, p.TimeKind)
	}

	return nil
}

// MatchesDate reports whether target satisfies the date side of the pattern.
// It is pure and total for validated patterns.
func (p RulePattern) MatchesDate(target Date) bool {
	switch p.DateKind {
	case DateSpecific:
		return p.SpecificDate != nil && target.Equal(*p.SpecificDate)
	case DateRange:
		if p.RangeStart == nil || p.RangeEnd == nil {
			return false
		}
		return !target.Before(*p.RangeStart) && !target.After(*p.RangeEnd)
	case DateWeekly:
		weekday := target.Weekday()
		for _, day := range p.Weekdays {
			if day.Time() == weekday {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// MatchesSlot reports whether the time side of the pattern touches the
// half-open target slot. Hour ranges use interval overlap, not containment:
// a one-hour booking that partially intersects a two-hour rule is covered.
func (p RulePattern) MatchesSlot(target Slot) bool {
	switch p.TimeKind {
	case TimeAllDay:
		return true
	case TimeSpecific:
		if p.SpecificHour == nil {
			return false
		}
		minute := p.SpecificHour.Minutes()
		return minute >= target.Start.Minutes() && minute < target.End.Minutes()
	case TimeRange:
		if p.HourStart == nil || p.HourEnd == nil {
			return false
		}
		return p.HourStart.Minutes() < target.End.Minutes() && target.Start.Minutes() < p.HourEnd.Minutes()
	default:
		return false
	}
}

// EarliestDate returns the first calendar date the pattern can apply to, or
// false for weekly patterns, which have no start bound.
func (p RulePattern) EarliestDate() (Date, bool) {
	switch p.DateKind {
	case DateSpecific:
		if p.SpecificDate != nil {
			return *p.SpecificDate, true
		}
	case DateRange:
		if p.RangeStart != nil {
			return *p.RangeStart, true
		}
	}
	return Date{}, false
}

// dateSpecificity ranks date kinds for promotion tie-breaking: a one-off
// override outranks a range, which outranks a standing weekly discount.
func (p RulePattern) dateSpecificity() int {
	switch p.DateKind {
	case DateSpecific:
		return 0
	case DateRange:
		return 1
	case DateWeekly:
		return 2
	default:
		return 3
	}
}

// NextWeekday returns the first date strictly after from that falls on day.
func NextWeekday(from Date, day time.Weekday) Date {
	delta := (int(day) - int(from.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return from.AddDays(delta)
}
