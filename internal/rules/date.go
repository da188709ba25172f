// internal/rules/date.go
package rules

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day and no zone. Rule matching
// compares calendar components in the facility's local zone, never raw UTC
// timestamps, so a Date is deliberately not a time.Time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf extracts the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()
	return Date{Year: year, Month: month, Day: day}
}

func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", value)
	}
	return DateOf(parsed), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time returns midnight of the date in loc.
func (d Date) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Date) AddDays(days int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, days))
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

const hourLayout = "15:04"

// TimeOfDay is a wall-clock time within a day. Hour 24 with minute 0 is
// allowed so a slot can end exactly at midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	value = strings.TrimSpace(value)
	if value == "24:00" {
		return TimeOfDay{Hour: 24}, nil
	}
	parsed, err := time.Parse(hourLayout, value)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid hour %q: want HH:MM", value)
	}
	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Slot is the half-open [Start, End) interval of a prospective reservation.
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

func NewSlot(start, end TimeOfDay) (Slot, error) {
	if !start.Before(end) {
		return Slot{}, fmt.Errorf("slot start %s must be before end %s", start, end)
	}
	return Slot{Start: start, End: end}, nil
}

// FullDay covers every bookable hour of a date.
func FullDay() Slot {
	return Slot{Start: TimeOfDay{}, End: TimeOfDay{Hour: 24}}
}

// Weekday is a day of the week carried on weekly recurring patterns. The wire
// format uses lowercase Spanish day names, accents stripped ("miercoles",
// "sabado"), as stored by the admin dashboard.
type Weekday time.Weekday

var weekdayNames = [...]string{
	time.Sunday:    "domingo",
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miercoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sabado",
}

// weekdayAliases tolerates accented spellings on input.
var weekdayAliases = map[string]time.Weekday{
	"miércoles": time.Wednesday,
	"sábado":    time.Saturday,
}

func ParseWeekday(value string) (Weekday, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for day, name := range weekdayNames {
		if normalized == name {
			return Weekday(day), nil
		}
	}
	if day, ok := weekdayAliases[normalized]; ok {
		return Weekday(day), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", value)
}

func (w Weekday) String() string {
	if w < 0 || int(w) >= len(weekdayNames) {
		return fmt.Sprintf("weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

func (w Weekday) Time() time.Weekday {
	return time.Weekday(w)
}

func (w Weekday) MarshalJSON() ([]byte, error) {
	if w < 0 || int(w) >= len(weekdayNames) {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return json.Marshal(w.String())
}

func (w *Weekday) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseWeekday(raw)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}
