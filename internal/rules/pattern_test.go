package rules

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func datePtr(year int, month time.Month, day int) *Date {
	d := NewDate(year, month, day)
	return &d
}

func hourPtr(hour, minute int) *TimeOfDay {
	t := NewTimeOfDay(hour, minute)
	return &t
}

func allDay(dateKind DatePatternKind) RulePattern {
	return RulePattern{DateKind: dateKind, TimeKind: TimeAllDay}
}

func TestPatternValidate(t *testing.T) {
	cases := []struct {
		name    string
		pattern RulePattern
		wantErr bool
	}{
		{
			name: "valid specific date specific hour",
			pattern: RulePattern{
				DateKind:     DateSpecific,
				SpecificDate: datePtr(2025, time.March, 15),
				TimeKind:     TimeSpecific,
				SpecificHour: hourPtr(18, 0),
			},
		},
		{
			name: "valid range all day",
			pattern: RulePattern{
				DateKind:   DateRange,
				RangeStart: datePtr(2025, time.January, 10),
				RangeEnd:   datePtr(2025, time.January, 12),
				TimeKind:   TimeAllDay,
			},
		},
		{
			name: "valid weekly hour range",
			pattern: RulePattern{
				DateKind: DateWeekly,
				Weekdays: []Weekday{Weekday(time.Monday), Weekday(time.Wednesday)},
				TimeKind: TimeRange,
				HourStart: hourPtr(9, 0),
				HourEnd:   hourPtr(12, 0),
			},
		},
		{
			name:    "specific date missing value",
			pattern: RulePattern{DateKind: DateSpecific, TimeKind: TimeAllDay},
			wantErr: true,
		},
		{
			name: "mixed date fields",
			pattern: RulePattern{
				DateKind:     DateSpecific,
				SpecificDate: datePtr(2025, time.March, 15),
				RangeStart:   datePtr(2025, time.March, 1),
				TimeKind:     TimeAllDay,
			},
			wantErr: true,
		},
		{
			name: "range with residual weekdays",
			pattern: RulePattern{
				DateKind:   DateRange,
				RangeStart: datePtr(2025, time.January, 10),
				RangeEnd:   datePtr(2025, time.January, 12),
				Weekdays:   []Weekday{Weekday(time.Friday)},
				TimeKind:   TimeAllDay,
			},
			wantErr: true,
		},
		{
			name: "reversed range",
			pattern: RulePattern{
				DateKind:   DateRange,
				RangeStart: datePtr(2025, time.January, 12),
				RangeEnd:   datePtr(2025, time.January, 10),
				TimeKind:   TimeAllDay,
			},
			wantErr: true,
		},
		{
			name:    "weekly without days",
			pattern: RulePattern{DateKind: DateWeekly, TimeKind: TimeAllDay},
			wantErr: true,
		},
		{
			name:    "unknown date kind",
			pattern: RulePattern{DateKind: "mensual", TimeKind: TimeAllDay},
			wantErr: true,
		},
		{
			name: "hour range start equals end",
			pattern: RulePattern{
				DateKind:     DateSpecific,
				SpecificDate: datePtr(2025, time.March, 15),
				TimeKind:     TimeRange,
				HourStart:    hourPtr(10, 0),
				HourEnd:      hourPtr(10, 0),
			},
			wantErr: true,
		},
		{
			name: "all day with residual hour",
			pattern: RulePattern{
				DateKind:     DateSpecific,
				SpecificDate: datePtr(2025, time.March, 15),
				TimeKind:     TimeAllDay,
				SpecificHour: hourPtr(10, 0),
			},
			wantErr: true,
		},
		{
			name: "unknown time kind",
			pattern: RulePattern{
				DateKind:     DateSpecific,
				SpecificDate: datePtr(2025, time.March, 15),
				TimeKind:     "noche",
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.pattern.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPatternJSONRoundTrip(t *testing.T) {
	pattern := RulePattern{
		DateKind: DateWeekly,
		Weekdays: []Weekday{Weekday(time.Monday), Weekday(time.Saturday)},
		TimeKind: TimeRange,
		HourStart: hourPtr(9, 0),
		HourEnd:   hourPtr(11, 30),
	}

	data, err := json.Marshal(pattern)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"tipo_fecha":"semanal"`, `"lunes"`, `"sabado"`, `"hora_inicio":"09:00"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("marshaled pattern missing %s: %s", want, data)
		}
	}

	var decoded RulePattern
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := decoded.Validate(); err != nil {
		t.Fatalf("round-tripped pattern invalid: %v", err)
	}
	if decoded.HourEnd == nil || decoded.HourEnd.String() != "11:30" {
		t.Fatalf("hora_fin lost in round trip: %+v", decoded)
	}
}

func TestParseWeekdayAcceptsAccents(t *testing.T) {
	day, err := ParseWeekday("miércoles")
	if err != nil {
		t.Fatalf("parse accented weekday: %v", err)
	}
	if day.Time() != time.Wednesday {
		t.Fatalf("expected Wednesday, got %v", day.Time())
	}
	if day.String() != "miercoles" {
		t.Fatalf("expected unaccented form, got %q", day.String())
	}
}

func TestNextWeekday(t *testing.T) {
	// 2025-06-02 is a Monday; "next Monday" from a Monday is a week out.
	monday := NewDate(2025, time.June, 2)
	if got := NextWeekday(monday, time.Monday); got != NewDate(2025, time.June, 9) {
		t.Fatalf("next Monday from Monday: %s", got)
	}
	sunday := NewDate(2025, time.June, 1)
	if got := NextWeekday(sunday, time.Monday); got != monday {
		t.Fatalf("next Monday from Sunday: %s", got)
	}
}
