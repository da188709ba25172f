// internal/api/apiutil/fields.go
package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// PathID parses the numeric {id} path segment of the request.
func PathID(r *http.Request) (int64, error) {
	return ParsePositiveInt64Field(r.PathValue("id"), "id")
}

// DateFromQuery parses a required YYYY-MM-DD query parameter.
func DateFromQuery(r *http.Request, key string) (rules.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return rules.Date{}, fmt.Errorf("%s is required", key)
	}
	date, err := rules.ParseDate(raw)
	if err != nil {
		return rules.Date{}, fmt.Errorf("%s: %w", key, err)
	}
	return date, nil
}

// SlotFromQuery builds the target slot from hora_inicio/hora_fin. When both
// are absent the whole day is checked; a half-specified slot is an error.
func SlotFromQuery(r *http.Request) (rules.Slot, error) {
	startRaw := strings.TrimSpace(r.URL.Query().Get("hora_inicio"))
	endRaw := strings.TrimSpace(r.URL.Query().Get("hora_fin"))

	if startRaw == "" && endRaw == "" {
		return rules.FullDay(), nil
	}
	if startRaw == "" || endRaw == "" {
		return rules.Slot{}, fmt.Errorf("hora_inicio and hora_fin must be provided together")
	}

	start, err := rules.ParseTimeOfDay(startRaw)
	if err != nil {
		return rules.Slot{}, fmt.Errorf("hora_inicio: %w", err)
	}
	end, err := rules.ParseTimeOfDay(endRaw)
	if err != nil {
		return rules.Slot{}, fmt.Errorf("hora_fin: %w", err)
	}
	return rules.NewSlot(start, end)
}
