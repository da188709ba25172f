// internal/api/apiutil/handlers.go
package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/authz"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// errorBody is the structured error envelope every failure returns.
type errorBody struct {
	Code         string `json:"code"`
	Message      string `json:"mensaje"`
	EarliestDate string `json:"fecha_minima,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	_ = WriteJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// WriteRuleError maps a rule engine error onto the HTTP surface, carrying
// the earliest permitted date for lead-time rejections so the dashboard can
// render it.
func WriteRuleError(w http.ResponseWriter, err error) {
	var verr *rules.ValidationError
	if errors.As(err, &verr) {
		body := errorBody{Code: string(verr.Code), Message: verr.Message}
		if verr.EarliestAllowed != nil {
			body.EarliestDate = verr.EarliestAllowed.String()
		}
		_ = WriteJSON(w, validationStatus(verr.Code), errorEnvelope{Error: body})
		return
	}
	if errors.Is(err, rules.ErrNotFound) {
		WriteError(w, http.StatusNotFound, string(rules.ErrCodeNotFound), "resource not found")
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal", "internal server error")
}

func validationStatus(code rules.ErrorCode) int {
	switch code {
	case rules.ErrCodeForbidden:
		return http.StatusForbidden
	case rules.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// RequireFacilityAccess enforces facility scoping for the request, writing
// the response itself when access is denied.
func RequireFacilityAccess(w http.ResponseWriter, r *http.Request, facilityID int64) bool {
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())
	if err := authz.RequireFacilityAccess(r.Context(), facilityID); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logEvent := logger.Warn().Int64("facility_id", facilityID)
			if user != nil {
				logEvent = logEvent.Int64("user_id", user.ID)
			}
			logEvent.Msg("Facility access denied: unauthenticated")
			WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		case errors.Is(err, authz.ErrForbidden):
			logEvent := logger.Warn().Int64("facility_id", facilityID)
			if user != nil {
				logEvent = logEvent.Int64("user_id", user.ID)
			}
			logEvent.Msg("Facility access denied: forbidden")
			WriteError(w, http.StatusForbidden, string(rules.ErrCodeForbidden), "access to this facility is forbidden")
		default:
			logger.Error().Int64("facility_id", facilityID).Err(err).Msg("Facility access denied: error")
			WriteError(w, http.StatusInternalServerError, "internal", "failed to authorize request")
		}
		return false
	}
	return true
}
