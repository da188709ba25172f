// internal/api/courtrules/handlers.go

// Package courtrules serves the facility dashboard endpoints that manage
// blackout blocks (/api/v1/bloqueos) and promotions (/api/v1/promociones).
// Both resources share one handler set parameterized by rule kind.
package courtrules

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/apiutil"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/authz"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

const rulesQueryTimeout = 5 * time.Second

type Handlers struct {
	repo     rules.Repository
	courts   rules.CourtStore
	writes   *rules.Validator
	validate *validator.Validate
}

func New(repo rules.Repository, courts rules.CourtStore, writes *rules.Validator) *Handlers {
	return &Handlers{
		repo:     repo,
		courts:   courts,
		writes:   writes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes wires both rule resources onto the mux. The paths differ,
// the handlers do not: a block and a promotion are the same row shape with a
// different kind discriminator.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	for _, resource := range []struct {
		prefix string
		kind   rules.Kind
	}{
		{"/api/v1/bloqueos", rules.KindBlock},
		{"/api/v1/promociones", rules.KindPromotion},
	} {
		kind := resource.kind
		mux.HandleFunc("GET "+resource.prefix, h.handleList(kind))
		mux.HandleFunc("POST "+resource.prefix, h.handleCreate(kind))
		mux.HandleFunc("GET "+resource.prefix+"/{id}", h.handleGet(kind))
		mux.HandleFunc("PUT "+resource.prefix+"/{id}", h.handleUpdate(kind))
		mux.HandleFunc("DELETE "+resource.prefix+"/{id}", h.handleDelete(kind))
		mux.HandleFunc("PATCH "+resource.prefix+"/{id}/toggle", h.handleToggle(kind))
	}
}

// ruleRequest is the dashboard payload for creating or replacing a rule.
// Blocks name themselves via motivo, promotions via nombre; the pattern
// fields are inlined per the wire contract.
type ruleRequest struct {
	CourtID     int64  `json:"cancha_id" validate:"required,gt=0"`
	Motivo      string `json:"motivo,omitempty"`
	Nombre      string `json:"nombre,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Precio      int64  `json:"precio_promocional,omitempty"`

	rules.RulePattern
}

func (req ruleRequest) name(kind rules.Kind) string {
	if kind == rules.KindBlock {
		return req.Motivo
	}
	return req.Nombre
}

// ruleResponse mirrors the stored rule back to the dashboard.
type ruleResponse struct {
	ID          int64  `json:"id"`
	CourtID     int64  `json:"cancha_id"`
	FacilityID  int64  `json:"complejo_id"`
	Motivo      string `json:"motivo,omitempty"`
	Nombre      string `json:"nombre,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Precio      *int64 `json:"precio_promocional,omitempty"`

	rules.RulePattern

	Active    bool   `json:"activo"`
	CreatedAt string `json:"created_at"`

	// EffectiveFrom is set only on weekly promotion writes: the next Monday
	// the recurrence takes effect, returned as an advisory.
	EffectiveFrom *rules.Date `json:"vigencia_desde,omitempty"`
}

func toResponse(rule rules.Rule, advisory rules.Advisory) ruleResponse {
	resp := ruleResponse{
		ID:            rule.ID,
		CourtID:       rule.CourtID,
		FacilityID:    rule.FacilityID,
		Descripcion:   rule.Description,
		RulePattern:   rule.Pattern,
		Active:        rule.Active,
		CreatedAt:     rule.CreatedAt.UTC().Format(time.RFC3339),
		EffectiveFrom: advisory.EffectiveFrom,
	}
	if rule.Kind == rules.KindBlock {
		resp.Motivo = rule.Name
	} else {
		resp.Nombre = rule.Name
		price := rule.Price
		resp.Precio = &price
	}
	return resp
}

// GET /api/v1/bloqueos?cancha_id= | ?complejo_id=
func (h *Handlers) handleList(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
		defer cancel()

		var (
			list       []rules.Rule
			facilityID int64
			err        error
		)
		switch {
		case r.URL.Query().Get("cancha_id") != "":
			courtID, perr := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("cancha_id"), "cancha_id")
			if perr != nil {
				apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", perr.Error())
				return
			}
			court, cerr := h.courts.GetCourt(ctx, courtID)
			if cerr != nil {
				apiutil.WriteRuleError(w, cerr)
				return
			}
			facilityID = court.FacilityID
			list, err = h.repo.ListByCourt(ctx, courtID, kind)
		case r.URL.Query().Get("complejo_id") != "":
			facilityID, err = apiutil.ParsePositiveInt64Field(r.URL.Query().Get("complejo_id"), "complejo_id")
			if err != nil {
				apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
				return
			}
			if _, ferr := h.courts.GetFacility(ctx, facilityID); ferr != nil {
				apiutil.WriteRuleError(w, ferr)
				return
			}
			list, err = h.repo.ListByFacility(ctx, facilityID, kind)
		default:
			apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", "cancha_id or complejo_id is required")
			return
		}
		if err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Msg("Failed to list rules")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to list rules")
			return
		}

		if !apiutil.RequireFacilityAccess(w, r, facilityID) {
			return
		}

		responses := make([]ruleResponse, 0, len(list))
		for _, rule := range list {
			responses = append(responses, toResponse(rule, rules.Advisory{}))
		}
		_ = apiutil.WriteJSON(w, http.StatusOK, responses)
	}
}

// GET /api/v1/bloqueos/{id}
func (h *Handlers) handleGet(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, ok := h.loadScopedRule(w, r, kind)
		if !ok {
			return
		}
		_ = apiutil.WriteJSON(w, http.StatusOK, toResponse(rule, rules.Advisory{}))
	}
}

// POST /api/v1/bloqueos
func (h *Handlers) handleCreate(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		req, court, actor, ok := h.decodeWrite(w, r, kind)
		if !ok {
			return
		}

		candidate := rules.Rule{
			CourtID:     court.ID,
			FacilityID:  court.FacilityID,
			Kind:        kind,
			Name:        req.name(kind),
			Description: req.Descripcion,
			Pattern:     req.RulePattern,
			Price:       req.Precio,
			Active:      true,
			CreatedBy:   actor.UserID,
		}

		advisory, err := h.writes.ValidateForWrite(candidate, court, actor)
		if err != nil {
			apiutil.WriteRuleError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
		defer cancel()

		created, err := h.repo.CreateRule(ctx, candidate)
		if err != nil {
			logger.Error().Err(err).Str("kind", string(kind)).Int64("court_id", court.ID).Msg("Failed to create rule")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to create rule")
			return
		}

		logger.Info().
			Str("kind", string(kind)).
			Int64("rule_id", created.ID).
			Int64("court_id", created.CourtID).
			Msg("Rule created")
		_ = apiutil.WriteJSON(w, http.StatusCreated, toResponse(created, advisory))
	}
}

// PUT /api/v1/bloqueos/{id} replaces the rule wholesale; the stored pattern
// is rewritten so fields from the previous pattern kinds cannot survive.
func (h *Handlers) handleUpdate(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		existing, ok := h.loadScopedRule(w, r, kind)
		if !ok {
			return
		}

		req, court, actor, ok := h.decodeWrite(w, r, kind)
		if !ok {
			return
		}
		if court.ID != existing.CourtID {
			apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", "a rule cannot move between courts")
			return
		}

		candidate := existing
		candidate.Name = req.name(kind)
		candidate.Description = req.Descripcion
		candidate.Pattern = req.RulePattern
		candidate.Price = req.Precio

		advisory, err := h.writes.ValidateForWrite(candidate, court, actor)
		if err != nil {
			apiutil.WriteRuleError(w, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
		defer cancel()

		updated, err := h.repo.UpdateRule(ctx, candidate)
		if err != nil {
			if errors.Is(err, rules.ErrNotFound) {
				apiutil.WriteRuleError(w, err)
				return
			}
			logger.Error().Err(err).Int64("rule_id", candidate.ID).Msg("Failed to update rule")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to update rule")
			return
		}

		_ = apiutil.WriteJSON(w, http.StatusOK, toResponse(updated, advisory))
	}
}

// DELETE /api/v1/bloqueos/{id}
func (h *Handlers) handleDelete(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		rule, ok := h.loadScopedRule(w, r, kind)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
		defer cancel()

		if err := h.repo.DeleteRule(ctx, rule.ID); err != nil {
			if errors.Is(err, rules.ErrNotFound) {
				apiutil.WriteRuleError(w, err)
				return
			}
			logger.Error().Err(err).Int64("rule_id", rule.ID).Msg("Failed to delete rule")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to delete rule")
			return
		}

		logger.Info().Str("kind", string(kind)).Int64("rule_id", rule.ID).Msg("Rule deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

// PATCH /api/v1/bloqueos/{id}/toggle flips activo without touching the
// pattern. Deactivating is the recommended way to suspend a rule while
// keeping it on file.
func (h *Handlers) handleToggle(kind rules.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.Ctx(r.Context())

		rule, ok := h.loadScopedRule(w, r, kind)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
		defer cancel()

		toggled, err := h.repo.SetRuleActive(ctx, rule.ID, !rule.Active)
		if err != nil {
			if errors.Is(err, rules.ErrNotFound) {
				apiutil.WriteRuleError(w, err)
				return
			}
			logger.Error().Err(err).Int64("rule_id", rule.ID).Msg("Failed to toggle rule")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to toggle rule")
			return
		}

		logger.Info().
			Str("kind", string(kind)).
			Int64("rule_id", toggled.ID).
			Bool("activo", toggled.Active).
			Msg("Rule toggled")
		_ = apiutil.WriteJSON(w, http.StatusOK, toResponse(toggled, rules.Advisory{}))
	}
}

// decodeWrite parses and field-validates a write payload, resolves the court
// and the acting user, and enforces authentication. Ownership is checked by
// the rule validator afterwards so super admins keep their bypass.
func (h *Handlers) decodeWrite(w http.ResponseWriter, r *http.Request, kind rules.Kind) (ruleRequest, rules.Court, rules.Actor, bool) {
	logger := log.Ctx(r.Context())

	var req ruleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return ruleRequest{}, rules.Court{}, rules.Actor{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return ruleRequest{}, rules.Court{}, rules.Actor{}, false
	}
	if req.name(kind) == "" {
		field := "nombre"
		if kind == rules.KindBlock {
			field = "motivo"
		}
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", field+" is required")
		return ruleRequest{}, rules.Court{}, rules.Actor{}, false
	}

	actor, ok := authz.ActorFromContext(r.Context())
	if !ok {
		apiutil.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
		return ruleRequest{}, rules.Court{}, rules.Actor{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
	defer cancel()

	court, err := h.courts.GetCourt(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", "cancha_id does not exist")
		} else {
			logger.Error().Err(err).Int64("court_id", req.CourtID).Msg("Failed to load court")
			apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to load court")
		}
		return ruleRequest{}, rules.Court{}, rules.Actor{}, false
	}

	return req, court, actor, true
}

// loadScopedRule fetches the rule behind {id}, checks it is of the expected
// kind and that the caller may touch its facility.
func (h *Handlers) loadScopedRule(w http.ResponseWriter, r *http.Request, kind rules.Kind) (rules.Rule, bool) {
	logger := log.Ctx(r.Context())

	id, err := apiutil.PathID(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return rules.Rule{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), rulesQueryTimeout)
	defer cancel()

	rule, err := h.repo.GetRule(ctx, id)
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			apiutil.WriteRuleError(w, err)
			return rules.Rule{}, false
		}
		logger.Error().Err(err).Int64("rule_id", id).Msg("Failed to load rule")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to load rule")
		return rules.Rule{}, false
	}
	if rule.Kind != kind {
		// A block id requested through the promotions routes (or vice versa)
		// does not exist as far as that resource is concerned.
		apiutil.WriteRuleError(w, rules.ErrNotFound)
		return rules.Rule{}, false
	}

	if !apiutil.RequireFacilityAccess(w, r, rule.FacilityID) {
		return rules.Rule{}, false
	}

	return rule, true
}
