// internal/api/availability/handlers.go

// Package availability serves the public booking-flow reads: whether a slot
// is bookable and what it costs. Rules are fetched fresh on every request so
// a deactivated block releases its slots immediately.
package availability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/apiutil"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
)

const availabilityQueryTimeout = 5 * time.Second

type Handlers struct {
	repo   rules.Repository
	courts rules.CourtStore
}

func New(repo rules.Repository, courts rules.CourtStore) *Handlers {
	return &Handlers{repo: repo, courts: courts}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/disponibilidad", h.handleAvailability)
	mux.HandleFunc("GET /api/v1/precio", h.handleQuote)
}

type availabilityResponse struct {
	CourtID   int64          `json:"cancha_id"`
	Date      rules.Date     `json:"fecha"`
	Available bool           `json:"disponible"`
	Blocks    []blockSummary `json:"bloqueos"`
}

// blockSummary names the blocks standing in the way so the booking flow can
// explain an unavailable slot.
type blockSummary struct {
	ID     int64  `json:"id"`
	Motivo string `json:"motivo"`
}

type quoteResponse struct {
	CourtID   int64         `json:"cancha_id"`
	Date      rules.Date    `json:"fecha"`
	Price     int64         `json:"precio"`
	Promotion *promoSummary `json:"promocion_aplicada,omitempty"`
}

type promoSummary struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// GET /api/v1/disponibilidad?cancha_id=&fecha=&hora_inicio=&hora_fin=
func (h *Handlers) handleAvailability(w http.ResponseWriter, r *http.Request) {
	courtID, date, slot, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	blocks, err := h.repo.ListByCourt(ctx, courtID, rules.KindBlock)
	if err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("court_id", courtID).Msg("Failed to load blocks")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to check availability")
		return
	}

	matching := rules.Evaluate(blocks, courtID, date, slot)
	resp := availabilityResponse{
		CourtID:   courtID,
		Date:      date,
		Available: len(matching) == 0,
		Blocks:    make([]blockSummary, 0, len(matching)),
	}
	for _, block := range matching {
		resp.Blocks = append(resp.Blocks, blockSummary{ID: block.ID, Motivo: block.Name})
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

// GET /api/v1/precio?cancha_id=&fecha=&hora_inicio=&hora_fin=
func (h *Handlers) handleQuote(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	courtID, date, slot, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), availabilityQueryTimeout)
	defer cancel()

	court, err := h.courts.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, rules.ErrNotFound) {
			apiutil.WriteRuleError(w, err)
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load court")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to quote price")
		return
	}

	promotions, err := h.repo.ListByCourt(ctx, courtID, rules.KindPromotion)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load promotions")
		apiutil.WriteError(w, http.StatusInternalServerError, "internal", "failed to quote price")
		return
	}

	price, applied := rules.ResolvePrice(promotions, courtID, date, slot, court.BasePrice)

	resp := quoteResponse{CourtID: courtID, Date: date, Price: price}
	if applied != nil {
		resp.Promotion = &promoSummary{ID: applied.ID, Nombre: applied.Name}
	}

	_ = apiutil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) parseQuery(w http.ResponseWriter, r *http.Request) (int64, rules.Date, rules.Slot, bool) {
	courtID, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("cancha_id"), "cancha_id")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return 0, rules.Date{}, rules.Slot{}, false
	}
	date, err := apiutil.DateFromQuery(r, "fecha")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return 0, rules.Date{}, rules.Slot{}, false
	}
	slot, err := apiutil.SlotFromQuery(r)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return 0, rules.Date{}, rules.Slot{}, false
	}
	return courtID, date, slot, true
}
