// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/availability"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/api/courtrules"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/config"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rules"
	"github.com/Pousito/reserva-tu-cancha-sub002/internal/rulestore"
)

func newServer(cfg *config.Config, store *rulestore.Store, writes *rules.Validator) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithAuth,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, store, writes)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, store *rulestore.Store, writes *rules.Validator) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Dashboard rule management (blocks and promotions)
	courtrules.New(store, store, writes).RegisterRoutes(mux)

	// Public booking-flow reads
	availability.New(store, store).RegisterRoutes(mux)
}
