// Package handlers wires the development server's HTTP surface: the fixed
// contract the RunnerVault client is written against.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/runnervault/internal/devserver/store"
	"github.com/dmitrijs2005/runnervault/internal/logging"
)

type Handler struct {
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	log       logging.Logger
}

func New(st *store.Store, jwtSecret []byte, tokenTTL time.Duration, log logging.Logger) *Handler {
	return &Handler{store: st, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// NewRouter builds the full route table. Everything except registration and
// login sits behind the bearer-token middleware.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(pr chi.Router) {
		pr.Use(RequireAuth(h.jwtSecret))

		pr.Get("/auth/me", h.Me)
		pr.Get("/characters", h.ListCharacters)
		pr.Post("/characters", h.CreateCharacter)
		pr.Put("/characters/{id}", h.UpdateCharacter)
	})

	return r
}
