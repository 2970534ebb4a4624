package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/auth"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/entry"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/export"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/importcsv"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/matching"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/respond"
	"github.com/MrJamesThe3rd/minhasfinancas/internal/http/user"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Users    *user.Handler
	Entries  *entry.Handler
	Import   *importcsv.Handler
	Export   *export.Handler
	Matching *matching.Handler
}

func New(h Handlers, tokens *auth.TokenIssuer, allowedOrigins []string, db Pinger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/health", health(db))

	requireToken := auth.Middleware(tokens)

	router.Route("/api", func(r chi.Router) {
		r.Route("/usuarios", func(r chi.Router) {
			r.With(middleware.AllowContentType("application/json")).Group(h.Users.PublicRoutes)
			r.With(requireToken).Group(h.Users.Routes)
		})

		r.Route("/lancamentos", func(r chi.Router) {
			r.Use(requireToken)

			r.With(middleware.AllowContentType("application/json")).Group(h.Entries.Routes)
			h.Import.Routes(r)
			h.Export.Routes(r)
		})

		r.Route("/mapeamentos", func(r chi.Router) {
			r.Use(requireToken)
			h.Matching.Routes(r)
		})
	})

	return router
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}

		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
