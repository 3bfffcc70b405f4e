package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "zezin-crm/client/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(sessionHandler *SessionHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Standard JSON routes get a request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Session ---
			r.Get("/session", sessionHandler.GetSession)
			r.Post("/session/messages", sessionHandler.SendMessage)
			r.Post("/session/new", sessionHandler.NewConversation)
			r.Post("/session/retry", sessionHandler.RetryLoad)

			// --- Threads ---
			r.Get("/threads", sessionHandler.ListThreads)
			r.Post("/threads/refresh", sessionHandler.RefreshThreads)
			r.Post("/threads/{threadID}/select", sessionHandler.SelectThread)
			r.Put("/threads/{threadID}/title", sessionHandler.UpdateThreadTitle)
			r.Delete("/threads/{threadID}", sessionHandler.DeleteThread)
		})

		// Long-lived streaming routes must NOT have a timeout.
		r.Group(func(r chi.Router) {
			r.Get("/session/events", sessionHandler.StreamSession)
		})
	})

	return r
}
