package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "chatdesk/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(chatHandler *ChatHandler, adminHandler *AdminHandler) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	// These are applied to every request.
	r.Use(middleware.RequestID) // Injects a unique request ID into the context.
	r.Use(middleware.RealIP)    // Sets the remote address to the real IP from proxy headers.
	r.Use(middleware.Logger)    // Logs the start and end of each request with useful info.
	r.Use(middleware.Recoverer) // Recovers from panics and returns a 500 error.

	// --- Public Routes ---

	// Serves the auto-generated Swagger UI for API documentation.
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// A simple health check endpoint. Used by container orchestration for
	// liveness/readiness probes, and by peer instances as the capability
	// probe of their primary backend tier.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {

		// Group for standard JSON API routes that should have a request timeout
		// to prevent client connections from hanging indefinitely.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Sessions ---
			r.Post("/sessions", chatHandler.HandleCreateSession)
			r.Get("/sessions/{sessionID}", chatHandler.HandleGetSession)
			r.Put("/sessions/{sessionID}/title", chatHandler.HandleUpdateSessionTitle)
			r.Post("/sessions/{sessionID}/close", chatHandler.HandleCloseSession)
			r.Post("/sessions/{sessionID}/reopen", chatHandler.HandleReopenSession)
			r.Post("/sessions/{sessionID}/archive", chatHandler.HandleArchiveSession)
			r.Delete("/sessions/{sessionID}", chatHandler.HandleDeleteSession)

			// --- Groups ---
			r.Get("/groups/{groupID}/sessions", chatHandler.HandleListSessions)
			r.Get("/groups/{groupID}/settings", adminHandler.HandleGetTenantSettings)
			r.Put("/groups/{groupID}/settings", adminHandler.HandleSaveTenantSettings)
			r.Get("/groups/{groupID}/analytics", adminHandler.HandleGroupAnalytics)

			// --- Feedback ---
			r.Post("/messages/{messageID}/feedback", adminHandler.HandleCreateFeedback)
			r.Get("/messages/{messageID}/feedback", adminHandler.HandleListFeedback)
		})

		// Group for long-running, streaming endpoints. These routes must NOT have a timeout,
		// as they are designed to hold a connection open while the delivery
		// pipeline retries and streams.
		r.Group(func(r chi.Router) {
			r.Post("/sessions/{sessionID}/messages", chatHandler.HandleSendMessage)
		})
	})

	return r
}
