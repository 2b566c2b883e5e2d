package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventparticipation/internal/delivery/http/controllers"
	"eventparticipation/internal/delivery/http/helpers"
	"eventparticipation/internal/delivery/http/middleware"
)

// HealthCheck reports whether a dependency the service needs is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter initializes the HTTP router with all application routes
func NewRouter(requestController *controllers.RequestController, health HealthCheck) *http.ServeMux {
	mux := http.NewServeMux()

	// Requester
	mux.HandleFunc("POST /users/{userId}/requests", requestController.SubmitRequest)
	mux.HandleFunc("GET /users/{userId}/requests", requestController.ListUserRequests)
	mux.HandleFunc("PATCH /users/{userId}/requests/{requestId}/cancel", requestController.CancelRequest)

	// Organizer
	mux.HandleFunc("GET /users/{userId}/events/{eventId}/requests", requestController.ListEventRequests)
	mux.HandleFunc("PATCH /users/{userId}/events/{eventId}/requests", requestController.UpdateRequestsStatus)

	// Internal
	mux.HandleFunc("POST /internal/requests/events/confirmed", requestController.ConfirmedCounts)

	mux.HandleFunc("GET /health", healthHandler(health))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, err.Error())
				return
			}
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Wrap applies the middleware chain shared by every route. A nil limiter
// disables rate limiting.
func Wrap(h http.Handler, logger *slog.Logger, limiter *middleware.LimiterStore) http.Handler {
	if limiter != nil {
		h = middleware.RateLimit(limiter, h)
	}
	h = middleware.LoggingMiddleware(logger, h)
	h = chimw.Recoverer(h)
	h = chimw.RealIP(h)
	return chimw.RequestID(h)
}
