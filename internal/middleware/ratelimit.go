package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/budgetly/budgetly/backend/pkg/utils"
)

const rateLimitMessage = "Too many requests, please try again later."

// RateLimit allows limit requests per window for each client IP and answers
// the rest with a 429 error envelope.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			utils.RespondError(w, http.StatusTooManyRequests, rateLimitMessage)
		}),
	)
}
