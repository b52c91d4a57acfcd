// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quantfolio/risk-engine/internal/api/response"
	"github.com/quantfolio/risk-engine/internal/validation"
)

// ValidatePortfolioIDMiddleware validates that the portfolioID URL
// parameter is present and a valid UUID. Returns 400 Bad Request when
// the portfolio ID is missing or invalid.
func ValidatePortfolioIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		portfolioID := chi.URLParam(r, "portfolioID")

		if portfolioID == "" {
			response.RespondError(w, http.StatusBadRequest, "valid portfolio ID is required", "")
			return
		}

		if err := validation.ValidateUUID(portfolioID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID format", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
