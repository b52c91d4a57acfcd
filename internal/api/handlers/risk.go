package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quantfolio/risk-engine/internal/api/response"
	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/risk"
	"github.com/quantfolio/risk-engine/internal/validation"
)

// RiskHandler handles risk-analytics HTTP requests
type RiskHandler struct {
	gateway *risk.Gateway
	engine  *risk.Engine
}

// NewRiskHandler creates a new RiskHandler
func NewRiskHandler(gateway *risk.Gateway, engine *risk.Engine) *RiskHandler {
	return &RiskHandler{
		gateway: gateway,
		engine:  engine,
	}
}

// Risk returns the full risk bundle for a portfolio as of today,
// computing and caching it on a miss.
//
// Endpoint: GET /api/portfolio/{portfolioID}/risk
func (h *RiskHandler) Risk(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	bundle, err := h.gateway.Get(r.Context(), portfolioID)
	if err != nil {
		respondRiskError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, bundle)
}

// Composition returns a grouped percentage breakdown of the portfolio
// for the requested view dimension.
//
// Endpoint: GET /api/portfolio/{portfolioID}/composition?view=sector|asset_class|risk
func (h *RiskHandler) Composition(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	view, err := validation.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "unsupported composition view", err.Error())
		return
	}

	bundle, err := h.gateway.Get(r.Context(), portfolioID)
	if err != nil {
		respondRiskError(w, err)
		return
	}

	composition, err := h.engine.Composition(bundle, view)
	if err != nil {
		respondRiskError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, composition)
}

// CacheClearRequest selects the invalidation scope; an empty portfolio
// ID clears everything.
type CacheClearRequest struct {
	PortfolioID string `json:"portfolio_id"`
}

// CacheClearResponse acknowledges an invalidation.
type CacheClearResponse struct {
	Cleared string `json:"cleared"`
}

// ClearCache invalidates cached risk results for one portfolio or all
// of them. The next request for an affected portfolio recomputes.
//
// Endpoint: POST /api/system/cache/clear
func (h *RiskHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	var req CacheClearRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if req.PortfolioID == "" {
		if err := h.gateway.InvalidateAll(); err != nil {
			response.RespondError(w, http.StatusInternalServerError, "failed to clear cache", err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, CacheClearResponse{Cleared: "all"})
		return
	}

	if err := validation.ValidateUUID(req.PortfolioID); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid portfolio ID format", err.Error())
		return
	}

	if err := h.gateway.Invalidate(req.PortfolioID); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to clear cache", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, CacheClearResponse{Cleared: req.PortfolioID})
}

// respondRiskError maps pipeline errors onto HTTP status codes.
func respondRiskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		response.RespondError(w, http.StatusNotFound, "portfolio not found", err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedView):
		response.RespondError(w, http.StatusBadRequest, "unsupported composition view", err.Error())
	case errors.Is(err, apperrors.ErrDataInsufficient):
		response.RespondError(w, http.StatusUnprocessableEntity, "insufficient historical data", err.Error())
	case errors.Is(err, apperrors.ErrDataUnavailable):
		response.RespondError(w, http.StatusBadGateway, "market data unavailable", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "risk computation failed", err.Error())
	}
}
