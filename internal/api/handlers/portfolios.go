package handlers

import (
	"net/http"

	"github.com/quantfolio/risk-engine/internal/api/response"
	"github.com/quantfolio/risk-engine/internal/model"
	"github.com/quantfolio/risk-engine/internal/repository"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioRepo *repository.PortfolioRepository
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioRepo *repository.PortfolioRepository) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioRepo: portfolioRepo,
	}
}

// PortfoliosResponse represents the Portfolios get response
type PortfoliosResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsArchived  bool   `json:"is_archived"`
}

// Portfolios lists all portfolios known to the system.
//
// Endpoint: GET /api/portfolio/
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioRepo.GetPortfolios(model.PortfolioFilter{
		IncludeArchived: true,
	})
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve portfolios", err.Error())
		return
	}

	resp := make([]PortfoliosResponse, len(portfolios))
	for i, p := range portfolios {
		resp[i] = PortfoliosResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			IsArchived:  p.IsArchived,
		}
	}

	response.RespondJSON(w, http.StatusOK, resp)
}
