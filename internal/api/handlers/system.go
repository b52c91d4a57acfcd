package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/quantfolio/risk-engine/internal/api/response"
	"github.com/quantfolio/risk-engine/internal/apperrors"
	"github.com/quantfolio/risk-engine/internal/database"
	"github.com/quantfolio/risk-engine/internal/repository"
	"github.com/quantfolio/risk-engine/internal/version"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	db           *sql.DB
	providerRepo *repository.ProviderConfigRepository
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *sql.DB, providerRepo *repository.ProviderConfigRepository) *SystemHandler {
	return &SystemHandler{
		db:           db,
		providerRepo: providerRepo,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
//
// Endpoint: GET /api/system/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(h.db); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// VersionResponse represents the version check response
type VersionResponse struct {
	AppVersion string `json:"app_version"`
}

// Version returns the application version.
//
// Endpoint: GET /api/system/version
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, VersionResponse{AppVersion: version.Version})
}

// ProviderConfigResponse reports whether a provider token is configured
// and when it was last updated. The token itself is never returned.
type ProviderConfigResponse struct {
	Configured bool       `json:"configured"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// GetProviderConfig reports the provider token status.
//
// Endpoint: GET /api/system/provider-config
func (h *SystemHandler) GetProviderConfig(w http.ResponseWriter, r *http.Request) {
	if h.providerRepo == nil {
		response.RespondJSON(w, http.StatusOK, ProviderConfigResponse{Configured: false})
		return
	}

	updatedAt, err := h.providerRepo.UpdatedAt()
	if errors.Is(err, apperrors.ErrProviderConfigNotFound) {
		response.RespondJSON(w, http.StatusOK, ProviderConfigResponse{Configured: false})
		return
	}
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read provider configuration", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, ProviderConfigResponse{
		Configured: true,
		UpdatedAt:  &updatedAt,
	})
}

// SetProviderConfigRequest carries a new provider API token.
type SetProviderConfigRequest struct {
	Token string `json:"token"`
}

// SetProviderConfig stores a new provider API token, encrypted at rest.
//
// Endpoint: POST /api/system/provider-config
func (h *SystemHandler) SetProviderConfig(w http.ResponseWriter, r *http.Request) {
	if h.providerRepo == nil {
		response.RespondError(w, http.StatusServiceUnavailable, "provider token storage is not configured", "set PROVIDER_FERNET_KEY")
		return
	}

	var req SetProviderConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "token is required", "")
		return
	}

	if err := h.providerRepo.SetToken(req.Token); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store provider token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
