package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"airscout/internal/delivery/http/response"
	"airscout/internal/domain/entity"
	"airscout/internal/usecase"
)

// HazardHandlerParams holds dependencies for HazardHandler, injected by Fx.
type HazardHandlerParams struct {
	fx.In

	HazardUC usecase.HazardUsecase
	Logger   *slog.Logger
}

// HazardHandler holds dependencies for hazard query handlers
type HazardHandler struct {
	hazardUC usecase.HazardUsecase
	logger   *slog.Logger
}

// NewHazardHandler is the constructor for HazardHandler
func NewHazardHandler(params HazardHandlerParams) *HazardHandler {
	return &HazardHandler{
		hazardUC: params.HazardUC,
		logger:   params.Logger,
	}
}

// HazardResponse is one active hazard as exposed to callers.
type HazardResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Severity    int            `json:"severity"`
	Longitude   float64        `json:"longitude"`
	Latitude    float64        `json:"latitude"`
	Description string         `json:"description"`
	SourceID    string         `json:"source_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ExpiresAt   string         `json:"expires_at"`
}

// ListActiveHazards handles retrieving the active hazard snapshot
func (h *HazardHandler) ListActiveHazards(c echo.Context) error {
	hazards, err := h.hazardUC.ActiveHazards(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	results := make([]HazardResponse, 0, len(hazards))
	for i := range hazards {
		results = append(results, toHazardResponse(&hazards[i]))
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"hazards": results,
		"count":   len(results),
	})
}

func toHazardResponse(hazard *entity.Hazard) HazardResponse {
	return HazardResponse{
		ID:          hazard.ID.String(),
		Type:        string(hazard.Kind),
		Severity:    hazard.Severity,
		Longitude:   hazard.Longitude(),
		Latitude:    hazard.Latitude(),
		Description: hazard.Description,
		SourceID:    hazard.SourceID,
		Metadata:    hazard.Metadata,
		ExpiresAt:   hazard.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
