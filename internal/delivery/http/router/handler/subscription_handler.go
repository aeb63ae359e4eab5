package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"airscout/internal/delivery/http/response"
	"airscout/internal/domain/entity"
	"airscout/internal/usecase"
)

// SubscriptionHandlerParams holds dependencies for SubscriptionHandler, injected by Fx.
type SubscriptionHandlerParams struct {
	fx.In

	SubscriptionUC usecase.SubscriptionUsecase
	Logger         *slog.Logger
}

// SubscriptionHandler holds dependencies for subscription-related handlers
type SubscriptionHandler struct {
	subscriptionUC usecase.SubscriptionUsecase
	logger         *slog.Logger
}

// NewSubscriptionHandler is the constructor for SubscriptionHandler
func NewSubscriptionHandler(params SubscriptionHandlerParams) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionUC: params.SubscriptionUC,
		logger:         params.Logger,
	}
}

// SubscriptionResponse is one route subscription as exposed to callers.
type SubscriptionResponse struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	RouteName         string       `json:"route_name"`
	Coordinates       [][2]float64 `json:"coordinates"`
	SeverityThreshold int          `json:"severity_threshold"`
	AlertEnabled      bool         `json:"alert_enabled"`
	CreatedAt         string       `json:"created_at"`
	UpdatedAt         string       `json:"updated_at"`
}

// CreateSubscription handles registering a new route subscription
func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	var req usecase.CreateSubscriptionInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscription input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	subscription, err := h.subscriptionUC.CreateSubscription(c.Request().Context(), &req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, toSubscriptionResponse(subscription))
}

// GetSubscription handles retrieving one subscription by ID
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid subscription ID")
	}

	subscription, err := h.subscriptionUC.GetSubscription(c.Request().Context(), id)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSubscriptionResponse(subscription))
}

// ListUserSubscriptions handles retrieving all subscriptions for a user
func (h *SubscriptionHandler) ListUserSubscriptions(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return response.BadRequest(c, "INVALID_ID", "Missing user ID")
	}

	subscriptions, err := h.subscriptionUC.ListUserSubscriptions(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	results := make([]SubscriptionResponse, 0, len(subscriptions))
	for i := range subscriptions {
		results = append(results, toSubscriptionResponse(&subscriptions[i]))
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"subscriptions": results,
		"count":         len(results),
	})
}

// UpdateSubscription handles a partial subscription update
func (h *SubscriptionHandler) UpdateSubscription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid subscription ID")
	}

	var req usecase.UpdateSubscriptionInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid subscription input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	subscription, err := h.subscriptionUC.UpdateSubscription(c.Request().Context(), id, &req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, toSubscriptionResponse(subscription))
}

// DeleteSubscription handles removing a subscription
func (h *SubscriptionHandler) DeleteSubscription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid subscription ID")
	}

	if err := h.subscriptionUC.DeleteSubscription(c.Request().Context(), id); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Subscription deleted"})
}

func toSubscriptionResponse(subscription *entity.RouteSubscription) SubscriptionResponse {
	coordinates := make([][2]float64, 0, len(subscription.Route))
	for _, point := range subscription.Route {
		coordinates = append(coordinates, [2]float64{point.Lon(), point.Lat()})
	}

	return SubscriptionResponse{
		ID:                subscription.ID.String(),
		UserID:            subscription.UserID,
		RouteName:         subscription.RouteName,
		Coordinates:       coordinates,
		SeverityThreshold: subscription.SeverityThreshold,
		AlertEnabled:      subscription.AlertEnabled,
		CreatedAt:         subscription.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         subscription.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
