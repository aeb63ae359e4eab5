package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"airscout/internal/delivery/http/response"
	"airscout/internal/usecase"
)

// RouteHandlerParams holds dependencies for RouteHandler, injected by Fx.
type RouteHandlerParams struct {
	fx.In

	RouteCheckUC usecase.RouteCheckUsecase
	Logger       *slog.Logger
}

// RouteHandler holds dependencies for route risk handlers
type RouteHandler struct {
	routeCheckUC usecase.RouteCheckUsecase
	logger       *slog.Logger
}

// NewRouteHandler is the constructor for RouteHandler
func NewRouteHandler(params RouteHandlerParams) *RouteHandler {
	return &RouteHandler{
		routeCheckUC: params.RouteCheckUC,
		logger:       params.Logger,
	}
}

// CheckRoute handles on-demand route risk assessment
func (h *RouteHandler) CheckRoute(c echo.Context) error {
	var req usecase.RouteCheckInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route check input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	result, err := h.routeCheckUC.CheckRoute(c.Request().Context(), &req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result)
}
