// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"airscout/internal/delivery/http/router/handler"
)

type RouterParams struct {
	fx.In

	RouteHandler        *handler.RouteHandler
	SubscriptionHandler *handler.SubscriptionHandler
	HazardHandler       *handler.HazardHandler
	Registry            *prometheus.Registry
}

// router holds all the handlers that need to be registered.
type router struct {
	routeHandler        *handler.RouteHandler
	subscriptionHandler *handler.SubscriptionHandler
	hazardHandler       *handler.HazardHandler
	registry            *prometheus.Registry
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		routeHandler:        params.RouteHandler,
		subscriptionHandler: params.SubscriptionHandler,
		hazardHandler:       params.HazardHandler,
		registry:            params.Registry,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	{
		api.POST("/routes/check", r.routeHandler.CheckRoute)

		api.GET("/hazards", r.hazardHandler.ListActiveHazards)

		api.POST("/subscriptions", r.subscriptionHandler.CreateSubscription)
		api.GET("/subscriptions/:id", r.subscriptionHandler.GetSubscription)
		api.PUT("/subscriptions/:id", r.subscriptionHandler.UpdateSubscription)
		api.DELETE("/subscriptions/:id", r.subscriptionHandler.DeleteSubscription)
		api.GET("/users/:userId/subscriptions", r.subscriptionHandler.ListUserSubscriptions)
	}
}
