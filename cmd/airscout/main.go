package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"airscout/config"
	"airscout/internal/delivery"
	deliveryhttp "airscout/internal/delivery/http"
	"airscout/internal/delivery/http/middleware"
	"airscout/internal/delivery/http/router/handler"
	"airscout/internal/delivery/worker"
	"airscout/internal/domain/repository"
	"airscout/internal/domain/service"
	"airscout/internal/engine/schoolzone"
	logs "airscout/internal/infra/log"
	"airscout/internal/infra/notification"
	"airscout/internal/infra/persistence/postgres"
	"airscout/internal/infra/pubsub"
	"airscout/internal/infra/socrata"
	"airscout/internal/observability"
	"airscout/internal/store/memory"
	"airscout/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectMiddleware(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			clockwork.NewRealClock,
			prometheus.NewRegistry,
			newMetrics,
			newDatabase,
			newSchedule,
		),
		pubsub.Module,
	)
}

func newMetrics(registry *prometheus.Registry) *observability.Metrics {
	return observability.NewMetrics(registry)
}

// newDatabase opens the Postgres pool when one is configured. Without it
// the process falls back to the in-memory stores.
func newDatabase(params postgres.Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, nil
	}

	return postgres.New(params)
}

func newSchedule(cfg *config.Config) (*schoolzone.Schedule, error) {
	location, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return schoolzone.NewSchedule(nil, location), nil
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newHazardRepository,
			newSubscriptionRepository,
			newAlertRepository,
		),
	)
}

func newHazardRepository(db *gorm.DB) repository.HazardRepository {
	if db == nil {
		return memory.NewHazardStore()
	}

	return postgres.NewHazardRepository(db)
}

func newSubscriptionRepository(db *gorm.DB) repository.SubscriptionRepository {
	if db == nil {
		return memory.NewSubscriptionRepository()
	}

	return postgres.NewSubscriptionRepository(db)
}

func newAlertRepository(db *gorm.DB) repository.AlertRepository {
	if db == nil {
		return memory.NewAlertRepository()
	}

	return postgres.NewAlertRepository(db)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			newCityDataSource,
			newNotificationService,
		),
	)
}

func newCityDataSource(cfg *config.Config, logger *slog.Logger) (service.CityDataSource, error) {
	if cfg.DataPortal == nil {
		return nil, fmt.Errorf("dataPortal configuration is required")
	}

	return socrata.NewClient(cfg.DataPortal, logger), nil
}

// newNotificationService creates the push transport. Without Firebase
// credentials alerts are logged instead of sent.
func newNotificationService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.NotificationService, error) {
	if cfg.Firebase == nil {
		return notification.NewLogService(logger), nil
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewRouteService,
			impl.NewSubscriptionService,
			impl.NewHazardService,
			impl.NewIngestService,
			impl.NewAlertService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewRouteHandler,
			handler.NewSubscriptionHandler,
			handler.NewHazardHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				deliveryhttp.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
