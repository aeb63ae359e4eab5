// Package worker runs the scheduled ingestion and alert passes.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/fx"

	"airscout/config"
	"airscout/internal/delivery"
	"airscout/internal/domain/lifecycle"
	"airscout/internal/usecase"
)

// ServerParams holds dependencies for the worker scheduler
type ServerParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Logger   *slog.Logger
	Clock    clockwork.Clock
	IngestUC usecase.IngestUsecase
	AlertUC  usecase.AlertUsecase
}

type workerServer struct {
	cfg      *config.Config
	logger   *slog.Logger
	clock    clockwork.Clock
	ingestUC usecase.IngestUsecase
	alertUC  usecase.AlertUsecase

	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer creates the pass scheduler. Each pass runs once at startup
// and then on its own interval; a failed pass waits for the next tick.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	srv := &workerServer{
		cfg:      params.Cfg,
		logger:   params.Logger,
		clock:    params.Clock,
		ingestUC: params.IngestUC,
		alertUC:  params.AlertUC,
		done:     make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve runs all passes until the context is cancelled.
func (s *workerServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer close(s.done)

	s.logger.Info("Starting pass scheduler",
		slog.Duration("permitInterval", s.cfg.Scheduler.PermitInterval),
		slog.Duration("schoolInterval", s.cfg.Scheduler.SchoolInterval),
		slog.Duration("trafficInterval", s.cfg.Scheduler.TrafficInterval),
		slog.Duration("alertInterval", s.cfg.Scheduler.AlertInterval),
		slog.Duration("pruneInterval", s.cfg.Scheduler.PruneInterval),
	)

	// The school pass seeds the roster the traffic override needs, so it
	// runs before the first traffic pass.
	s.runIngest(ctx, "schools", s.ingestUC.RunSchoolPass)
	s.runIngest(ctx, "permits", s.ingestUC.RunPermitPass)
	s.runIngest(ctx, "traffic", s.ingestUC.RunTrafficPass)

	permitTicker := s.clock.NewTicker(s.cfg.Scheduler.PermitInterval)
	defer permitTicker.Stop()
	schoolTicker := s.clock.NewTicker(s.cfg.Scheduler.SchoolInterval)
	defer schoolTicker.Stop()
	trafficTicker := s.clock.NewTicker(s.cfg.Scheduler.TrafficInterval)
	defer trafficTicker.Stop()
	alertTicker := s.clock.NewTicker(s.cfg.Scheduler.AlertInterval)
	defer alertTicker.Stop()
	pruneTicker := s.clock.NewTicker(s.cfg.Scheduler.PruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Pass scheduler stopped")

			return nil
		case <-permitTicker.Chan():
			s.runIngest(ctx, "permits", s.ingestUC.RunPermitPass)
		case <-schoolTicker.Chan():
			s.runIngest(ctx, "schools", s.ingestUC.RunSchoolPass)
		case <-trafficTicker.Chan():
			s.runIngest(ctx, "traffic", s.ingestUC.RunTrafficPass)
		case <-alertTicker.Chan():
			s.runAlerts(ctx)
		case <-pruneTicker.Chan():
			s.runIngest(ctx, "prune", s.ingestUC.RunPrunePass)
		}
	}
}

func (s *workerServer) runIngest(ctx context.Context, pass string, run func(context.Context) (*usecase.PassSummary, error)) {
	if ctx.Err() != nil {
		return
	}

	if _, err := run(ctx); err != nil {
		s.logger.Error("Pass failed",
			slog.String("pass", pass),
			slog.Any("error", err),
		)
	}
}

func (s *workerServer) runAlerts(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if _, err := s.alertUC.RunAlertPass(ctx); err != nil {
		s.logger.Error("Pass failed",
			slog.String("pass", "alerts"),
			slog.Any("error", err),
		)
	}
}

func (s *workerServer) stop(ctx context.Context) error {
	s.logger.Info("Shutting down pass scheduler")
	if s.cancel != nil {
		s.cancel()
	}

	select {
	case <-s.done:
	case <-ctx.Done():
	case <-time.After(lifecycle.DefaultTimeout):
	}

	return nil
}
