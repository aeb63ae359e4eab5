package notification

import (
	"context"
	"log/slog"

	"airscout/internal/domain/service"
)

// logService writes notifications to the log instead of a transport.
// Used when Firebase credentials are not configured and in dry-run
// deployments.
type logService struct {
	logger *slog.Logger
}

// NewLogService creates a notification service that only logs.
func NewLogService(logger *slog.Logger) service.NotificationService {
	return &logService{logger: logger}
}

func (s *logService) SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	s.logger.InfoContext(ctx, "notification (log only)",
		slog.String("token", token),
		slog.String("title", title),
		slog.String("body", body),
		slog.Any("data", data),
	)

	return nil
}

func (s *logService) SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (*service.BatchResult, error) {
	for _, token := range tokens {
		if err := s.SendSingleNotification(ctx, token, title, body, data); err != nil {
			return nil, err
		}
	}

	return &service.BatchResult{SuccessCount: len(tokens)}, nil
}
