package service

import "context"

// NotificationService defines the interface for push notification delivery
type NotificationService interface {
	// SendSingleNotification sends a notification to a single device
	SendSingleNotification(ctx context.Context, token string, title string, body string, data map[string]string) error

	// SendBatchNotification sends a notification to multiple devices
	SendBatchNotification(ctx context.Context, tokens []string, title string, body string, data map[string]string) (*BatchResult, error)
}

// BatchResult contains the result of a batch notification send
type BatchResult struct {
	SuccessCount int
	FailureCount int
	FailedTokens []string
}
