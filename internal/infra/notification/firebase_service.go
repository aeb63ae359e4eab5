package notification

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"airscout/internal/domain/service"
	"airscout/internal/errors"
)

// firebase caps multicast sends at 500 tokens per request
const maxBatchTokens = 500

type firebaseService struct {
	client *messaging.Client
}

// NewFirebaseService creates a new Firebase notification service instance
func NewFirebaseService(ctx context.Context, credentialsPath string) (service.NotificationService, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return &firebaseService{
		client: client,
	}, nil
}

// SendSingleNotification sends a push notification to a single device token
func (s *firebaseService) SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return errors.Wrap(err, "failed to send notification")
	}

	return nil
}

// SendBatchNotification sends push notifications to multiple device tokens
func (s *firebaseService) SendBatchNotification(ctx context.Context, tokens []string, title, body string, data map[string]string) (*service.BatchResult, error) {
	if len(tokens) == 0 {
		return &service.BatchResult{}, nil
	}
	if len(tokens) > maxBatchTokens {
		return nil, errors.Errorf("token count exceeds limit: %d (max %d)", len(tokens), maxBatchTokens)
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	response, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send multicast notification")
	}

	result := &service.BatchResult{
		SuccessCount: response.SuccessCount,
		FailureCount: response.FailureCount,
	}
	for idx, sendResponse := range response.Responses {
		if sendResponse.Error == nil {
			continue
		}
		if messaging.IsInvalidArgument(sendResponse.Error) || messaging.IsUnregistered(sendResponse.Error) {
			result.FailedTokens = append(result.FailedTokens, tokens[idx])
		}
	}

	return result, nil
}
