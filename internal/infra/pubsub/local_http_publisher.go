package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"airscout/internal/domain/service"
)

// localHTTPPublisher implements EventPublisher by sending HTTP POST
// requests to a local endpoint, simulating Pub/Sub push behavior for
// development
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// PubSubPushMessage mimics the format Google Pub/Sub uses when pushing
// to HTTP endpoints
type PubSubPushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewLocalHTTPPublisher creates a new local HTTP publisher for development
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// PublishHazardEvent posts a hazard event to the local endpoint
func (p *localHTTPPublisher) PublishHazardEvent(ctx context.Context, event *service.HazardEvent) error {
	attributes := map[string]string{
		"event_type": "hazard",
		"source_id":  event.SourceID,
		"kind":       event.Kind,
	}

	return p.publish(ctx, event, attributes)
}

// PublishAlertEvent posts an alert event to the local endpoint
func (p *localHTTPPublisher) PublishAlertEvent(ctx context.Context, event *service.AlertEvent) error {
	attributes := map[string]string{
		"event_type":       "alert",
		"user_id":          event.UserID,
		"hazard_source_id": event.HazardSourceID,
	}

	return p.publish(ctx, event, attributes)
}

func (p *localHTTPPublisher) publish(ctx context.Context, event any, attributes map[string]string) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	pushMsg := PubSubPushMessage{
		Subscription: "projects/local/subscriptions/hazard-events-sub",
	}
	pushMsg.Message.Data = base64.StdEncoding.EncodeToString(eventData)
	pushMsg.Message.MessageID = uuid.NewString()
	pushMsg.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)
	pushMsg.Message.Attributes = attributes

	body, err := json.Marshal(pushMsg)
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to post event to local endpoint")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("local endpoint returned %d", resp.StatusCode)
	}

	p.logger.Debug("[LocalPubSub] Event published",
		slog.String("endpoint", p.endpoint),
		slog.String("event_type", attributes["event_type"]),
	)

	return nil
}

// Close is a no-op for the local publisher
func (p *localHTTPPublisher) Close() error {
	return nil
}
