package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// PubSubSender hands notifications to the email worker through a topic.
type PubSubSender struct {
	publisher publisher
}

// NewPubSubSender wraps a Pub/Sub publisher.
func NewPubSubSender(p *gcppubsub.Publisher) (*PubSubSender, error) {
	if p == nil {
		return nil, errors.New("pubsub publisher required")
	}
	return &PubSubSender{publisher: &gcpPublisher{Publisher: p}}, nil
}

// Send publishes n as JSON and waits for the server ack.
func (s *PubSubSender) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := &gcppubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"kind":       n.Kind.String(),
			"session_id": n.SessionID,
		},
	}
	if _, err := s.publisher.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.Publisher.Publish(ctx, msg)
}
