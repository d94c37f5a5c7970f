// Package jobs hands demo lifecycle events to background consumers over
// Pub/Sub.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/chairlinked/api/internal/services"
)

// PubSubDemoEventPublisher publishes demo events ordered per demo, so a
// consumer never sees "unpublished" ahead of the "published" it follows.
type PubSubDemoEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

var _ services.DemoEventPublisher = (*PubSubDemoEventPublisher)(nil)

// NewPubSubDemoEventPublisher turns on message ordering for topic; call it
// before anything else publishes on the topic.
func NewPubSubDemoEventPublisher(topic *pubsub.Topic) (*PubSubDemoEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("jobs: demo events topic is required")
	}
	topic.EnableMessageOrdering = true
	return &PubSubDemoEventPublisher{topic: topic, marshal: json.Marshal}, nil
}

// PublishDemoEvent waits for the server ack and returns the message id.
func (p *PubSubDemoEventPublisher) PublishDemoEvent(ctx context.Context, event services.DemoEvent) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("jobs: demo event publisher not initialised")
	}
	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("jobs: encode %s event: %w", event.Type, err)
	}

	msg := &pubsub.Message{
		Data:        data,
		Attributes:  eventAttributes(event),
		OrderingKey: strings.TrimSpace(event.DemoID),
	}
	id, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		// a failed ordered publish pauses its key until resumed
		if msg.OrderingKey != "" {
			p.topic.ResumePublish(msg.OrderingKey)
		}
		return "", fmt.Errorf("jobs: publish %s event for demo %s: %w", event.Type, event.DemoID, err)
	}
	return id, nil
}

// eventAttributes lets subscriptions filter without decoding the payload.
func eventAttributes(event services.DemoEvent) map[string]string {
	attrs := make(map[string]string, 5)
	for key, value := range map[string]string{
		"eventId":   event.EventID,
		"eventType": event.Type,
		"demoId":    event.DemoID,
		"ownerId":   event.OwnerID,
		"status":    event.Status,
	} {
		if v := strings.TrimSpace(value); v != "" {
			attrs[key] = v
		}
	}
	return attrs
}
