package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/chairlinked/api/internal/services"
)

func newTestTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	client, err := pubsub.NewClient(ctx, "chairlinked-test",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "demo-events")
	require.NoError(t, err)
	t.Cleanup(topic.Stop)
	return srv, topic
}

func TestPublishDemoEvent(t *testing.T) {
	srv, topic := newTestTopic(t)
	publisher, err := NewPubSubDemoEventPublisher(topic)
	require.NoError(t, err)
	require.True(t, topic.EnableMessageOrdering)

	event := services.DemoEvent{
		EventID:      "ev_1",
		Type:         services.DemoEventPublished,
		DemoID:       "demo-1",
		OwnerID:      "user-1",
		Status:       "published",
		PublishedURL: "https://sites.example.com/demos/demo-1/index.html",
		OccurredAt:   time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}
	id, err := publisher.PublishDemoEvent(context.Background(), event)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	messages := srv.Messages()
	require.Len(t, messages, 1)

	var payload services.DemoEvent
	require.NoError(t, json.Unmarshal(messages[0].Data, &payload))
	require.Equal(t, "demo-1", payload.DemoID)
	require.Equal(t, event.PublishedURL, payload.PublishedURL)
	require.Equal(t, map[string]string{
		"eventId":   "ev_1",
		"eventType": services.DemoEventPublished,
		"demoId":    "demo-1",
		"ownerId":   "user-1",
		"status":    "published",
	}, messages[0].Attributes)
}

func TestPublishDemoEventEncodeFailure(t *testing.T) {
	srv, topic := newTestTopic(t)
	publisher, err := NewPubSubDemoEventPublisher(topic)
	require.NoError(t, err)
	publisher.marshal = func(any) ([]byte, error) { return nil, errors.New("boom") }

	_, err = publisher.PublishDemoEvent(context.Background(), services.DemoEvent{Type: services.DemoEventPublished})
	require.ErrorContains(t, err, "encode")
	require.Empty(t, srv.Messages())
}

func TestEventAttributesSkipBlankValues(t *testing.T) {
	attrs := eventAttributes(services.DemoEvent{Type: services.DemoEventPublished, DemoID: "  ", OwnerID: "user-1"})
	require.Equal(t, map[string]string{"eventType": services.DemoEventPublished, "ownerId": "user-1"}, attrs)
}

func TestNewPubSubDemoEventPublisherRequiresTopic(t *testing.T) {
	_, err := NewPubSubDemoEventPublisher(nil)
	require.Error(t, err)

	var nilPublisher *PubSubDemoEventPublisher
	_, err = nilPublisher.PublishDemoEvent(context.Background(), services.DemoEvent{})
	require.Error(t, err)
}
