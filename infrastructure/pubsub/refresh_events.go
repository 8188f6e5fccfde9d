package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"

	"creator-dashboard/domain/model"
	"creator-dashboard/infrastructure/logger"
)

// refreshEvent is the published payload for a completed cache refresh.
type refreshEvent struct {
	EventID string    `json:"event_id"`
	Owner   string    `json:"owner"`
	Kind    string    `json:"kind"`
	Count   int       `json:"count"`
	At      time.Time `json:"at"`
}

// RefreshPublisher publishes refresh-completed events to a Pub/Sub
// topic so downstream consumers (exports, notifications) can react
// without polling the mirror store.
type RefreshPublisher struct {
	client    *pubsub.Client
	topicName string
}

func NewRefreshPublisher(client *pubsub.Client, topicName string) *RefreshPublisher {
	return &RefreshPublisher{client: client, topicName: topicName}
}

func (p *RefreshPublisher) PublishRefresh(ctx context.Context, owner string, kind model.RecordKind, count int) error {
	payload, err := json.Marshal(refreshEvent{
		EventID: uuid.NewString(),
		Owner:   owner,
		Kind:    string(kind),
		Count:   count,
		At:      time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	topic := p.client.Topic(p.topicName)
	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		logger.GetLogger().WithField("topic", p.topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.client.CreateTopic(ctx, p.topicName); err != nil {
			return err
		}
	}

	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return err
	}
	logger.GetLogger().WithField("server ID", serverID).Info("Refresh event published")
	return nil
}
