package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSub creates a Pub/Sub client for projectID
func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pubsub project id is empty")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return client, nil
}

type IUploadPubSub interface {
	repository.IUploadNotifier
	Publish(ctx context.Context, topic string, payload []byte, attributes map[string]string) (string, error)
}

// UploadPubSub announces uploaded shorts on a topic
type UploadPubSub struct {
	PubSubClient *pubsub.Client
	TopicName    string
}

func NewUploadPubSub(pubSubClient *pubsub.Client, topicName string) IUploadPubSub {
	return &UploadPubSub{
		PubSubClient: pubSubClient,
		TopicName:    topicName,
	}
}

// NotifyUpload publishes event as JSON with the video id as attribute
func (p *UploadPubSub) NotifyUpload(ctx context.Context, event *model.UploadEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode upload event: %w", err)
	}
	_, err = p.Publish(ctx, p.TopicName, payload, map[string]string{
		"video_id": event.VideoID,
		"saved":    fmt.Sprint(event.Saved),
	})
	return err
}

func (p *UploadPubSub) Publish(
	ctx context.Context,
	topicName string,
	payload []byte,
	attributes map[string]string,
) (string, error) {
	if p.PubSubClient == nil {
		return "", fmt.Errorf("pubsub client is not configured")
	}
	msg := &pubsub.Message{
		Data:       payload,
		Attributes: attributes,
	}

	topic := p.PubSubClient.Topic(topicName)
	defer topic.Stop()

	// Create the topic if it doesn't exist.
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", fmt.Errorf("check topic %s: %w", topicName, err)
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if _, err = p.PubSubClient.CreateTopic(ctx, topicName); err != nil {
			return "", fmt.Errorf("create topic %s: %w", topicName, err)
		}
	}

	serverID, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", topicName, err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"topic":    topicName,
		"serverID": serverID,
	}).Info("Message published")
	return serverID, nil
}
