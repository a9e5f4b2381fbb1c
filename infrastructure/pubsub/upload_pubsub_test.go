package pubsub_test

import (
	"context"
	"encoding/json"
	"testing"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/pubsub"

	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestNotifier(t *testing.T) (pubsub.IUploadPubSub, *pstest.Server) {
	t.Helper()
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewPubSub(ctx, "insta-auto", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return pubsub.NewUploadPubSub(client, "shorts-uploaded"), srv
}

func TestUploadPubSub_NotifyUpload(t *testing.T) {
	notifier, srv := newTestNotifier(t)

	event := &model.UploadEvent{
		VideoID:    "abc123",
		URL:        "https://www.youtube.com/shorts/abc123",
		Title:      "Sunset",
		ReelURL:    "https://cdn.example.com/1.mp4",
		Row:        2,
		UploadedAt: "2026-10-17 12:30:00",
		Saved:      true,
	}
	require.NoError(t, notifier.NotifyUpload(context.Background(), event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "abc123", msgs[0].Attributes["video_id"])
	assert.Equal(t, "true", msgs[0].Attributes["saved"])

	var got model.UploadEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, *event, got)
}

func TestUploadPubSub_ExistingTopic(t *testing.T) {
	notifier, srv := newTestNotifier(t)
	ctx := context.Background()

	_, err := notifier.Publish(ctx, "shorts-uploaded", []byte("one"), nil)
	require.NoError(t, err)
	_, err = notifier.Publish(ctx, "shorts-uploaded", []byte("two"), nil)
	require.NoError(t, err)

	assert.Len(t, srv.Messages(), 2)
}

func TestNewPubSub_EmptyProject(t *testing.T) {
	_, err := pubsub.NewPubSub(context.Background(), "")
	assert.Error(t, err)
}

func TestUploadPubSub_NilClient(t *testing.T) {
	notifier := pubsub.NewUploadPubSub(nil, "shorts-uploaded")
	assert.NotNil(t, notifier)
	assert.Error(t, notifier.NotifyUpload(context.Background(), &model.UploadEvent{VideoID: "x"}))
}
