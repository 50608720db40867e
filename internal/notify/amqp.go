package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/SurajMnnit/VideoStreamer/internal/video"
	"github.com/SurajMnnit/VideoStreamer/shared/rabbitmq"
)

const publishTimeout = 5 * time.Second

// AMQPNotifier mirrors progress events onto a RabbitMQ topic exchange for
// external subscribers (mobile push, audit consumers). Routing key is
// "user.<ownerID>" so a consumer can bind one owner's stream or all of them
// with a wildcard. Publish failures are logged and swallowed; the pipeline
// never waits on the broker.
type AMQPNotifier struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewAMQPNotifier wraps a connected RabbitMQ client
func NewAMQPNotifier(client *rabbitmq.Client, logger *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		client: client,
		logger: logger,
	}
}

// Publish implements Notifier
func (n *AMQPNotifier) Publish(ownerID string, event video.ProgressEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to marshal progress event",
			slog.String("video_id", event.VideoID),
			slog.Any("error", err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := n.client.Publish(ctx, "user."+ownerID, body, "application/json"); err != nil {
		n.logger.Warn("Failed to publish progress event to RabbitMQ",
			slog.String("owner_id", ownerID),
			slog.String("video_id", event.VideoID),
			slog.Any("error", err),
		)
	}
}
