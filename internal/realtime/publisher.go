package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

// Publisher pushes issue events onto a Redis pub/sub channel. Transport to
// browsers is handled elsewhere; the core only publishes.
type Publisher struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewPublisher constructs a Publisher. A nil client disables publishing.
func NewPublisher(client *redis.Client, channel string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, channel: channel, logger: logger}
}

// Publish serialises the event and pushes it to the channel.
func (p *Publisher) Publish(ctx context.Context, event models.IssueEvent) error {
	if p == nil || p.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal issue event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish issue event: %w", err)
	}
	return nil
}
