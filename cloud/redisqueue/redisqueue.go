// Package redisqueue implements the cloud.EventPublisher boundary on Redis
// pub/sub.
//
// Events are published as JSON to a per-topic channel. Publishes retry with
// exponential backoff on connection errors.
package redisqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/copytrader-io/copybot/cloud"
)

// DefaultChannelPrefix namespaces pub/sub channels: events for topic T go to
// "<prefix>:<T>".
const DefaultChannelPrefix = "copybot"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Config configures the Redis publisher.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// ChannelPrefix namespaces per-topic channels (default: copybot).
	ChannelPrefix string
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure (default 3).
	Retries int
}

// Publisher publishes events via Redis PUBLISH.
type Publisher struct {
	config Config
	client *goredis.Client
}

// record is the published JSON message shape, matching the local publisher's
// JSONL line shape so consumers can share a decoder.
type record struct {
	Topic string         `json:"topic"`
	Ts    float64        `json:"ts"`
	Event map[string]any `json:"event"`
}

// New creates a Redis publisher from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis publisher requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: invalid URL: %w", err)
	}

	if cfg.ChannelPrefix == "" {
		cfg.ChannelPrefix = DefaultChannelPrefix
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	}

	return &Publisher{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Channel returns the pub/sub channel for a topic.
func (p *Publisher) Channel(topic string) string {
	return p.config.ChannelPrefix + ":" + topic
}

// Publish implements cloud.EventPublisher. Retries with exponential backoff
// on failures.
func (p *Publisher) Publish(ctx context.Context, topic string, event map[string]any) error {
	if topic == "" {
		return errors.New("redis: topic must not be empty")
	}

	body, err := json.Marshal(record{
		Topic: topic,
		Ts:    float64(time.Now().UnixNano()) / float64(time.Second),
		Event: event,
	})
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	channel := p.Channel(topic)
	var lastErr error
	// attempts = 1 initial + retries
	attempts := 1 + p.config.Retries

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		// Exponential backoff before retries (not before first attempt)
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return fmt.Errorf("redis: context canceled during backoff: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		publishCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		lastErr = p.client.Publish(publishCtx, channel, body).Err()
		cancel()

		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// Flush implements cloud.EventPublisher. Publishes are synchronous, so this
// is a no-op.
func (p *Publisher) Flush(context.Context) error { return nil }

// Close releases the Redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Verify Publisher implements the boundary interface.
var _ cloud.EventPublisher = (*Publisher)(nil)
