// Package factory builds the cloud.Services composition root from backend
// configuration.
//
// The cloud backend as a whole must remain "local": secrets stay env-based
// and the service container is assembled in-process. Within that, the object
// store may opt into S3 and the event publisher may opt into a Redis queue or
// a webhook.
package factory

import (
	"context"
	"fmt"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/cloud/redisqueue"
	"github.com/copytrader-io/copybot/cloud/s3store"
	"github.com/copytrader-io/copybot/cloud/webhook"
)

// Backend selector values.
const (
	BackendLocal   = "local"
	BackendS3      = "s3"
	BackendRedis   = "redis"
	BackendWebhook = "webhook"
)

// Config selects and configures the backend behind each boundary interface.
// Empty selectors mean local.
type Config struct {
	// CloudBackend must be "local" (or empty). Any other value is rejected.
	CloudBackend string

	// ObjectStoreBackend is "local" or "s3".
	ObjectStoreBackend string
	// LocalObjectDir is the base directory for the local object store.
	LocalObjectDir string
	// S3 configures the S3 object store (when ObjectStoreBackend is "s3").
	S3 s3store.Config

	// EventPublisherBackend is "local", "redis", or "webhook".
	EventPublisherBackend string
	// LocalEventDir is the base directory for local JSONL events.
	LocalEventDir string
	// EventFlushCount overrides the local publisher's flush threshold.
	EventFlushCount int
	// Redis configures the Redis publisher (when EventPublisherBackend is
	// "redis").
	Redis redisqueue.Config
	// Webhook configures the webhook publisher (when EventPublisherBackend
	// is "webhook").
	Webhook webhook.Config
}

// New constructs the service container. Construct once per process and
// thread through dependent services.
func New(ctx context.Context, cfg Config) (*cloud.Services, error) {
	if cfg.CloudBackend != "" && cfg.CloudBackend != BackendLocal {
		return nil, fmt.Errorf(
			"CLOUD_BACKEND=%q is not supported; use CLOUD_BACKEND=local", cfg.CloudBackend)
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := newEventPublisher(cfg)
	if err != nil {
		return nil, err
	}

	return &cloud.Services{
		Events:  events,
		Objects: objects,
		Secrets: cloud.NewEnvSecretProvider(),
	}, nil
}

func newObjectStore(ctx context.Context, cfg Config) (cloud.ObjectStore, error) {
	switch cfg.ObjectStoreBackend {
	case "", BackendLocal:
		return cloud.NewLocalObjectStore(cfg.LocalObjectDir)
	case BackendS3:
		return s3store.New(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf(
			"OBJECT_STORE_BACKEND=%q is not supported; use local or s3", cfg.ObjectStoreBackend)
	}
}

func newEventPublisher(cfg Config) (cloud.EventPublisher, error) {
	switch cfg.EventPublisherBackend {
	case "", BackendLocal:
		return cloud.NewLocalEventPublisher(cloud.LocalPublisherConfig{
			Dir:        cfg.LocalEventDir,
			FlushCount: cfg.EventFlushCount,
		})
	case BackendRedis:
		return redisqueue.New(cfg.Redis)
	case BackendWebhook:
		return webhook.New(cfg.Webhook)
	default:
		return nil, fmt.Errorf(
			"EVENT_PUBLISHER_BACKEND=%q is not supported; use local, redis, or webhook",
			cfg.EventPublisherBackend)
	}
}
