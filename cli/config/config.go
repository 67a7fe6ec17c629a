package config

import (
	"os"
	"strings"

	"github.com/copytrader-io/copybot/cloud/factory"
	"github.com/copytrader-io/copybot/cloud/redisqueue"
	"github.com/copytrader-io/copybot/cloud/s3store"
	"github.com/copytrader-io/copybot/cloud/webhook"
)

// Defaults for local backends.
const (
	DefaultLocalEventDir  = "logs/cloud_events"
	DefaultLocalObjectDir = "simulation_results/objects"
	DefaultAWSRegion      = "us-east-1"
	DefaultS3Prefix       = "polymarket-copy-bot"
)

// Settings is the resolved runtime configuration for all services.
// Precedence: CLI flags > environment > config file > defaults.
type Settings struct {
	// CloudBackend must remain "local"; "aws" is reserved for a later
	// phase and rejected at validation.
	CloudBackend string `yaml:"cloud_backend"`

	Objects ObjectsSettings `yaml:"objects"`
	Events  EventsSettings  `yaml:"events"`
}

// ObjectsSettings configures the object store backend.
type ObjectsSettings struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	Region      string `yaml:"region"`
	Bucket      string `yaml:"bucket"`
	Prefix      string `yaml:"prefix"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// EventsSettings configures the event publisher backend.
type EventsSettings struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	FlushCount int    `yaml:"flush_count"`
	RedisURL   string `yaml:"redis_url"`
	WebhookURL string `yaml:"webhook_url"`
}

// Default returns settings with all defaults applied.
func Default() *Settings {
	return &Settings{
		CloudBackend: factory.BackendLocal,
		Objects: ObjectsSettings{
			Backend: factory.BackendLocal,
			Dir:     DefaultLocalObjectDir,
			Region:  DefaultAWSRegion,
			Prefix:  DefaultS3Prefix,
		},
		Events: EventsSettings{
			Backend: factory.BackendLocal,
			Dir:     DefaultLocalEventDir,
		},
	}
}

// ApplyEnv overlays recognized environment variables onto s.
// Values are trimmed; empty env vars are ignored.
func (s *Settings) ApplyEnv() {
	setEnv := func(dst *string, name string) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	setLower := func(dst *string, name string) {
		if v := strings.ToLower(strings.TrimSpace(os.Getenv(name))); v != "" {
			*dst = v
		}
	}

	setLower(&s.CloudBackend, "CLOUD_BACKEND")
	setLower(&s.Objects.Backend, "OBJECT_STORE_BACKEND")
	setEnv(&s.Objects.Dir, "LOCAL_OBJECT_DIR")
	setEnv(&s.Objects.Region, "AWS_REGION")
	setEnv(&s.Objects.Bucket, "S3_OBJECT_BUCKET")
	setEnv(&s.Objects.Prefix, "S3_OBJECT_PREFIX")
	setLower(&s.Events.Backend, "EVENT_PUBLISHER_BACKEND")
	setEnv(&s.Events.Dir, "LOCAL_EVENT_DIR")
	setEnv(&s.Events.RedisURL, "REDIS_URL")
	setEnv(&s.Events.WebhookURL, "EVENT_WEBHOOK_URL")
}

// FactoryConfig converts validated settings into the factory's backend
// configuration.
func (s *Settings) FactoryConfig() factory.Config {
	return factory.Config{
		CloudBackend:       s.CloudBackend,
		ObjectStoreBackend: s.Objects.Backend,
		LocalObjectDir:     s.Objects.Dir,
		S3: s3store.Config{
			Bucket:       s.Objects.Bucket,
			Prefix:       s.Objects.Prefix,
			Region:       s.Objects.Region,
			Endpoint:     s.Objects.Endpoint,
			UsePathStyle: s.Objects.S3PathStyle,
		},
		EventPublisherBackend: s.Events.Backend,
		LocalEventDir:         s.Events.Dir,
		EventFlushCount:       s.Events.FlushCount,
		Redis:                 redisqueue.Config{URL: s.Events.RedisURL},
		Webhook:               webhook.Config{URL: s.Events.WebhookURL},
	}
}
