package factory_test

import (
	"strings"
	"testing"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/cloud/factory"
	"github.com/copytrader-io/copybot/cloud/redisqueue"
	"github.com/copytrader-io/copybot/cloud/webhook"
)

func localConfig(t *testing.T) factory.Config {
	t.Helper()
	return factory.Config{
		LocalObjectDir: t.TempDir(),
		LocalEventDir:  t.TempDir(),
	}
}

func TestNew_DefaultsToLocal(t *testing.T) {
	services, err := factory.New(t.Context(), localConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = services.Close() }()

	if _, ok := services.Objects.(*cloud.LocalObjectStore); !ok {
		t.Errorf("expected local object store, got %T", services.Objects)
	}
	if _, ok := services.Events.(*cloud.LocalEventPublisher); !ok {
		t.Errorf("expected local event publisher, got %T", services.Events)
	}
	if _, ok := services.Secrets.(*cloud.EnvSecretProvider); !ok {
		t.Errorf("expected env secret provider, got %T", services.Secrets)
	}
}

func TestNew_ExplicitLocalBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.CloudBackend = factory.BackendLocal
	cfg.ObjectStoreBackend = factory.BackendLocal
	cfg.EventPublisherBackend = factory.BackendLocal

	services, err := factory.New(t.Context(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_ = services.Close()
}

func TestNew_RejectsNonLocalCloudBackend(t *testing.T) {
	for _, backend := range []string{"aws", "gcp", "azure"} {
		cfg := localConfig(t)
		cfg.CloudBackend = backend

		_, err := factory.New(t.Context(), cfg)
		if err == nil {
			t.Errorf("CloudBackend=%q should be rejected", backend)
			continue
		}
		if !strings.Contains(err.Error(), "CLOUD_BACKEND") {
			t.Errorf("error should name CLOUD_BACKEND for operators, got %q", err)
		}
	}
}

func TestNew_RejectsUnknownObjectStoreBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.ObjectStoreBackend = "gcs"

	if _, err := factory.New(t.Context(), cfg); err == nil {
		t.Error("unknown object store backend should be rejected")
	}
}

func TestNew_RejectsUnknownEventPublisherBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.EventPublisherBackend = "kafka"

	if _, err := factory.New(t.Context(), cfg); err == nil {
		t.Error("unknown event publisher backend should be rejected")
	}
}

func TestNew_RedisPublisherBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.EventPublisherBackend = factory.BackendRedis
	cfg.Redis = redisqueue.Config{URL: "redis://localhost:6379"}

	services, err := factory.New(t.Context(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = services.Close() }()

	if _, ok := services.Events.(*redisqueue.Publisher); !ok {
		t.Errorf("expected redis publisher, got %T", services.Events)
	}
}

func TestNew_RedisBackendRequiresURL(t *testing.T) {
	cfg := localConfig(t)
	cfg.EventPublisherBackend = factory.BackendRedis

	if _, err := factory.New(t.Context(), cfg); err == nil {
		t.Error("redis backend without URL should be rejected")
	}
}

func TestNew_WebhookPublisherBackend(t *testing.T) {
	cfg := localConfig(t)
	cfg.EventPublisherBackend = factory.BackendWebhook
	cfg.Webhook = webhook.Config{URL: "http://localhost:9999/events"}

	services, err := factory.New(t.Context(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() { _ = services.Close() }()

	if _, ok := services.Events.(*webhook.Publisher); !ok {
		t.Errorf("expected webhook publisher, got %T", services.Events)
	}
}

func TestServices_CloseFlushesPublisher(t *testing.T) {
	services, err := factory.New(t.Context(), localConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := services.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
