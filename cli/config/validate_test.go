package config_test

import (
	"strings"
	"testing"

	"github.com/copytrader-io/copybot/cli/config"
)

func TestValidate_CloudBackend(t *testing.T) {
	s := config.Default()
	s.CloudBackend = ""
	if err := s.Validate(); err != nil {
		t.Errorf("empty cloud backend should default to local: %v", err)
	}

	s = config.Default()
	s.CloudBackend = "aws"
	err := s.Validate()
	if err == nil {
		t.Fatal("CLOUD_BACKEND=aws should be rejected")
	}
	if !strings.Contains(err.Error(), "CLOUD_BACKEND") {
		t.Errorf("message should name CLOUD_BACKEND for operators, got %q", err)
	}
	if !strings.Contains(err.Error(), "CLOUD_BACKEND=local") {
		t.Errorf("message should tell the operator the fix, got %q", err)
	}

	s = config.Default()
	s.CloudBackend = "gcp"
	if err := s.Validate(); err == nil {
		t.Error("unknown cloud backend should be rejected")
	}
}

func TestValidate_S3RequiresSettings(t *testing.T) {
	s := config.Default()
	s.Objects.Backend = "s3"
	s.Objects.Region = ""
	s.Objects.Bucket = ""
	s.Objects.Prefix = ""

	err := s.Validate()
	if err == nil {
		t.Fatal("S3 backend without settings should be rejected")
	}
	for _, name := range []string{"AWS_REGION", "S3_OBJECT_BUCKET", "S3_OBJECT_PREFIX"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("message should name missing %s, got %q", name, err)
		}
	}
}

func TestValidate_S3NormalizesPrefix(t *testing.T) {
	s := config.Default()
	s.Objects.Backend = "s3"
	s.Objects.Bucket = "bkt"
	s.Objects.Prefix = "/polymarket-copy-bot/"

	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if s.Objects.Prefix != "polymarket-copy-bot" {
		t.Errorf("prefix should be normalized, got %q", s.Objects.Prefix)
	}
}

func TestValidate_S3SlashOnlyPrefixRejected(t *testing.T) {
	s := config.Default()
	s.Objects.Backend = "s3"
	s.Objects.Bucket = "bkt"
	s.Objects.Prefix = "///"

	if err := s.Validate(); err == nil {
		t.Error("slash-only prefix should be rejected")
	}
}

func TestValidate_UnknownObjectBackend(t *testing.T) {
	s := config.Default()
	s.Objects.Backend = "gcs"
	if err := s.Validate(); err == nil {
		t.Error("unknown object store backend should be rejected")
	}
}

func TestValidate_LocalDirsRequired(t *testing.T) {
	s := config.Default()
	s.Objects.Dir = ""
	if err := s.Validate(); err == nil {
		t.Error("empty local object dir should be rejected")
	}

	s = config.Default()
	s.Events.Dir = ""
	if err := s.Validate(); err == nil {
		t.Error("empty local event dir should be rejected")
	}
}

func TestValidate_EventBackendRequirements(t *testing.T) {
	s := config.Default()
	s.Events.Backend = "redis"
	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "REDIS_URL") {
		t.Errorf("redis backend without URL should name REDIS_URL, got %v", err)
	}
	s.Events.RedisURL = "redis://localhost:6379"
	if err := s.Validate(); err != nil {
		t.Errorf("redis backend with URL should pass: %v", err)
	}

	s = config.Default()
	s.Events.Backend = "webhook"
	err = s.Validate()
	if err == nil || !strings.Contains(err.Error(), "EVENT_WEBHOOK_URL") {
		t.Errorf("webhook backend without URL should name EVENT_WEBHOOK_URL, got %v", err)
	}
	s.Events.WebhookURL = "https://hooks.example.com"
	if err := s.Validate(); err != nil {
		t.Errorf("webhook backend with URL should pass: %v", err)
	}

	s = config.Default()
	s.Events.Backend = "kafka"
	if err := s.Validate(); err == nil {
		t.Error("unknown event backend should be rejected")
	}
}
