package config

import (
	"fmt"
	"strings"

	"github.com/copytrader-io/copybot/cloud/factory"
	"github.com/copytrader-io/copybot/cloud/s3store"
)

// Validate fails fast on invalid configuration. Messages are written for
// operators: they name the offending variable and the allowed values.
func (s *Settings) Validate() error {
	if err := s.validateCloudBackend(); err != nil {
		return err
	}
	if err := s.validateObjects(); err != nil {
		return err
	}
	return s.validateEvents()
}

// validateCloudBackend enforces phase safety: the cloud backend stays local
// until the managed backends are explicitly enabled.
func (s *Settings) validateCloudBackend() error {
	switch s.CloudBackend {
	case "", factory.BackendLocal:
		return nil
	case "aws":
		return fmt.Errorf("CLOUD_BACKEND='aws' is not supported yet. Use CLOUD_BACKEND=local.")
	default:
		return fmt.Errorf("invalid CLOUD_BACKEND=%q. Allowed: 'local', 'aws'.", s.CloudBackend)
	}
}

func (s *Settings) validateObjects() error {
	switch s.Objects.Backend {
	case "", factory.BackendLocal:
		if s.Objects.Dir == "" {
			return fmt.Errorf("LOCAL_OBJECT_DIR cannot be empty when OBJECT_STORE_BACKEND=local")
		}
		return nil
	case factory.BackendS3:
		var missing []string
		if s.Objects.Region == "" {
			missing = append(missing, "AWS_REGION")
		}
		if s.Objects.Bucket == "" {
			missing = append(missing, "S3_OBJECT_BUCKET")
		}
		if s.Objects.Prefix == "" {
			missing = append(missing, "S3_OBJECT_PREFIX")
		}
		if len(missing) > 0 {
			return fmt.Errorf("S3 object store misconfigured. Missing: %s. Example:\n"+
				"  export OBJECT_STORE_BACKEND=s3\n"+
				"  export AWS_REGION=us-east-1\n"+
				"  export S3_OBJECT_BUCKET=polymarket-copy-bot-objects-dev-137097287791\n"+
				"  export S3_OBJECT_PREFIX=polymarket-copy-bot",
				strings.Join(missing, ", "))
		}

		norm := s3store.NormalizePrefix(s.Objects.Prefix)
		if norm == "" {
			return fmt.Errorf("S3_OBJECT_PREFIX cannot be empty (or only slashes)")
		}
		// Write back the normalized prefix so downstream consumers always
		// see a clean value.
		s.Objects.Prefix = norm
		return nil
	default:
		return fmt.Errorf("invalid OBJECT_STORE_BACKEND=%q. Allowed values: 'local', 's3'.", s.Objects.Backend)
	}
}

func (s *Settings) validateEvents() error {
	switch s.Events.Backend {
	case "", factory.BackendLocal:
		if s.Events.Dir == "" {
			return fmt.Errorf("LOCAL_EVENT_DIR cannot be empty when EVENT_PUBLISHER_BACKEND=local")
		}
		return nil
	case factory.BackendRedis:
		if s.Events.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when EVENT_PUBLISHER_BACKEND=redis")
		}
		return nil
	case factory.BackendWebhook:
		if s.Events.WebhookURL == "" {
			return fmt.Errorf("EVENT_WEBHOOK_URL is required when EVENT_PUBLISHER_BACKEND=webhook")
		}
		return nil
	default:
		return fmt.Errorf("invalid EVENT_PUBLISHER_BACKEND=%q. Allowed values: 'local', 'redis', 'webhook'.", s.Events.Backend)
	}
}
