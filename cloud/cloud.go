// Package cloud defines the boundary between copybot services and their
// storage, eventing, and secret backends.
//
// Services depend only on the interfaces here; the backend behind each is
// chosen once per process by the factory subpackage. Local backends write to
// the filesystem and read the environment; cloud backends publish to a queue
// or store objects in S3-compatible storage.
package cloud

import "context"

// WriteResult describes a completed object write.
type WriteResult struct {
	// URI is the backend-specific location of the written object
	// (filesystem path or s3:// URI).
	URI string `json:"uri"`
	// BytesWritten is the size of the stored blob.
	BytesWritten int64 `json:"bytes_written"`
	// ContentType is the MIME type recorded with the object, if any.
	ContentType string `json:"content_type,omitempty"`
}

// ObjectStore stores and retrieves named blobs under a configured prefix.
// Keys are logical, slash-separated paths; the backend maps them to its own
// naming scheme.
type ObjectStore interface {
	// Put durably persists data at the logical key.
	// Fails with ErrInvalidKey if the key violates naming rules and
	// ErrStorageUnavailable if the backend cannot be reached.
	Put(ctx context.Context, key string, data []byte, contentType string) (WriteResult, error)

	// Get retrieves the blob at the logical key.
	// Fails with ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is present at the logical key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Lister is an optional ObjectStore extension for enumerating keys.
// Read-only CLI surfaces use it when the backend provides it.
type Lister interface {
	// List returns all logical keys under the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// EventPublisher publishes structured observability events to a backend.
// Delivery is best-effort; at-least-once semantics are acceptable.
type EventPublisher interface {
	// Publish submits one event under the given topic.
	Publish(ctx context.Context, topic string, event map[string]any) error

	// Flush forces any buffered events to the backend.
	Flush(ctx context.Context) error

	// Close flushes and releases publisher resources.
	Close() error
}

// SecretProvider resolves named configuration secrets.
type SecretProvider interface {
	// Get returns the secret value and whether it was present and non-empty.
	Get(name string) (string, bool)

	// Require returns the secret value, or an error wrapping
	// ErrSecretNotFound if absent or empty.
	Require(name string) (string, error)
}

// Services bundles one instance of each boundary interface. It is the
// composition root: constructed once per process and threaded through
// dependent services.
type Services struct {
	Events  EventPublisher
	Objects ObjectStore
	Secrets SecretProvider
}

// Close flushes and closes the event publisher.
func (s *Services) Close() error {
	if s.Events == nil {
		return nil
	}
	return s.Events.Close()
}
