package cloud

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for boundary failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates the object does not exist at the given key.
	ErrNotFound = errors.New("object not found")

	// ErrInvalidKey indicates the key violates backend naming rules.
	ErrInvalidKey = errors.New("invalid object key")

	// ErrStorageUnavailable indicates the backend cannot be reached
	// (network failure, DNS, timeout).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAccessDenied indicates the backend rejected the caller's
	// credentials or permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrThrottled indicates backend rate limiting.
	ErrThrottled = errors.New("rate limited")

	// ErrSecretNotFound indicates a required secret is absent or empty.
	ErrSecretNotFound = errors.New("secret not found")
)

// StorageError wraps an underlying backend error with classification.
// The original error stays in the chain for errors.As inspection.
type StorageError struct {
	// Kind is the sentinel error for classification.
	Kind error
	// Op is the operation that failed ("put", "get", "exists", "list").
	Op string
	// Key is the logical object key involved, if any.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for chain traversal.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// NewStorageError creates a classified storage error.
func NewStorageError(kind error, op, key string, err error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Key: key, Err: err}
}

// WrapStorageError classifies err and wraps it for the given operation.
// Returns nil if err is nil. Errors already carrying a classification are
// returned unchanged.
func WrapStorageError(err error, op, key string) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return NewStorageError(Classify(err), op, key, err)
}

// Classify determines the sentinel for the given backend error.
// Classification falls back to message patterns for errors the AWS SDK and
// the OS surface as opaque strings.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrStorageUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "no such file", "does not exist", "not found", "nosuchkey", "404"):
		return ErrNotFound
	case containsAny(msg, "accessdenied", "access denied", "forbidden", "403", "permission denied",
		"nocredentialproviders", "invalidaccesskeyid", "signaturedoesnotmatch", "expiredtoken", "401"):
		return ErrAccessDenied
	case containsAny(msg, "slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"):
		return ErrThrottled
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "connection refused",
		"no route to host", "network unreachable", "dial tcp", "no such host"):
		return ErrStorageUnavailable
	default:
		return ErrStorageUnavailable
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ValidateKey checks a logical object key against the naming rules shared by
// all backends: non-empty, relative, slash-separated, no traversal.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return NewStorageError(ErrInvalidKey, "validate", key, errors.New("key is empty"))
	case strings.HasPrefix(key, "/"):
		return NewStorageError(ErrInvalidKey, "validate", key, errors.New("key must be relative"))
	case strings.Contains(key, "\\"):
		return NewStorageError(ErrInvalidKey, "validate", key, errors.New("key must use forward slashes"))
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return NewStorageError(ErrInvalidKey, "validate", key, errors.New("key must not traverse directories"))
		}
	}
	return nil
}
