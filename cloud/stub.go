package cloud

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// MemObjectStore is an in-memory ObjectStore for testing.
type MemObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	// FailPut, when set, is returned by Put to simulate backend failures.
	FailPut error
}

// NewMemObjectStore creates an empty in-memory store.
func NewMemObjectStore() *MemObjectStore {
	return &MemObjectStore{objects: make(map[string][]byte)}
}

// Put implements ObjectStore.
func (s *MemObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, WrapStorageError(err, "put", key)
	}
	if err := ValidateKey(key); err != nil {
		return WriteResult{}, err
	}
	if s.FailPut != nil {
		return WriteResult{}, WrapStorageError(s.FailPut, "put", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return WriteResult{URI: "mem://" + key, BytesWritten: int64(len(data)), ContentType: contentType}, nil
}

// Get implements ObjectStore.
func (s *MemObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapStorageError(err, "get", key)
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, NewStorageError(ErrNotFound, "get", key, errors.New("no such object"))
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

// Exists implements ObjectStore.
func (s *MemObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, WrapStorageError(err, "exists", key)
	}
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// List implements Lister.
func (s *MemObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of stored objects.
func (s *MemObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// StubPublisher records published events for testing.
type StubPublisher struct {
	mu       sync.Mutex
	Records  []StubPublishRecord
	Flushes  int
	Closed   bool
	// FailPublish, when set, is returned by Publish.
	FailPublish error
}

// StubPublishRecord is one recorded publish call.
type StubPublishRecord struct {
	Topic string
	Event map[string]any
}

// NewStubPublisher creates an empty recording publisher.
func NewStubPublisher() *StubPublisher {
	return &StubPublisher{}
}

// Publish implements EventPublisher by recording the call.
func (p *StubPublisher) Publish(ctx context.Context, topic string, event map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailPublish != nil {
		return p.FailPublish
	}
	p.Records = append(p.Records, StubPublishRecord{Topic: topic, Event: event})
	return nil
}

// Flush implements EventPublisher.
func (p *StubPublisher) Flush(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Flushes++
	return nil
}

// Close implements EventPublisher.
func (p *StubPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// ByType returns recorded events whose "type" field equals typ.
func (p *StubPublisher) ByType(typ string) []StubPublishRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []StubPublishRecord
	for _, r := range p.Records {
		if t, ok := r.Event["type"].(string); ok && t == typ {
			out = append(out, r)
		}
	}
	return out
}

// Verify stub implementations satisfy the boundary interfaces.
var (
	_ ObjectStore    = (*MemObjectStore)(nil)
	_ Lister         = (*MemObjectStore)(nil)
	_ EventPublisher = (*StubPublisher)(nil)
)
