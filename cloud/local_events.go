package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultFlushCount is the buffered-event threshold that triggers an
// automatic flush in the local publisher.
const DefaultFlushCount = 32

// eventRecord is the on-disk JSONL line shape for published events.
type eventRecord struct {
	Topic string         `json:"topic"`
	Ts    float64        `json:"ts"`
	Event map[string]any `json:"event"`
}

// LocalPublisherConfig configures a LocalEventPublisher.
type LocalPublisherConfig struct {
	// Dir is the base directory for event files (required).
	Dir string
	// FlushCount is the buffered-event count that triggers a flush.
	// Zero means DefaultFlushCount.
	FlushCount int
}

// LocalEventPublisher writes events as newline-delimited JSON under a base
// directory, partitioned by topic and UTC day:
//
//	<dir>/<topic>/<YYYY-MM-DD>.jsonl
//
// Events are buffered and flushed on a count threshold, on Flush, and on
// Close. Within a process this gives at-least-once delivery; a crash loses
// at most one buffer, which is acceptable for observability events.
type LocalEventPublisher struct {
	config LocalPublisherConfig

	mu     sync.Mutex
	buffer []eventRecord
	closed bool
}

// NewLocalEventPublisher creates a local JSONL publisher.
// The base directory is created if missing.
func NewLocalEventPublisher(cfg LocalPublisherConfig) (*LocalEventPublisher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("local event publisher requires a base directory")
	}
	if cfg.FlushCount <= 0 {
		cfg.FlushCount = DefaultFlushCount
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create event dir %s: %w", cfg.Dir, err)
	}
	return &LocalEventPublisher{
		config: cfg,
		buffer: make([]eventRecord, 0, cfg.FlushCount),
	}, nil
}

// Publish implements EventPublisher. The event is buffered; when the buffer
// reaches the flush threshold it is written out synchronously.
func (p *LocalEventPublisher) Publish(ctx context.Context, topic string, event map[string]any) error {
	if topic == "" {
		return fmt.Errorf("publish: topic must not be empty")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publish: publisher is closed")
	}

	p.buffer = append(p.buffer, eventRecord{
		Topic: topic,
		Ts:    float64(time.Now().UnixNano()) / float64(time.Second),
		Event: event,
	})
	if len(p.buffer) >= p.config.FlushCount {
		return p.flushLocked(ctx)
	}
	return nil
}

// Flush implements EventPublisher.
func (p *LocalEventPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.flushLocked(ctx)
}

// Close implements EventPublisher. Flushes remaining events; further
// publishes fail.
func (p *LocalEventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	err := p.flushLocked(context.Background())
	p.closed = true
	return err
}

// flushLocked appends buffered records to their topic/day files.
// The buffer is preserved on failure so a retry can re-flush.
func (p *LocalEventPublisher) flushLocked(ctx context.Context) error {
	if len(p.buffer) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Group by destination file to keep one open file per topic/day.
	grouped := make(map[string][]eventRecord)
	var order []string
	for _, rec := range p.buffer {
		day := time.Unix(0, int64(rec.Ts*float64(time.Second))).UTC().Format("2006-01-02")
		path := filepath.Join(p.config.Dir, rec.Topic, day+".jsonl")
		if _, seen := grouped[path]; !seen {
			order = append(order, path)
		}
		grouped[path] = append(grouped[path], rec)
	}

	for _, path := range order {
		if err := appendRecords(path, grouped[path]); err != nil {
			return err
		}
	}

	p.buffer = p.buffer[:0]
	return nil
}

// appendRecords appends JSONL-encoded records to path, creating parents.
func appendRecords(path string, records []eventRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create topic dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode event record: %w", err)
		}
	}
	return nil
}

// Verify LocalEventPublisher implements EventPublisher.
var _ EventPublisher = (*LocalEventPublisher)(nil)
