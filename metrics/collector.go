// Package metrics provides per-run counters for copybot services.
//
// The Collector accumulates counts during a single run. It is a leaf package
// with no internal dependencies. A Snapshot is taken at run completion and
// embedded in the terminal lifecycle event context.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of run counters.
// Safe to read concurrently after creation.
type Snapshot struct {
	// Eventing
	EventsPublished int64 `json:"events_published"`
	PublishFailures int64 `json:"publish_failures"`

	// Object storage
	ObjectsWritten int64 `json:"objects_written"`
	ObjectBytes    int64 `json:"object_bytes"`

	// Record processing (recorder ingestion / simulation replay)
	RecordsProcessed int64 `json:"records_processed"`
	RecordsDropped   int64 `json:"records_dropped"`

	// Dimensions (informational, set at construction)
	Service          string `json:"service"`
	RunID            string `json:"run_id"`
	StorageBackend   string `json:"storage_backend"`
	PublisherBackend string `json:"publisher_backend"`
}

// Collector accumulates counters during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	eventsPublished  int64
	publishFailures  int64
	objectsWritten   int64
	objectBytes      int64
	recordsProcessed int64
	recordsDropped   int64

	service          string
	runID            string
	storageBackend   string
	publisherBackend string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(service, runID, storageBackend, publisherBackend string) *Collector {
	return &Collector{
		service:          service,
		runID:            runID,
		storageBackend:   storageBackend,
		publisherBackend: publisherBackend,
	}
}

// IncEventPublished records a successful event publish.
func (c *Collector) IncEventPublished() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.eventsPublished++
	c.mu.Unlock()
}

// IncPublishFailure records a failed event publish.
func (c *Collector) IncPublishFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishFailures++
	c.mu.Unlock()
}

// IncObjectWrite records a successful object write of n bytes.
func (c *Collector) IncObjectWrite(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.objectsWritten++
	c.objectBytes += n
	c.mu.Unlock()
}

// IncRecordProcessed records one processed record.
func (c *Collector) IncRecordProcessed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsProcessed++
	c.mu.Unlock()
}

// IncRecordDropped records one dropped record (e.g. a line that failed to
// decode during replay).
func (c *Collector) IncRecordDropped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsDropped++
	c.mu.Unlock()
}

// Snapshot returns an immutable view of the current counters.
// A nil Collector yields a zero Snapshot.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		EventsPublished:  c.eventsPublished,
		PublishFailures:  c.publishFailures,
		ObjectsWritten:   c.objectsWritten,
		ObjectBytes:      c.objectBytes,
		RecordsProcessed: c.recordsProcessed,
		RecordsDropped:   c.recordsDropped,
		Service:          c.service,
		RunID:            c.runID,
		StorageBackend:   c.storageBackend,
		PublisherBackend: c.publisherBackend,
	}
}

// AsMap returns the snapshot as a JSON-safe map for event contexts.
func (s Snapshot) AsMap() map[string]any {
	return map[string]any{
		"events_published":  s.EventsPublished,
		"publish_failures":  s.PublishFailures,
		"objects_written":   s.ObjectsWritten,
		"object_bytes":      s.ObjectBytes,
		"records_processed": s.RecordsProcessed,
		"records_dropped":   s.RecordsDropped,
	}
}
