package metrics_test

import (
	"sync"
	"testing"

	"github.com/copytrader-io/copybot/metrics"
)

func TestCollector_Counts(t *testing.T) {
	c := metrics.NewCollector("recorder", "recorder-1700000000", "local", "local")

	c.IncEventPublished()
	c.IncEventPublished()
	c.IncPublishFailure()
	c.IncObjectWrite(100)
	c.IncObjectWrite(50)
	c.IncRecordProcessed()
	c.IncRecordDropped()

	s := c.Snapshot()
	if s.EventsPublished != 2 {
		t.Errorf("EventsPublished = %d, want 2", s.EventsPublished)
	}
	if s.PublishFailures != 1 {
		t.Errorf("PublishFailures = %d, want 1", s.PublishFailures)
	}
	if s.ObjectsWritten != 2 {
		t.Errorf("ObjectsWritten = %d, want 2", s.ObjectsWritten)
	}
	if s.ObjectBytes != 150 {
		t.Errorf("ObjectBytes = %d, want 150", s.ObjectBytes)
	}
	if s.RecordsProcessed != 1 || s.RecordsDropped != 1 {
		t.Errorf("records = %d/%d, want 1/1", s.RecordsProcessed, s.RecordsDropped)
	}
	if s.Service != "recorder" || s.RunID != "recorder-1700000000" {
		t.Errorf("dimensions wrong: %q/%q", s.Service, s.RunID)
	}
	if s.StorageBackend != "local" || s.PublisherBackend != "local" {
		t.Errorf("backend dimensions wrong: %q/%q", s.StorageBackend, s.PublisherBackend)
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *metrics.Collector

	// None of these should panic
	c.IncEventPublished()
	c.IncPublishFailure()
	c.IncObjectWrite(10)
	c.IncRecordProcessed()
	c.IncRecordDropped()

	s := c.Snapshot()
	if s != (metrics.Snapshot{}) {
		t.Errorf("nil collector snapshot should be zero, got %+v", s)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := metrics.NewCollector("recorder", "recorder-1700000000", "local", "local")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.IncRecordProcessed()
			}
		}()
	}
	wg.Wait()

	if got := c.Snapshot().RecordsProcessed; got != 1000 {
		t.Errorf("RecordsProcessed = %d, want 1000", got)
	}
}

func TestSnapshot_AsMap(t *testing.T) {
	c := metrics.NewCollector("simulation", "replay-1700000000", "s3", "redis")
	c.IncEventPublished()
	c.IncObjectWrite(42)

	m := c.Snapshot().AsMap()
	if m["events_published"] != int64(1) {
		t.Errorf("events_published = %v", m["events_published"])
	}
	if m["object_bytes"] != int64(42) {
		t.Errorf("object_bytes = %v", m["object_bytes"])
	}
	if _, ok := m["records_dropped"]; !ok {
		t.Error("records_dropped key missing")
	}
}
