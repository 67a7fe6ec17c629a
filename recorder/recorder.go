package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/log"
	"github.com/copytrader-io/copybot/manifest"
	"github.com/copytrader-io/copybot/metrics"
	"github.com/copytrader-io/copybot/runlife"
)

// ServiceName is the recorder's service identifier in run IDs, lifecycle
// events, and artifact keys.
const ServiceName = "recorder"

// EventsFilename is the recorded stream's artifact filename.
const EventsFilename = "events.jsonl"

// Config configures one recorder run.
type Config struct {
	// RunID is the run identifier (required, canonical format).
	RunID string
	// Poller is the event source (required).
	Poller Poller
	// MaxEvents stops the run after this many events (required, > 0).
	MaxEvents int
	// MaxDuration stops the run after this wall-clock budget.
	// Zero means no time bound.
	MaxDuration time.Duration
	// Cloud is the boundary service container (required).
	Cloud *cloud.Services
	// Logger is optional.
	Logger *log.Logger
	// Metrics is optional.
	Metrics *metrics.Collector
}

// Result summarizes a completed recorder run.
type Result struct {
	RunID          string            `json:"run_id"`
	EventsRecorded int               `json:"events_recorded"`
	Artifacts      map[string]string `json:"artifacts"`
	DurationMs     int64             `json:"duration_ms"`
	Metrics        metrics.Snapshot  `json:"metrics"`
}

// Service is the recorder run loop.
type Service struct {
	cfg     Config
	tracker *runlife.Tracker
}

// New creates a recorder service for one run.
func New(cfg Config) (*Service, error) {
	if cfg.Poller == nil {
		return nil, fmt.Errorf("recorder requires a poller")
	}
	if cfg.MaxEvents <= 0 {
		return nil, fmt.Errorf("recorder requires max events > 0, got %d", cfg.MaxEvents)
	}

	tracker, err := runlife.NewTracker(runlife.Config{
		Service: ServiceName,
		RunID:   cfg.RunID,
		Cloud:   cfg.Cloud,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
		ConfigSnapshot: map[string]any{
			"max_events":     cfg.MaxEvents,
			"max_duration_s": cfg.MaxDuration.Seconds(),
		},
	})
	if err != nil {
		return nil, err
	}

	return &Service{cfg: cfg, tracker: tracker}, nil
}

// Run executes the recorder run: poll, normalize, buffer, then persist the
// stream and manifest. Context cancellation ends the run gracefully with
// whatever was recorded.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	s.tracker.Start(ctx)

	// Cancellation ends ingestion, not persistence: the partial stream,
	// manifest, and terminal event must still land after a SIGINT.
	persistCtx := context.WithoutCancel(ctx)

	runCtx := ctx
	var cancel context.CancelFunc
	if s.cfg.MaxDuration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.MaxDuration)
		defer cancel()
	}

	records, err := s.ingest(runCtx)
	if err != nil {
		s.tracker.Fail(persistCtx, err)
		return nil, err
	}
	if len(records) == 0 {
		err := errors.New("recorder run produced no events")
		s.tracker.Fail(persistCtx, err)
		return nil, err
	}

	stream, err := encodeJSONL(records)
	if err != nil {
		s.tracker.Fail(persistCtx, err)
		return nil, err
	}

	eventsKey := manifest.CanonicalArtifactKey(ServiceName, s.cfg.RunID, EventsFilename)
	result, err := s.cfg.Cloud.Objects.Put(persistCtx, eventsKey, stream, "application/x-ndjson")
	if err != nil {
		s.tracker.Fail(persistCtx, err)
		return nil, fmt.Errorf("store event stream: %w", err)
	}
	s.cfg.Metrics.IncObjectWrite(result.BytesWritten)

	artifacts := map[string]string{"events": result.URI}
	m, err := s.tracker.Complete(persistCtx, artifacts)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:          s.cfg.RunID,
		EventsRecorded: len(records),
		Artifacts:      artifacts,
		DurationMs:     int64((m.EndedAt - m.StartedAt) * 1000),
		Metrics:        s.cfg.Metrics.Snapshot(),
	}, nil
}

// ingest polls until MaxEvents records are collected or ctx ends.
// A context-ended poll is a graceful stop, not an error.
func (s *Service) ingest(ctx context.Context) ([]map[string]any, error) {
	records := make([]map[string]any, 0, s.cfg.MaxEvents)
	for len(records) < s.cfg.MaxEvents {
		raw, err := s.cfg.Poller.Poll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("poll: %w", err)
		}
		records = append(records, Normalize(raw))
		s.cfg.Metrics.IncRecordProcessed()
	}
	return records, nil
}

// encodeJSONL renders records as newline-delimited JSON.
func encodeJSONL(records []map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode event record: %w", err)
		}
	}
	return buf.Bytes(), nil
}
