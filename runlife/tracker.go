// Package runlife tracks a single run's lifecycle: it emits run_start and
// exactly one terminal event (run_end or run_error), and writes the run
// manifest at completion.
package runlife

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/log"
	"github.com/copytrader-io/copybot/manifest"
	"github.com/copytrader-io/copybot/metrics"
	"github.com/copytrader-io/copybot/types"
)

// Config configures a Tracker.
type Config struct {
	// Service is the service name ("recorder", "simulation").
	Service string
	// RunID is the caller-chosen run identifier, unique per execution.
	RunID string
	// Cloud is the boundary service container (required).
	Cloud *cloud.Services
	// Logger is optional; nil disables logging.
	Logger *log.Logger
	// Metrics is optional; its snapshot is embedded in the terminal event.
	Metrics *metrics.Collector
	// ConfigSnapshot is the non-sensitive config recorded in the manifest.
	ConfigSnapshot map[string]any
}

// Tracker enforces the lifecycle contract for one run. Thread-safe; Start
// and the terminal calls are idempotent, so retried shutdown paths cannot
// double-emit.
type Tracker struct {
	cfg Config

	mu        sync.Mutex
	started   bool
	ended     bool
	startedAt time.Time
}

// NewTracker creates a tracker for one run.
func NewTracker(cfg Config) (*Tracker, error) {
	if cfg.Service == "" {
		return nil, fmt.Errorf("tracker requires a service name")
	}
	if !types.ValidRunID(cfg.RunID) {
		return nil, fmt.Errorf("invalid run_id %q: want <name>-<unix_timestamp>", cfg.RunID)
	}
	if cfg.Cloud == nil {
		return nil, fmt.Errorf("tracker requires cloud services")
	}
	return &Tracker{cfg: cfg}, nil
}

// StartedAt returns the run start time (zero before Start).
func (t *Tracker) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

// Start emits run_start. Repeated calls are no-ops.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.startedAt = time.Now()
	t.mu.Unlock()

	t.publish(ctx, types.NewRunStart(t.cfg.Service, t.cfg.RunID, nil))
}

// Complete writes the run manifest and emits run_end. The artifacts map
// records logical artifact names against their storage locations and must
// not be empty. Repeated terminal calls are no-ops.
func (t *Tracker) Complete(ctx context.Context, artifacts map[string]string) (*manifest.RunManifest, error) {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return nil, fmt.Errorf("complete before start for run %s", t.cfg.RunID)
	}
	if t.ended {
		t.mu.Unlock()
		return nil, nil
	}
	if len(artifacts) == 0 {
		t.mu.Unlock()
		return nil, fmt.Errorf("run %s completed with no artifacts", t.cfg.RunID)
	}
	t.ended = true
	startedAt := t.startedAt
	t.mu.Unlock()

	endedAt := time.Now()
	duration := endedAt.Sub(startedAt)

	m := &manifest.RunManifest{
		SchemaVersion: manifest.SchemaVersion,
		Service:       t.cfg.Service,
		RunID:         t.cfg.RunID,
		StartedAt:     types.UnixSeconds(startedAt),
		EndedAt:       types.UnixSeconds(endedAt),
		DurationS:     duration.Seconds(),
		GitSHA:        manifest.GitSHA(),
		Config:        t.cfg.ConfigSnapshot,
		Artifacts:     artifacts,
	}
	if m.Config == nil {
		m.Config = map[string]any{}
	}

	result, err := manifest.Write(ctx, t.cfg.Cloud.Objects, m)
	if err != nil {
		// The manifest is the run's durable record; a failed write fails
		// the run even though its artifacts may already be stored.
		t.publish(ctx, types.NewRunError(t.cfg.Service, t.cfg.RunID, err, duration, nil))
		t.flush(ctx)
		return nil, fmt.Errorf("write manifest for run %s: %w", t.cfg.RunID, err)
	}
	t.cfg.Metrics.IncObjectWrite(result.BytesWritten)

	endCtx := map[string]any{
		"manifest_uri": result.URI,
	}
	if t.cfg.Metrics != nil {
		endCtx["metrics"] = t.cfg.Metrics.Snapshot().AsMap()
	}
	t.publish(ctx, types.NewRunEnd(t.cfg.Service, t.cfg.RunID, duration, endCtx))
	t.flush(ctx)
	return m, nil
}

// Fail emits run_error. Repeated terminal calls are no-ops.
func (t *Tracker) Fail(ctx context.Context, runErr error) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	started := t.started
	startedAt := t.startedAt
	t.mu.Unlock()

	var duration time.Duration
	if started {
		duration = time.Since(startedAt)
	}

	var errCtx map[string]any
	if t.cfg.Metrics != nil {
		errCtx = map[string]any{"metrics": t.cfg.Metrics.Snapshot().AsMap()}
	}
	t.publish(ctx, types.NewRunError(t.cfg.Service, t.cfg.RunID, runErr, duration, errCtx))
	t.flush(ctx)
}

/// publish delivers one lifecycle event. Event publishing is best-effort:
// failures are counted and logged, never surfaced to the run.
func (t *Tracker) publish(ctx context.Context, ev *types.RunEvent) {
	if err := t.cfg.Cloud.Events.Publish(ctx, types.TopicRunLifecycle, ev.AsMap()); err != nil {
		t.cfg.Metrics.IncPublishFailure()
		if t.cfg.Logger != nil {
			t.cfg.Logger.Warn("lifecycle event publish failed", map[string]any{
				"event_type": string(ev.Type),
				"error":      err.Error(),
			})
		}
		return
	}
	t.cfg.Metrics.IncEventPublished()
}

func (t *Tracker) flush(ctx context.Context) {
	if err := t.cfg.Cloud.Events.Flush(ctx); err != nil && t.cfg.Logger != nil {
		t.cfg.Logger.Warn("event flush failed", map[string]any{"error": err.Error()})
	}
}
