package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/copytrader-io/copybot/cloud"
	"github.com/copytrader-io/copybot/execution"
	"github.com/copytrader-io/copybot/log"
	"github.com/copytrader-io/copybot/manifest"
	"github.com/copytrader-io/copybot/metrics"
	"github.com/copytrader-io/copybot/runlife"
	"github.com/copytrader-io/copybot/strategy"
)

// ServiceName is the simulation service identifier in run IDs, lifecycle
// events, and artifact keys.
const ServiceName = "simulation"

// Config configures one replay run. Exactly one of SourceKey and SourceFile
// must be set.
type Config struct {
	// RunID is the run identifier (required, canonical format).
	RunID string
	// SourceKey is the object-store key of the events.jsonl stream to
	// replay (e.g. "recorder/recorder-1700000000/events.jsonl").
	SourceKey string
	// SourceFile is a local events.jsonl path, for replaying streams that
	// never went through the object store.
	SourceFile string
	// Cloud is the boundary service container (required).
	Cloud *cloud.Services
	// Logger is optional.
	Logger *log.Logger
	// Metrics is optional.
	Metrics *metrics.Collector
}

// Result summarizes a completed replay run.
type Result struct {
	RunID            string            `json:"run_id"`
	Summary          *Summary          `json:"summary"`
	IntentsGenerated int               `json:"intents_generated"`
	ReportsSimulated int               `json:"reports_simulated"`
	Artifacts        map[string]string `json:"artifacts"`
	DurationMs       int64             `json:"duration_ms"`
	Metrics          metrics.Snapshot  `json:"metrics"`
}

// Service is the replay run loop.
type Service struct {
	cfg     Config
	tracker *runlife.Tracker
}

// New creates a simulation service for one run.
func New(cfg Config) (*Service, error) {
	if (cfg.SourceKey == "") == (cfg.SourceFile == "") {
		return nil, fmt.Errorf("simulation requires exactly one of source key or source file")
	}

	source := cfg.SourceKey
	if source == "" {
		source = cfg.SourceFile
	}
	tracker, err := runlife.NewTracker(runlife.Config{
		Service: ServiceName,
		RunID:   cfg.RunID,
		Cloud:   cfg.Cloud,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
		ConfigSnapshot: map[string]any{
			"source": source,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Service{cfg: cfg, tracker: tracker}, nil
}

// Run executes the replay: load the stream, accumulate stats, generate
// signal-only order intents, simulate their execution, then persist the
// summary, the two stage streams, and the manifest.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	s.tracker.Start(ctx)

	stream, err := s.loadStream(ctx)
	if err != nil {
		s.tracker.Fail(ctx, err)
		return nil, err
	}

	stats := NewReplayStats()
	var intents []strategy.OrderIntent
	err = Replay(bytes.NewReader(stream), stats, s.cfg.Metrics, func(event map[string]any) {
		if intent, ok := strategy.GenerateIntent(event); ok {
			intents = append(intents, intent)
		}
	})
	if err != nil {
		s.tracker.Fail(ctx, err)
		return nil, err
	}

	reports := make([]execution.DryRunReport, 0, len(intents))
	for _, intent := range intents {
		reports = append(reports, execution.Simulate(intent))
	}

	summary := stats.Summary()
	summaryData, err := summary.MarshalIndent()
	if err != nil {
		s.tracker.Fail(ctx, err)
		return nil, err
	}
	intentsData, err := encodeJSONL(intents)
	if err != nil {
		s.tracker.Fail(ctx, err)
		return nil, err
	}
	reportsData, err := encodeJSONL(reports)
	if err != nil {
		s.tracker.Fail(ctx, err)
		return nil, err
	}

	// Stage streams are written even when empty: a replay that produced no
	// signals is distinguishable from one that never ran the stage.
	artifacts := make(map[string]string, 3)
	for _, a := range []struct {
		name        string
		filename    string
		contentType string
		data        []byte
	}{
		{"replay_summary", SummaryFilename, "application/json", summaryData},
		{"order_intents", strategy.IntentsFilename, "application/x-ndjson", intentsData},
		{"dry_run_report", execution.ReportsFilename, "application/x-ndjson", reportsData},
	} {
		uri, err := s.putArtifact(ctx, a.filename, a.contentType, a.data)
		if err != nil {
			s.tracker.Fail(ctx, err)
			return nil, err
		}
		artifacts[a.name] = uri
	}

	m, err := s.tracker.Complete(ctx, artifacts)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:            s.cfg.RunID,
		Summary:          summary,
		IntentsGenerated: len(intents),
		ReportsSimulated: len(reports),
		Artifacts:        artifacts,
		DurationMs:       int64((m.EndedAt - m.StartedAt) * 1000),
		Metrics:          s.cfg.Metrics.Snapshot(),
	}, nil
}

func (s *Service) putArtifact(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := manifest.CanonicalArtifactKey(ServiceName, s.cfg.RunID, filename)
	result, err := s.cfg.Cloud.Objects.Put(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("store %s: %w", filename, err)
	}
	s.cfg.Metrics.IncObjectWrite(result.BytesWritten)
	return result.URI, nil
}

// encodeJSONL renders records as newline-delimited JSON.
func encodeJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (s *Service) loadStream(ctx context.Context) ([]byte, error) {
	if s.cfg.SourceKey != "" {
		data, err := s.cfg.Cloud.Objects.Get(ctx, s.cfg.SourceKey)
		if err != nil {
			return nil, fmt.Errorf("load event stream %s: %w", s.cfg.SourceKey, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(s.cfg.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("load event stream %s: %w", s.cfg.SourceFile, err)
	}
	return data, nil
}
