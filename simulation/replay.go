// Package simulation implements the offline replay service: it streams a
// recorded events.jsonl artifact through replay handlers and stores a summary
// of what it saw, the signal-only order intents it generated, and their
// dry-run execution reports. No live execution happens here.
package simulation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/copytrader-io/copybot/metrics"
)

// SummaryVersion is the replay summary record version.
const SummaryVersion = 1

// SummaryFilename is the replay summary's artifact filename.
const SummaryFilename = "replay_summary.json"

// ReplayStats counts replayed events by type.
type ReplayStats struct {
	EventsTotal  int64            `json:"events_total"`
	EventsByType map[string]int64 `json:"events_by_type"`
}

// NewReplayStats creates empty stats.
func NewReplayStats() *ReplayStats {
	return &ReplayStats{EventsByType: make(map[string]int64)}
}

// OnEvent records one replayed event.
func (s *ReplayStats) OnEvent(event map[string]any) {
	s.EventsTotal++
	eventType, ok := event["type"].(string)
	if !ok || eventType == "" {
		eventType = "unknown"
	}
	s.EventsByType[eventType]++
}

// Summary is the replay_summary.json record.
type Summary struct {
	Version      int              `json:"version"`
	EventsTotal  int64            `json:"events_total"`
	EventsByType map[string]int64 `json:"events_by_type"`
}

// Summary renders the stats as a summary record.
func (s *ReplayStats) Summary() *Summary {
	return &Summary{
		Version:      SummaryVersion,
		EventsTotal:  s.EventsTotal,
		EventsByType: s.EventsByType,
	}
}

// MarshalIndent renders the summary as indented JSON with a trailing newline.
func (s *Summary) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal replay summary: %w", err)
	}
	return append(data, '\n'), nil
}

// maxLineBytes bounds a single JSONL line during replay (1 MiB).
const maxLineBytes = 1 << 20

// EventHandler receives each decoded event during replay.
type EventHandler func(event map[string]any)

// Replay streams newline-delimited JSON events from r into stats and any
// extra handlers. Lines that fail to decode are dropped and counted against
// the collector; a corrupt line must not abort the replay of the rest of
// the stream.
func Replay(r io.Reader, stats *ReplayStats, collector *metrics.Collector, handlers ...EventHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var event map[string]any
		if err := json.Unmarshal(line, &event); err != nil {
			collector.IncRecordDropped()
			continue
		}
		stats.OnEvent(event)
		for _, handle := range handlers {
			handle(event)
		}
		collector.IncRecordProcessed()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}
