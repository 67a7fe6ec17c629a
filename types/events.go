package types

import (
	"fmt"
	"runtime/debug"
	"time"
)

// EventType discriminates run lifecycle events.
type EventType string

// Lifecycle event types. Each is emitted at most once per run; exactly one of
// run_end / run_error terminates a run.
const (
	EventRunStart EventType = "run_start"
	EventRunEnd   EventType = "run_end"
	EventRunError EventType = "run_error"
)

// IsTerminal returns true if this event type terminates a run.
func (e EventType) IsTerminal() bool {
	return e == EventRunEnd || e == EventRunError
}

// Level is the severity attached to a run event.
type Level string

// Run event levels.
const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// TopicRunLifecycle is the event topic run lifecycle events publish to.
const TopicRunLifecycle = "run_lifecycle"

// RunEvent is the run lifecycle record published for downstream correlation.
// RunID is caller-chosen and must be unique per execution.
type RunEvent struct {
	Type    EventType      `json:"type"`
	Service string         `json:"service"`
	RunID   string         `json:"run_id"`
	Ts      float64        `json:"ts"`
	Level   Level          `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context"`
}

// AsMap returns the event as a JSON-safe map for publishing.
func (e *RunEvent) AsMap() map[string]any {
	return map[string]any{
		"type":    string(e.Type),
		"service": e.Service,
		"run_id":  e.RunID,
		"ts":      e.Ts,
		"level":   string(e.Level),
		"message": e.Message,
		"context": e.Context,
	}
}

// NewRunStart builds a run_start event.
func NewRunStart(service, runID string, context map[string]any) *RunEvent {
	if context == nil {
		context = map[string]any{}
	}
	return &RunEvent{
		Type:    EventRunStart,
		Service: service,
		RunID:   runID,
		Ts:      UnixSeconds(time.Now()),
		Level:   LevelInfo,
		Message: "Run started",
		Context: context,
	}
}

// NewRunEnd builds a run_end event. The run duration is recorded in the
// event context as duration_s.
func NewRunEnd(service, runID string, duration time.Duration, context map[string]any) *RunEvent {
	ctx := map[string]any{}
	for k, v := range context {
		ctx[k] = v
	}
	ctx["duration_s"] = duration.Seconds()
	return &RunEvent{
		Type:    EventRunEnd,
		Service: service,
		RunID:   runID,
		Ts:      UnixSeconds(time.Now()),
		Level:   LevelInfo,
		Message: "Run finished",
		Context: ctx,
	}
}

// NewRunError builds a run_error event. The error type, message, and a stack
// trace are recorded in the event context.
func NewRunError(service, runID string, runErr error, duration time.Duration, context map[string]any) *RunEvent {
	ctx := map[string]any{}
	for k, v := range context {
		ctx[k] = v
	}
	if duration > 0 {
		ctx["duration_s"] = duration.Seconds()
	}
	ctx["error_type"] = fmt.Sprintf("%T", runErr)
	ctx["error_message"] = runErr.Error()
	ctx["stack"] = string(debug.Stack())
	return &RunEvent{
		Type:    EventRunError,
		Service: service,
		RunID:   runID,
		Ts:      UnixSeconds(time.Now()),
		Level:   LevelError,
		Message: "Run error",
		Context: ctx,
	}
}
