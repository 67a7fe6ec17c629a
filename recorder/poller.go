// Package recorder implements the live-ingestion service: it polls a market
// event source, normalizes events to the canonical record shape, and stores
// the run's event stream as a JSONL artifact.
package recorder

import (
	"context"
	"time"

	"github.com/copytrader-io/copybot/types"
)

// RawEvent is an event as produced by a source, before normalization.
type RawEvent map[string]any

// Poller produces raw market events. Poll blocks until the next event is
// available or ctx is done.
type Poller interface {
	Poll(ctx context.Context) (RawEvent, error)
}

// StubPoller emits a synthetic trade_detected event on a fixed interval.
// Stands in for the real websocket/API ingestion source.
type StubPoller struct {
	// Interval is the delay between events (default 2s).
	Interval time.Duration
	// MarketID labels the synthetic events (default "example_market").
	MarketID string
}

// Poll implements Poller.
func (p *StubPoller) Poll(ctx context.Context) (RawEvent, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	marketID := p.MarketID
	if marketID == "" {
		marketID = "example_market"
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(interval):
	}

	return RawEvent{
		"source":     "polymarket",
		"event_type": "trade_detected",
		"market_id":  marketID,
		"timestamp":  types.UnixSeconds(time.Now()),
		"raw":        map[string]any{"price": 0.62, "side": "YES"},
	}, nil
}

// Verify StubPoller implements Poller.
var _ Poller = (*StubPoller)(nil)
