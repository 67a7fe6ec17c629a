// Package strategy generates signal-only order intents from canonical
// market events. An OrderIntent is not an executable order; nothing in
// this package talks to an exchange or holds keys.
package strategy

import "strings"

// IntentVersion is the order intent record version.
const IntentVersion = 1

// IntentsFilename is the intent stream's artifact filename.
const IntentsFilename = "order_intents.jsonl"

// Placeholder heuristics until a real strategy lands.
const (
	defaultSide    = "YES"
	defaultPrice   = 0.5
	baseConfidence = 0.10
	priceMargin    = 0.02
	maxIntentPrice = 0.99
)

// OrderIntent is a signal-only trade intent derived from one canonical
// event. Downstream consumers simulate it; nothing executes it.
type OrderIntent struct {
	Version         int            `json:"version"`
	SourceEventType string         `json:"source_event_type"`
	MarketID        string         `json:"market_id"`
	Side            string         `json:"side"`
	Confidence      float64        `json:"confidence"`
	MaxPrice        float64        `json:"max_price"`
	Metadata        map[string]any `json:"metadata"`
}

// GenerateIntent converts one canonical event into an order intent.
// Only trade_detected events produce a signal; everything else is skipped.
func GenerateIntent(event map[string]any) (OrderIntent, bool) {
	eventType, _ := event["type"].(string)
	if eventType != "trade_detected" {
		return OrderIntent{}, false
	}

	marketID, ok := event["market_id"].(string)
	if !ok || marketID == "" {
		marketID = "unknown_market"
	}
	payload, _ := event["payload"].(map[string]any)

	side := defaultSide
	if s, ok := payload["side"].(string); ok && s != "" {
		side = strings.ToUpper(s)
	}
	price := defaultPrice
	if p, ok := payload["price"].(float64); ok {
		price = p
	}

	return OrderIntent{
		Version:         IntentVersion,
		SourceEventType: eventType,
		MarketID:        marketID,
		Side:            side,
		Confidence:      baseConfidence,
		MaxPrice:        min(price+priceMargin, maxIntentPrice),
		Metadata:        map[string]any{"raw_event": event},
	}, true
}
