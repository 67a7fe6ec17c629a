package recorder

// RecordVersion is the canonical normalized record version.
const RecordVersion = 1

// Normalize converts a raw source event into the canonical record shape
// stored in events.jsonl. Missing fields get explicit placeholder values so
// every stored line has the full shape.
func Normalize(raw RawEvent) map[string]any {
	return map[string]any{
		"version":   RecordVersion,
		"source":    stringField(raw, "source", "unknown"),
		"type":      stringField(raw, "event_type", "unknown"),
		"timestamp": raw["timestamp"],
		"market_id": stringField(raw, "market_id", "n/a"),
		"payload":   payloadField(raw),
	}
}

func stringField(raw RawEvent, key, fallback string) string {
	if v, ok := raw[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func payloadField(raw RawEvent) map[string]any {
	if v, ok := raw["raw"].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}
