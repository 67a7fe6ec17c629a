// Package execution simulates order execution offline. No RPC, no order
// placement, no keys; every report is a deterministic function of the
// intent it covers.
package execution

import "github.com/copytrader-io/copybot/strategy"

// ReportVersion is the dry-run report record version.
const ReportVersion = 1

// ReportsFilename is the dry-run report stream's artifact filename.
const ReportsFilename = "dry_run_report.jsonl"

// StatusSimulated marks a report produced by the dry-run engine.
const StatusSimulated = "simulated"

// Deterministic placeholder assumptions until real fill modelling lands.
const (
	baseSlippage   = 0.01
	slippageSpread = 0.02
	maxSlippage    = 0.05
	minFillPrice   = 0.01
	maxFillPrice   = 0.99
	flatFee        = 0.001
)

// DryRunReport is the simulated outcome of one order intent.
type DryRunReport struct {
	Version    int     `json:"version"`
	MarketID   string  `json:"market_id"`
	Side       string  `json:"side"`
	Confidence float64 `json:"confidence"`
	MaxPrice   float64 `json:"max_price"`

	AssumedFillPrice float64 `json:"assumed_fill_price"`
	AssumedSlippage  float64 `json:"assumed_slippage"`
	AssumedFee       float64 `json:"assumed_fee"`
	Status           string  `json:"status"`

	Metadata map[string]any `json:"metadata"`
}

// Simulate produces the dry-run outcome for one intent. Lower-confidence
// intents are assumed to fill with more slippage.
func Simulate(intent strategy.OrderIntent) DryRunReport {
	slippage := clamp(baseSlippage+(1.0-intent.Confidence)*slippageSpread, 0.0, maxSlippage)
	fillPrice := clamp(intent.MaxPrice-slippage, minFillPrice, maxFillPrice)

	return DryRunReport{
		Version:          ReportVersion,
		MarketID:         intent.MarketID,
		Side:             intent.Side,
		Confidence:       intent.Confidence,
		MaxPrice:         intent.MaxPrice,
		AssumedFillPrice: fillPrice,
		AssumedSlippage:  slippage,
		AssumedFee:       flatFee,
		Status:           StatusSimulated,
		Metadata:         map[string]any{"intent": intent},
	}
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(hi, x))
}
