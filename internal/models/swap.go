// ============================================================================
// models/swap.go
// ============================================================================
package models

import "time"

// SwapRecord is the canonical record of one confirmed swap, as cached,
// published, and persisted.
type SwapRecord struct {
	Signature      string    `json:"signature"`
	Timestamp      time.Time `json:"timestamp"`
	InputMint      string    `json:"input_mint"`
	OutputMint     string    `json:"output_mint"`
	AmountIn       uint64    `json:"amount_in"`  // raw units of the input mint
	AmountOut      uint64    `json:"amount_out"` // raw units of the output mint
	SlippageBps    uint16    `json:"slippage_bps"`
	PriceImpactPct string    `json:"price_impact_pct"`
}
