package model

import "time"

// Side classifies the aggressor side of a matched order.
type Side string

const (
	SideBuy     Side = "Buy"
	SideSell    Side = "Sell"
	SideUnknown Side = "Unknown"
)

// Tick is a single validated market event from the real-time feed.
// Prices are in VND (full units, never "thousands") and volumes in shares;
// the raw feed ambiguity is resolved once at the ingestion boundary.
type Tick struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`          // VND, scale-normalized
	MatchedVolume float64   `json:"matched_volume"` // shares, scale-normalized
	SessionVolume float64   `json:"session_volume"` // accumulated day volume
	ChangePercent float64   `json:"change_percent"`
	Side          Side      `json:"side"`
	Time          time.Time `json:"time"` // local exchange time
}

// NotionalValue returns the order value in VND for this tick.
func (t Tick) NotionalValue() float64 {
	return t.Price * t.MatchedVolume
}

// OrderSnapshot captures the shark order that triggered an evaluation.
// It travels with the signal through the Judge and into the watchlist.
type OrderSnapshot struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_pc"`
	OrderValue    float64   `json:"order_value"` // VND notional of the trigger order
	MatchedVolume float64   `json:"vol"`
	SessionVolume float64   `json:"total_vol"`
	Side          Side      `json:"side"`
	Time          time.Time `json:"time"`
}

// TradeEvent is a qualifying large order recorded in the statistics
// side-channel. Reporting only; it never gates the detection path.
type TradeEvent struct {
	Symbol        string    `json:"symbol"`
	Value         float64   `json:"value"` // VND notional
	ChangePercent float64   `json:"change"`
	Side          Side      `json:"side"`
	Time          time.Time `json:"time"`
}
