package domain

import "time"

// SeriesStats agrega la actividad histórica de una serie desde storage.
type SeriesStats struct {
	Series           string
	TotalTrades      int
	TradesYes        int
	TradesNo         int
	TotalSettlements int
	TotalPayout      float64
	LastSeedBalance  float64
	FirstTradeAt     time.Time
	LastTradeAt      time.Time
}
