package domain

import "time"

// Trade represents a matched execution between a buy and a sell order.
// Trades are immutable once created and owned by the TradeLedger.
type Trade struct {
	TradeID     string
	BuyOrderID  uint64
	SellOrderID uint64
	Symbol      string
	Price       int64 // cents
	Quantity    int64
	ExecutedAt  time.Time
}
