package domain

import "time"

// Player represents a registered participant in the trading game:
// a human submitting orders through the UI or a deployed trading bot.
// A player is pure identity; cash and holdings are derived from the
// trade ledger by the reporting layer, never stored here.
type Player struct {
	PlayerID     string
	DisplayName  string
	StartingCash int64 // cents
	Bot          bool
	CreatedAt    time.Time
}
