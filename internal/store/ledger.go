package store

import (
	"sync"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// TradeLedger is the append-only record of executed trades, in
// execution order. Trades are never deleted or modified; this is the
// audit trail the PnL and reporting layers consume.
type TradeLedger struct {
	mu       sync.RWMutex
	all      []*domain.Trade
	bySymbol map[string][]*domain.Trade
}

// NewTradeLedger creates an empty TradeLedger.
func NewTradeLedger() *TradeLedger {
	return &TradeLedger{
		bySymbol: make(map[string][]*domain.Trade),
	}
}

// Append adds a trade to the ledger. Insertion order is execution order.
func (l *TradeLedger) Append(t *domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.all = append(l.all, t)
	l.bySymbol[t.Symbol] = append(l.bySymbol[t.Symbol], t)
}

// All returns every trade in execution order.
func (l *TradeLedger) All() []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Return a copy to avoid callers mutating the internal slice.
	out := make([]*domain.Trade, len(l.all))
	copy(out, l.all)
	return out
}

// BySymbol returns all trades for a symbol in execution order.
// Returns an empty slice if no trades exist for the symbol.
func (l *TradeLedger) BySymbol(symbol string) []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	trades := l.bySymbol[symbol]
	out := make([]*domain.Trade, len(trades))
	copy(out, trades)
	return out
}

// Len returns the total number of trades recorded.
func (l *TradeLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.all)
}
