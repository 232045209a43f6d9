package service

import (
	"math"
	"sync"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/engine"
	"github.com/blackhelm/tradefloor/internal/store"
)

// PriceResponse represents the response for GET /stocks/{symbol}/price.
type PriceResponse struct {
	Symbol         string
	LastTradePrice *int64 // nil when no trades ever
	LastTradeAt    *time.Time
	ReferencePrice int64 // advisory, macro-adjusted; never affects matching
	TradeCount     int
}

// BookPriceLevel represents an aggregated price level in the book response.
type BookPriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// BookResponse represents the response for GET /stocks/{symbol}/book.
type BookResponse struct {
	Symbol     string
	Bids       []BookPriceLevel
	Asks       []BookPriceLevel
	Spread     *int64 // nil if either side empty
	SnapshotAt time.Time
}

// MarketService serves the dashboard's market data: last trade prices,
// aggregated book depth, and the advisory reference prices the macro
// event simulation drifts. Reference prices are display-only — the
// matching engine never reads them.
type MarketService struct {
	ledger  *store.TradeLedger
	books   *engine.BookManager
	symbols *domain.SymbolRegistry

	mu        sync.RWMutex
	refPrices map[string]int64 // symbol → cents
}

// NewMarketService creates a MarketService seeded with the configured
// base reference price per symbol.
func NewMarketService(
	ledger *store.TradeLedger,
	books *engine.BookManager,
	symbols *domain.SymbolRegistry,
	basePrices map[string]int64,
) *MarketService {
	prices := make(map[string]int64, len(basePrices))
	for sym, p := range basePrices {
		prices[sym] = p
	}
	return &MarketService{
		ledger:    ledger,
		books:     books,
		symbols:   symbols,
		refPrices: prices,
	}
}

// ReferencePrices returns a copy of the current reference price table.
func (s *MarketService) ReferencePrices() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int64, len(s.refPrices))
	for sym, p := range s.refPrices {
		out[sym] = p
	}
	return out
}

// ReferencePrice returns the advisory reference price for a symbol.
func (s *MarketService) ReferencePrice(symbol string) (int64, error) {
	if !s.symbols.Exists(symbol) {
		return 0, domain.ErrUnknownSymbol
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refPrices[symbol], nil
}

// ApplyDrift multiplies every reference price by factor, rounding to
// the nearest cent with a 1-cent floor. Called by the macro event
// simulation; resting order prices are untouched.
func (s *MarketService) ApplyDrift(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sym, p := range s.refPrices {
		adjusted := int64(math.Round(float64(p) * factor))
		if adjusted < 1 {
			adjusted = 1
		}
		s.refPrices[sym] = adjusted
	}
}

// Price returns the last trade price and the advisory reference price
// for a symbol.
func (s *MarketService) Price(symbol string) (*PriceResponse, error) {
	ref, err := s.ReferencePrice(symbol)
	if err != nil {
		return nil, err
	}

	trades := s.ledger.BySymbol(symbol)
	resp := &PriceResponse{
		Symbol:         symbol,
		ReferencePrice: ref,
		TradeCount:     len(trades),
	}
	if len(trades) > 0 {
		last := trades[len(trades)-1]
		resp.LastTradePrice = &last.Price
		resp.LastTradeAt = &last.ExecutedAt
	}
	return resp, nil
}

// Book returns up to depth aggregated price levels per side plus the
// bid-ask spread. The book's read lock makes the two sides a single
// consistent snapshot.
func (s *MarketService) Book(symbol string, depth int) (*BookResponse, error) {
	if !s.symbols.Exists(symbol) {
		return nil, domain.ErrUnknownSymbol
	}

	book := s.books.GetOrCreate(symbol)
	book.RLock()
	defer book.RUnlock()

	resp := &BookResponse{
		Symbol:     symbol,
		Bids:       make([]BookPriceLevel, 0, depth),
		Asks:       make([]BookPriceLevel, 0, depth),
		SnapshotAt: time.Now(),
	}
	for _, lvl := range book.TopBids(depth) {
		resp.Bids = append(resp.Bids, BookPriceLevel(lvl))
	}
	for _, lvl := range book.TopAsks(depth) {
		resp.Asks = append(resp.Asks, BookPriceLevel(lvl))
	}

	bestBid, okB := book.BestBid()
	bestAsk, okA := book.BestAsk()
	if okB && okA {
		spread := bestAsk.Price - bestBid.Price
		resp.Spread = &spread
	}
	return resp, nil
}

// Trades returns the execution history for a symbol in order.
func (s *MarketService) Trades(symbol string) ([]*domain.Trade, error) {
	if !s.symbols.Exists(symbol) {
		return nil, domain.ErrUnknownSymbol
	}
	return s.ledger.BySymbol(symbol), nil
}

// AllTrades returns the full execution history across symbols.
func (s *MarketService) AllTrades() []*domain.Trade {
	return s.ledger.All()
}
