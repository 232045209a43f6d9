package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/service"
)

// OrderSubmitter is the slice of the order service the bots use. Bots
// go through the same public submission path as a human player.
type OrderSubmitter interface {
	SubmitOrder(req service.SubmitOrderRequest) (*domain.Order, []*domain.Trade, error)
}

// PlayerRegistrar registers bot players so their orders and PnL show up
// in the same reporting as everyone else's.
type PlayerRegistrar interface {
	Register(playerID, displayName string, bot bool) (*domain.Player, error)
}

// ReferencePricer supplies the advisory prices the bots quote around.
type ReferencePricer interface {
	ReferencePrices() map[string]int64
}

// BotManager owns the deployed trading bots and periodically submits a
// random limit order per bot: random side, random symbol, price drawn
// from a band around the symbol's reference price, quantity 1–10. The
// random source is injected so test scenarios are reproducible.
type BotManager struct {
	interval  time.Duration
	priceBand float64 // half-width of the quote band, e.g. 0.05 for ±5%
	submitter OrderSubmitter
	registrar PlayerRegistrar
	prices    ReferencePricer
	symbols   *domain.SymbolRegistry
	logger    *slog.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	bots []string // bot player ids
}

// NewBotManager creates a BotManager with the given dependencies.
func NewBotManager(
	interval time.Duration,
	priceBand float64,
	submitter OrderSubmitter,
	registrar PlayerRegistrar,
	prices ReferencePricer,
	symbols *domain.SymbolRegistry,
	rng *rand.Rand,
	logger *slog.Logger,
) *BotManager {
	return &BotManager{
		interval:  interval,
		priceBand: priceBand,
		submitter: submitter,
		registrar: registrar,
		prices:    prices,
		symbols:   symbols,
		rng:       rng,
		logger:    logger,
	}
}

// Deploy registers n additional bot players and returns the total
// number of bots now running.
func (b *BotManager) Deploy(n int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < n; i++ {
		id := fmt.Sprintf("bot-%d", len(b.bots)+1)
		if _, err := b.registrar.Register(id, id, true); err != nil {
			return len(b.bots), err
		}
		b.bots = append(b.bots, id)
	}
	return len(b.bots), nil
}

// Count returns the number of deployed bots.
func (b *BotManager) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bots)
}

// Start launches a background goroutine that ticks at the configured
// interval and lets every bot trade once. It stops when ctx is cancelled.
func (b *BotManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.Tick()
			}
		}
	}()
}

// Tick submits one randomized order per deployed bot. Rejections are
// expected occasionally (the random price can round to zero on a penny
// stock) and are logged, not propagated.
func (b *BotManager) Tick() {
	b.mu.Lock()
	bots := make([]string, len(b.bots))
	copy(bots, b.bots)
	b.mu.Unlock()

	refPrices := b.prices.ReferencePrices()
	symbols := b.symbols.List()
	if len(symbols) == 0 {
		return
	}

	for _, id := range bots {
		req := b.randomOrder(id, symbols, refPrices)
		if _, _, err := b.submitter.SubmitOrder(req); err != nil {
			if b.logger != nil {
				b.logger.Debug("bot order rejected",
					slog.String("bot", id),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// randomOrder draws one order for a bot. Prices are quoted in whole
// cents inside the band around the reference price.
func (b *BotManager) randomOrder(botID string, symbols []string, refPrices map[string]int64) service.SubmitOrderRequest {
	b.mu.Lock()
	defer b.mu.Unlock()

	symbol := symbols[b.rng.Intn(len(symbols))]
	side := domain.OrderSideBuy
	if b.rng.Intn(2) == 1 {
		side = domain.OrderSideSell
	}

	ref := refPrices[symbol]
	if ref < 1 {
		ref = 1
	}
	factor := 1 + (b.rng.Float64()*2-1)*b.priceBand
	cents := int64(float64(ref)*factor + 0.5)
	if cents < 1 {
		cents = 1
	}

	return service.SubmitOrderRequest{
		PlayerID: botID,
		Side:     side,
		Symbol:   symbol,
		Price:    domain.CentsToDollars(cents),
		Quantity: int64(b.rng.Intn(10)) + 1,
	}
}
