package sim

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// MacroEvent is a calendar entry shown on the dashboard. Events flavor
// the drift the manager applies; they carry no engine semantics.
type MacroEvent struct {
	Date   string
	Name   string
	Impact string
}

// PriceAdjuster applies an advisory drift factor to reference prices.
type PriceAdjuster interface {
	ApplyDrift(factor float64)
}

// MacroEventManager keeps the macro events calendar and periodically
// drifts the displayed reference prices by a random factor within
// ±maxImpact. Resting orders and matching decisions are never touched;
// the drift is purely a reference-price feed for the UI and the bots.
type MacroEventManager struct {
	interval  time.Duration
	maxImpact float64 // e.g. 0.05 for ±5%
	market    PriceAdjuster
	logger    *slog.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	events []MacroEvent
}

// NewMacroEventManager creates a manager seeded with the given events
// calendar.
func NewMacroEventManager(
	interval time.Duration,
	maxImpact float64,
	market PriceAdjuster,
	events []MacroEvent,
	rng *rand.Rand,
	logger *slog.Logger,
) *MacroEventManager {
	return &MacroEventManager{
		interval:  interval,
		maxImpact: maxImpact,
		market:    market,
		events:    append([]MacroEvent(nil), events...),
		rng:       rng,
		logger:    logger,
	}
}

// Events returns a copy of the events calendar.
func (m *MacroEventManager) Events() []MacroEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MacroEvent(nil), m.events...)
}

// Add appends an event to the calendar.
func (m *MacroEventManager) Add(e MacroEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

// Start launches a background goroutine that applies a drift at the
// configured interval. It stops when ctx is cancelled.
func (m *MacroEventManager) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Tick()
			}
		}
	}()
}

// Tick applies one random drift factor within ±maxImpact.
func (m *MacroEventManager) Tick() {
	m.mu.Lock()
	factor := 1 + (m.rng.Float64()*2-1)*m.maxImpact
	m.mu.Unlock()

	m.market.ApplyDrift(factor)
	if m.logger != nil {
		m.logger.Debug("macro drift applied", slog.Float64("factor", factor))
	}
}
