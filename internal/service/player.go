package service

import (
	"sort"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/store"
)

// Portfolio is a player's position derived by replaying the trade
// ledger: cash moves at execution prices, holdings accumulate per
// symbol, and PnL marks open holdings at the current reference price.
type Portfolio struct {
	PlayerID    string
	Cash        int64 // cents, starting cash plus realized trade flows
	Holdings    map[string]int64
	MarketValue int64 // holdings at reference prices
	PnL         int64 // cash + market value − starting cash
	ComputedAt  time.Time
}

// Ranking is one row of the leaderboard.
type Ranking struct {
	PlayerID    string
	DisplayName string
	PnL         int64
}

// PlayerService handles player registration and the PnL reporting the
// dashboard consumes. It is a pure reader of the engine's outputs: the
// ledger and order ownership, never the books.
type PlayerService struct {
	players      *store.PlayerStore
	orders       *store.OrderStore
	ledger       *store.TradeLedger
	market       *MarketService
	startingCash int64 // cents, applied to every new player
}

// NewPlayerService creates a new PlayerService with the given dependencies.
func NewPlayerService(
	players *store.PlayerStore,
	orders *store.OrderStore,
	ledger *store.TradeLedger,
	market *MarketService,
	startingCash int64,
) *PlayerService {
	return &PlayerService{
		players:      players,
		orders:       orders,
		ledger:       ledger,
		market:       market,
		startingCash: startingCash,
	}
}

// Register creates a new player with the configured starting cash.
func (s *PlayerService) Register(playerID, displayName string, bot bool) (*domain.Player, error) {
	if !playerIDRegex.MatchString(playerID) {
		return nil, &domain.ValidationError{
			Message: "player_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if displayName == "" {
		displayName = playerID
	}

	p := &domain.Player{
		PlayerID:     playerID,
		DisplayName:  displayName,
		StartingCash: s.startingCash,
		Bot:          bot,
		CreatedAt:    time.Now(),
	}
	if err := s.players.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get retrieves a player by id.
func (s *PlayerService) Get(playerID string) (*domain.Player, error) {
	return s.players.Get(playerID)
}

// Portfolio computes the player's current position from the ledger.
func (s *PlayerService) Portfolio(playerID string) (*Portfolio, error) {
	p, err := s.players.Get(playerID)
	if err != nil {
		return nil, err
	}

	pf := &Portfolio{
		PlayerID:   p.PlayerID,
		Cash:       p.StartingCash,
		Holdings:   make(map[string]int64),
		ComputedAt: time.Now(),
	}

	for _, t := range s.ledger.All() {
		if buy, err := s.orders.Get(t.BuyOrderID); err == nil && buy.PlayerID == p.PlayerID {
			pf.Cash -= t.Price * t.Quantity
			pf.Holdings[t.Symbol] += t.Quantity
		}
		if sell, err := s.orders.Get(t.SellOrderID); err == nil && sell.PlayerID == p.PlayerID {
			pf.Cash += t.Price * t.Quantity
			pf.Holdings[t.Symbol] -= t.Quantity
		}
	}

	refPrices := s.market.ReferencePrices()
	for sym, qty := range pf.Holdings {
		pf.MarketValue += qty * refPrices[sym]
	}
	pf.PnL = pf.Cash + pf.MarketValue - p.StartingCash

	return pf, nil
}

// Rankings returns all players ordered by PnL descending, ties broken
// by player id for a stable leaderboard.
func (s *PlayerService) Rankings() ([]Ranking, error) {
	players := s.players.List()
	rankings := make([]Ranking, 0, len(players))

	for _, p := range players {
		pf, err := s.Portfolio(p.PlayerID)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, Ranking{
			PlayerID:    p.PlayerID,
			DisplayName: p.DisplayName,
			PnL:         pf.PnL,
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].PnL != rankings[j].PnL {
			return rankings[i].PnL > rankings[j].PnL
		}
		return rankings[i].PlayerID < rankings[j].PlayerID
	})
	return rankings, nil
}
