package service

import (
	"math"
	"regexp"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/engine"
	"github.com/blackhelm/tradefloor/internal/store"
)

var (
	playerIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	orderSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)
)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusResting:         true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
}

// TradeDispatcher receives executed trades for fan-out to live
// consumers (the websocket stream). Dispatch happens after the matching
// pass has released the book lock, so implementations may block briefly.
type TradeDispatcher interface {
	DispatchTrade(t *domain.Trade)
}

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	PlayerID string
	Side     domain.OrderSide
	Symbol   string
	Price    float64 // dollars
	Quantity int64
}

// OrderService handles order submission, retrieval, cancellation, and
// listing. It owns request-shape validation; the matching engine
// re-validates price, quantity, and symbol before touching the book.
type OrderService struct {
	matcher    *engine.Matcher
	players    *store.PlayerStore
	orders     *store.OrderStore
	dispatcher TradeDispatcher // may be nil
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(
	matcher *engine.Matcher,
	players *store.PlayerStore,
	orders *store.OrderStore,
	dispatcher TradeDispatcher,
) *OrderService {
	return &OrderService{
		matcher:    matcher,
		players:    players,
		orders:     orders,
		dispatcher: dispatcher,
	}
}

// SubmitOrder validates the request, runs the matching engine, and
// dispatches any trades executed to the live stream.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (*domain.Order, []*domain.Trade, error) {
	if !playerIDRegex.MatchString(req.PlayerID) {
		return nil, nil, &domain.ValidationError{
			Message: "player_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}
	if !s.players.Exists(req.PlayerID) {
		return nil, nil, domain.ErrPlayerNotFound
	}
	if req.Side != domain.OrderSideBuy && req.Side != domain.OrderSideSell {
		return nil, nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if !orderSymbolRegex.MatchString(req.Symbol) {
		return nil, nil, &domain.ValidationError{
			Message: "symbol must match ^[A-Z]{1,10}$",
		}
	}
	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) || req.Price <= 0 {
		return nil, nil, domain.ErrInvalidPrice
	}
	cents, err := domain.DollarsToCents(req.Price)
	if err != nil || cents <= 0 {
		return nil, nil, domain.ErrInvalidPrice
	}
	if req.Quantity <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}

	order := &domain.Order{
		PlayerID: req.PlayerID,
		Side:     req.Side,
		Symbol:   req.Symbol,
		Price:    cents,
		Quantity: req.Quantity,
	}

	trades, err := s.matcher.Submit(order)
	if err != nil {
		return nil, nil, err
	}

	// Fan out executions outside the book lock.
	if s.dispatcher != nil {
		for _, t := range trades {
			s.dispatcher.DispatchTrade(t)
		}
	}

	return order, trades, nil
}

// GetOrder retrieves an order by id.
func (s *OrderService) GetOrder(id uint64) (*domain.Order, error) {
	return s.orders.Get(id)
}

// CancelOrder cancels a resting or partially filled order.
func (s *OrderService) CancelOrder(id uint64) (*domain.Order, error) {
	return s.matcher.Cancel(id)
}

// ListPlayerOrders returns a page of the player's orders, newest first,
// optionally filtered by status.
func (s *OrderService) ListPlayerOrders(playerID string, status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if !s.players.Exists(playerID) {
		return nil, 0, domain.ErrPlayerNotFound
	}
	if status != nil && !ValidOrderStatuses[*status] {
		return nil, 0, &domain.ValidationError{
			Message: "status must be one of: resting, partially_filled, filled, cancelled",
		}
	}
	orders, total := s.orders.ListByPlayer(playerID, status, page, limit)
	return orders, total, nil
}

// BookSnapshot returns a read-only view of one side of a symbol's book.
func (s *OrderService) BookSnapshot(symbol string, side domain.OrderSide) ([]domain.Order, error) {
	return s.matcher.Snapshot(symbol, side)
}
