package domain

import "time"

// OrderSide indicates whether an order buys or sells.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order. Orders move
// resting → partially_filled → filled; cancellation is possible from
// resting or partially_filled. Filled and cancelled are terminal.
type OrderStatus string

const (
	OrderStatusResting         OrderStatus = "resting"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// Order represents a limit order submitted to the exchange. ID and
// SubmittedAt are assigned by the matching engine; everything else is
// set by the submitter. While resting, the order is owned by the book
// side it sits on and must only be mutated under that symbol's lock.
type Order struct {
	ID                uint64
	PlayerID          string
	Side              OrderSide
	Symbol            string
	Price             int64 // cents
	Quantity          int64
	FilledQuantity    int64
	RemainingQuantity int64
	CancelledQuantity int64
	Status            OrderStatus
	SubmittedAt       time.Time
	CancelledAt       *time.Time
	Trades            []*Trade
}

// Terminal reports whether the order is in a terminal state.
func (o *Order) Terminal() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCancelled
}

// Clone returns a value copy of the order suitable for read-only snapshots.
// The Trades slice is copied so callers cannot observe later executions.
func (o *Order) Clone() Order {
	c := *o
	if o.CancelledAt != nil {
		t := *o.CancelledAt
		c.CancelledAt = &t
	}
	c.Trades = make([]*Trade, len(o.Trades))
	copy(c.Trades, o.Trades)
	return c
}

// AveragePrice computes the volume-weighted average execution price
// as sum(trade.price × trade.quantity) / filled_quantity using integer
// arithmetic. Returns (price, true) when trades exist, or (0, false)
// when no trades have been executed.
func (o *Order) AveragePrice() (int64, bool) {
	if len(o.Trades) == 0 || o.FilledQuantity == 0 {
		return 0, false
	}
	var total int64
	for _, t := range o.Trades {
		total += t.Price * t.Quantity
	}
	return total / o.FilledQuantity, true
}
