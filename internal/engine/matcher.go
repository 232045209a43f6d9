package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/store"
)

// Matcher implements the continuous double-auction matching engine
// under price-time priority. Submit and Cancel are synchronous; the
// per-symbol write lock covers the entire matching pass, so two
// submissions for the same symbol never interleave their book
// mutations while different symbols proceed in parallel.
type Matcher struct {
	books   *BookManager
	ids     *IDAllocator
	orders  *store.OrderStore
	ledger  *store.TradeLedger
	symbols *domain.SymbolRegistry
}

// NewMatcher creates a new Matcher with the given dependencies.
func NewMatcher(
	books *BookManager,
	ids *IDAllocator,
	orders *store.OrderStore,
	ledger *store.TradeLedger,
	symbols *domain.SymbolRegistry,
) *Matcher {
	return &Matcher{
		books:   books,
		ids:     ids,
		orders:  orders,
		ledger:  ledger,
		symbols: symbols,
	}
}

// Submit processes an incoming limit order. It validates the order,
// inserts it on its side of the book, then runs the matching loop while
// the book is crossed: pop the best bid and best ask, fill the smaller
// remainder at the resting (earlier-submitted) order's price, and
// requeue partial remainders with their original priority. It returns
// the trades executed during this call, which may be empty.
//
// The caller provides PlayerID, Side, Symbol, Price (cents), and
// Quantity. The matcher assigns ID and SubmittedAt and manages all
// status transitions. Validation failures are reported before any book
// mutation, so a rejected order leaves the book untouched.
func (m *Matcher) Submit(order *domain.Order) ([]*domain.Trade, error) {
	if order.Price <= 0 {
		return nil, domain.ErrInvalidPrice
	}
	if order.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if !m.symbols.Exists(order.Symbol) {
		return nil, domain.ErrUnknownSymbol
	}

	book := m.books.GetOrCreate(order.Symbol)
	book.mu.Lock()
	defer book.mu.Unlock()

	order.ID = m.ids.Next()
	order.SubmittedAt = time.Now()
	order.FilledQuantity = 0
	order.RemainingQuantity = order.Quantity
	order.CancelledQuantity = 0
	order.Status = domain.OrderStatusResting
	order.Trades = []*domain.Trade{}

	m.orders.Create(order)

	book.Insert(OrderBookEntry{
		Price:       order.Price,
		SubmittedAt: order.SubmittedAt,
		OrderID:     order.ID,
		Order:       order,
	})

	var trades []*domain.Trade
	for book.Crossed() {
		bid, _ := book.PopBestBid()
		ask, _ := book.PopBestAsk()

		fillQty := bid.Order.RemainingQuantity
		if ask.Order.RemainingQuantity < fillQty {
			fillQty = ask.Order.RemainingQuantity
		}

		// Maker-price rule: the trade prints at the price of the order
		// that was resting when its counterparty arrived, i.e. the
		// earlier submission of the pair. The taker's limit is never
		// improved and the maker's quote is never worsened.
		maker := bid
		if earlier(ask, bid) {
			maker = ask
		}

		applyFill(bid.Order, fillQty)
		applyFill(ask.Order, fillQty)

		trade := &domain.Trade{
			TradeID:     uuid.New().String(),
			BuyOrderID:  bid.OrderID,
			SellOrderID: ask.OrderID,
			Symbol:      order.Symbol,
			Price:       maker.Price,
			Quantity:    fillQty,
			ExecutedAt:  time.Now(),
		}
		bid.Order.Trades = append(bid.Order.Trades, trade)
		ask.Order.Trades = append(ask.Order.Trades, trade)

		m.ledger.Append(trade)
		trades = append(trades, trade)

		// Requeue partial remainders with their original entries: the
		// unchanged (price, submitted_at, id) tuple preserves queue
		// priority. Fully filled orders stay off the book.
		if bid.Order.RemainingQuantity > 0 {
			book.Insert(bid)
		}
		if ask.Order.RemainingQuantity > 0 {
			book.Insert(ask)
		}
	}

	return trades, nil
}

// Cancel removes a resting or partially filled order from the book.
// Fully filled and already-cancelled orders report ErrOrderNotFound,
// as does an id that was never issued.
func (m *Matcher) Cancel(orderID uint64) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.Terminal() {
		return nil, domain.ErrOrderNotFound
	}

	book := m.books.GetOrCreate(order.Symbol)
	book.mu.Lock()
	defer book.mu.Unlock()

	// Re-check under lock — a concurrent submission may have filled it.
	if order.Terminal() {
		return nil, domain.ErrOrderNotFound
	}
	if _, ok := book.Remove(order.ID); !ok {
		return nil, domain.ErrOrderNotFound
	}

	now := time.Now()
	order.CancelledQuantity = order.RemainingQuantity
	order.RemainingQuantity = 0
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now

	return order, nil
}

// Snapshot returns value copies of one side of a symbol's book in
// priority order. The read lock guarantees a consistent point-in-time
// view that never observes a mid-loop crossed book.
func (m *Matcher) Snapshot(symbol string, side domain.OrderSide) ([]domain.Order, error) {
	if !m.symbols.Exists(symbol) {
		return nil, domain.ErrUnknownSymbol
	}

	book := m.books.GetOrCreate(symbol)
	book.mu.RLock()
	defer book.mu.RUnlock()

	if side == domain.OrderSideBuy {
		return book.SnapshotBids(), nil
	}
	return book.SnapshotAsks(), nil
}

// applyFill decrements an order's remaining quantity by the fill and
// advances its status. A negative remainder means the matching loop
// itself is broken, so it panics rather than returning an error.
func applyFill(o *domain.Order, qty int64) {
	o.RemainingQuantity -= qty
	o.FilledQuantity += qty
	if o.RemainingQuantity < 0 {
		panic(fmt.Sprintf("engine: order %d remaining quantity went negative", o.ID))
	}
	if o.RemainingQuantity == 0 {
		o.Status = domain.OrderStatusFilled
	} else {
		o.Status = domain.OrderStatusPartiallyFilled
	}
}

// earlier reports whether a was submitted before b, using the issue
// order of ids to break exact-time ties.
func earlier(a, b OrderBookEntry) bool {
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.OrderID < b.OrderID
}
