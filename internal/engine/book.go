package engine

import (
	"sync"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/google/btree"
)

// OrderBookEntry represents a single order resting on the book. The
// sort tuple (Price, SubmittedAt, OrderID) is captured at insertion
// time and never changes, so a partially filled order reinserted with
// its original entry keeps its original queue priority.
type OrderBookEntry struct {
	Price       int64
	SubmittedAt time.Time
	OrderID     uint64
	Order       *domain.Order
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// bidLess defines ordering for the bid side: price descending, then
// submitted_at ascending, then order id ascending. Ids are issued in
// submission order, so the id comparison breaks exact-time ties while
// preserving time priority. Min() returns the best bid.
func bidLess(a, b OrderBookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.OrderID < b.OrderID
}

// askLess defines ordering for the ask side: price ascending, then
// submitted_at ascending, then order id ascending. Min() returns the
// best ask.
func askLess(a, b OrderBookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.OrderID < b.OrderID
}

// OrderBook maintains the bid and ask sides for a single symbol using
// B-trees with a secondary index for O(log n) removal by order id.
// Methods do not lock; the caller holds ob.mu (write for mutations,
// read for snapshots) so an entire matching pass is one critical section.
type OrderBook struct {
	symbol string
	mu     sync.RWMutex
	bids   *btree.BTreeG[OrderBookEntry]
	asks   *btree.BTreeG[OrderBookEntry]
	index  map[uint64]OrderBookEntry // order id → entry
}

// NewOrderBook creates an order book for the given symbol.
func NewOrderBook(symbol string) *OrderBook {
	const degree = 32
	return &OrderBook{
		symbol: symbol,
		bids:   btree.NewG[OrderBookEntry](degree, bidLess),
		asks:   btree.NewG[OrderBookEntry](degree, askLess),
		index:  make(map[uint64]OrderBookEntry),
	}
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// Insert adds an entry to the book side matching the order's side.
// Reinserting a partially filled order with its original entry is the
// requeue path: the unchanged sort tuple restores its old position.
func (ob *OrderBook) Insert(entry OrderBookEntry) {
	if entry.Order.Side == domain.OrderSideBuy {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by order id using the secondary
// index. Returns the removed entry and whether it was resting.
func (ob *OrderBook) Remove(orderID uint64) (OrderBookEntry, bool) {
	entry, ok := ob.index[orderID]
	if !ok {
		return OrderBookEntry{}, false
	}
	delete(ob.index, orderID)
	if entry.Order.Side == domain.OrderSideBuy {
		ob.bids.Delete(entry)
	} else {
		ob.asks.Delete(entry)
	}
	return entry, true
}

// BestBid returns the highest-priority bid (highest price, earliest time)
// without removing it.
func (ob *OrderBook) BestBid() (OrderBookEntry, bool) {
	return ob.bids.Min()
}

// BestAsk returns the highest-priority ask (lowest price, earliest time)
// without removing it.
func (ob *OrderBook) BestAsk() (OrderBookEntry, bool) {
	return ob.asks.Min()
}

// PopBestBid removes and returns the highest-priority bid.
func (ob *OrderBook) PopBestBid() (OrderBookEntry, bool) {
	entry, ok := ob.bids.DeleteMin()
	if ok {
		delete(ob.index, entry.OrderID)
	}
	return entry, ok
}

// PopBestAsk removes and returns the highest-priority ask.
func (ob *OrderBook) PopBestAsk() (OrderBookEntry, bool) {
	entry, ok := ob.asks.DeleteMin()
	if ok {
		delete(ob.index, entry.OrderID)
	}
	return entry, ok
}

// Crossed reports whether the best bid price has reached the best ask
// price. A crossed book is transient: the matching loop runs until it
// clears and no reader observes it.
func (ob *OrderBook) Crossed() bool {
	bid, okB := ob.bids.Min()
	ask, okA := ob.asks.Min()
	return okB && okA && bid.Price >= ask.Price
}

// SnapshotBids returns value copies of all resting bids in priority order.
func (ob *OrderBook) SnapshotBids() []domain.Order {
	return snapshotSide(ob.bids)
}

// SnapshotAsks returns value copies of all resting asks in priority order.
func (ob *OrderBook) SnapshotAsks() []domain.Order {
	return snapshotSide(ob.asks)
}

func snapshotSide(tree *btree.BTreeG[OrderBookEntry]) []domain.Order {
	orders := make([]domain.Order, 0, tree.Len())
	tree.Ascend(func(entry OrderBookEntry) bool {
		orders = append(orders, entry.Order.Clone())
		return true
	})
	return orders
}

// TopBids returns up to n aggregated price levels from the bid side,
// ordered by price descending.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// ordered by price ascending.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.asks, n)
}

// topLevels iterates the B-tree in order and aggregates entries into
// at most n price levels.
func topLevels(tree *btree.BTreeG[OrderBookEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry OrderBookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Order.RemainingQuantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Order.RemainingQuantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// BidCount returns the number of individual bid orders on the book.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of individual ask orders on the book.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}

// BookManager is a thread-safe map of symbol → OrderBook.
type BookManager struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewBookManager creates a new BookManager.
func NewBookManager() *BookManager {
	return &BookManager{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given symbol, creating
// one if it doesn't already exist. Symbol validity is the matcher's
// concern; the manager creates books for whatever it is asked.
func (bm *BookManager) GetOrCreate(symbol string) *OrderBook {
	bm.mu.RLock()
	book, ok := bm.books[symbol]
	bm.mu.RUnlock()
	if ok {
		return book
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = bm.books[symbol]; ok {
		return book
	}
	book = NewOrderBook(symbol)
	bm.books[symbol] = book
	return book
}
