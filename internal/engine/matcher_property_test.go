package engine

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// randomFlow drives a matcher with a random sequence of submissions on
// one symbol and returns the orders in submission order.
func randomFlow(t *rapid.T, m *Matcher) []*domain.Order {
	n := rapid.IntRange(1, 40).Draw(t, "n")
	orders := make([]*domain.Order, 0, n)
	for i := 0; i < n; i++ {
		side := domain.OrderSideBuy
		if rapid.Bool().Draw(t, "sell") {
			side = domain.OrderSideSell
		}
		o := &domain.Order{
			PlayerID: "p",
			Side:     side,
			Symbol:   "TEST",
			Price:    rapid.Int64Range(90, 110).Draw(t, "price"),
			Quantity: rapid.Int64Range(1, 20).Draw(t, "qty"),
		}
		if _, err := m.Submit(o); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		orders = append(orders, o)
	}
	return orders
}

func TestProperty_BookNeverCrossedAfterSubmit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _, _ := newTestMatcher("TEST")
		n := rapid.IntRange(1, 40).Draw(t, "n")

		for i := 0; i < n; i++ {
			side := domain.OrderSideBuy
			if rapid.Bool().Draw(t, "sell") {
				side = domain.OrderSideSell
			}
			o := &domain.Order{
				PlayerID: "p",
				Side:     side,
				Symbol:   "TEST",
				Price:    rapid.Int64Range(90, 110).Draw(t, "price"),
				Quantity: rapid.Int64Range(1, 20).Draw(t, "qty"),
			}
			if _, err := m.Submit(o); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			book := m.books.GetOrCreate("TEST")
			bestBid, okB := book.BestBid()
			bestAsk, okA := book.BestAsk()
			if okB && okA && bestBid.Price >= bestAsk.Price {
				t.Fatalf("book crossed after submit: best bid %d >= best ask %d", bestBid.Price, bestAsk.Price)
			}
		}
	})
}

func TestProperty_QuantityConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _, ledger := newTestMatcher("TEST")
		orders := randomFlow(t, m)

		// Per order: filled + remaining + cancelled == original, never negative.
		var totalFilled int64
		for _, o := range orders {
			if o.RemainingQuantity < 0 {
				t.Fatalf("order %d remaining quantity negative: %d", o.ID, o.RemainingQuantity)
			}
			if o.FilledQuantity+o.RemainingQuantity+o.CancelledQuantity != o.Quantity {
				t.Fatalf("order %d: filled %d + remaining %d + cancelled %d != original %d",
					o.ID, o.FilledQuantity, o.RemainingQuantity, o.CancelledQuantity, o.Quantity)
			}
			totalFilled += o.FilledQuantity
		}

		// Each trade consumes equal quantity from both counterparties, so
		// the summed fills are exactly twice the traded volume.
		var traded int64
		for _, tr := range ledger.All() {
			if tr.Quantity <= 0 {
				t.Fatalf("trade %s has non-positive quantity %d", tr.TradeID, tr.Quantity)
			}
			traded += tr.Quantity
		}
		if totalFilled != 2*traded {
			t.Fatalf("sum of fills %d != 2 × traded volume %d", totalFilled, traded)
		}
	})
}

func TestProperty_ExecutionPriceWithinLimits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, orders, ledger := newTestMatcher("TEST")
		randomFlow(t, m)

		// Every execution must respect both counterparties' limits: no
		// seller receives less than their ask, no buyer pays more than
		// their bid.
		for _, tr := range ledger.All() {
			buy, err := orders.Get(tr.BuyOrderID)
			if err != nil {
				t.Fatalf("buy order %d missing from store", tr.BuyOrderID)
			}
			sell, err := orders.Get(tr.SellOrderID)
			if err != nil {
				t.Fatalf("sell order %d missing from store", tr.SellOrderID)
			}
			if tr.Price > buy.Price {
				t.Fatalf("trade price %d exceeds buyer limit %d", tr.Price, buy.Price)
			}
			if tr.Price < sell.Price {
				t.Fatalf("trade price %d below seller limit %d", tr.Price, sell.Price)
			}
		}
	})
}

func TestProperty_RestingOrdersKeepPriorityOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _, _ := newTestMatcher("TEST")
		randomFlow(t, m)

		bids, err := m.Snapshot("TEST", domain.OrderSideBuy)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		for i := 1; i < len(bids); i++ {
			a, b := bids[i-1], bids[i]
			if a.Price < b.Price {
				t.Fatalf("bid %d (price %d) ranked ahead of bid %d (price %d)", a.ID, a.Price, b.ID, b.Price)
			}
			if a.Price == b.Price && a.ID > b.ID {
				t.Fatalf("bid %d ranked ahead of earlier bid %d at same price", a.ID, b.ID)
			}
		}

		asks, err := m.Snapshot("TEST", domain.OrderSideSell)
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		for i := 1; i < len(asks); i++ {
			a, b := asks[i-1], asks[i]
			if a.Price > b.Price {
				t.Fatalf("ask %d (price %d) ranked ahead of ask %d (price %d)", a.ID, a.Price, b.ID, b.Price)
			}
			if a.Price == b.Price && a.ID > b.ID {
				t.Fatalf("ask %d ranked ahead of earlier ask %d at same price", a.ID, b.ID)
			}
		}
	})
}

func TestProperty_NoResidualZeroQuantityOrders(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, _, _ := newTestMatcher("TEST")
		randomFlow(t, m)

		for _, side := range []domain.OrderSide{domain.OrderSideBuy, domain.OrderSideSell} {
			snap, err := m.Snapshot("TEST", side)
			if err != nil {
				t.Fatalf("Snapshot failed: %v", err)
			}
			for _, o := range snap {
				if o.RemainingQuantity <= 0 {
					t.Fatalf("order %d resting with remaining quantity %d", o.ID, o.RemainingQuantity)
				}
			}
		}
	})
}

func TestProperty_CancelAfterRandomFlow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, orderStore, _ := newTestMatcher("TEST")
		orders := randomFlow(t, m)

		// Cancel a random subset; resting orders succeed, terminal
		// orders report not found, and either way they leave the book.
		for _, o := range orders {
			if !rapid.Bool().Draw(t, "cancel") {
				continue
			}
			wasTerminal := o.Terminal()
			_, err := m.Cancel(o.ID)
			if wasTerminal && err == nil {
				t.Fatalf("Cancel(%d) succeeded on terminal order", o.ID)
			}
			if !wasTerminal && err != nil {
				t.Fatalf("Cancel(%d) failed on live order: %v", o.ID, err)
			}

			stored, err := orderStore.Get(o.ID)
			if err != nil {
				t.Fatalf("order %d missing from store", o.ID)
			}
			if !stored.Terminal() && stored.Status != domain.OrderStatusResting && stored.Status != domain.OrderStatusPartiallyFilled {
				t.Fatalf("order %d in unexpected status %s", o.ID, stored.Status)
			}
		}

		// The book must contain no cancelled or filled orders.
		for _, side := range []domain.OrderSide{domain.OrderSideBuy, domain.OrderSideSell} {
			snap, err := m.Snapshot("TEST", side)
			if err != nil {
				t.Fatalf("Snapshot failed: %v", err)
			}
			for _, o := range snap {
				if o.Status == domain.OrderStatusFilled || o.Status == domain.OrderStatusCancelled {
					t.Fatalf("terminal order %d still resting (%s)", o.ID, o.Status)
				}
			}
		}
	})
}
