package engine

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// TestProperty_BookInsertRemoveConsistency inserts and removes random
// entries and checks the index and trees never disagree.
func TestProperty_BookInsertRemoveConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		book := NewOrderBook("TEST")
		base := time.Now()
		live := make(map[uint64]domain.OrderSide)
		var nextID uint64

		n := rapid.IntRange(1, 60).Draw(t, "ops")
		for i := 0; i < n; i++ {
			if len(live) == 0 || rapid.Bool().Draw(t, "insert") {
				nextID++
				side := domain.OrderSideBuy
				if rapid.Bool().Draw(t, "sell") {
					side = domain.OrderSideSell
				}
				price := rapid.Int64Range(90, 110).Draw(t, "price")
				at := base.Add(time.Duration(nextID) * time.Millisecond)
				book.Insert(newEntry(nextID, side, price, 1, at))
				live[nextID] = side
			} else {
				var victim uint64
				for id := range live {
					victim = id
					break
				}
				if _, ok := book.Remove(victim); !ok {
					t.Fatalf("Remove(%d) missed a live entry", victim)
				}
				delete(live, victim)
			}
		}

		var wantBids, wantAsks int
		for _, side := range live {
			if side == domain.OrderSideBuy {
				wantBids++
			} else {
				wantAsks++
			}
		}
		if got := book.BidCount(); got != wantBids {
			t.Fatalf("BidCount = %d, want %d", got, wantBids)
		}
		if got := book.AskCount(); got != wantAsks {
			t.Fatalf("AskCount = %d, want %d", got, wantAsks)
		}

		// Draining each side must yield entries in strict priority order
		// and account for every live id exactly once.
		seen := make(map[uint64]bool)
		var prev OrderBookEntry
		first := true
		for {
			e, ok := book.PopBestBid()
			if !ok {
				break
			}
			if !first && bidLess(e, prev) {
				t.Fatalf("bid %d popped after lower-priority bid %d", e.OrderID, prev.OrderID)
			}
			prev, first = e, false
			seen[e.OrderID] = true
		}
		first = true
		for {
			e, ok := book.PopBestAsk()
			if !ok {
				break
			}
			if !first && askLess(e, prev) {
				t.Fatalf("ask %d popped after lower-priority ask %d", e.OrderID, prev.OrderID)
			}
			prev, first = e, false
			seen[e.OrderID] = true
		}
		if len(seen) != len(live) {
			t.Fatalf("drained %d entries, want %d", len(seen), len(live))
		}
		for id := range live {
			if !seen[id] {
				t.Fatalf("live entry %d never popped", id)
			}
		}
	})
}
