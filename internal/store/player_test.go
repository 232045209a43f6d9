package store

import (
	"errors"
	"testing"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
)

func TestPlayerStore_CreateAndGet(t *testing.T) {
	s := NewPlayerStore()
	p := &domain.Player{PlayerID: "alice", DisplayName: "Alice", StartingCash: 1000000, CreatedAt: time.Now()}

	if err := s.Create(p); err != nil {
		t.Fatalf("Create unexpected error: %v", err)
	}
	got, err := s.Get("alice")
	if err != nil {
		t.Fatalf("Get(alice) unexpected error: %v", err)
	}
	if got != p {
		t.Error("Get(alice) returned a different player than was stored")
	}
}

func TestPlayerStore_CreateDuplicate(t *testing.T) {
	s := NewPlayerStore()
	if err := s.Create(&domain.Player{PlayerID: "alice"}); err != nil {
		t.Fatalf("first Create unexpected error: %v", err)
	}
	if err := s.Create(&domain.Player{PlayerID: "alice"}); !errors.Is(err, domain.ErrPlayerAlreadyExists) {
		t.Errorf("duplicate Create error = %v, want ErrPlayerAlreadyExists", err)
	}
}

func TestPlayerStore_GetMissing(t *testing.T) {
	s := NewPlayerStore()
	if _, err := s.Get("nobody"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("Get(nobody) error = %v, want ErrPlayerNotFound", err)
	}
	if s.Exists("nobody") {
		t.Error("Exists(nobody) = true, want false")
	}
}

func TestPlayerStore_ListRegistrationOrder(t *testing.T) {
	s := NewPlayerStore()
	ids := []string{"carol", "alice", "bob"}
	for _, id := range ids {
		if err := s.Create(&domain.Player{PlayerID: id}); err != nil {
			t.Fatalf("Create(%s) unexpected error: %v", id, err)
		}
	}

	list := s.List()
	if len(list) != len(ids) {
		t.Fatalf("List() returned %d players, want %d", len(list), len(ids))
	}
	for i, p := range list {
		if p.PlayerID != ids[i] {
			t.Errorf("List()[%d] = %s, want %s (registration order)", i, p.PlayerID, ids[i])
		}
	}
}
