package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/blackhelm/tradefloor/internal/domain"
)

func TestWriteDomainError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &domain.ValidationError{Message: "bad"}, http.StatusBadRequest, "invalid_request"},
		{"invalid price", domain.ErrInvalidPrice, http.StatusUnprocessableEntity, "invalid_price"},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity"},
		{"unknown symbol", domain.ErrUnknownSymbol, http.StatusNotFound, "unknown_symbol"},
		{"order not found", domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{"player not found", domain.ErrPlayerNotFound, http.StatusNotFound, "player_not_found"},
		{"player exists", domain.ErrPlayerAlreadyExists, http.StatusConflict, "player_already_exists"},
		{"unexpected", http.ErrServerClosed, http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tt.wantCode)
			}
		})
	}
}

func TestParseJSON_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"player_id":"a","bogus":1}`))
	req.Header.Set("Content-Type", "application/json")

	var out submitOrderRequest
	if err := ParseJSON(req, &out); err == nil {
		t.Error("ParseJSON accepted an unknown field")
	}
}

func TestParseOrderID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint64
		wantErr bool
	}{
		{"1", 1, false},
		{"184467", 184467, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseOrderID(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrderID(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseOrderID(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"", 1, 50, false},
		{"page=3", 3, 50, false},
		{"page=2&limit=10", 2, 10, false},
		{"limit=500", 1, 500, false},
		{"page=0", 0, 0, true},
		{"limit=501", 0, 0, true},
		{"page=x", 0, 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/players/a/orders?"+tt.query, nil)
		page, limit, err := ParsePagination(req)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePagination(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if err == nil && (page != tt.wantPage || limit != tt.wantLimit) {
			t.Errorf("ParsePagination(%q) = %d, %d; want %d, %d", tt.query, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}
