package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/blackhelm/tradefloor/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// WriteDomainError maps a domain error onto an HTTP status code and
// writes the standard error response. Unknown errors become a 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, http.StatusBadRequest, "invalid_request", ve.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidPrice):
		WriteError(w, http.StatusUnprocessableEntity, "invalid_price",
			"price must be a finite number greater than zero with at most 2 decimal places")
	case errors.Is(err, domain.ErrInvalidQuantity):
		WriteError(w, http.StatusUnprocessableEntity, "invalid_quantity",
			"quantity must be a positive integer")
	case errors.Is(err, domain.ErrUnknownSymbol):
		WriteError(w, http.StatusNotFound, "unknown_symbol", "symbol is not traded on this exchange")
	case errors.Is(err, domain.ErrOrderNotFound):
		WriteError(w, http.StatusNotFound, "order_not_found", "order does not exist or is no longer resting")
	case errors.Is(err, domain.ErrPlayerNotFound):
		WriteError(w, http.StatusNotFound, "player_not_found", "player is not registered")
	case errors.Is(err, domain.ErrPlayerAlreadyExists):
		WriteError(w, http.StatusConflict, "player_already_exists", "a player with this id is already registered")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// ParseJSON decodes the request body as JSON into v, rejecting unknown
// fields so malformed payloads fail loudly instead of half-applying.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}

// ParseOrderID parses an order id path parameter.
func ParseOrderID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("order_id must be a positive integer")
	}
	return id, nil
}

// ParsePagination reads 1-based page/limit query parameters with
// defaults and caps.
func ParsePagination(r *http.Request) (page, limit int, err error) {
	page, limit = 1, 50
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return 0, 0, fmt.Errorf("limit must be between 1 and 500")
		}
	}
	return page, limit, nil
}
