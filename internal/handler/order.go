package handler

import (
	"net/http"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	PlayerID string  `json:"player_id"`
	Side     string  `json:"side"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// orderResponse is the JSON representation of an order.
type orderResponse struct {
	OrderID           uint64          `json:"order_id"`
	PlayerID          string          `json:"player_id"`
	Side              string          `json:"side"`
	Symbol            string          `json:"symbol"`
	Price             float64         `json:"price"`
	Quantity          int64           `json:"quantity"`
	FilledQuantity    int64           `json:"filled_quantity"`
	RemainingQuantity int64           `json:"remaining_quantity"`
	CancelledQuantity int64           `json:"cancelled_quantity"`
	Status            string          `json:"status"`
	SubmittedAt       string          `json:"submitted_at"`
	CancelledAt       *string         `json:"cancelled_at"`
	AveragePrice      *float64        `json:"average_price"`
	Trades            []tradeResponse `json:"trades"`
}

// tradeResponse is the JSON representation of a trade.
type tradeResponse struct {
	TradeID     string  `json:"trade_id"`
	BuyOrderID  uint64  `json:"buy_order_id"`
	SellOrderID uint64  `json:"sell_order_id"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Quantity    int64   `json:"quantity"`
	ExecutedAt  string  `json:"executed_at"`
}

func toOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:           o.ID,
		PlayerID:          o.PlayerID,
		Side:              string(o.Side),
		Symbol:            o.Symbol,
		Price:             domain.CentsToDollars(o.Price),
		Quantity:          o.Quantity,
		FilledQuantity:    o.FilledQuantity,
		RemainingQuantity: o.RemainingQuantity,
		CancelledQuantity: o.CancelledQuantity,
		Status:            string(o.Status),
		SubmittedAt:       o.SubmittedAt.Format(time.RFC3339Nano),
		Trades:            make([]tradeResponse, 0, len(o.Trades)),
	}
	if o.CancelledAt != nil {
		s := o.CancelledAt.Format(time.RFC3339Nano)
		resp.CancelledAt = &s
	}
	if avg, ok := o.AveragePrice(); ok {
		f := domain.CentsToDollars(avg)
		resp.AveragePrice = &f
	}
	for _, t := range o.Trades {
		resp.Trades = append(resp.Trades, toTradeResponse(t))
	}
	return resp
}

func toTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:     t.TradeID,
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		Symbol:      t.Symbol,
		Price:       domain.CentsToDollars(t.Price),
		Quantity:    t.Quantity,
		ExecutedAt:  t.ExecutedAt.Format(time.RFC3339Nano),
	}
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, _, err := h.orderSvc.SubmitOrder(service.SubmitOrderRequest{
		PlayerID: req.PlayerID,
		Side:     domain.OrderSide(req.Side),
		Symbol:   req.Symbol,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toOrderResponse(order))
}

// GetOrder handles GET /orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := ParseOrderID(chi.URLParam(r, "order_id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.GetOrder(id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

// CancelOrder handles DELETE /orders/{order_id}.
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := ParseOrderID(chi.URLParam(r, "order_id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.CancelOrder(id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toOrderResponse(order))
}
