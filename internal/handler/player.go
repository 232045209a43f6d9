package handler

import (
	"net/http"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/service"
	"github.com/go-chi/chi/v5"
)

// PlayerHandler handles HTTP requests for player endpoints.
type PlayerHandler struct {
	playerSvc *service.PlayerService
	orderSvc  *service.OrderService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(playerSvc *service.PlayerService, orderSvc *service.OrderService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc, orderSvc: orderSvc}
}

// registerPlayerRequest is the JSON request body for POST /players.
type registerPlayerRequest struct {
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

// playerResponse is the JSON representation of a player.
type playerResponse struct {
	PlayerID     string  `json:"player_id"`
	DisplayName  string  `json:"display_name"`
	StartingCash float64 `json:"starting_cash"`
	Bot          bool    `json:"bot"`
	CreatedAt    string  `json:"created_at"`
}

// portfolioResponse is the JSON response for GET /players/{player_id}/portfolio.
type portfolioResponse struct {
	PlayerID    string             `json:"player_id"`
	Cash        float64            `json:"cash"`
	Holdings    map[string]int64   `json:"holdings"`
	MarketValue float64            `json:"market_value"`
	PnL         float64            `json:"pnl"`
	ComputedAt  string             `json:"computed_at"`
}

// rankingResponse is one leaderboard row in GET /rankings.
type rankingResponse struct {
	PlayerID    string  `json:"player_id"`
	DisplayName string  `json:"display_name"`
	PnL         float64 `json:"pnl"`
}

// Register handles POST /players.
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerPlayerRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	p, err := h.playerSvc.Register(req.PlayerID, req.DisplayName, false)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, playerResponse{
		PlayerID:     p.PlayerID,
		DisplayName:  p.DisplayName,
		StartingCash: domain.CentsToDollars(p.StartingCash),
		Bot:          p.Bot,
		CreatedAt:    p.CreatedAt.Format(time.RFC3339Nano),
	})
}

// GetPortfolio handles GET /players/{player_id}/portfolio.
func (h *PlayerHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	pf, err := h.playerSvc.Portfolio(chi.URLParam(r, "player_id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, portfolioResponse{
		PlayerID:    pf.PlayerID,
		Cash:        domain.CentsToDollars(pf.Cash),
		Holdings:    pf.Holdings,
		MarketValue: domain.CentsToDollars(pf.MarketValue),
		PnL:         domain.CentsToDollars(pf.PnL),
		ComputedAt:  pf.ComputedAt.Format(time.RFC3339Nano),
	})
}

// listOrdersResponse is the JSON response for GET /players/{player_id}/orders.
type listOrdersResponse struct {
	Orders []orderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// ListOrders handles GET /players/{player_id}/orders.
func (h *PlayerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, err := ParsePagination(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := domain.OrderStatus(raw)
		status = &s
	}

	orders, total, err := h.orderSvc.ListPlayerOrders(chi.URLParam(r, "player_id"), status, page, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := listOrdersResponse{
		Orders: make([]orderResponse, 0, len(orders)),
		Total:  total,
		Page:   page,
		Limit:  limit,
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Rankings handles GET /rankings.
func (h *PlayerHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.playerSvc.Rankings()
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := make([]rankingResponse, 0, len(rankings))
	for _, rk := range rankings {
		resp = append(resp, rankingResponse{
			PlayerID:    rk.PlayerID,
			DisplayName: rk.DisplayName,
			PnL:         domain.CentsToDollars(rk.PnL),
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}
