package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/service"
	"github.com/go-chi/chi/v5"
)

// bookDepth is how many aggregated price levels the book endpoint returns per side.
const bookDepth = 20

// MarketHandler handles HTTP requests for market data endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// stockResponse is one row of GET /stocks.
type stockResponse struct {
	Symbol         string  `json:"symbol"`
	ReferencePrice float64 `json:"reference_price"`
}

// ListStocks handles GET /stocks.
func (h *MarketHandler) ListStocks(w http.ResponseWriter, r *http.Request) {
	prices := h.marketSvc.ReferencePrices()

	resp := make([]stockResponse, 0, len(prices))
	for sym, p := range prices {
		resp = append(resp, stockResponse{
			Symbol:         sym,
			ReferencePrice: domain.CentsToDollars(p),
		})
	}
	// Map iteration order is random; keep the payload stable.
	sort.Slice(resp, func(i, j int) bool { return resp[i].Symbol < resp[j].Symbol })
	WriteJSON(w, http.StatusOK, resp)
}

// priceResponse is the JSON response for GET /stocks/{symbol}/price.
type priceResponse struct {
	Symbol         string   `json:"symbol"`
	LastTradePrice *float64 `json:"last_trade_price"`
	LastTradeAt    *string  `json:"last_trade_at"`
	ReferencePrice float64  `json:"reference_price"`
	TradeCount     int      `json:"trade_count"`
}

// GetPrice handles GET /stocks/{symbol}/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	price, err := h.marketSvc.Price(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := priceResponse{
		Symbol:         price.Symbol,
		ReferencePrice: domain.CentsToDollars(price.ReferencePrice),
		TradeCount:     price.TradeCount,
	}
	if price.LastTradePrice != nil {
		f := domain.CentsToDollars(*price.LastTradePrice)
		resp.LastTradePrice = &f
	}
	if price.LastTradeAt != nil {
		s := price.LastTradeAt.Format(time.RFC3339Nano)
		resp.LastTradeAt = &s
	}
	WriteJSON(w, http.StatusOK, resp)
}

// bookLevelResponse is one aggregated price level in the book response.
type bookLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /stocks/{symbol}/book.
type bookResponse struct {
	Symbol     string              `json:"symbol"`
	Bids       []bookLevelResponse `json:"bids"`
	Asks       []bookLevelResponse `json:"asks"`
	Spread     *float64            `json:"spread"`
	SnapshotAt string              `json:"snapshot_at"`
}

// GetBook handles GET /stocks/{symbol}/book.
func (h *MarketHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.marketSvc.Book(chi.URLParam(r, "symbol"), bookDepth)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := bookResponse{
		Symbol:     book.Symbol,
		Bids:       make([]bookLevelResponse, 0, len(book.Bids)),
		Asks:       make([]bookLevelResponse, 0, len(book.Asks)),
		SnapshotAt: book.SnapshotAt.Format(time.RFC3339Nano),
	}
	for _, lvl := range book.Bids {
		resp.Bids = append(resp.Bids, bookLevelResponse{
			Price:         domain.CentsToDollars(lvl.Price),
			TotalQuantity: lvl.TotalQuantity,
			OrderCount:    lvl.OrderCount,
		})
	}
	for _, lvl := range book.Asks {
		resp.Asks = append(resp.Asks, bookLevelResponse{
			Price:         domain.CentsToDollars(lvl.Price),
			TotalQuantity: lvl.TotalQuantity,
			OrderCount:    lvl.OrderCount,
		})
	}
	if book.Spread != nil {
		f := domain.CentsToDollars(*book.Spread)
		resp.Spread = &f
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetTrades handles GET /stocks/{symbol}/trades.
func (h *MarketHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.marketSvc.Trades(chi.URLParam(r, "symbol"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	writeTrades(w, trades)
}

// ListTrades handles GET /trades.
func (h *MarketHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	writeTrades(w, h.marketSvc.AllTrades())
}

func writeTrades(w http.ResponseWriter, trades []*domain.Trade) {
	resp := make([]tradeResponse, 0, len(trades))
	for _, t := range trades {
		resp = append(resp, toTradeResponse(t))
	}
	WriteJSON(w, http.StatusOK, resp)
}
