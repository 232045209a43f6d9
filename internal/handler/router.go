package handler

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/blackhelm/tradefloor/internal/service"
	"github.com/blackhelm/tradefloor/internal/sim"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// NewRouter creates a chi router with all routes registered, request
// logging, CORS for the browser dashboard, and Content-Type validation.
func NewRouter(
	orderSvc *service.OrderService,
	playerSvc *service.PlayerService,
	marketSvc *service.MarketService,
	bots *sim.BotManager,
	macro *sim.MacroEventManager,
	hub *Hub,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(cors.AllowAll().Handler)
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	orderH := NewOrderHandler(orderSvc)
	playerH := NewPlayerHandler(playerSvc, orderSvc)
	marketH := NewMarketHandler(marketSvc)
	simH := NewSimHandler(bots, macro)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Player routes.
	r.Post("/players", playerH.Register)
	r.Get("/players/{player_id}/portfolio", playerH.GetPortfolio)
	r.Get("/players/{player_id}/orders", playerH.ListOrders)
	r.Get("/rankings", playerH.Rankings)

	// Order routes.
	r.Post("/orders", orderH.SubmitOrder)
	r.Get("/orders/{order_id}", orderH.GetOrder)
	r.Delete("/orders/{order_id}", orderH.CancelOrder)

	// Market data routes.
	r.Get("/stocks", marketH.ListStocks)
	r.Get("/stocks/{symbol}/price", marketH.GetPrice)
	r.Get("/stocks/{symbol}/book", marketH.GetBook)
	r.Get("/stocks/{symbol}/trades", marketH.GetTrades)
	r.Get("/trades", marketH.ListTrades)

	// Simulation routes.
	r.Post("/sim/bots", simH.DeployBots)
	r.Get("/sim/bots", simH.GetBots)
	r.Get("/macro/events", simH.ListMacroEvents)

	// Live trade stream.
	r.Get("/ws", hub.ServeWS)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// Hijack forwards to the underlying writer so the websocket upgrade
// works through the logging middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	return hj.Hijack()
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests. If the Content-Type header doesn't start with
// "application/json", it returns 400 Bad Request before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
