package handler

import (
	"net/http"

	"github.com/blackhelm/tradefloor/internal/sim"
)

// SimHandler exposes the simulation controls: bot deployment and the
// macro events calendar.
type SimHandler struct {
	bots  *sim.BotManager
	macro *sim.MacroEventManager
}

// NewSimHandler creates a new SimHandler.
func NewSimHandler(bots *sim.BotManager, macro *sim.MacroEventManager) *SimHandler {
	return &SimHandler{bots: bots, macro: macro}
}

// deployBotsRequest is the JSON request body for POST /sim/bots.
type deployBotsRequest struct {
	Count int `json:"count"`
}

// botsResponse is the JSON response for bot endpoints.
type botsResponse struct {
	Running int `json:"running"`
}

// DeployBots handles POST /sim/bots.
func (h *SimHandler) DeployBots(w http.ResponseWriter, r *http.Request) {
	var req deployBotsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Count < 1 || req.Count > 100 {
		WriteError(w, http.StatusBadRequest, "invalid_request", "count must be between 1 and 100")
		return
	}

	running, err := h.bots.Deploy(req.Count)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, botsResponse{Running: running})
}

// GetBots handles GET /sim/bots.
func (h *SimHandler) GetBots(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, botsResponse{Running: h.bots.Count()})
}

// macroEventResponse is one calendar entry in GET /macro/events.
type macroEventResponse struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Impact string `json:"impact"`
}

// ListMacroEvents handles GET /macro/events.
func (h *SimHandler) ListMacroEvents(w http.ResponseWriter, r *http.Request) {
	events := h.macro.Events()
	resp := make([]macroEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, macroEventResponse(e))
	}
	WriteJSON(w, http.StatusOK, resp)
}
