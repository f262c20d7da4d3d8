package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/backgammon/internal/api/middleware"
	"github.com/mcoot/backgammon/internal/api/request"
	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/invite"
)

// InviteHandler handles invitation endpoints
type InviteHandler struct {
	invites *invite.Service
	clock   clock.Clock
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(invites *invite.Service, clk clock.Clock) *InviteHandler {
	return &InviteHandler{invites: invites, clock: clk}
}

// Send handles POST /api/v1/invites
func (h *InviteHandler) Send(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SendInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.To == "" {
		WriteError(w, NewInvalidRequestError("to is required"))
		return
	}

	inv, err := h.invites.Send(r.Context(), player.ID, model.PlayerID(req.To))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.InviteFromModel(inv))
}

// List handles GET /api/v1/invites
func (h *InviteHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	invites, err := h.invites.List(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.InvitesFromModel(invites))
}

// Accept handles POST /api/v1/invites/{id}/accept
func (h *InviteHandler) Accept(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.InviteID(mux.Vars(r)["id"])

	state, err := h.invites.Accept(r.Context(), id, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameStateFromModel(state, h.clock.Now()))
}

// Decline handles POST /api/v1/invites/{id}/decline
func (h *InviteHandler) Decline(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	id := model.InviteID(mux.Vars(r)["id"])

	if err := h.invites.Decline(r.Context(), id, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	response.NoContent(w)
}
