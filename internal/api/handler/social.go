package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/backgammon/internal/api/middleware"
	"github.com/mcoot/backgammon/internal/api/request"
	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/social"
	"github.com/mcoot/backgammon/internal/ws"
)

// SocialHandler handles friends, search, chat and the home feed
type SocialHandler struct {
	social     *social.Service
	homeServer *ws.HomeServer
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(socialService *social.Service, homeServer *ws.HomeServer) *SocialHandler {
	return &SocialHandler{social: socialService, homeServer: homeServer}
}

// Friends handles GET /api/v1/friends
func (h *SocialHandler) Friends(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	friends, err := h.social.Friends(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendsFromModel(friends))
}

// Requests handles GET /api/v1/friends/requests
func (h *SocialHandler) Requests(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	requests, err := h.social.Requests(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.FriendRequestsFromModel(requests))
}

// SendRequest handles POST /api/v1/friends/requests. A request crossing one
// already pending from the other player makes them friends at once.
func (h *SocialHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.FriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.To == "" {
		WriteError(w, NewInvalidRequestError("to is required"))
		return
	}

	sent, err := h.social.SendRequest(r.Context(), player.ID, model.PlayerID(req.To))
	if err != nil {
		WriteError(w, err)
		return
	}
	if sent == nil {
		response.NoContent(w)
		return
	}

	response.JSON(w, http.StatusCreated, response.FriendRequestFromModel(sent))
}

// AcceptRequest handles POST /api/v1/friends/requests/{from}/accept
func (h *SocialHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.social.AcceptRequest(r.Context(), player.ID, pathPlayer(r, "from")); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// DeclineRequest handles POST /api/v1/friends/requests/{from}/decline
func (h *SocialHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.social.DeclineRequest(r.Context(), player.ID, pathPlayer(r, "from")); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Search handles GET /api/v1/players/search?text=
func (h *SocialHandler) Search(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	players, err := h.social.Search(r.Context(), player.ID, r.URL.Query().Get("text"))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayersFromModel(players))
}

// Online handles GET /api/v1/players/online
func (h *SocialHandler) Online(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.OnlineFromModel(h.social.Online()))
}

// Messages handles GET /api/v1/chat/{friend}/messages
func (h *SocialHandler) Messages(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	messages, err := h.social.Messages(r.Context(), player.ID, pathPlayer(r, "friend"))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ChatMessagesFromModel(messages))
}

// SendMessage handles POST /api/v1/chat/{friend}/messages
func (h *SocialHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	msg, err := h.social.SendMessage(r.Context(), player.ID, pathPlayer(r, "friend"), req.Body)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.ChatMessageFromModel(msg))
}

// MarkRead handles POST /api/v1/chat/{friend}/read
func (h *SocialHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.social.MarkRead(r.Context(), player.ID, pathPlayer(r, "friend")); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// HomeWebSocket handles GET /api/v1/home/ws
func (h *SocialHandler) HomeWebSocket(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.homeServer.Serve(w, r, player.ID); err != nil {
		WriteError(w, err)
	}
}

func pathPlayer(r *http.Request, name string) model.PlayerID {
	return model.PlayerID(mux.Vars(r)[name])
}
