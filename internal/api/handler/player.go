package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/backgammon/internal/api/middleware"
	"github.com/mcoot/backgammon/internal/api/request"
	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/auth"
	"github.com/mcoot/backgammon/internal/services/play"
	"github.com/mcoot/backgammon/internal/services/social"
	"github.com/mcoot/backgammon/internal/services/stats"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService  *auth.Service
	statsService *stats.Service
	table        *play.Service
	social       *social.Service
	clock        clock.Clock
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(
	authService *auth.Service,
	statsService *stats.Service,
	table *play.Service,
	socialService *social.Service,
	clk clock.Clock,
) *PlayerHandler {
	return &PlayerHandler{
		authService:  authService,
		statsService: statsService,
		table:        table,
		social:       socialService,
		clock:        clk,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.RegisterPlayer(r.Context(), req.Username, req.Password, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromSession(session))
}

// Login handles POST /api/v1/players/login
func (h *PlayerHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromSession(session))
}

// Logout handles POST /api/v1/players/logout
func (h *PlayerHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := middleware.GetSession(r.Context()); session != nil {
		h.authService.InvalidateSession(session.Token)
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/players/me
func (h *PlayerHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	h.writeProfile(w, r, player.ID)
}

// Get handles GET /api/v1/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, model.PlayerID(mux.Vars(r)["id"]))
}

// PublicProfile handles GET /api/v1/profiles/{id}. Anyone may look; a
// signed-in viewer also learns whether the player is their friend.
func (h *PlayerHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])
	profile, err := h.profile(r, id)
	if err != nil {
		WriteError(w, err)
		return
	}

	out := response.PublicProfile{Profile: *profile, Online: h.social.IsOnline(id)}
	if viewer := middleware.GetPlayer(r.Context()); viewer != nil && viewer.ID != id {
		friends, err := h.social.AreFriends(r.Context(), viewer.ID, id)
		if err != nil {
			WriteError(w, err)
			return
		}
		out.IsFriend = &friends
	}

	response.JSON(w, http.StatusOK, out)
}

// History handles GET /api/v1/players/{id}/history?limit=N
func (h *PlayerHandler) History(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])
	if id == "me" {
		id = middleware.MustGetPlayer(r.Context()).ID
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteError(w, NewInvalidRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	results, err := h.statsService.History(r.Context(), id, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameResultsFromModel(results))
}

// GetMyGame handles GET /api/v1/players/me/game
func (h *PlayerHandler) GetMyGame(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	gameID, ok := h.table.PlayerGame(player.ID)
	if !ok {
		WriteError(w, model.ErrGameNotFound)
		return
	}
	state, err := h.table.GameState(r.Context(), gameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameStateFromModel(state, h.clock.Now()))
}

func (h *PlayerHandler) writeProfile(w http.ResponseWriter, r *http.Request, id model.PlayerID) {
	profile, err := h.profile(r, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, profile)
}

func (h *PlayerHandler) profile(r *http.Request, id model.PlayerID) (*response.Profile, error) {
	player, err := h.authService.LookupPlayer(r.Context(), id)
	if err != nil {
		return nil, err
	}
	record, err := h.statsService.GetStats(r.Context(), id)
	if err != nil {
		return nil, err
	}
	gameID, _ := h.table.PlayerGame(id)

	profile := response.ProfileFromModel(player, record, gameID)
	return &profile, nil
}
