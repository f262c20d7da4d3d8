package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/backgammon/internal/api/middleware"
	"github.com/mcoot/backgammon/internal/api/request"
	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/play"
	"github.com/mcoot/backgammon/internal/ws"
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	table    *play.Service
	wsServer *ws.Server
	clock    clock.Clock
}

// NewGameHandler creates a new game handler
func NewGameHandler(table *play.Service, wsServer *ws.Server, clk clock.Clock) *GameHandler {
	return &GameHandler{
		table:    table,
		wsServer: wsServer,
		clock:    clk,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Opponent == "" {
		WriteError(w, NewInvalidRequestError("opponent is required"))
		return
	}

	state, err := h.table.CreateGame(r.Context(), player.ID, model.PlayerID(req.Opponent), model.GameID(req.GameID))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, http.StatusCreated, state)
}

// CreateBot handles POST /api/v1/games/bot
func (h *GameHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	// The body is optional
	var req request.CreateBotGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	state, err := h.table.CreateBotGame(r.Context(), player.ID, req.Strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, http.StatusCreated, state)
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.table.GameState(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, http.StatusOK, state)
}

// Join handles POST /api/v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.table.JoinGame(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, http.StatusOK, state)
}

// Roll handles POST /api/v1/games/{id}/roll
func (h *GameHandler) Roll(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	dice, err := h.table.Roll(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DiceResponse{Dice: append([]int{}, dice.Rolls...)})
}

// Move handles POST /api/v1/games/{id}/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.From == nil || req.To == nil {
		WriteError(w, NewInvalidRequestError("from and to are required"))
		return
	}

	result, err := h.table.Move(r.Context(), gameID(r), player.ID, model.Move{From: *req.From, To: *req.To})
	if err != nil {
		WriteError(w, err)
		return
	}

	resp := response.MoveResponse{
		Valid: true,
		Hits:  result.Hits,
		State: response.GameStateFromModel(result.State, h.clock.Now()),
	}
	if result.Result != nil {
		over := response.GameResultFromModel(*result.Result)
		resp.GameOver = &over
	}
	response.JSON(w, http.StatusOK, resp)
}

// Moves handles GET /api/v1/games/{id}/moves
func (h *GameHandler) Moves(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	moves, err := h.table.PossibleMoves(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MovesResponse{Moves: response.MovesFromModel(moves)})
}

// EndTurn handles POST /api/v1/games/{id}/end-turn
func (h *GameHandler) EndTurn(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	state, err := h.table.EndTurn(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, http.StatusOK, state)
}

// Timeout handles POST /api/v1/games/{id}/timeout
func (h *GameHandler) Timeout(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.TimeoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	winner, err := h.table.TimerEnded(r.Context(), gameID(r), player.ID, model.PlayerID(req.Player))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.TimeoutResponse{Winner: string(winner)})
}

// WebSocket handles GET /api/v1/games/{id}/ws
func (h *GameHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	if err := h.wsServer.Serve(w, r, gameID(r), player.ID); err != nil {
		WriteError(w, err)
	}
}

func (h *GameHandler) writeState(w http.ResponseWriter, status int, state *model.GameState) {
	response.JSON(w, status, response.GameStateFromModel(state, h.clock.Now()))
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
