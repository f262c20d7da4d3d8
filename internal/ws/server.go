package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/play"
)

// Inbound action names
const (
	ActionJoin          = "join"
	ActionRoll          = "roll"
	ActionMove          = "move"
	ActionPossibleMoves = "possible_moves"
	ActionEndTurn       = "end_turn"
	ActionTimerEnded    = "timer_ended"
)

// Action is a message sent by a client
type Action struct {
	Action string `json:"action"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	// Expired names the player whose clock ran out; empty means the sender
	Expired string `json:"expired,omitempty"`
}

// Server upgrades game connections and runs inbound actions through the table
type Server struct {
	hubs     *HubManager
	table    *play.Service
	clock    clock.Clock
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a new Server. A player whose last connection to a live
// game closes forfeits that game.
func NewServer(hubs *HubManager, table *play.Service, clk clock.Clock, logger *slog.Logger) *Server {
	s := &Server{
		hubs:  hubs,
		table: table,
		clock: clk,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws-server")),
	}
	hubs.OnPlayerLeft(s.playerLeft)
	return s
}

// Serve upgrades the request for an authenticated participant of gameID.
// Errors before the upgrade are returned for the caller to write.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, gameID model.GameID, playerID model.PlayerID) error {
	state, err := s.table.GameState(r.Context(), gameID)
	if err != nil {
		return err
	}
	if !state.HasPlayer(playerID) {
		return model.ErrNotParticipant
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		s.logger.Warn("ws upgrade failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()))
		return nil
	}

	hub := s.hubs.GetOrCreateHub(gameID)
	client := NewClient(hub, conn, playerID)
	hub.Register(client)

	go client.writePump()
	go client.readPump(s.handle)

	s.logger.Info("ws connection established",
		slog.String("game_id", string(gameID)),
		slog.String("player_id", string(playerID)))
	return nil
}

// handle runs one inbound action and reports failures to the sender
func (s *Server) handle(c *Client, message []byte) {
	ctx := context.Background()
	gameID := c.hub.gameID

	var action Action
	if err := json.Unmarshal(message, &action); err != nil {
		s.sendError(gameID, c.playerID, errors.New("malformed message"))
		return
	}

	var err error
	switch action.Action {
	case ActionJoin:
		_, err = s.table.JoinGame(ctx, gameID, c.playerID)
	case ActionRoll:
		_, err = s.table.Roll(ctx, gameID, c.playerID)
	case ActionMove:
		_, err = s.table.Move(ctx, gameID, c.playerID, model.Move{From: action.From, To: action.To})
	case ActionPossibleMoves:
		_, err = s.table.PossibleMoves(ctx, gameID, c.playerID)
	case ActionEndTurn:
		_, err = s.table.EndTurn(ctx, gameID, c.playerID)
	case ActionTimerEnded:
		_, err = s.table.TimerEnded(ctx, gameID, c.playerID, model.PlayerID(action.Expired))
	default:
		err = fmt.Errorf("unknown action %q", action.Action)
	}

	// Rejected moves are already reported as invalid_move
	if err != nil && !errors.Is(err, model.ErrInvalidMove) {
		s.sendError(gameID, c.playerID, err)
	}
}

// playerLeft forfeits the live game the departed player was seated in
func (s *Server) playerLeft(gameID model.GameID, playerID model.PlayerID) {
	ctx := context.Background()
	state, err := s.table.GameState(ctx, gameID)
	if err != nil || !state.HasPlayer(playerID) {
		return
	}
	if result, ok := s.table.Disconnect(ctx, playerID); ok {
		s.logger.Info("player disconnected from game",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(playerID)),
			slog.String("winner", string(result.Winner)))
	}
}

func (s *Server) sendError(gameID model.GameID, playerID model.PlayerID, err error) {
	s.hubs.Publish(model.Event{
		Type:      model.EventGameError,
		Timestamp: s.clock.Now(),
		GameID:    gameID,
		PlayerID:  playerID,
		Payload:   model.GameErrorPayload{Message: err.Error()},
	})
}
