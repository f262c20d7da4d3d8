// Package play runs games on behalf of authenticated players. It checks
// turn ownership, drives the registry and fans the results out as events.
package play

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/bot"
	"github.com/mcoot/backgammon/internal/services/game"
)

// Publisher delivers events to the players of a game
type Publisher interface {
	Publish(event model.Event)
}

// PlayerLookup resolves player ids
type PlayerLookup interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
}

// Service is the table every player action goes through
type Service struct {
	registry  *game.Registry
	players   PlayerLookup
	bots      *bot.Service
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewService creates a new play Service and subscribes it to game over
// notifications. bots may be nil.
func NewService(
	registry *game.Registry,
	players PlayerLookup,
	bots *bot.Service,
	publisher Publisher,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	s := &Service{
		registry:  registry,
		players:   players,
		bots:      bots,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With(slog.String("component", "play")),
	}
	registry.OnGameOver(s.publishGameOver)
	return s
}

// CreateGame registers a game between creator and an existing opponent.
// The opponent is only seated once they join.
func (s *Service) CreateGame(ctx context.Context, creator, opponent model.PlayerID, gameID model.GameID) (*model.GameState, error) {
	if _, err := s.players.GetPlayer(ctx, opponent); err != nil {
		return nil, err
	}
	state, err := s.registry.CreateGame(ctx, creator, opponent, gameID)
	if err != nil {
		return nil, err
	}
	s.publish(state.ID, "", model.EventGameCreated, model.GameCreatedPayload{
		Creator:  creator,
		Opponent: opponent,
	})
	return state, nil
}

// IsPlayerInGame reports whether the player is bound to a live game
func (s *Service) IsPlayerInGame(playerID model.PlayerID) bool {
	return s.registry.IsPlayerInGame(playerID)
}

// PlayerGame returns the live game the player is bound to
func (s *Service) PlayerGame(playerID model.PlayerID) (model.GameID, bool) {
	return s.registry.GetPlayerGame(playerID)
}

// CreateBotGame starts a game between a human and a new bot using strategy
func (s *Service) CreateBotGame(ctx context.Context, human model.PlayerID, strategy string) (*model.GameState, error) {
	if s.bots == nil {
		return nil, bot.ErrUnknownStrategy
	}
	if s.registry.IsPlayerInGame(human) {
		return nil, model.ErrPlayerInGame
	}
	botPlayer, err := s.bots.CreateBotPlayer(ctx, "", strategy)
	if err != nil {
		return nil, err
	}

	state, err := s.CreateGame(ctx, human, botPlayer.ID, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.JoinGame(ctx, state.ID, botPlayer.ID); err != nil {
		return nil, err
	}
	return s.registry.GetGameState(ctx, state.ID)
}

// JoinGame seats a player. The join that starts the game announces it to
// both players and lets a bot on turn play; a later join is a reconnect
// and only the returning player is told the current state.
func (s *Service) JoinGame(ctx context.Context, gameID model.GameID, player model.PlayerID) (*model.GameState, error) {
	state, started, err := s.registry.JoinGame(ctx, gameID, player)
	if err != nil {
		return nil, err
	}

	if !started {
		s.publish(gameID, player, model.EventReconnected, model.ReconnectedPayload{State: state})
		return state, nil
	}

	s.publish(gameID, "", model.EventGameStarted, model.GameStartedPayload{State: state})
	if s.isBot(ctx, state.CurrentPlayer()) {
		s.runBots(ctx, gameID)
	}
	return state, nil
}

// Roll rolls the dice for the player on turn
func (s *Service) Roll(ctx context.Context, gameID model.GameID, player model.PlayerID) (model.Dice, error) {
	dice, err := s.registry.RollDiceAs(ctx, gameID, player)
	if err != nil {
		return model.Dice{}, err
	}
	s.announceRoll(ctx, gameID, player, dice)
	return dice, nil
}

// Move applies a move for the player on turn. An illegal move is reported
// to the mover as an invalid_move event and returned as an error wrapping
// model.ErrInvalidMove.
func (s *Service) Move(ctx context.Context, gameID model.GameID, player model.PlayerID, move model.Move) (*game.MoveResult, error) {
	result, err := s.registry.MoveAs(ctx, gameID, player, move)
	if errors.Is(err, model.ErrInvalidMove) {
		s.publish(gameID, player, model.EventInvalidMove, model.InvalidMovePayload{
			Move:   move,
			Reason: err.Error(),
		})
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if result.Result != nil {
		return result, nil // game_over is published by the listener
	}

	s.publish(gameID, "", model.EventBoardUpdated, model.BoardUpdatedPayload{Move: move, State: result.State})
	if moves, err := s.registry.GetPossibleMoves(ctx, gameID); err == nil {
		s.publish(gameID, player, model.EventPossibleMoves, model.PossibleMovesPayload{Moves: moves})
	}
	return result, nil
}

// PossibleMoves returns the legal moves for the player on turn and sends
// them to the requesting player
func (s *Service) PossibleMoves(ctx context.Context, gameID model.GameID, player model.PlayerID) ([]model.Move, error) {
	if err := s.requireParticipant(ctx, gameID, player); err != nil {
		return nil, err
	}
	moves, err := s.registry.GetPossibleMoves(ctx, gameID)
	if err != nil {
		return nil, err
	}
	s.publish(gameID, player, model.EventPossibleMoves, model.PossibleMovesPayload{Moves: moves})
	return moves, nil
}

// EndTurn passes the turn and rolls for the next player, or lets a bot
// play its turn. It returns the state once the next player is ready.
func (s *Service) EndTurn(ctx context.Context, gameID model.GameID, player model.PlayerID) (*model.GameState, error) {
	state, err := s.registry.EndTurnAs(ctx, gameID, player)
	if err != nil {
		return nil, err
	}
	s.announceTurn(gameID, state)
	s.startTurn(ctx, gameID, state.CurrentPlayer())

	next, err := s.registry.GetGameState(ctx, gameID)
	if errors.Is(err, model.ErrGameNotFound) {
		return state, nil // a bot won during its turn
	}
	return next, err
}

// TimerEnded reports that a clock ran out. A player may always report
// their own clock; reporting the opponent's requires it to have expired
// on the server. It returns the winner.
func (s *Service) TimerEnded(ctx context.Context, gameID model.GameID, reporter, expired model.PlayerID) (model.PlayerID, error) {
	if expired == "" {
		expired = reporter
	}
	state, err := s.registry.GetGameState(ctx, gameID)
	if err != nil {
		return "", err
	}
	if !state.HasPlayer(reporter) || !state.HasPlayer(expired) {
		return "", model.ErrNotParticipant
	}

	if expired != reporter {
		color, _ := state.ColorOf(expired)
		if !state.Timer(color).Expired(s.clock.Now()) {
			return "", model.ErrClockNotExpired
		}
	}
	return s.registry.TimeOut(ctx, gameID, expired)
}

// Disconnect ends the player's live game, if any
func (s *Service) Disconnect(ctx context.Context, player model.PlayerID) (*model.GameResult, bool) {
	return s.registry.HandleDisconnection(ctx, player)
}

// GameState returns a snapshot of a live game
func (s *Service) GameState(ctx context.Context, gameID model.GameID) (*model.GameState, error) {
	return s.registry.GetGameState(ctx, gameID)
}

// startTurn lets a bot play, or rolls for a human
func (s *Service) startTurn(ctx context.Context, gameID model.GameID, player model.PlayerID) {
	if s.isBot(ctx, player) {
		s.runBots(ctx, gameID)
		return
	}
	dice, err := s.registry.RollDiceAs(ctx, gameID, player)
	if err != nil {
		s.logger.Debug("skipped roll for next player",
			slog.String("game_id", string(gameID)),
			slog.String("player_id", string(player)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.announceRoll(ctx, gameID, player, dice)
}

// runBots plays every bot turn in a row and publishes each action. When
// the turn comes back to a human, their dice are rolled.
func (s *Service) runBots(ctx context.Context, gameID model.GameID) {
	if s.bots == nil {
		return
	}
	actions, err := s.bots.ProcessBotActions(ctx, gameID)
	if err != nil {
		s.logger.Error("bot turn failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}

	for _, action := range actions {
		switch action.Type {
		case bot.ActionRoll:
			s.publish(gameID, "", model.EventDiceRolled, model.DiceRolledPayload{Player: action.PlayerID, Dice: action.Dice})
		case bot.ActionMove:
			s.publish(gameID, "", model.EventBoardUpdated, model.BoardUpdatedPayload{Move: action.Move, State: action.State})
		case bot.ActionEndTurn:
			s.announceTurn(gameID, action.State)
		}
	}

	if len(actions) == 0 || actions[len(actions)-1].Type != bot.ActionEndTurn {
		return
	}
	next := actions[len(actions)-1].State
	if next != nil && !s.isBot(ctx, next.CurrentPlayer()) {
		s.startTurn(ctx, gameID, next.CurrentPlayer())
	}
}

func (s *Service) announceRoll(ctx context.Context, gameID model.GameID, player model.PlayerID, dice model.Dice) {
	s.publish(gameID, "", model.EventDiceRolled, model.DiceRolledPayload{Player: player, Dice: dice})
	if moves, err := s.registry.GetPossibleMoves(ctx, gameID); err == nil {
		s.publish(gameID, player, model.EventPossibleMoves, model.PossibleMovesPayload{Moves: moves})
	}
}

func (s *Service) announceTurn(gameID model.GameID, state *model.GameState) {
	s.publish(gameID, "", model.EventTurnChanged, model.TurnChangedPayload{
		CurrentTurn: state.CurrentTurn,
		Player:      state.CurrentPlayer(),
	})
}

func (s *Service) publishGameOver(result model.GameResult) {
	s.publish(result.GameID, "", model.EventGameOver, model.GameOverPayload{Result: result})
}

func (s *Service) requireParticipant(ctx context.Context, gameID model.GameID, player model.PlayerID) error {
	state, err := s.registry.GetGameState(ctx, gameID)
	if err != nil {
		return err
	}
	if !state.HasPlayer(player) {
		return model.ErrNotParticipant
	}
	return nil
}

func (s *Service) isBot(ctx context.Context, player model.PlayerID) bool {
	return s.bots != nil && s.bots.IsBot(ctx, player)
}

func (s *Service) publish(gameID model.GameID, to model.PlayerID, eventType model.EventType, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: s.clock.Now(),
		GameID:    gameID,
		PlayerID:  to,
		Payload:   payload,
	})
}
