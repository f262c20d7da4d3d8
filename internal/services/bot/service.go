package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/game"
	"github.com/mcoot/backgammon/internal/storage"
)

const (
	// PlayerIDAlphabet is the character set for generating bot player IDs
	PlayerIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// PlayerIDLength is the length of generated bot player IDs
	PlayerIDLength = 16
	// MaxBotIterations is a safety limit for the ProcessBotActions loop
	MaxBotIterations = 1000
)

// ErrUnknownStrategy is returned for a strategy name with no registered Strategy
var ErrUnknownStrategy = errors.New("unknown bot strategy")

// BotActionType represents the type of action a bot took
type BotActionType string

const (
	ActionRoll         BotActionType = "roll"
	ActionMove         BotActionType = "move"
	ActionEndTurn      BotActionType = "end_turn"
	ActionGameComplete BotActionType = "game_complete"
)

// BotAction represents a single action taken by a bot during ProcessBotActions
type BotAction struct {
	Type     BotActionType
	PlayerID model.PlayerID
	Dice     model.Dice
	Move     model.Move
	Hits     int
	// State is the game after the action; nil once the game is over
	State *model.GameState
}

// Service manages bot players in the game
type Service struct {
	storage    storage.Storage
	registry   *game.Registry
	strategies map[string]Strategy
	clock      clock.Clock
	random     random.Random
	logger     *slog.Logger
}

// NewService creates a new bot Service
func NewService(
	store storage.Storage,
	registry *game.Registry,
	strategies map[string]Strategy,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:    store,
		registry:   registry,
		strategies: strategies,
		clock:      clk,
		random:     rnd,
		logger:     logger.With(slog.String("component", "bot-service")),
	}
}

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(rnd random.Random) map[string]Strategy {
	return map[string]Strategy{
		model.BotStrategyRandom: NewRandomStrategy(rnd),
		model.BotStrategyRacer:  NewRacerStrategy(),
	}
}

// CreateBotPlayer creates a new bot player and saves it to storage.
// An empty strategy uses model.DefaultBotStrategy.
func (s *Service) CreateBotPlayer(ctx context.Context, displayName string, strategy string) (*model.Player, error) {
	if strategy == "" {
		strategy = model.DefaultBotStrategy
	}
	if _, ok := s.strategies[strategy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}
	if displayName == "" {
		displayName = model.BotStrategyDisplayName(strategy) + " Bot"
	}

	player := &model.Player{
		ID:          model.PlayerID("bot-" + s.random.String(PlayerIDLength, PlayerIDAlphabet)),
		DisplayName: displayName,
		IsGuest:     true,
		IsBot:       true,
		BotStrategy: strategy,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

// IsBot reports whether the player is a stored bot
func (s *Service) IsBot(ctx context.Context, playerID model.PlayerID) bool {
	player, err := s.storage.GetPlayer(ctx, playerID)
	return err == nil && player.IsBot
}

// ProcessBotActions plays every consecutive bot turn of a game: roll,
// move until no legal move remains, end the turn. It stops when a human
// is on turn or the game is over, and returns all actions taken so
// callers can broadcast updates.
func (s *Service) ProcessBotActions(ctx context.Context, gameID model.GameID) ([]BotAction, error) {
	var actions []BotAction

	for range MaxBotIterations {
		g, err := s.registry.GetGameState(ctx, gameID)
		if errors.Is(err, model.ErrGameNotFound) {
			break // finalized
		}
		if err != nil {
			return actions, err
		}
		if g.Status != model.GameStatusInProgress {
			break
		}

		current := g.CurrentPlayer()
		player, err := s.storage.GetPlayer(ctx, current)
		if err != nil {
			return actions, err
		}
		if !player.IsBot {
			break // Human's turn
		}

		if !g.Rolled {
			dice, err := s.registry.RollDice(ctx, gameID)
			if err != nil {
				return actions, err
			}
			g.Dice = dice
			g.Rolled = true
			actions = append(actions, BotAction{Type: ActionRoll, PlayerID: current, Dice: dice, State: g})
			continue
		}

		moves, err := s.registry.GetPossibleMoves(ctx, gameID)
		if err != nil {
			return actions, err
		}
		if len(moves) == 0 {
			next, err := s.registry.EndTurn(ctx, gameID)
			if err != nil {
				return actions, err
			}
			actions = append(actions, BotAction{Type: ActionEndTurn, PlayerID: current, State: next})
			continue
		}

		move := s.strategyForPlayer(player).ChooseMove(g, moves)
		result, err := s.registry.Move(ctx, gameID, move)
		if err != nil {
			return actions, fmt.Errorf("bot %s move %d->%d: %w", current, move.From, move.To, err)
		}

		action := BotAction{Type: ActionMove, PlayerID: current, Move: move, Hits: result.Hits, State: result.State}
		actions = append(actions, action)

		if result.Result != nil {
			actions = append(actions, BotAction{Type: ActionGameComplete, PlayerID: current})
			s.logger.Info("bot won game",
				slog.String("game_id", string(gameID)),
				slog.String("bot_id", string(current)),
			)
			break
		}
	}

	return actions, nil
}

// strategyForPlayer returns the strategy for a bot player, falling back to
// the random strategy if the player's strategy is not found
func (s *Service) strategyForPlayer(player *model.Player) Strategy {
	if st, ok := s.strategies[player.BotStrategy]; ok {
		return st
	}
	if st, ok := s.strategies[model.BotStrategyRandom]; ok {
		return st
	}
	for _, st := range s.strategies {
		return st
	}
	return NewRandomStrategy(s.random)
}
