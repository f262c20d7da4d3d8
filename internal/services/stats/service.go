package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/storage"
)

// DefaultHistoryLimit caps History when no limit is given
const DefaultHistoryLimit = 20

// Service records wins, losses and finished games
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// New creates a new StatsService
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger.With(slog.String("component", "stats")),
	}
}

// RecordWin increments the player's win count
func (s *Service) RecordWin(ctx context.Context, playerID model.PlayerID) error {
	if playerID == "" {
		return model.ErrPlayerNotFound
	}
	if err := s.storage.IncrementWins(ctx, playerID); err != nil {
		return fmt.Errorf("increment wins for %s: %w", playerID, err)
	}
	s.logger.Debug("win recorded", slog.String("player_id", string(playerID)))
	return nil
}

// RecordLoss increments the player's loss count
func (s *Service) RecordLoss(ctx context.Context, playerID model.PlayerID) error {
	if playerID == "" {
		return model.ErrPlayerNotFound
	}
	if err := s.storage.IncrementLosses(ctx, playerID); err != nil {
		return fmt.Errorf("increment losses for %s: %w", playerID, err)
	}
	s.logger.Debug("loss recorded", slog.String("player_id", string(playerID)))
	return nil
}

// RecordResult appends a decided game to both players' history.
// Cancelled games have no winner and are not kept.
func (s *Service) RecordResult(ctx context.Context, result model.GameResult) error {
	if result.Winner == "" {
		return nil
	}
	if err := s.storage.SaveGameResult(ctx, &result); err != nil {
		return fmt.Errorf("save result for game %s: %w", result.GameID, err)
	}
	return nil
}

// GetStats returns the player's counters, zero if they never finished a game
func (s *Service) GetStats(ctx context.Context, playerID model.PlayerID) (*model.PlayerStats, error) {
	return s.storage.GetPlayerStats(ctx, playerID)
}

// History returns the player's most recent results, newest first
func (s *Service) History(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.GameResult, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.storage.ListGameResults(ctx, playerID, limit)
}
