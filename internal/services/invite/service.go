package invite

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/storage"
)

// GameCreator starts the game for an accepted invite
type GameCreator interface {
	CreateGame(ctx context.Context, creator, opponent model.PlayerID, gameID model.GameID) (*model.GameState, error)
	IsPlayerInGame(playerID model.PlayerID) bool
}

// Notifier delivers social notifications to connected players
type Notifier interface {
	Notify(n model.Notification)
}

// Service manages game invitations between players
type Service struct {
	storage  storage.Storage
	games    GameCreator
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
	ttl      time.Duration
}

// New creates a new InviteService. A non-positive ttl uses model.DefaultInviteTTL.
// notifier may be nil.
func New(
	storage storage.Storage,
	games GameCreator,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
	ttl time.Duration,
) *Service {
	if ttl <= 0 {
		ttl = model.DefaultInviteTTL
	}
	return &Service{
		storage:  storage,
		games:    games,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With(slog.String("component", "invites")),
		ttl:      ttl,
	}
}

// Send invites another player to a game
func (s *Service) Send(ctx context.Context, from, to model.PlayerID) (*model.Invite, error) {
	if from == to {
		return nil, model.ErrInviteSelf
	}
	if _, err := s.storage.GetPlayer(ctx, to); err != nil {
		return nil, err
	}
	if s.games.IsPlayerInGame(from) || s.games.IsPlayerInGame(to) {
		return nil, model.ErrPlayerInGame
	}

	now := s.clock.Now()
	invite := &model.Invite{
		ID:        model.InviteID(uuid.NewString()),
		From:      from,
		To:        to,
		SentAt:    now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.storage.SaveInvite(ctx, invite); err != nil {
		return nil, err
	}

	s.logger.Info("invite sent",
		slog.String("invite_id", string(invite.ID)),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
	if s.notifier != nil {
		s.notifier.Notify(model.Notification{
			Type:      model.NotifyGameInvite,
			Timestamp: now,
			To:        to,
			Payload:   model.GameInvitePayload{Invite: *invite},
		})
	}
	return invite, nil
}

// List returns the unexpired invites addressed to a player, oldest first
func (s *Service) List(ctx context.Context, to model.PlayerID) ([]*model.Invite, error) {
	invites, err := s.storage.ListInvitesFor(ctx, to)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	live := make([]*model.Invite, 0, len(invites))
	for _, invite := range invites {
		if !invite.Expired(now) {
			live = append(live, invite)
		}
	}
	return live, nil
}

// Accept consumes an invite and creates a game between sender and
// recipient. The sender becomes the game's creator.
func (s *Service) Accept(ctx context.Context, id model.InviteID, player model.PlayerID) (*model.GameState, error) {
	invite, err := s.storage.GetInvite(ctx, id)
	if err != nil {
		return nil, err
	}
	if invite.To != player {
		return nil, model.ErrNotInviteTarget
	}
	if invite.Expired(s.clock.Now()) {
		_ = s.storage.DeleteInvite(ctx, id)
		return nil, model.ErrInviteExpired
	}

	state, err := s.games.CreateGame(ctx, invite.From, invite.To, model.GameID(uuid.NewString()))
	if err != nil {
		return nil, err
	}
	if err := s.storage.DeleteInvite(ctx, id); err != nil {
		s.logger.Warn("failed to delete accepted invite",
			slog.String("invite_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("invite accepted",
		slog.String("invite_id", string(id)),
		slog.String("game_id", string(state.ID)),
	)
	return state, nil
}

// Decline removes an invite. Either the recipient or the sender may do so.
func (s *Service) Decline(ctx context.Context, id model.InviteID, player model.PlayerID) error {
	invite, err := s.storage.GetInvite(ctx, id)
	if err != nil {
		return err
	}
	if invite.To != player && invite.From != player {
		return model.ErrNotInviteTarget
	}
	return s.storage.DeleteInvite(ctx, id)
}

// PurgeExpired deletes every expired invite and returns how many were removed
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	removed, err := s.storage.DeleteExpiredInvites(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Debug("expired invites purged", slog.Int("count", removed))
	}
	return removed, nil
}
