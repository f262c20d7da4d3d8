package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/storage"
)

// Notifier delivers notifications to connected players
type Notifier interface {
	Notify(n model.Notification)
}

// Presence answers who is currently online
type Presence interface {
	IsOnline(playerID model.PlayerID) bool
	Online() []model.PlayerID
}

// InviteLister returns the open game invites addressed to a player
type InviteLister interface {
	List(ctx context.Context, to model.PlayerID) ([]*model.Invite, error)
}

// Service manages friendships, friend requests, player search and chat
type Service struct {
	storage  storage.Storage
	presence Presence
	invites  InviteLister
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new social Service
func New(
	storage storage.Storage,
	presence Presence,
	invites InviteLister,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:  storage,
		presence: presence,
		invites:  invites,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With(slog.String("component", "social")),
	}
}

// SendRequest asks to befriend another player. A request crossing one
// already pending in the other direction accepts it instead, in which case
// the returned request is nil.
func (s *Service) SendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	if from == to {
		return nil, model.ErrFriendSelf
	}
	if _, err := s.storage.GetPlayer(ctx, to); err != nil {
		return nil, err
	}
	friends, err := s.storage.AreFriends(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, model.ErrAlreadyFriends
	}

	if _, err := s.storage.GetFriendRequest(ctx, from, to); err == nil {
		return nil, model.ErrFriendRequestExists
	} else if !errors.Is(err, model.ErrFriendRequestNotFound) {
		return nil, err
	}
	if _, err := s.storage.GetFriendRequest(ctx, to, from); err == nil {
		return nil, s.AcceptRequest(ctx, from, to)
	} else if !errors.Is(err, model.ErrFriendRequestNotFound) {
		return nil, err
	}

	req := &model.FriendRequest{From: from, To: to, SentAt: s.clock.Now()}
	if err := s.storage.SaveFriendRequest(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("friend request sent",
		slog.String("from", string(from)),
		slog.String("to", string(to)))
	s.notify(to, model.NotifyFriendRequest, model.FriendRequestPayload{Request: *req})
	return req, nil
}

// Requests returns the pending requests addressed to a player, oldest first
func (s *Service) Requests(ctx context.Context, playerID model.PlayerID) ([]*model.FriendRequest, error) {
	return s.storage.ListFriendRequestsFor(ctx, playerID)
}

// AcceptRequest makes player and the request's sender friends
func (s *Service) AcceptRequest(ctx context.Context, player, from model.PlayerID) error {
	if _, err := s.storage.GetFriendRequest(ctx, from, player); err != nil {
		return err
	}
	if err := s.storage.AddFriendship(ctx, player, from); err != nil {
		return fmt.Errorf("add friendship: %w", err)
	}
	if err := s.storage.DeleteFriendRequest(ctx, from, player); err != nil {
		s.logger.Warn("failed to delete accepted friend request",
			slog.String("from", string(from)),
			slog.String("to", string(player)),
			slog.String("error", err.Error()))
	}

	s.logger.Info("friend request accepted",
		slog.String("from", string(from)),
		slog.String("to", string(player)))
	s.notify(from, model.NotifyFriendAccepted, model.FriendAnsweredPayload{Player: player})
	return nil
}

// DeclineRequest drops a pending request and tells its sender
func (s *Service) DeclineRequest(ctx context.Context, player, from model.PlayerID) error {
	if _, err := s.storage.GetFriendRequest(ctx, from, player); err != nil {
		return err
	}
	if err := s.storage.DeleteFriendRequest(ctx, from, player); err != nil {
		return err
	}
	s.notify(from, model.NotifyFriendDeclined, model.FriendAnsweredPayload{Player: player})
	return nil
}

// Friends lists a player's friends with their record, presence and whether
// they have sent messages the player has not read
func (s *Service) Friends(ctx context.Context, playerID model.PlayerID) ([]*model.Friend, error) {
	ids, err := s.storage.ListFriends(ctx, playerID)
	if err != nil {
		return nil, err
	}

	friends := make([]*model.Friend, 0, len(ids))
	for _, id := range ids {
		player, err := s.storage.GetPlayer(ctx, id)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		stats, err := s.storage.GetPlayerStats(ctx, id)
		if err != nil {
			return nil, err
		}
		unread, err := s.hasUnread(ctx, playerID, id)
		if err != nil {
			return nil, err
		}
		friends = append(friends, &model.Friend{
			Player:            player,
			Stats:             *stats,
			Online:            s.presence.IsOnline(id),
			HasUnreadMessages: unread,
		})
	}
	return friends, nil
}

// AreFriends reports whether two players are friends
func (s *Service) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	return s.storage.AreFriends(ctx, a, b)
}

// Search finds registered players whose username contains text. The
// searching player is left out of the results.
func (s *Service) Search(ctx context.Context, viewer model.PlayerID, text string) ([]*model.Player, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []*model.Player{}, nil
	}

	found, err := s.storage.SearchRegisteredPlayers(ctx, text, model.MaxSearchResults+1)
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(found))
	for _, rp := range found {
		if rp.PlayerID == viewer {
			continue
		}
		player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, player)
		if len(players) == model.MaxSearchResults {
			break
		}
	}
	return players, nil
}

// Online returns the players with a live home connection
func (s *Service) Online() []model.PlayerID {
	return s.presence.Online()
}

// IsOnline reports whether a player has a live home connection
func (s *Service) IsOnline(playerID model.PlayerID) bool {
	return s.presence.IsOnline(playerID)
}

// SendMessage stores a chat message between friends and delivers it
func (s *Service) SendMessage(ctx context.Context, from, to model.PlayerID, body string) (*model.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, model.ErrEmptyMessage
	}
	if utf8.RuneCountInString(body) > model.MaxChatMessageLength {
		return nil, model.ErrMessageTooLong
	}
	if err := s.requireFriends(ctx, from, to); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{From: from, To: to, Body: body, SentAt: s.clock.Now()}
	if err := s.storage.SaveChatMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.notify(to, model.NotifyChatMessage, model.ChatMessagePayload{Message: *msg})
	return msg, nil
}

// Messages returns the recent conversation between two friends, oldest first
func (s *Service) Messages(ctx context.Context, player, friend model.PlayerID) ([]*model.ChatMessage, error) {
	if err := s.requireFriends(ctx, player, friend); err != nil {
		return nil, err
	}
	return s.storage.ListChatMessages(ctx, player, friend, model.RecentChatMessages)
}

// MarkRead records that player has read the conversation with friend up to
// its latest message. The mark never moves backwards.
func (s *Service) MarkRead(ctx context.Context, player, friend model.PlayerID) error {
	latest, err := s.storage.ListChatMessages(ctx, player, friend, 1)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return nil
	}
	current, err := s.storage.GetLastRead(ctx, player, friend)
	if err != nil {
		return err
	}
	if !latest[0].SentAt.After(current) {
		return nil
	}
	return s.storage.SetLastRead(ctx, player, friend, latest[0].SentAt)
}

// Snapshot gathers what a player sees on opening their home feed
func (s *Service) Snapshot(ctx context.Context, playerID model.PlayerID) (*model.HomeSnapshotPayload, error) {
	requests, err := s.Requests(ctx, playerID)
	if err != nil {
		return nil, err
	}
	friends, err := s.Friends(ctx, playerID)
	if err != nil {
		return nil, err
	}
	invites := []*model.Invite{}
	if s.invites != nil {
		if invites, err = s.invites.List(ctx, playerID); err != nil {
			return nil, err
		}
	}
	return &model.HomeSnapshotPayload{
		Requests: requests,
		Invites:  invites,
		Friends:  friends,
		Online:   s.presence.Online(),
	}, nil
}

// PresenceChanged tells a player's friends that they came online or left
func (s *Service) PresenceChanged(playerID model.PlayerID, online bool) {
	ctx := context.Background()
	friends, err := s.storage.ListFriends(ctx, playerID)
	if err != nil {
		s.logger.Warn("failed to list friends for presence",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
		return
	}
	for _, friend := range friends {
		s.notify(friend, model.NotifyPresenceChanged, model.PresencePayload{Player: playerID, Online: online})
	}
}

func (s *Service) requireFriends(ctx context.Context, a, b model.PlayerID) error {
	if _, err := s.storage.GetPlayer(ctx, b); err != nil {
		return err
	}
	friends, err := s.storage.AreFriends(ctx, a, b)
	if err != nil {
		return err
	}
	if !friends {
		return model.ErrNotFriends
	}
	return nil
}

// hasUnread reports whether friend sent anything after reader's last-read mark
func (s *Service) hasUnread(ctx context.Context, reader, friend model.PlayerID) (bool, error) {
	lastRead, err := s.storage.GetLastRead(ctx, reader, friend)
	if err != nil {
		return false, err
	}
	messages, err := s.storage.ListChatMessages(ctx, reader, friend, 0)
	if err != nil {
		return false, err
	}
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if !msg.SentAt.After(lastRead) {
			break
		}
		if msg.From == friend {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) notify(to model.PlayerID, typ model.NotificationType, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(model.Notification{
		Type:      typ,
		Timestamp: s.clock.Now(),
		To:        to,
		Payload:   payload,
	})
}
