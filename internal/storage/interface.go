package storage

import (
	"context"
	"time"

	"github.com/mcoot/backgammon/internal/model"
)

// Storage defines the interface for data persistence.
// Live games are held in memory by the game registry and never stored here.
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)
	// SearchRegisteredPlayers matches usernames containing text, ignoring case, sorted by username
	SearchRegisteredPlayers(ctx context.Context, text string, limit int) ([]*model.RegisteredPlayer, error)

	// Statistics operations
	IncrementWins(ctx context.Context, id model.PlayerID) error
	IncrementLosses(ctx context.Context, id model.PlayerID) error
	GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error)

	// Finished game history, newest first
	SaveGameResult(ctx context.Context, result *model.GameResult) error
	ListGameResults(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.GameResult, error)

	// Invite operations
	SaveInvite(ctx context.Context, invite *model.Invite) error
	GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error)
	DeleteInvite(ctx context.Context, id model.InviteID) error
	ListInvitesFor(ctx context.Context, to model.PlayerID) ([]*model.Invite, error)
	DeleteExpiredInvites(ctx context.Context, now time.Time) (int, error)

	// Friend operations
	SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error
	GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error)
	DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error
	ListFriendRequestsFor(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error)
	AddFriendship(ctx context.Context, a, b model.PlayerID) error
	AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error)
	ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error)

	// Chat operations; messages are listed oldest first
	SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error
	ListChatMessages(ctx context.Context, a, b model.PlayerID, limit int) ([]*model.ChatMessage, error)
	SetLastRead(ctx context.Context, reader, peer model.PlayerID, at time.Time) error
	GetLastRead(ctx context.Context, reader, peer model.PlayerID) (time.Time, error)
}
