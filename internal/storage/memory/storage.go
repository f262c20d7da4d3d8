package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players           map[model.PlayerID]*model.Player
	registeredPlayers map[model.PlayerID]*model.RegisteredPlayer
	usernameIndex     map[string]model.PlayerID
	stats             map[model.PlayerID]*model.PlayerStats
	results           map[model.PlayerID][]*model.GameResult
	invites           map[model.InviteID]*model.Invite
	friendRequests    map[model.PlayerID]map[model.PlayerID]*model.FriendRequest // to -> from
	friends           map[model.PlayerID]map[model.PlayerID]bool
	chats             map[string][]*model.ChatMessage
	lastRead          map[model.PlayerID]map[model.PlayerID]time.Time
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:           make(map[model.PlayerID]*model.Player),
		registeredPlayers: make(map[model.PlayerID]*model.RegisteredPlayer),
		usernameIndex:     make(map[string]model.PlayerID),
		stats:             make(map[model.PlayerID]*model.PlayerStats),
		results:           make(map[model.PlayerID][]*model.GameResult),
		invites:           make(map[model.InviteID]*model.Invite),
		friendRequests:    make(map[model.PlayerID]map[model.PlayerID]*model.FriendRequest),
		friends:           make(map[model.PlayerID]map[model.PlayerID]bool),
		chats:             make(map[string][]*model.ChatMessage),
		lastRead:          make(map[model.PlayerID]map[model.PlayerID]time.Time),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registeredPlayers[rp.PlayerID] = rp
	s.usernameIndex[rp.Username] = rp.PlayerID
	return nil
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	rp, ok := s.registeredPlayers[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return rp, nil
}

func (s *Storage) SearchRegisteredPlayers(ctx context.Context, text string, limit int) ([]*model.RegisteredPlayer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []*model.RegisteredPlayer{}
	for username, id := range s.usernameIndex {
		if !model.MatchesSearch(username, text) {
			continue
		}
		if rp, ok := s.registeredPlayers[id]; ok {
			out := *rp
			matches = append(matches, &out)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Username < matches[j].Username
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Statistics operations

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsFor(id).Wins++
	return nil
}

func (s *Storage) IncrementLosses(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsFor(id).Losses++
	return nil
}

func (s *Storage) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.stats[id]
	if !ok {
		return &model.PlayerStats{PlayerID: id}, nil
	}
	out := *stats
	return &out, nil
}

// statsFor returns the mutable counters for id. Caller holds the write lock.
func (s *Storage) statsFor(id model.PlayerID) *model.PlayerStats {
	stats, ok := s.stats[id]
	if !ok {
		stats = &model.PlayerStats{PlayerID: id}
		s.stats[id] = stats
	}
	return stats
}

// Game history operations

func (s *Storage) SaveGameResult(ctx context.Context, result *model.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range []model.PlayerID{result.Winner, result.Loser} {
		if p == "" {
			continue
		}
		s.results[p] = append([]*model.GameResult{result}, s.results[p]...)
	}
	return nil
}

func (s *Storage) ListGameResults(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := s.results[playerID]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]*model.GameResult, len(results))
	copy(out, results)
	return out, nil
}

// Invite operations

func (s *Storage) SaveInvite(ctx context.Context, invite *model.Invite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *invite
	s.invites[invite.ID] = &stored
	return nil
}

func (s *Storage) GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invite, ok := s.invites[id]
	if !ok {
		return nil, model.ErrInviteNotFound
	}
	out := *invite
	return &out, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id model.InviteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invites, id)
	return nil
}

func (s *Storage) ListInvitesFor(ctx context.Context, to model.PlayerID) ([]*model.Invite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invites := []*model.Invite{}
	for _, invite := range s.invites {
		if invite.To == to {
			out := *invite
			invites = append(invites, &out)
		}
	}
	sort.Slice(invites, func(i, j int) bool {
		return invites[i].SentAt.Before(invites[j].SentAt)
	})
	return invites, nil
}

func (s *Storage) DeleteExpiredInvites(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, invite := range s.invites {
		if invite.Expired(now) {
			delete(s.invites, id)
			removed++
		}
	}
	return removed, nil
}

// Friend operations

func (s *Storage) SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inbox, ok := s.friendRequests[req.To]
	if !ok {
		inbox = make(map[model.PlayerID]*model.FriendRequest)
		s.friendRequests[req.To] = inbox
	}
	stored := *req
	inbox[req.From] = &stored
	return nil
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.friendRequests[to][from]
	if !ok {
		return nil, model.ErrFriendRequestNotFound
	}
	out := *req
	return &out, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friendRequests[to], from)
	return nil
}

func (s *Storage) ListFriendRequestsFor(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	requests := []*model.FriendRequest{}
	for _, req := range s.friendRequests[to] {
		out := *req
		requests = append(requests, &out)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].SentAt.Before(requests[j].SentAt)
	})
	return requests, nil
}

func (s *Storage) AddFriendship(ctx context.Context, a, b model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendSet(a)[b] = true
	s.friendSet(b)[a] = true
	return nil
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friends[a][b], nil
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	friends := make([]model.PlayerID, 0, len(s.friends[id]))
	for friend := range s.friends[id] {
		friends = append(friends, friend)
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i] < friends[j] })
	return friends, nil
}

// friendSet returns the mutable friend set of id. Caller holds the write lock.
func (s *Storage) friendSet(id model.PlayerID) map[model.PlayerID]bool {
	set, ok := s.friends[id]
	if !ok {
		set = make(map[model.PlayerID]bool)
		s.friends[id] = set
	}
	return set
}

// Chat operations

func (s *Storage) SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := model.ChatKey(msg.From, msg.To)
	stored := *msg
	s.chats[key] = append(s.chats[key], &stored)
	return nil
}

func (s *Storage) ListChatMessages(ctx context.Context, a, b model.PlayerID, limit int) ([]*model.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := s.chats[model.ChatKey(a, b)]
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	out := make([]*model.ChatMessage, len(messages))
	for i, msg := range messages {
		m := *msg
		out[i] = &m
	}
	return out, nil
}

func (s *Storage) SetLastRead(ctx context.Context, reader, peer model.PlayerID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	marks, ok := s.lastRead[reader]
	if !ok {
		marks = make(map[model.PlayerID]time.Time)
		s.lastRead[reader] = marks
	}
	marks[peer] = at
	return nil
}

func (s *Storage) GetLastRead(ctx context.Context, reader, peer model.PlayerID) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRead[reader][peer], nil
}
