package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/storage"
)

const (
	fieldWins   = "wins"
	fieldLosses = "losses"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}
	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var player model.Player
	if err := s.getJSON(ctx, playerKey(id), &player, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Registered player operations

func (s *Storage) SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error {
	data, err := json.Marshal(rp)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, registeredPlayerKey(rp.PlayerID), data, 0) // No TTL
	pipe.Set(ctx, usernameIndexKey(rp.Username), string(rp.PlayerID), 0)
	pipe.SAdd(ctx, usernamesKey(), rp.Username)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error) {
	var rp model.RegisteredPlayer
	if err := s.getJSON(ctx, registeredPlayerKey(playerID), &rp, model.ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return &rp, nil
}

func (s *Storage) GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error) {
	// Look up player ID from username index
	playerIDStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	return s.GetRegisteredPlayer(ctx, model.PlayerID(playerIDStr))
}

func (s *Storage) SearchRegisteredPlayers(ctx context.Context, text string, limit int) ([]*model.RegisteredPlayer, error) {
	var matches []string
	var cursor uint64
	for {
		usernames, next, err := s.client.SScan(ctx, usernamesKey(), cursor, "", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, username := range usernames {
			if model.MatchesSearch(username, text) {
				matches = append(matches, username)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(matches)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	players := make([]*model.RegisteredPlayer, 0, len(matches))
	for _, username := range matches {
		rp, err := s.GetRegisteredPlayerByUsername(ctx, username)
		if errors.Is(err, model.ErrPlayerNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		players = append(players, rp)
	}
	return players, nil
}

// Statistics operations

func (s *Storage) IncrementWins(ctx context.Context, id model.PlayerID) error {
	return s.client.HIncrBy(ctx, statsKey(id), fieldWins, 1).Err()
}

func (s *Storage) IncrementLosses(ctx context.Context, id model.PlayerID) error {
	return s.client.HIncrBy(ctx, statsKey(id), fieldLosses, 1).Err()
}

func (s *Storage) GetPlayerStats(ctx context.Context, id model.PlayerID) (*model.PlayerStats, error) {
	fields, err := s.client.HGetAll(ctx, statsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	stats := &model.PlayerStats{PlayerID: id}
	if v, ok := fields[fieldWins]; ok {
		if stats.Wins, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("parse wins for %s: %w", id, err)
		}
	}
	if v, ok := fields[fieldLosses]; ok {
		if stats.Losses, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("parse losses for %s: %w", id, err)
		}
	}
	return stats, nil
}

// Game history operations

func (s *Storage) SaveGameResult(ctx context.Context, result *model.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, p := range []model.PlayerID{result.Winner, result.Loser} {
		if p == "" {
			continue
		}
		key := resultsKey(p)
		pipe.LPush(ctx, key, data)
		if s.cfg.ResultsPerPlayer > 0 {
			pipe.LTrim(ctx, key, 0, s.cfg.ResultsPerPlayer-1)
		}
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListGameResults(ctx context.Context, playerID model.PlayerID, limit int) ([]*model.GameResult, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	values, err := s.client.LRange(ctx, resultsKey(playerID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	results := make([]*model.GameResult, 0, len(values))
	for _, val := range values {
		var result model.GameResult
		if err := json.Unmarshal([]byte(val), &result); err != nil {
			continue // Skip invalid data
		}
		results = append(results, &result)
	}
	return results, nil
}

// Invite operations

func (s *Storage) SaveInvite(ctx context.Context, invite *model.Invite) error {
	data, err := json.Marshal(invite)
	if err != nil {
		return err
	}

	// Invite, recipient index and expiry index are written together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, inviteKey(invite.ID), data, 0)
	pipe.SAdd(ctx, invitesToIndexKey(invite.To), string(invite.ID))
	pipe.ZAdd(ctx, inviteExpiryIndexKey(), redis.Z{
		Score:  float64(invite.ExpiresAt.UnixMilli()),
		Member: string(invite.ID),
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetInvite(ctx context.Context, id model.InviteID) (*model.Invite, error) {
	var invite model.Invite
	if err := s.getJSON(ctx, inviteKey(id), &invite, model.ErrInviteNotFound); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Storage) DeleteInvite(ctx context.Context, id model.InviteID) error {
	invite, err := s.GetInvite(ctx, id)
	if errors.Is(err, model.ErrInviteNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	s.queueInviteDelete(ctx, pipe, invite.ID, invite.To)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListInvitesFor(ctx context.Context, to model.PlayerID) ([]*model.Invite, error) {
	ids, err := s.client.SMembers(ctx, invitesToIndexKey(to)).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Invite{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = inviteKey(model.InviteID(id))
	}

	// Fetch all invites in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	invites := make([]*model.Invite, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Invite was deleted after the index read
		}
		var invite model.Invite
		if err := json.Unmarshal([]byte(str), &invite); err != nil {
			continue // Skip invalid data
		}
		invites = append(invites, &invite)
	}

	sort.Slice(invites, func(i, j int) bool {
		return invites[i].SentAt.Before(invites[j].SentAt)
	})
	return invites, nil
}

func (s *Storage) DeleteExpiredInvites(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, inviteExpiryIndexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, nil
	}

	removed := 0
	pipe := s.client.TxPipeline()
	for _, id := range ids {
		invite, err := s.GetInvite(ctx, model.InviteID(id))
		if errors.Is(err, model.ErrInviteNotFound) {
			pipe.ZRem(ctx, inviteExpiryIndexKey(), id)
			continue
		}
		if err != nil {
			return 0, err
		}
		s.queueInviteDelete(ctx, pipe, invite.ID, invite.To)
		removed++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return removed, nil
}

// queueInviteDelete adds the commands removing an invite and its index entries
func (s *Storage) queueInviteDelete(ctx context.Context, pipe redis.Pipeliner, id model.InviteID, to model.PlayerID) {
	pipe.Del(ctx, inviteKey(id))
	pipe.SRem(ctx, invitesToIndexKey(to), string(id))
	pipe.ZRem(ctx, inviteExpiryIndexKey(), string(id))
}

// Friend operations

func (s *Storage) SaveFriendRequest(ctx context.Context, req *model.FriendRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, friendRequestsKey(req.To), string(req.From), data).Err()
}

func (s *Storage) GetFriendRequest(ctx context.Context, from, to model.PlayerID) (*model.FriendRequest, error) {
	data, err := s.client.HGet(ctx, friendRequestsKey(to), string(from)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFriendRequestNotFound
		}
		return nil, err
	}
	var req model.FriendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Storage) DeleteFriendRequest(ctx context.Context, from, to model.PlayerID) error {
	return s.client.HDel(ctx, friendRequestsKey(to), string(from)).Err()
}

func (s *Storage) ListFriendRequestsFor(ctx context.Context, to model.PlayerID) ([]*model.FriendRequest, error) {
	values, err := s.client.HVals(ctx, friendRequestsKey(to)).Result()
	if err != nil {
		return nil, err
	}

	requests := make([]*model.FriendRequest, 0, len(values))
	for _, val := range values {
		var req model.FriendRequest
		if err := json.Unmarshal([]byte(val), &req); err != nil {
			continue // Skip invalid data
		}
		requests = append(requests, &req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].SentAt.Before(requests[j].SentAt)
	})
	return requests, nil
}

func (s *Storage) AddFriendship(ctx context.Context, a, b model.PlayerID) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, friendsKey(a), string(b))
	pipe.SAdd(ctx, friendsKey(b), string(a))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) AreFriends(ctx context.Context, a, b model.PlayerID) (bool, error) {
	return s.client.SIsMember(ctx, friendsKey(a), string(b)).Result()
}

func (s *Storage) ListFriends(ctx context.Context, id model.PlayerID) ([]model.PlayerID, error) {
	members, err := s.client.SMembers(ctx, friendsKey(id)).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	friends := make([]model.PlayerID, len(members))
	for i, m := range members {
		friends[i] = model.PlayerID(m)
	}
	return friends, nil
}

// Chat operations

func (s *Storage) SaveChatMessage(ctx context.Context, msg *model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	key := chatKey(msg.From, msg.To)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	if s.cfg.MessagesPerChat > 0 {
		pipe.LTrim(ctx, key, 0, s.cfg.MessagesPerChat-1)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) ListChatMessages(ctx context.Context, a, b model.PlayerID, limit int) ([]*model.ChatMessage, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	values, err := s.client.LRange(ctx, chatKey(a, b), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	// Stored newest first
	messages := make([]*model.ChatMessage, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		var msg model.ChatMessage
		if err := json.Unmarshal([]byte(values[i]), &msg); err != nil {
			continue // Skip invalid data
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (s *Storage) SetLastRead(ctx context.Context, reader, peer model.PlayerID, at time.Time) error {
	return s.client.HSet(ctx, lastReadKey(reader), string(peer), at.UnixNano()).Err()
}

func (s *Storage) GetLastRead(ctx context.Context, reader, peer model.PlayerID) (time.Time, error) {
	raw, err := s.client.HGet(ctx, lastReadKey(reader), string(peer)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last read for %s: %w", reader, err)
	}
	return time.Unix(0, nanos).UTC(), nil
}

// getJSON loads key into dest, mapping a missing key to notFound
func (s *Storage) getJSON(ctx context.Context, key string, dest any, notFound error) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
