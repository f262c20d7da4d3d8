package redis

import (
	"fmt"

	"github.com/mcoot/backgammon/internal/model"
)

// Key prefix for all backgammon data
const keyPrefix = "bgammon"

// Key generation functions for each entity type

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// usernamesKey returns the Redis SET of every registered username
func usernamesKey() string {
	return fmt.Sprintf("%s:idx:usernames", keyPrefix)
}

// statsKey returns the Redis HASH holding a player's win/loss counters
func statsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:stats:%s", keyPrefix, id)
}

// resultsKey returns the Redis LIST of a player's finished games, newest first
func resultsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:results:%s", keyPrefix, id)
}

// inviteKey returns the Redis key for an Invite
func inviteKey(id model.InviteID) string {
	return fmt.Sprintf("%s:invite:%s", keyPrefix, id)
}

// invitesToIndexKey returns the Redis SET of invite ids addressed to a player
func invitesToIndexKey(to model.PlayerID) string {
	return fmt.Sprintf("%s:idx:invites_to:%s", keyPrefix, to)
}

// inviteExpiryIndexKey returns the Redis ZSET of invite ids scored by expiry
func inviteExpiryIndexKey() string {
	return fmt.Sprintf("%s:idx:invite_expiry", keyPrefix)
}

// friendsKey returns the Redis SET of a player's friends
func friendsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:friends:%s", keyPrefix, id)
}

// friendRequestsKey returns the Redis HASH of pending requests to a player, keyed by sender
func friendRequestsKey(to model.PlayerID) string {
	return fmt.Sprintf("%s:friend_requests:%s", keyPrefix, to)
}

// chatKey returns the Redis LIST of a conversation, newest first
func chatKey(a, b model.PlayerID) string {
	return fmt.Sprintf("%s:chat:%s", keyPrefix, model.ChatKey(a, b))
}

// lastReadKey returns the Redis HASH of a reader's last-read time per peer
func lastReadKey(reader model.PlayerID) string {
	return fmt.Sprintf("%s:chat_read:%s", keyPrefix, reader)
}
