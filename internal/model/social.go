package model

import (
	"strings"
	"time"
)

// Chat limits
const (
	MaxChatMessageLength = 500
	RecentChatMessages   = 20
	MaxSearchResults     = 10
)

// FriendRequest is a pending request from one player to befriend another
type FriendRequest struct {
	From   PlayerID
	To     PlayerID
	SentAt time.Time
}

// Friend is one entry of a player's friend list
type Friend struct {
	Player            *Player
	Stats             PlayerStats
	Online            bool
	HasUnreadMessages bool
}

// ChatMessage is a direct message between two players
type ChatMessage struct {
	From   PlayerID
	To     PlayerID
	Body   string
	SentAt time.Time
}

// ChatKey returns the order-independent key of the conversation between a and b
func ChatKey(a, b PlayerID) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + ":" + string(b)
}

// MatchesSearch reports whether a username contains text, ignoring case
func MatchesSearch(username, text string) bool {
	return strings.Contains(strings.ToLower(username), strings.ToLower(text))
}
