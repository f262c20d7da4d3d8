package response

import (
	"time"

	"github.com/mcoot/backgammon/internal/model"
)

// FriendRequest is a pending friend request
type FriendRequest struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	SentAt time.Time `json:"sent_at"`
}

// FriendRequestFromModel converts model.FriendRequest
func FriendRequestFromModel(r *model.FriendRequest) FriendRequest {
	return FriendRequest{From: string(r.From), To: string(r.To), SentAt: r.SentAt}
}

// FriendRequestsFromModel converts a request list
func FriendRequestsFromModel(requests []*model.FriendRequest) []FriendRequest {
	out := make([]FriendRequest, len(requests))
	for i, r := range requests {
		out[i] = FriendRequestFromModel(r)
	}
	return out
}

// Friend is one entry of the friend list
type Friend struct {
	Player
	Wins              int  `json:"wins"`
	Losses            int  `json:"losses"`
	Online            bool `json:"online"`
	HasUnreadMessages bool `json:"has_unread_messages"`
}

// FriendsFromModel converts a friend list
func FriendsFromModel(friends []*model.Friend) []Friend {
	out := make([]Friend, len(friends))
	for i, f := range friends {
		out[i] = Friend{
			Player:            PlayerFromModel(f.Player),
			Wins:              f.Stats.Wins,
			Losses:            f.Stats.Losses,
			Online:            f.Online,
			HasUnreadMessages: f.HasUnreadMessages,
		}
	}
	return out
}

// PlayersFromModel converts a player list
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// ChatMessage is one message of a conversation
type ChatMessage struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

// ChatMessageFromModel converts model.ChatMessage
func ChatMessageFromModel(m *model.ChatMessage) ChatMessage {
	return ChatMessage{From: string(m.From), To: string(m.To), Body: m.Body, SentAt: m.SentAt}
}

// ChatMessagesFromModel converts a conversation
func ChatMessagesFromModel(messages []*model.ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(messages))
	for i, m := range messages {
		out[i] = ChatMessageFromModel(m)
	}
	return out
}

// OnlinePlayers lists who is connected
type OnlinePlayers struct {
	Players []string `json:"players"`
}

// OnlineFromModel converts a presence list
func OnlineFromModel(ids []model.PlayerID) OnlinePlayers {
	out := OnlinePlayers{Players: make([]string, len(ids))}
	for i, id := range ids {
		out.Players[i] = string(id)
	}
	return out
}

// HomeSnapshot is the first message on a home connection
type HomeSnapshot struct {
	Requests []FriendRequest `json:"friend_requests"`
	Invites  []Invite        `json:"invites"`
	Friends  []Friend        `json:"friends"`
	Online   []string        `json:"online"`
}

// HomeSnapshotFromModel converts model.HomeSnapshotPayload
func HomeSnapshotFromModel(p *model.HomeSnapshotPayload) HomeSnapshot {
	return HomeSnapshot{
		Requests: FriendRequestsFromModel(p.Requests),
		Invites:  InvitesFromModel(p.Invites),
		Friends:  FriendsFromModel(p.Friends),
		Online:   OnlineFromModel(p.Online).Players,
	}
}

// PublicProfile is a profile as seen by any visitor. IsFriend is only set
// for signed-in viewers.
type PublicProfile struct {
	Profile
	Online   bool  `json:"online"`
	IsFriend *bool `json:"is_friend,omitempty"`
}

// Notification is the JSON form of a message pushed over the home websocket
type Notification struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// PresenceEvent reports a friend's presence
type PresenceEvent struct {
	Player string `json:"player"`
	Online bool   `json:"online"`
}

// FriendAnsweredEvent names who answered a friend request
type FriendAnsweredEvent struct {
	Player string `json:"player"`
}

// NotificationFromModel converts a model.Notification and its payload
func NotificationFromModel(n model.Notification) Notification {
	return Notification{
		Type:      string(n.Type),
		Timestamp: n.Timestamp,
		Payload:   notificationPayload(n.Payload),
	}
}

func notificationPayload(payload any) any {
	switch p := payload.(type) {
	case model.HomeSnapshotPayload:
		return HomeSnapshotFromModel(&p)
	case *model.HomeSnapshotPayload:
		return HomeSnapshotFromModel(p)
	case model.FriendRequestPayload:
		return FriendRequestFromModel(&p.Request)
	case model.FriendAnsweredPayload:
		return FriendAnsweredEvent{Player: string(p.Player)}
	case model.PresencePayload:
		return PresenceEvent{Player: string(p.Player), Online: p.Online}
	case model.ChatMessagePayload:
		return ChatMessageFromModel(&p.Message)
	case model.GameInvitePayload:
		return InviteFromModel(&p.Invite)
	case model.GameErrorPayload:
		return GameErrorEvent{Message: p.Message}
	default:
		return payload
	}
}
