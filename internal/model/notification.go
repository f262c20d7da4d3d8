package model

import "time"

// NotificationType identifies a message pushed to a player's home connection
type NotificationType string

const (
	NotifyHomeSnapshot    NotificationType = "home_snapshot"
	NotifyFriendRequest   NotificationType = "friend_request"
	NotifyFriendAccepted  NotificationType = "friend_request_accepted"
	NotifyFriendDeclined  NotificationType = "friend_request_declined"
	NotifyPresenceChanged NotificationType = "presence_changed"
	NotifyChatMessage     NotificationType = "chat_message"
	NotifyGameInvite      NotificationType = "game_invite"
	NotifyHomeError       NotificationType = "home_error"
)

// Notification is a social event addressed to one player
type Notification struct {
	Type      NotificationType
	Timestamp time.Time
	To        PlayerID
	Payload   any
}

// HomeSnapshotPayload is sent when a player connects to their home feed
type HomeSnapshotPayload struct {
	Requests []*FriendRequest
	Invites  []*Invite
	Friends  []*Friend
	Online   []PlayerID
}

// FriendRequestPayload carries a new request
type FriendRequestPayload struct {
	Request FriendRequest
}

// FriendAnsweredPayload tells a sender how their request was answered
type FriendAnsweredPayload struct {
	Player PlayerID
}

// PresencePayload reports a friend coming online or going offline
type PresencePayload struct {
	Player PlayerID
	Online bool
}

// ChatMessagePayload carries a delivered message
type ChatMessagePayload struct {
	Message ChatMessage
}

// GameInvitePayload carries an incoming invite
type GameInvitePayload struct {
	Invite Invite
}
