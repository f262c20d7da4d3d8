package model

import "time"

// InviteID uniquely identifies an invitation
type InviteID string

// DefaultInviteTTL is how long an invitation stays open
const DefaultInviteTTL = time.Minute

// Invite is a challenge from one player to another
type Invite struct {
	ID        InviteID
	From      PlayerID
	To        PlayerID
	SentAt    time.Time
	ExpiresAt time.Time
}

// Expired reports whether the invitation can no longer be accepted
func (i *Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
