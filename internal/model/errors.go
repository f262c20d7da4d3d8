package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Invite errors
	ErrInviteNotFound  = errors.New("invite not found")
	ErrInviteExpired   = errors.New("invite has expired")
	ErrInviteSelf      = errors.New("cannot invite yourself")
	ErrNotInviteTarget = errors.New("invite is addressed to another player")

	// Social errors
	ErrFriendSelf            = errors.New("cannot befriend yourself")
	ErrAlreadyFriends        = errors.New("players are already friends")
	ErrNotFriends            = errors.New("players are not friends")
	ErrFriendRequestExists   = errors.New("friend request already sent")
	ErrFriendRequestNotFound = errors.New("friend request not found")
	ErrEmptyMessage          = errors.New("message is empty")
	ErrMessageTooLong        = errors.New("message is too long")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrGameExists        = errors.New("game already exists")
	ErrPlayerInGame      = errors.New("player is already in a game")
	ErrSamePlayer        = errors.New("a player cannot play against themselves")
	ErrNotParticipant    = errors.New("player is not part of this game")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotPlayerTurn     = errors.New("not this player's turn")
	ErrAlreadyRolled     = errors.New("dice already rolled this turn")
	ErrInvalidMove       = errors.New("invalid move")
	ErrClockNotExpired   = errors.New("player clock has not run out")
)
