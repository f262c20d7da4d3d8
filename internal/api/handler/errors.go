package handler

import (
	"net/http"

	"github.com/mcoot/backgammon/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest        = apierr.CodeInvalidRequest
	CodeUnauthorized          = apierr.CodeUnauthorized
	CodeForbidden             = apierr.CodeForbidden
	CodePlayerNotFound        = apierr.CodePlayerNotFound
	CodeGameNotFound          = apierr.CodeGameNotFound
	CodeInviteNotFound        = apierr.CodeInviteNotFound
	CodeInviteExpired         = apierr.CodeInviteExpired
	CodeGameExists            = apierr.CodeGameExists
	CodePlayerInGame          = apierr.CodePlayerInGame
	CodeNotParticipant        = apierr.CodeNotParticipant
	CodeGameNotInProgress     = apierr.CodeGameNotInProgress
	CodeNotYourTurn           = apierr.CodeNotYourTurn
	CodeAlreadyRolled         = apierr.CodeAlreadyRolled
	CodeInvalidMove           = apierr.CodeInvalidMove
	CodeClockNotExpired       = apierr.CodeClockNotExpired
	CodeUnknownStrategy       = apierr.CodeUnknownStrategy
	CodeFriendRequestNotFound = apierr.CodeFriendRequestNotFound
	CodeFriendRequestExists   = apierr.CodeFriendRequestExists
	CodeAlreadyFriends        = apierr.CodeAlreadyFriends
	CodeNotFriends            = apierr.CodeNotFriends
	CodeUsernameExists        = apierr.CodeUsernameExists
	CodeInvalidCredentials    = apierr.CodeInvalidCredentials
	CodeInternalError         = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}
