package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/auth"
	"github.com/mcoot/backgammon/internal/services/bot"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodePlayerNotFound        = "PLAYER_NOT_FOUND"
	CodeGameNotFound          = "GAME_NOT_FOUND"
	CodeInviteNotFound        = "INVITE_NOT_FOUND"
	CodeInviteExpired         = "INVITE_EXPIRED"
	CodeGameExists            = "GAME_EXISTS"
	CodePlayerInGame          = "PLAYER_IN_GAME"
	CodeNotParticipant        = "NOT_PARTICIPANT"
	CodeGameNotInProgress     = "GAME_NOT_IN_PROGRESS"
	CodeNotYourTurn           = "NOT_YOUR_TURN"
	CodeAlreadyRolled         = "ALREADY_ROLLED"
	CodeInvalidMove           = "INVALID_MOVE"
	CodeClockNotExpired       = "CLOCK_NOT_EXPIRED"
	CodeUnknownStrategy       = "UNKNOWN_STRATEGY"
	CodeFriendRequestNotFound = "FRIEND_REQUEST_NOT_FOUND"
	CodeFriendRequestExists   = "FRIEND_REQUEST_EXISTS"
	CodeAlreadyFriends        = "ALREADY_FRIENDS"
	CodeNotFriends            = "NOT_FRIENDS"
	CodeUsernameExists        = "USERNAME_EXISTS"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeInternalError         = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status err maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Lookups
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrInviteNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeInviteNotFound, "Invite not found"}}
	case errors.Is(err, model.ErrInviteExpired):
		return &httpError{http.StatusGone, APIError{CodeInviteExpired, "Invite has expired"}}

	// Seating
	case errors.Is(err, model.ErrGameExists):
		return &httpError{http.StatusConflict, APIError{CodeGameExists, "Game already exists"}}
	case errors.Is(err, model.ErrPlayerInGame):
		return &httpError{http.StatusConflict, APIError{CodePlayerInGame, "Player is already in a game"}}
	case errors.Is(err, model.ErrSamePlayer), errors.Is(err, model.ErrInviteSelf):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "Not a player in this game"}}
	case errors.Is(err, model.ErrNotInviteTarget):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Invite belongs to another player"}}

	// Play
	case errors.Is(err, model.ErrGameNotInProgress), errors.Is(err, model.ErrGameFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameNotInProgress, "Game is not in progress"}}
	case errors.Is(err, model.ErrNotPlayerTurn):
		return &httpError{http.StatusForbidden, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrAlreadyRolled):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyRolled, "Dice already rolled this turn"}}
	case errors.Is(err, model.ErrInvalidMove):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeInvalidMove, err.Error()}}
	case errors.Is(err, model.ErrClockNotExpired):
		return &httpError{http.StatusConflict, APIError{CodeClockNotExpired, "Player clock has not run out"}}
	case errors.Is(err, bot.ErrUnknownStrategy):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownStrategy, "Unknown bot strategy"}}

	// Social
	case errors.Is(err, model.ErrFriendRequestNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeFriendRequestNotFound, "Friend request not found"}}
	case errors.Is(err, model.ErrFriendRequestExists):
		return &httpError{http.StatusConflict, APIError{CodeFriendRequestExists, "Friend request already sent"}}
	case errors.Is(err, model.ErrAlreadyFriends):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyFriends, "Already friends"}}
	case errors.Is(err, model.ErrNotFriends):
		return &httpError{http.StatusForbidden, APIError{CodeNotFriends, "Only friends can chat"}}
	case errors.Is(err, model.ErrFriendSelf), errors.Is(err, model.ErrEmptyMessage), errors.Is(err, model.ErrMessageTooLong):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, auth.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrInvalidPassword):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
