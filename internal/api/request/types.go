package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SendInviteRequest is the request body for inviting a player
type SendInviteRequest struct {
	To string `json:"to"`
}

// CreateGameRequest is the request body for starting a game against a
// chosen opponent. GameID is generated when empty.
type CreateGameRequest struct {
	Opponent string `json:"opponent"`
	GameID   string `json:"game_id,omitempty"`
}

// CreateBotGameRequest is the request body for playing the computer
type CreateBotGameRequest struct {
	Strategy string `json:"strategy,omitempty"`
}

// MoveRequest is the request body for moving a checker. Bar is -1 and off is 24.
type MoveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// TimeoutRequest reports an expired clock. Player defaults to the caller.
type TimeoutRequest struct {
	Player string `json:"player,omitempty"`
}

// FriendRequestRequest is the request body for asking to befriend a player
type FriendRequestRequest struct {
	To string `json:"to"`
}

// ChatMessageRequest is the request body for sending a chat message
type ChatMessageRequest struct {
	Body string `json:"body"`
}
