package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated   EventType = "game_created"
	EventGameStarted   EventType = "game_started"
	EventReconnected   EventType = "game_reconnected"
	EventDiceRolled    EventType = "dice_rolled"
	EventPossibleMoves EventType = "possible_moves"
	EventBoardUpdated  EventType = "board_updated"
	EventInvalidMove   EventType = "invalid_move"
	EventTurnChanged   EventType = "turn_changed"
	EventGameOver      EventType = "game_over"
	EventGameError     EventType = "game_error"
)

// Event is the base structure for all game events
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID // recipient for targeted events; empty means both players
	Payload   any      // Type-specific data
}

// GameCreatedPayload contains data for game created events
type GameCreatedPayload struct {
	Creator  PlayerID
	Opponent PlayerID
}

// GameStartedPayload contains data for game started events
type GameStartedPayload struct {
	State *GameState
}

// ReconnectedPayload carries the current state to a returning player
type ReconnectedPayload struct {
	State *GameState
}

// DiceRolledPayload contains data for dice rolled events
type DiceRolledPayload struct {
	Player PlayerID
	Dice   Dice
}

// PossibleMovesPayload lists the legal moves for the player on turn
type PossibleMovesPayload struct {
	Moves []Move
}

// BoardUpdatedPayload carries the state after a move
type BoardUpdatedPayload struct {
	Move  Move
	State *GameState
}

// InvalidMovePayload explains a rejected move
type InvalidMovePayload struct {
	Move   Move
	Reason string
}

// TurnChangedPayload contains data for turn changed events
type TurnChangedPayload struct {
	CurrentTurn Color
	Player      PlayerID
}

// GameOverPayload contains data for game over events
type GameOverPayload struct {
	Result GameResult
}

// GameErrorPayload reports a failed action
type GameErrorPayload struct {
	Message string
}
