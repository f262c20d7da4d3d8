package response

import (
	"time"

	"github.com/mcoot/backgammon/internal/model"
)

// Event is the JSON form of a game event pushed over the websocket
type Event struct {
	Type      string    `json:"type"`
	GameID    string    `json:"game_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// GameCreatedEvent announces a new game to both players
type GameCreatedEvent struct {
	Creator  string `json:"creator"`
	Opponent string `json:"opponent"`
}

// DiceRolledEvent reports a roll
type DiceRolledEvent struct {
	Player string `json:"player"`
	Dice   []int  `json:"dice"`
}

// BoardUpdatedEvent reports an applied move
type BoardUpdatedEvent struct {
	Move  Move      `json:"move"`
	State GameState `json:"state"`
}

// InvalidMoveEvent explains a rejected move
type InvalidMoveEvent struct {
	Move   Move   `json:"move"`
	Reason string `json:"reason"`
}

// TurnChangedEvent names the player now on turn
type TurnChangedEvent struct {
	CurrentTurn string `json:"current_turn"`
	Player      string `json:"player"`
}

// GameErrorEvent reports a failed action
type GameErrorEvent struct {
	Message string `json:"message"`
}

// EventFromModel converts a model.Event and its payload
func EventFromModel(e model.Event) Event {
	return Event{
		Type:      string(e.Type),
		GameID:    string(e.GameID),
		Timestamp: e.Timestamp,
		Payload:   eventPayload(e.Payload, e.Timestamp),
	}
}

func eventPayload(payload any, now time.Time) any {
	switch p := payload.(type) {
	case model.GameCreatedPayload:
		return GameCreatedEvent{Creator: string(p.Creator), Opponent: string(p.Opponent)}
	case model.GameStartedPayload:
		return stateOrNil(p.State, now)
	case model.ReconnectedPayload:
		return stateOrNil(p.State, now)
	case model.DiceRolledPayload:
		return DiceRolledEvent{Player: string(p.Player), Dice: append([]int{}, p.Dice.Rolls...)}
	case model.PossibleMovesPayload:
		return MovesResponse{Moves: MovesFromModel(p.Moves)}
	case model.BoardUpdatedPayload:
		out := BoardUpdatedEvent{Move: Move{From: p.Move.From, To: p.Move.To}}
		if p.State != nil {
			out.State = GameStateFromModel(p.State, now)
		}
		return out
	case model.InvalidMovePayload:
		return InvalidMoveEvent{Move: Move{From: p.Move.From, To: p.Move.To}, Reason: p.Reason}
	case model.TurnChangedPayload:
		return TurnChangedEvent{CurrentTurn: p.CurrentTurn.String(), Player: string(p.Player)}
	case model.GameOverPayload:
		return GameResultFromModel(p.Result)
	case model.GameErrorPayload:
		return GameErrorEvent{Message: p.Message}
	default:
		return payload
	}
}

func stateOrNil(g *model.GameState, now time.Time) any {
	if g == nil {
		return nil
	}
	return GameStateFromModel(g, now)
}
