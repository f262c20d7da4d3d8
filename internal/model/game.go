package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus represents the lifecycle phase of a game
type GameStatus string

const (
	GameStatusWaiting    GameStatus = "waiting_for_opponent"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinished   GameStatus = "finished"
)

// GameState is the authoritative state of one backgammon match
type GameState struct {
	ID GameID `json:"id"`

	// Player1 created the game; Player2 is the invited opponent
	Player1      PlayerID `json:"player1"`
	Player2      PlayerID `json:"player2"`
	Player1Color Color    `json:"player1_color"`
	Player2Color Color    `json:"player2_color"`

	CurrentTurn Color `json:"current_turn"`
	Board       Board `json:"board"`
	Dice        Dice  `json:"dice"`
	Rolled      bool  `json:"rolled"` // dice already rolled this turn

	WhiteTimer PlayerTimer `json:"white_timer"`
	BlackTimer PlayerTimer `json:"black_timer"`

	Status GameStatus `json:"status"`
	IsOver bool       `json:"is_over"`
	Winner PlayerID   `json:"winner,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	StartedAt time.Time `json:"started_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewGameState returns a game waiting for its opponent to join
func NewGameState(id GameID, creator, opponent PlayerID, turnClock time.Duration, now time.Time) *GameState {
	return &GameState{
		ID:           id,
		Player1:      creator,
		Player2:      opponent,
		Player1Color: White,
		Player2Color: Black,
		CurrentTurn:  White,
		Board:        *NewStandardBoard(),
		WhiteTimer:   NewPlayerTimer(turnClock),
		BlackTimer:   NewPlayerTimer(turnClock),
		Status:       GameStatusWaiting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasPlayer reports whether p is seated in this game
func (g *GameState) HasPlayer(p PlayerID) bool {
	return p != "" && (g.Player1 == p || g.Player2 == p)
}

// ColorOf returns the color played by p
func (g *GameState) ColorOf(p PlayerID) (Color, bool) {
	switch p {
	case g.Player1:
		return g.Player1Color, true
	case g.Player2:
		return g.Player2Color, true
	default:
		return 0, false
	}
}

// PlayerOf returns the player assigned color c
func (g *GameState) PlayerOf(c Color) PlayerID {
	if g.Player1Color == c {
		return g.Player1
	}
	return g.Player2
}

// CurrentPlayer returns the player whose turn it is
func (g *GameState) CurrentPlayer() PlayerID {
	return g.PlayerOf(g.CurrentTurn)
}

// Opponent returns the other seated player
func (g *GameState) Opponent(p PlayerID) PlayerID {
	if p == g.Player1 {
		return g.Player2
	}
	return g.Player1
}

// Timer returns a pointer to c's clock
func (g *GameState) Timer(c Color) *PlayerTimer {
	if c == White {
		return &g.WhiteTimer
	}
	return &g.BlackTimer
}

// Clone returns a deep copy safe to hand outside the owning lock
func (g *GameState) Clone() *GameState {
	if g == nil {
		return nil
	}
	c := *g
	c.Dice = g.Dice.Clone()
	return &c
}

// Move is a request to move one checker from From to To.
// From may be BarPoint and To may be OffPoint.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// GameOverReason describes how a game ended
type GameOverReason string

const (
	ReasonBorneOff     GameOverReason = "all checkers borne off"
	ReasonTimeout      GameOverReason = "time ran out"
	ReasonDisconnected GameOverReason = "opponent disconnected"
	ReasonEnded        GameOverReason = "game ended"
	ReasonCancelled    GameOverReason = "game cancelled"
)

// GameResult is the outcome of a finished game. Winner and Loser are
// empty when a game is cancelled before it starts.
type GameResult struct {
	GameID     GameID         `json:"game_id"`
	Winner     PlayerID       `json:"winner"`
	Loser      PlayerID       `json:"loser"`
	Reason     GameOverReason `json:"reason"`
	FinishedAt time.Time      `json:"finished_at"`
}
