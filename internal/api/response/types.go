package response

import (
	"time"

	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
		IsBot:       p.IsBot,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Profile is a player with their record
type Profile struct {
	Player
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	CurrentGame *string `json:"current_game"`
}

// ProfileFromModel builds a Profile. gameID is empty when the player is not in a game.
func ProfileFromModel(p *model.Player, stats *model.PlayerStats, gameID model.GameID) Profile {
	profile := Profile{Player: PlayerFromModel(p)}
	if stats != nil {
		profile.Wins = stats.Wins
		profile.Losses = stats.Losses
	}
	if gameID != "" {
		g := string(gameID)
		profile.CurrentGame = &g
	}
	return profile
}

// Board is the presentation view of a board. Points holds the checker
// colors stacked on each point, index 0 to 23.
type Board struct {
	Points    [][]string `json:"points"`
	WhiteBar  int        `json:"white_bar"`
	BlackBar  int        `json:"black_bar"`
	WhiteHome int        `json:"white_home"`
	BlackHome int        `json:"black_home"`
}

// BoardFromModel converts model.Board to response Board
func BoardFromModel(b *model.Board) Board {
	points := make([][]string, model.NumPoints)
	for i := range points {
		pieces := b.Point(i).Pieces()
		stack := make([]string, len(pieces))
		for j, piece := range pieces {
			stack[j] = piece.Color.String()
		}
		points[i] = stack
	}
	return Board{
		Points:    points,
		WhiteBar:  b.OnBar(model.White),
		BlackBar:  b.OnBar(model.Black),
		WhiteHome: b.BorneOff(model.White),
		BlackHome: b.BorneOff(model.Black),
	}
}

// GameState represents the current game state
type GameState struct {
	ID                 string  `json:"id"`
	Player1            string  `json:"player1"`
	Player2            string  `json:"player2"`
	Player1Color       string  `json:"player1_color"`
	Player2Color       string  `json:"player2_color"`
	CurrentTurn        string  `json:"current_turn"`
	CurrentPlayer      string  `json:"current_player"`
	Board              Board   `json:"board"`
	Dice               []int   `json:"dice"`
	Rolled             bool    `json:"rolled"`
	Status             string  `json:"status"`
	IsGameOver         bool    `json:"is_game_over"`
	Winner             *string `json:"winner"`
	WhiteTimeRemaining int     `json:"white_time_remaining"`
	BlackTimeRemaining int     `json:"black_time_remaining"`
}

// GameStateFromModel converts model.GameState to response GameState.
// Timers are whole seconds remaining as of now.
func GameStateFromModel(g *model.GameState, now time.Time) GameState {
	dice := make([]int, len(g.Dice.Rolls))
	copy(dice, g.Dice.Rolls)

	var winner *string
	if g.Winner != "" {
		w := string(g.Winner)
		winner = &w
	}

	return GameState{
		ID:                 string(g.ID),
		Player1:            string(g.Player1),
		Player2:            string(g.Player2),
		Player1Color:       g.Player1Color.String(),
		Player2Color:       g.Player2Color.String(),
		CurrentTurn:        g.CurrentTurn.String(),
		CurrentPlayer:      string(g.CurrentPlayer()),
		Board:              BoardFromModel(&g.Board),
		Dice:               dice,
		Rolled:             g.Rolled,
		Status:             string(g.Status),
		IsGameOver:         g.IsOver,
		Winner:             winner,
		WhiteTimeRemaining: int(g.WhiteTimer.RemainingAt(now) / time.Second),
		BlackTimeRemaining: int(g.BlackTimer.RemainingAt(now) / time.Second),
	}
}

// Move is a single checker move. Bar is -1 and off is 24.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MovesFromModel converts a move list
func MovesFromModel(moves []model.Move) []Move {
	out := make([]Move, len(moves))
	for i, m := range moves {
		out[i] = Move{From: m.From, To: m.To}
	}
	return out
}

// GameResult describes a finished game
type GameResult struct {
	GameID     string    `json:"game_id"`
	Winner     *string   `json:"winner"`
	Loser      *string   `json:"loser"`
	Reason     string    `json:"reason"`
	FinishedAt time.Time `json:"finished_at"`
}

// GameResultFromModel converts model.GameResult
func GameResultFromModel(r model.GameResult) GameResult {
	out := GameResult{
		GameID:     string(r.GameID),
		Reason:     string(r.Reason),
		FinishedAt: r.FinishedAt,
	}
	if r.Winner != "" {
		w := string(r.Winner)
		out.Winner = &w
	}
	if r.Loser != "" {
		l := string(r.Loser)
		out.Loser = &l
	}
	return out
}

// GameResultsFromModel converts a result list
func GameResultsFromModel(results []*model.GameResult) []GameResult {
	out := make([]GameResult, len(results))
	for i, r := range results {
		out[i] = GameResultFromModel(*r)
	}
	return out
}

// DiceResponse is the response after rolling
type DiceResponse struct {
	Dice []int `json:"dice"`
}

// MoveResponse is the response after a move
type MoveResponse struct {
	Valid    bool        `json:"valid"`
	Hits     int         `json:"hits"`
	State    GameState   `json:"state"`
	GameOver *GameResult `json:"game_over,omitempty"`
}

// MovesResponse lists legal moves
type MovesResponse struct {
	Moves []Move `json:"moves"`
}

// TimeoutResponse is the response after a clock ran out
type TimeoutResponse struct {
	Winner string `json:"winner"`
}

// Invite represents an invitation
type Invite struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// InviteFromModel converts model.Invite
func InviteFromModel(i *model.Invite) Invite {
	return Invite{
		ID:        string(i.ID),
		From:      string(i.From),
		To:        string(i.To),
		SentAt:    i.SentAt,
		ExpiresAt: i.ExpiresAt,
	}
}

// InvitesFromModel converts an invite list
func InvitesFromModel(invites []*model.Invite) []Invite {
	out := make([]Invite, len(invites))
	for i, inv := range invites {
		out[i] = InviteFromModel(inv)
	}
	return out
}
