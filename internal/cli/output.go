package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Profile:
		o.printProfile(v)
	case []GameResult:
		o.printHistory(v)
	case GameState:
		o.printGameState(v)
	case Dice:
		o.printDice(v)
	case Moves:
		o.printMoves(v)
	case MoveResult:
		o.printMoveResult(v)
	case TimeoutResult:
		fmt.Printf("Winner: %s\n", v.Winner)
	case Invite:
		o.printInvite(v)
	case []Invite:
		o.printInvites(v)
	case HealthResult:
		o.printHealthResult(v)
	case []Friend:
		o.printFriends(v)
	case []FriendRequest:
		o.printFriendRequests(v)
	case []Player:
		o.printPlayers(v)
	case []ChatMessage:
		o.printChat(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
	IsBot       bool   `json:"is_bot,omitempty"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Profile is a player with their record
type Profile struct {
	Player
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	CurrentGame *string `json:"current_game"`
}

// Board response type. Points holds the stacked checker colors of points 0-23.
type Board struct {
	Points    [][]string `json:"points"`
	WhiteBar  int        `json:"white_bar"`
	BlackBar  int        `json:"black_bar"`
	WhiteHome int        `json:"white_home"`
	BlackHome int        `json:"black_home"`
}

// GameState response type
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

// Dice response type
type Dice struct {
	Dice []int `json:"dice"`
}

// Move is a single checker move. Bar is -1 and off is 24.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Moves response type
type Moves struct {
	Moves []Move `json:"moves"`
}

// GameResult response type
type GameResult struct {
	GameID     string    `json:"game_id"`
	Winner     *string   `json:"winner"`
	Loser      *string   `json:"loser"`
	Reason     string    `json:"reason"`
	FinishedAt time.Time `json:"finished_at"`
}

// MoveResult response type
type MoveResult struct {
	Valid    bool        `json:"valid"`
	Hits     int         `json:"hits"`
	State    GameState   `json:"state"`
	GameOver *GameResult `json:"game_over,omitempty"`
}

// TimeoutResult response type
type TimeoutResult struct {
	Winner string `json:"winner"`
}

// Invite response type
type Invite struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	SentAt    time.Time `json:"sent_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Printf("Guest: %s\n", guestStr)
	if p.IsBot {
		fmt.Println("Bot: yes")
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printProfile(p Profile) {
	o.printPlayer(p.Player)
	fmt.Printf("Record: %d wins, %d losses\n", p.Wins, p.Losses)
	if p.CurrentGame != nil {
		fmt.Printf("Current Game: %s\n", *p.CurrentGame)
	}
}

func (o *Output) printHistory(results []GameResult) {
	if len(results) == 0 {
		fmt.Println("No finished games")
		return
	}
	for _, r := range results {
		fmt.Printf("%s  %s  winner=%s loser=%s (%s)\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.GameID,
			orDash(r.Winner), orDash(r.Loser), r.Reason)
	}
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Game: %s\n", g.ID)
	fmt.Printf("Status: %s\n", g.Status)
	fmt.Printf("%s: %s\n", g.Player1Color, g.Player1)
	fmt.Printf("%s: %s\n", g.Player2Color, g.Player2)

	if !g.IsGameOver {
		fmt.Printf("Turn: %s (%s)\n", g.CurrentTurn, g.CurrentPlayer)
		if g.Rolled {
			fmt.Printf("Dice: %s\n", formatDice(g.Dice))
		}
		fmt.Printf("Clocks: White %s, Black %s\n",
			formatSeconds(g.WhiteTimeRemaining), formatSeconds(g.BlackTimeRemaining))
	}

	fmt.Println()
	o.printBoard(g.Board)

	if g.Winner != nil {
		fmt.Printf("\nWinner: %s\n", *g.Winner)
	}
}

// printBoard draws points 12-23 across the top and 11-0 along the bottom
func (o *Output) printBoard(b Board) {
	if len(b.Points) != 24 {
		return
	}

	top := make([]int, 0, 12)
	for i := 12; i < 24; i++ {
		top = append(top, i)
	}
	bottom := make([]int, 0, 12)
	for i := 11; i >= 0; i-- {
		bottom = append(bottom, i)
	}

	printRow := func(points []int) {
		fmt.Print(" |")
		for _, p := range points {
			fmt.Printf(" %3s", pointLabel(b.Points[p]))
		}
		fmt.Println(" |")
	}
	printHeader := func(points []int) {
		fmt.Print("  ")
		for _, p := range points {
			fmt.Printf(" %3d", p)
		}
		fmt.Println()
	}
	border := " +" + strings.Repeat("-", 4*12+1) + "+"

	printHeader(top)
	fmt.Println(border)
	printRow(top)
	printRow(bottom)
	fmt.Println(border)
	printHeader(bottom)

	fmt.Printf("Bar: White %d, Black %d\n", b.WhiteBar, b.BlackBar)
	fmt.Printf("Off: White %d, Black %d\n", b.WhiteHome, b.BlackHome)
}

// pointLabel renders a stack as its color initial and count, e.g. W5
func pointLabel(stack []string) string {
	if len(stack) == 0 {
		return "."
	}
	return fmt.Sprintf("%s%d", stack[0][:1], len(stack))
}

func (o *Output) printDice(d Dice) {
	fmt.Printf("Rolled: %s\n", formatDice(d.Dice))
}

func (o *Output) printMoves(m Moves) {
	if len(m.Moves) == 0 {
		fmt.Println("No legal moves")
		return
	}
	fmt.Printf("Legal moves (%d):\n", len(m.Moves))
	for _, mv := range m.Moves {
		fmt.Printf("  %s -> %s\n", formatPoint(mv.From), formatPoint(mv.To))
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	if !m.Valid {
		fmt.Println("Move rejected")
		return
	}
	fmt.Println("Move applied")
	if m.Hits > 0 {
		fmt.Printf("Hit %d checker(s)\n", m.Hits)
	}
	if m.GameOver != nil {
		fmt.Printf("Game over: %s wins (%s)\n", orDash(m.GameOver.Winner), m.GameOver.Reason)
		return
	}
	fmt.Printf("Dice left: %s\n", formatDice(m.State.Dice))
}

func (o *Output) printInvite(i Invite) {
	fmt.Printf("Invite: %s\n", i.ID)
	fmt.Printf("From: %s\n", i.From)
	fmt.Printf("To: %s\n", i.To)
	fmt.Printf("Expires: %s\n", i.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
}

func (o *Output) printInvites(invites []Invite) {
	if len(invites) == 0 {
		fmt.Println("No pending invites")
		return
	}
	for _, i := range invites {
		fmt.Printf("  %s from %s (expires %s)\n", i.ID, i.From, i.ExpiresAt.Local().Format("15:04:05"))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func formatDice(dice []int) string {
	if len(dice) == 0 {
		return "none"
	}
	parts := make([]string, len(dice))
	for i, d := range dice {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " ")
}

func formatPoint(p int) string {
	switch p {
	case barPoint:
		return "bar"
	case offPoint:
		return "off"
	default:
		return strconv.Itoa(p)
	}
}

func formatSeconds(s int) string {
	return (time.Duration(s) * time.Second).String()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
