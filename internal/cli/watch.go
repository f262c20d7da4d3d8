package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput, join bool

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Stream live events from a game",
		Long: `Connect to the game's websocket and stream events in real-time.

Events include:
  - game_created: A game was set up for you
  - game_started: Both players are seated
  - game_reconnected: You rejoined a live game
  - dice_rolled: The player on turn rolled
  - possible_moves: Legal moves for the remaining dice
  - board_updated: A checker moved
  - invalid_move: A move was rejected
  - turn_changed: The dice passed to the other player
  - game_over: The game finished
  - game_error: An action you sent failed

Closing the connection while the game is live forfeits it.
Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchGame(args[0], join, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&join, "join", false, "Send a join action once connected")

	return cmd
}

// GameEvent is one message pushed by the server
type GameEvent struct {
	Type      string          `json:"type"`
	GameID    string          `json:"game_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// websocketURL maps the configured http(s) server URL onto ws(s)
func websocketURL(serverURL, gameID string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/v1/games/" + gameID + "/ws"
	return u.String(), nil
}

func watchGame(gameID string, join, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL, gameID)
	if err != nil {
		return err
	}

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection failed: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Unblock ReadMessage on interrupt
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	if !jsonOutput {
		fmt.Printf("Connected to game %s\n", gameID)
	}

	if join {
		if err := conn.WriteJSON(map[string]string{"action": "join"}); err != nil {
			return fmt.Errorf("failed to send join: %w", err)
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return fmt.Errorf("connection closed: %s", closeErr.Text)
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var event GameEvent
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}
		printEvent(event, message, jsonOutput)
	}
}

func printEvent(event GameEvent, raw []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(raw))
		return
	}

	timestamp := event.Timestamp.Local().Format("2006-01-02 15:04:05")
	displayData := string(event.Payload)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", timestamp, event.Type, displayData)
}
