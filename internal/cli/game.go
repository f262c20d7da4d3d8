package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Board positions accepted on the command line besides 0-23
const (
	barPoint = -1
	offPoint = 24
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameBotCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameCurrentCmd())
	cmd.AddCommand(newGameRollCmd())
	cmd.AddCommand(newGameMovesCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameEndTurnCmd())
	cmd.AddCommand(newGameTimeoutCmd())

	return cmd
}

func gamePath(id, action string) string {
	path := "/api/v1/games/" + url.PathEscape(id)
	if action != "" {
		path += "/" + action
	}
	return path
}

func newGameCreateCmd() *cobra.Command {
	var opponent, gameID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game against another player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"opponent": opponent}
			if gameID != "" {
				req["game_id"] = gameID
			}
			var result GameState

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&opponent, "opponent", "", "Opponent player ID (required)")
	cmd.Flags().StringVar(&gameID, "id", "", "Game ID (generated when empty)")
	_ = cmd.MarkFlagRequired("opponent")

	return cmd
}

func newGameBotCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Start a game against the computer",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if strategy != "" {
				req["strategy"] = strategy
			}
			var result GameState

			if err := client.Post("/api/v1/games/bot", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "", "Bot strategy: random, racer")

	return cmd
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <game-id>",
		Short: "Join a game you were invited to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Post(gamePath(args[0], "join"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <game-id>",
		Short: "Show a game's board and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Get(gamePath(args[0], ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the game you are seated in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Get("/api/v1/players/me/game", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameRollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roll <game-id>",
		Short: "Roll the dice for your turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Dice

			if err := client.Post(gamePath(args[0], "roll"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "moves <game-id>",
		Short: "List your legal moves for the remaining dice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Moves

			if err := client.Get(gamePath(args[0], "moves"), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <game-id> <from> <to>",
		Short: "Move a checker (points 0-23, 'bar' or 'off')",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePoint(args[1])
			if err != nil {
				return err
			}
			to, err := parsePoint(args[2])
			if err != nil {
				return err
			}

			req := map[string]int{"from": from, "to": to}
			var result MoveResult

			if err := client.Post(gamePath(args[0], "move"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameEndTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-turn <game-id>",
		Short: "Pass the dice to your opponent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Post(gamePath(args[0], "end-turn"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameTimeoutCmd() *cobra.Command {
	var player string

	cmd := &cobra.Command{
		Use:   "timeout <game-id>",
		Short: "Report that a player's clock ran out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{}
			if player != "" {
				req["player"] = player
			}
			var result TimeoutResult

			if err := client.Post(gamePath(args[0], "timeout"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&player, "player", "", "Player whose clock expired (defaults to you)")

	return cmd
}

// parsePoint accepts a point number, "bar" or "off"
func parsePoint(s string) (int, error) {
	switch strings.ToLower(s) {
	case "bar":
		return barPoint, nil
	case "off":
		return offPoint, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < barPoint || n > offPoint {
		return 0, fmt.Errorf("invalid point %q: want 0-23, bar or off", s)
	}
	return n, nil
}
