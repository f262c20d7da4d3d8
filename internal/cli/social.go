package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newFriendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Friend list and friend request commands",
	}

	cmd.AddCommand(newFriendListCmd())
	cmd.AddCommand(newFriendRequestsCmd())
	cmd.AddCommand(newFriendAddCmd())
	cmd.AddCommand(newFriendAnswerCmd("accept", "Accept a friend request", "Friend request accepted"))
	cmd.AddCommand(newFriendAnswerCmd("decline", "Decline a friend request", "Friend request declined"))

	return cmd
}

func newFriendListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your friends",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Friend
			if err := client.Get("/api/v1/friends", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List friend requests addressed to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []FriendRequest
			if err := client.Get("/api/v1/friends/requests", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newFriendAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <player-id>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result FriendRequest
			if err := client.Post("/api/v1/friends/requests", map[string]string{"to": args[0]}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if result.From == "" {
				// A crossing request was accepted instead
				out.PrintMessage("You are now friends")
				return nil
			}
			out.PrintMessage("Friend request sent")
			return nil
		},
	}
}

func newFriendAnswerCmd(verb, short, done string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <player-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/friends/requests/%s/%s", url.PathEscape(args[0]), verb)
			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(done)
			return nil
		},
	}
}

func newPlayerSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Find registered players by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Player
			if err := client.Get("/api/v1/players/search?text="+url.QueryEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with friends",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "send <friend-id> <message...>",
		Short: "Send a message to a friend",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"body": strings.Join(args[1:], " ")}
			var result ChatMessage
			if err := client.Post(chatPath(args[0], "messages"), body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print([]ChatMessage{result})
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <friend-id>",
		Short: "Show recent messages and mark them read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []ChatMessage
			if err := client.Get(chatPath(args[0], "messages"), &result); err != nil {
				return err
			}
			if err := client.Post(chatPath(args[0], "read"), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func chatPath(friend, tail string) string {
	return fmt.Sprintf("/api/v1/chat/%s/%s", url.PathEscape(friend), tail)
}

// Friend response type
type Friend struct {
	Player
	Wins              int  `json:"wins"`
	Losses            int  `json:"losses"`
	Online            bool `json:"online"`
	HasUnreadMessages bool `json:"has_unread_messages"`
}

// FriendRequest response type
type FriendRequest struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	SentAt time.Time `json:"sent_at"`
}

// ChatMessage response type
type ChatMessage struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sent_at"`
}

func formatFriend(f Friend) string {
	status := "offline"
	if f.Online {
		status = "online"
	}
	line := fmt.Sprintf("%s (%s) %s, %d-%d", f.DisplayName, f.ID, status, f.Wins, f.Losses)
	if f.HasUnreadMessages {
		line += " *unread*"
	}
	return line
}

func (o *Output) printFriends(friends []Friend) {
	if len(friends) == 0 {
		fmt.Println("No friends yet")
		return
	}
	for _, f := range friends {
		fmt.Printf("  %s\n", formatFriend(f))
	}
}

func (o *Output) printFriendRequests(requests []FriendRequest) {
	if len(requests) == 0 {
		fmt.Println("No pending friend requests")
		return
	}
	for _, r := range requests {
		fmt.Printf("  from %s (%s)\n", r.From, r.SentAt.Local().Format("2006-01-02 15:04"))
	}
}

func (o *Output) printPlayers(players []Player) {
	if len(players) == 0 {
		fmt.Println("No players found")
		return
	}
	for _, p := range players {
		fmt.Printf("  %s (%s)\n", p.DisplayName, p.ID)
	}
}

func (o *Output) printChat(messages []ChatMessage) {
	if len(messages) == 0 {
		fmt.Println("No messages")
		return
	}
	for _, m := range messages {
		fmt.Printf("[%s] %s: %s\n", m.SentAt.Local().Format("15:04"), m.From, m.Body)
	}
}
