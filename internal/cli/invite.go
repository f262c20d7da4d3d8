package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite commands",
	}

	cmd.AddCommand(newInviteSendCmd())
	cmd.AddCommand(newInviteListCmd())
	cmd.AddCommand(newInviteAcceptCmd())
	cmd.AddCommand(newInviteDeclineCmd())

	return cmd
}

func newInviteSendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <player-id>",
		Short: "Invite a player to a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"to": args[0]}
			var result Invite

			if err := client.Post("/api/v1/invites", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newInviteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending invites addressed to you",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Invite

			if err := client.Get("/api/v1/invites", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newInviteAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <invite-id>",
		Short: "Accept an invite and start the game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			path := fmt.Sprintf("/api/v1/invites/%s/accept", url.PathEscape(args[0]))
			if err := client.Post(path, nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newInviteDeclineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decline <invite-id>",
		Short: "Decline an invite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/invites/%s/decline", url.PathEscape(args[0]))
			if err := client.Post(path, nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Invite declined")
			return nil
		},
	}
}
