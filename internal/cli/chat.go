package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant about your documents",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List your chats, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			chats, err := a.api.ListChats(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range chats {
				printf(cmd.OutOrStdout(), "%s  %s  %s\n", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Title)
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "new [TITLE]",
		Short: "Start a chat",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			var title string
			if len(args) == 1 {
				title = args[0]
			}
			c, err := a.api.CreateChat(cmd.Context(), title)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Chat '%s' created (%s).\n", c.Title, c.ID)
			return nil
		},
	}, &cobra.Command{
		Use:   "send CHAT MESSAGE...",
		Short: "Send a message and print the reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			ex, err := a.api.SendMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", ex.AIMessage.Content)
			return nil
		},
	})
	return cmd
}
