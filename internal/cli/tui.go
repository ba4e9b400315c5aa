package cli

import (
	"github.com/spf13/cobra"

	"beecok/internal/tui"
)

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive search screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			return tui.Run(a.api, a.cfg.MaxResults, a.log)
		},
	}
}
