package cli

import (
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your usage and index statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			s, err := a.api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			idx := s.IndexStats()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(tw, "Spaces\t%d\n", s.Spaces())
			printf(tw, "Documents\t%d\n", s.Documents())
			printf(tw, "Chats\t%d\n", s.Chats())
			printf(tw, "Storage\t%s\n", s.Storage())
			printf(tw, "Index\t%s\n", idx.Name())
			printf(tw, "Vectors\t%d\n", idx.Vectors())
			printf(tw, "Dimension\t%d\n", idx.Dimension())
			printf(tw, "Fullness\t%s\n", idx.Fullness())
			printf(tw, "Formats\t%s\n", s.Formats())
			printf(tw, "Max upload\t%s\n", s.MaxUpload())
			if msg := idx.Err(); msg != "" {
				printf(tw, "Index error\t%s\n", msg)
			}
			return tw.Flush()
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API server and its dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(tw, "Status\t%s\n", h.Status())
			printf(tw, "Database\t%s\n", h.Database())
			printf(tw, "Vector index\t%s\n", h.VectorIndex())
			printf(tw, "Language model\t%s\n", h.Generator())
			printf(tw, "Embedding\t%s\n", h.Embedding())
			printf(tw, "Authentication\t%s\n", h.Auth())
			printf(tw, "Vectors\t%d\n", h.Index().Vectors())
			printf(tw, "Checked\t%s\n", h.CheckedAt())
			return tw.Flush()
		},
	}
}
