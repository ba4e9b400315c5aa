package cli

import (
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"beecok/internal/client"
)

func (a *app) spacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spaces",
		Short: "Manage document spaces",
	}
	cmd.AddCommand(a.spacesListCmd(), a.spacesCreateCmd(), a.spacesUpdateCmd(), a.spacesDeleteCmd())
	return cmd
}

func (a *app) spacesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			spaces, err := a.api.ListSpaces(cmd.Context())
			if err != nil {
				return err
			}
			if len(spaces) == 0 {
				printf(cmd.OutOrStdout(), "No spaces yet. Create one with 'beecok spaces create NAME'.\n")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printf(tw, "NAME\tDOCUMENTS\tSIZE\tID\n")
			for _, sp := range spaces {
				printf(tw, "%s\t%d\t%s\t%s\n", sp.Name, sp.DocumentCount, humanize.Bytes(uint64(max(sp.TotalSizeBytes, 0))), sp.ID)
			}
			return tw.Flush()
		},
	}
}

func (a *app) spacesCreateCmd() *cobra.Command {
	var in client.SpaceInput
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = args[0]
			if err := client.ValidateSpace(in.Name); err != nil {
				return err
			}
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			sp, err := a.api.CreateSpace(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Space '%s' created (%s).\n", sp.Name, sp.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Description, "description", "", "space description")
	cmd.Flags().StringVar(&in.Color, "color", "", "display color, e.g. #3b82f6")
	return cmd
}

func (a *app) spacesUpdateCmd() *cobra.Command {
	var in client.SpaceInput
	cmd := &cobra.Command{
		Use:   "update SPACE",
		Short: "Rename or describe a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			sp, _, err := a.resolveSpace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				in.Name = sp.Name
			}
			if !cmd.Flags().Changed("description") {
				in.Description = sp.Description
			}
			updated, err := a.api.UpdateSpace(cmd.Context(), sp.ID, in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Space '%s' updated.\n", updated.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "new name")
	cmd.Flags().StringVar(&in.Description, "description", "", "new description")
	cmd.Flags().StringVar(&in.Color, "color", "", "new display color")
	return cmd
}

func (a *app) spacesDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete SPACE",
		Short: "Delete a space and all of its documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			sp, _, err := a.resolveSpace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.opts.Prompter.Confirm("Delete space '" + sp.Name + "' and all its documents")
				if err != nil {
					return err
				}
				if !ok {
					printf(cmd.OutOrStdout(), "Cancelled.\n")
					return nil
				}
			}
			n, err := a.api.DeleteSpace(cmd.Context(), sp.ID)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Space '%s' and %d documents deleted.\n", sp.Name, n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}
