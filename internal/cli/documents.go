package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"beecok/internal/client"
	"beecok/internal/model"
)

func (a *app) uploadCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "upload [SPACE] FILE",
		Short: "Upload a PDF, DOCX, PPTX or TXT file into a space",
		Long: `Upload a document into a space. SPACE is a space name or id; when it is
omitted you are asked to pick one.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[len(args)-1]
			info, err := os.Stat(file)
			if err != nil {
				return err
			}
			if err := client.ValidateUpload(file, info.Size()); err != nil {
				return err
			}
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}

			var sp model.Space
			if len(args) == 2 {
				sp, _, err = a.resolveSpace(cmd.Context(), args[0])
			} else {
				sp, err = a.pickSpace(cmd)
			}
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			var progress func(sent, total int64)
			if !quiet {
				bar := progressbar.NewOptions64(-1,
					progressbar.OptionSetDescription("Uploading "+filepath.Base(file)),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowBytes(true),
					progressbar.OptionClearOnFinish(),
				)
				progress = func(sent, total int64) {
					bar.ChangeMax64(total)
					_ = bar.Set64(sent)
				}
				defer bar.Finish()
			}

			receipt, err := a.api.UploadDocument(cmd.Context(), sp.ID, file, f, info.Size(), progress)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Uploaded %s to '%s' (%d characters extracted).\n",
				receipt.Filename, sp.Name, receipt.ExtractedTextLength)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func (a *app) pickSpace(cmd *cobra.Command) (model.Space, error) {
	spaces, err := a.api.ListSpaces(cmd.Context())
	if err != nil {
		return model.Space{}, err
	}
	if len(spaces) == 0 {
		return model.Space{}, fmt.Errorf("no spaces yet: create one with 'beecok spaces create NAME'")
	}
	names := make([]string, len(spaces))
	for i, sp := range spaces {
		names[i] = sp.Name
	}
	i, err := a.opts.Prompter.Choose("Space", names)
	if err != nil {
		return model.Space{}, err
	}
	return spaces[i], nil
}

func (a *app) docsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents in a space",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list SPACE",
		Short: "List the documents in a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			ref, _, err := a.resolveSpace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sp, err := a.api.GetSpace(cmd.Context(), ref.ID)
			if err != nil {
				return err
			}
			for _, d := range sp.Documents {
				printf(cmd.OutOrStdout(), "%s  %s  %s\n", d.ID, d.OriginalFileName, d.UploadedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "rm SPACE DOCUMENT",
		Short: "Delete a document by id or filename",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			ref, _, err := a.resolveSpace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sp, err := a.api.GetSpace(cmd.Context(), ref.ID)
			if err != nil {
				return err
			}
			doc, ok := findDocument(sp.Documents, args[1])
			if !ok {
				return fmt.Errorf("document %q not found in '%s'", args[1], sp.Name)
			}
			if err := a.api.DeleteDocument(cmd.Context(), sp.ID, doc.ID); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Document '%s' deleted.\n", doc.OriginalFileName)
			return nil
		},
	})
	return cmd
}

func findDocument(docs []model.Document, ref string) (model.Document, bool) {
	for _, d := range docs {
		if d.ID == ref {
			return d, true
		}
	}
	for _, d := range docs {
		if d.OriginalFileName == ref {
			return d, true
		}
	}
	return model.Document{}, false
}
