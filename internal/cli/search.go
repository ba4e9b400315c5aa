package cli

import (
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"beecok/internal/client"
	"beecok/internal/composer"
	"beecok/internal/model"
	"beecok/internal/notify"
	"beecok/internal/results"
)

var markupTags = regexp.MustCompile(`</?(strong|em)>`)

func (a *app) searchCmd() *cobra.Command {
	var (
		space    string
		maxRes   int
		asJSON   bool
		filename string
	)
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Ask a question across your spaces",
		Long: `Search every space, or one space with --space or an inline @Space
annotation:

  beecok search "@Medical side effects"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max") {
				maxRes = a.cfg.MaxResults
			}
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			spaces, err := a.api.ListSpaces(cmd.Context())
			if err != nil {
				return err
			}

			c := composer.New(spaces)
			c.SetText(strings.Join(args, " "))
			if space != "" {
				sp, ok := lookupSpace(spaces, space)
				if !ok {
					return &client.ValidationError{Field: "space", Message: "space \"" + space + "\" not found"}
				}
				c.SetScope(sp)
			}
			req, err := composer.Request(c, maxRes)
			if err != nil {
				if errors.Is(err, composer.ErrEmptyQuery) {
					return &client.ValidationError{Field: "q", Message: "Please enter a search query"}
				}
				return err
			}
			req.Filename = strings.TrimSpace(filename)

			view := results.NewView()
			s := composer.NewSearcher(a.api, view, notify.New(), a.log)
			res, err := s.Send(cmd.Context(), req)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), view, res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&space, "space", "s", "", "limit the search to one space (name or id)")
	cmd.Flags().IntVarP(&maxRes, "max", "n", client.DefaultMaxResults, "number of sources: 5, 10, 20 or 30")
	cmd.Flags().StringVar(&filename, "file", "", "limit the search to one document by filename")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response")
	return cmd
}

func lookupSpace(spaces []model.Space, ref string) (model.Space, bool) {
	for _, sp := range spaces {
		if sp.ID == ref || strings.EqualFold(sp.Name, ref) {
			return sp, true
		}
	}
	return model.Space{}, false
}

func printResult(w io.Writer, view *results.View, res *model.SearchResult) {
	for _, p := range view.Paragraphs() {
		printf(w, "%s\n\n", markupTags.ReplaceAllString(p, ""))
	}
	if len(res.Sources) > 0 {
		printf(w, "Sources (%d from %d documents):\n", res.TotalResults, res.DocumentsSearched)
	}
	for i, src := range res.Sources {
		tier := results.TierOf(src.RelevanceCategory)
		printf(w, "  %d. %s, page %d  [%s, %.0f%%]\n", i+1, src.Filename, src.EstimatedPage, tier.Label(), src.SimilarityScore*100)
		printf(w, "     %s\n", view.DisplayText(src))
	}
	items, empty := view.Insights()
	if len(items) == 0 {
		if len(res.Sources) > 0 {
			printf(w, "\n%s\n", empty)
		}
		return
	}
	printf(w, "\nInsights:\n")
	for _, in := range items {
		printf(w, "  - %s\n", in.Insight)
	}
}
