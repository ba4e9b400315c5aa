// Package cli implements the beecok command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"beecok/internal/client"
	"beecok/internal/logger"
	"beecok/internal/model"
)

// Options replaces the interactive and persistent parts of the CLI, mainly for tests.
type Options struct {
	Store      client.TokenStore
	Prompter   Prompter
	HTTPClient *http.Client
	Sleep      func(ctx context.Context, d time.Duration) error
}

type app struct {
	opts       Options
	configPath string
	apiURL     string
	verbose    bool

	cfg     client.Config
	log     *zap.Logger
	session *client.Session
	api     *client.Client
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts Options) *cobra.Command {
	a := &app{opts: opts}
	if a.opts.Prompter == nil {
		a.opts.Prompter = terminalPrompter{}
	}

	root := &cobra.Command{
		Use:   "beecok",
		Short: "Search your documents from the terminal",
		Long: `Beecok keeps your documents in spaces and answers questions about them.

Credentials are stored in ~/.beecok/credentials.json and settings in
~/.beecok/config.yaml. BEECOK_API_URL overrides the configured server.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.beecok/config.yaml)")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "API server URL")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.spacesCmd(),
		a.uploadCmd(),
		a.docsCmd(),
		a.searchCmd(),
		a.statsCmd(),
		a.healthCmd(),
		a.chatCmd(),
		a.tuiCmd(),
	)
	return root
}

// Execute runs the CLI and prints failures with the same wording the UI uses.
func Execute(ctx context.Context) int {
	if err := NewRootCmd(Options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", client.Describe(err))
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configPath
	if path == "" {
		p, err := client.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := client.LoadConfig(path)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.APIURL = strings.TrimRight(a.apiURL, "/")
	}
	a.cfg = cfg

	a.log = zap.NewNop()
	if a.verbose {
		a.log = logger.New("debug", time.Local, cmd.ErrOrStderr())
	}

	store := a.opts.Store
	if store == nil {
		credPath, err := client.DefaultCredentialsPath()
		if err != nil {
			return err
		}
		store = client.FileTokenStore{Path: credPath}
	}
	a.session, err = client.NewSession(store)
	if err != nil {
		return err
	}

	clientOpts := []client.Option{
		client.WithLogger(a.log),
		client.WithRetrier(client.Retrier{Attempts: cfg.RetryAttempts, Sleep: a.opts.Sleep, Log: a.log}),
	}
	if a.opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(a.opts.HTTPClient))
	}
	a.api = client.New(cfg.APIURL, a.session, clientOpts...)
	return nil
}

// requireLogin restores the stored session or explains how to get one.
func (a *app) requireLogin(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		return nil
	}
	ok, err := a.session.Restore(ctx, a.api)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in: run 'beecok login' first")
	}
	return nil
}

// resolveSpace accepts a space id or a case-insensitive name.
func (a *app) resolveSpace(ctx context.Context, ref string) (model.Space, []model.Space, error) {
	spaces, err := a.api.ListSpaces(ctx)
	if err != nil {
		return model.Space{}, nil, err
	}
	for _, sp := range spaces {
		if sp.ID == ref {
			return sp, spaces, nil
		}
	}
	for _, sp := range spaces {
		if strings.EqualFold(sp.Name, ref) {
			return sp, spaces, nil
		}
	}
	return model.Space{}, spaces, fmt.Errorf("space %q not found", ref)
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
