package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"beecok/internal/client"
)

// askIfEmpty prompts for *v unless a flag already set it.
func (a *app) askIfEmpty(v *string, label string, mask bool) error {
	if *v != "" {
		return nil
	}
	answer, err := a.opts.Prompter.Ask(label, mask)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	*v = answer
	return nil
}

func (a *app) registerCmd() *cobra.Command {
	var in client.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range []struct {
				v     *string
				label string
				mask  bool
			}{
				{&in.Username, "Username", false},
				{&in.Email, "Email", false},
				{&in.Password, "Password", true},
				{&in.ConfirmPassword, "Confirm password", true},
			} {
				if err := a.askIfEmpty(f.v, f.label, f.mask); err != nil {
					return err
				}
			}
			res, err := a.api.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Welcome, %s! You are now logged in.\n", res.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "username")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.askIfEmpty(&email, "Email", false); err != nil {
				return err
			}
			if err := a.askIfEmpty(&password, "Password", true); err != nil {
				return err
			}
			res, err := a.api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged in as %s.\n", res.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.api.Logout(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out.\n")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(cmd.Context()); err != nil {
				return err
			}
			u := a.session.User()
			printf(cmd.OutOrStdout(), "%s <%s>\nid: %s\nmember since: %s\n",
				u.Username, u.Email, u.ID, u.CreatedAt.Local().Format("2006-01-02"))
			return nil
		},
	}
}
