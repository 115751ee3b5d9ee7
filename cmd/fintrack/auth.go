package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/i18n"
)

func loginCmd(s *session) *cobra.Command {
	var creds core.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long: `Sign in with email and password. Missing values are asked for on the
terminal. The session is kept until you log out or it is rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			term := s.rt.Terminal
			var err error
			if creds.Email == "" {
				if creds.Email, err = term.ReadLine("Email: "); err != nil {
					return fmt.Errorf("failed to read email: %w", err)
				}
			}
			if creds.Password == "" {
				if creds.Password, err = term.ReadLine("Password: "); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
			}

			resp, err := s.rt.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			term.Notify(app.LevelSuccess, fmt.Sprintf("%s: %s", term.T(i18n.LoginSuccess), resp.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password")
	return cmd
}

func logoutCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			if err := s.rt.Auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("failed to log out: %w", err)
			}
			s.rt.Terminal.Notify(app.LevelSuccess, s.rt.Terminal.T(i18n.LogoutSuccess))
			return nil
		},
	}
}

func validateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored session against the API",
		Long:  `Check the stored token. A rejected token is removed and you have to log in again.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			term := s.rt.Terminal
			user, err := s.rt.Auth.ValidateStored(cmd.Context())
			if errors.Is(err, app.ErrNoToken) {
				return errors.New(term.T(i18n.NotLoggedIn))
			}
			if err != nil {
				return fmt.Errorf("session rejected: %w", err)
			}
			term.Notify(app.LevelSuccess, fmt.Sprintf("%s (%s)", term.T(i18n.SessionValid), user.Email))
			return nil
		},
	}
}

func whoamiCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := s.rt.RequireSession(); err != nil {
				return err
			}
			user, err := s.rt.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch user: %w", err)
			}
			theme := s.rt.Terminal.Theme()
			fmt.Fprintf(s.rt.Terminal.Out(), "%s %s\n%s\n",
				theme.Title.Render(user.Name),
				theme.Subtle.Render("#"+user.ID),
				user.Email)
			return nil
		},
	}
}
