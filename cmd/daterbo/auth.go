package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"daterbo-console/internal/core/services"

	"github.com/spf13/cobra"
)

func loginCmd(app *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				// read from stdin so it stays out of shell history
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			p, err := app.auth.Login(cmd.Context(), app.sess, services.LoginInput{Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", p.Identity.Email, p.Identity.Role)
			if !p.ExpiresAt.IsZero() {
				fmt.Fprintf(cmd.OutOrStdout(), "Session valid until %s\n", p.ExpiresAt.Local().Format("02/01/2006 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", os.Getenv("DATERBO_EMAIL"), "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")
	return cmd
}

func logoutCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			// a stale token is still removed
			_, _ = app.sess.Load(cmd.Context())
			if err := app.auth.Logout(cmd.Context(), app.sess); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(app *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(cmd.Context()); err != nil {
				return err
			}
			p := app.sess.Principal()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Email:   %s\n", p.Identity.Email)
			fmt.Fprintf(out, "Role:    %s\n", p.Identity.Role)
			if p.Identity.UserID != "" {
				fmt.Fprintf(out, "User ID: %s\n", p.Identity.UserID)
			}
			if !p.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires: %s\n", p.ExpiresAt.Local().Format("02/01/2006 15:04"))
			}
			return nil
		},
	}
}
