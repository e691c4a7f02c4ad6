package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/wellness-client/pkg/credential"
)

func loginCmd(c *cli) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("login: reading password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			resp, err := c.session.Hooks.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password; read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.session.Hooks.Logout(cmd.Context())
		},
	}
}

var errNotSignedIn = errors.New("not signed in")

func whoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := c.session.Credentials.Token(ctx)
			if errors.Is(err, credential.ErrNoCredential) {
				return errNotSignedIn
			}
			if err != nil {
				return err
			}

			if session, err := credential.Inspect(token); err == nil && session.ExpiresAt != nil {
				if session.Expired(time.Now()) {
					return fmt.Errorf("session expired at %s, run login again", session.ExpiresAt.Format(time.RFC3339))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "session valid until %s\n", session.ExpiresAt.Format(time.RFC3339))
			}

			me, err := c.session.Hooks.Users.Me(ctx).Result()
			if err != nil {
				return err
			}
			return renderRecord(cmd.OutOrStdout(), me)
		},
	}
}
