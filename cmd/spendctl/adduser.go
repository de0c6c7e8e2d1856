package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spendwise/internal/auth"
	"spendwise/internal/cli"
	"spendwise/internal/store"
)

func addUserCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a dashboard user",
		Long:  `Create a user that can sign in to the dashboard. The password is prompted for when --password is omitted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(username) == "" {
				return errors.New("missing required flag: --user")
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				p, err := cli.ReadPassword(a.stdin)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
				password = p
			}

			res, cfg, err := a.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			svc := auth.NewService(res.Backend, res.Backend, cfg.SessionTTL, a.logger())
			u, err := svc.Register(cmd.Context(), username, password)
			switch {
			case errors.Is(err, store.ErrUserExists):
				return fmt.Errorf("user %s already exists", strings.TrimSpace(username))
			case errors.Is(err, auth.ErrEmptyPassword):
				return errors.New("password cannot be empty")
			case err != nil:
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(),
				cli.SuccessStyle.Render(fmt.Sprintf("User %s created with ID %s", u.Username, u.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username (required)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}
