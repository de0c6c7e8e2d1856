package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	gsheet "spendwise/internal/sheets/google"
	"spendwise/internal/store"
	"spendwise/internal/worker"
)

func resyncCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Copy a user's expenses into the Google Sheets mirror",
		Long: `Upsert every expense of one user into the mirror sheet. Use it to seed a new
sheet or to repair one after the worker was down.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return errors.New("missing required flag: --user")
			}

			res, cfg, err := a.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			u, err := res.Backend.UserByUsername(cmd.Context(), username)
			if errors.Is(err, store.ErrUserNotFound) {
				return fmt.Errorf("user %s not found", username)
			}
			if err != nil {
				return err
			}

			mirror := a.mirror
			if mirror == nil {
				if !cfg.SheetsEnabled() {
					return errors.New("GOOGLE_SPREADSHEET_ID is not set")
				}
				client, err := gsheet.New(cmd.Context(), gsheet.Config{
					SpreadsheetID:   cfg.GoogleSpreadsheetID,
					SheetName:       cfg.GoogleSheetName,
					CredentialsFile: cfg.GoogleCredentialsFile,
					CredentialsJSON: cfg.GoogleCredentialsJSON,
				}, a.logger())
				if err != nil {
					return err
				}
				if err := client.EnsureHeader(cmd.Context()); err != nil {
					return err
				}
				mirror = client
			}

			expenses, err := res.Backend.List(cmd.Context(), u.ID)
			if err != nil {
				return err
			}

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(expenses), "Mirroring expenses")
			n, err := worker.Backfill(cmd.Context(), mirror, expenses, func() { _ = bar.Add(1) })
			if err != nil {
				return fmt.Errorf("mirrored %d of %d expenses: %w", n, len(expenses), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
				fmt.Sprintf("Mirrored %d expenses for %s", n, u.Username)))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username (required)")
	return cmd
}
