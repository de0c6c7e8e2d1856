package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/storage"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Open the sqlite database, apply pending migrations and print the schema version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, _, err := a.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			repo, ok := res.Backend.(*storage.SQLiteRepository)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("Nothing to migrate: the memory backend has no schema"))
				return nil
			}

			version, dirty, err := storage.SchemaVersion(repo.DB())
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			if dirty {
				return fmt.Errorf("schema version %d is dirty; fix the database and retry", version)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(fmt.Sprintf("Schema is at version %d", version)))
			return nil
		},
	}
}
