package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/importer"
	"spendwise/internal/store"
)

func importCmd(a *app) *cobra.Command {
	var username, file string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import expenses from an OFX or QFX statement",
		Long: `Create one expense per debit in a bank or credit card statement.
Credits are skipped. Imported rows land in the Other category, or in Bills for
bank fees, and can be recategorised from the dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" || file == "" {
				return errors.New("missing required flags: --user and --file")
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

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := importer.ParseOFX(f, cfg.Location())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				for _, e := range st.Expenses {
					fmt.Fprintf(out, "%s  %10s  %-8s %s\n",
						e.ExpenseDate, core.FormatUSD(e.Amount), e.Category, noteOf(e.Note))
				}
				fmt.Fprintln(out, cli.SubtleStyle.Render(
					fmt.Sprintf("%d expenses would be imported, %d rows skipped", len(st.Expenses), st.Skipped)))
				return nil
			}

			bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(st.Expenses), "Importing expenses")
			for _, e := range st.Expenses {
				if _, err := res.Backend.Create(cmd.Context(), u.ID, e); err != nil {
					return fmt.Errorf("create expense: %w", err)
				}
				_ = bar.Add(1)
			}

			fmt.Fprintln(out, cli.SuccessStyle.Render(
				fmt.Sprintf("Imported %d expenses for %s (%d rows skipped)", len(st.Expenses), u.Username, st.Skipped)))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username (required)")
	cmd.Flags().StringVar(&file, "file", "", "OFX or QFX statement (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the expenses without saving them")
	return cmd
}

func noteOf(n *string) string {
	if n == nil {
		return ""
	}
	return *n
}
