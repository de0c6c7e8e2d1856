package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spendwise/internal/cache"
	"spendwise/internal/cli"
	"spendwise/internal/core"
	"spendwise/internal/report"
	"spendwise/internal/services"
	"spendwise/internal/stats"
	"spendwise/internal/store"
)

const monthLayout = "2006-01"

// reportTime picks the moment the report is computed for: mid-month of
// month when given, otherwise now.
func reportTime(month string, now time.Time, loc *time.Location) (time.Time, error) {
	if month == "" {
		return now.In(loc), nil
	}
	t, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q: want YYYY-MM", month)
	}
	return time.Date(t.Year(), t.Month(), 15, 12, 0, 0, 0, loc), nil
}

func statsCmd(a *app) *cobra.Command {
	var username, month, pdfPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's monthly statistics",
		Long:  `Print the dashboard stat cards and the category breakdown for one user and month.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return errors.New("missing required flag: --user")
			}

			res, cfg, err := a.open(cmd.Context(), a)
			if err != nil {
				return err
			}
			defer res.Cleanup()

			at, err := reportTime(month, a.now(), cfg.Location())
			if err != nil {
				return err
			}

			u, err := res.Backend.UserByUsername(cmd.Context(), username)
			if errors.Is(err, store.ErrUserNotFound) {
				return fmt.Errorf("user %s not found", username)
			}
			if err != nil {
				return err
			}

			svc := services.NewExpenseService(res.Backend, cache.NewLRUCache[[]core.Expense](1, time.Minute), nil, a.logger())
			svc.SetTimeout(cfg.RemoteTimeout)
			d, err := svc.Dashboard(cmd.Context(), u.ID, at)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDashboard(d))

			if pdfPath == "" {
				return nil
			}
			all, err := svc.List(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			if err := writePDF(pdfPath, report.Monthly{
				Username:    u.Username,
				Dashboard:   d,
				Expenses:    stats.InMonth(all, at),
				GeneratedAt: a.now(),
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Report written to "+pdfPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username (required)")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also write a PDF report to this path")
	return cmd
}

func writePDF(path string, m report.Monthly) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WriteMonthlyPDF(f, m)
}
