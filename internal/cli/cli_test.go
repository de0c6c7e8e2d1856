package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"spendwise/internal/config"
	"spendwise/internal/core"
	"spendwise/internal/log"
	"spendwise/internal/presenter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPasswordFromPipe(t *testing.T) {
	got, err := ReadPassword(strings.NewReader("s3cret\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	_, err = ReadPassword(strings.NewReader(""))
	assert.True(t, errors.Is(err, io.EOF))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff0000", hexColor("hsl(0, 100%, 50%)"))
	assert.Equal(t, string(SubtleColor), hexColor("not a colour"))
}

func TestRenderDashboard(t *testing.T) {
	now := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		{ID: "1", Amount: 80, Category: "food", ExpenseDate: core.NewDate(2024, time.January, 10)},
		{ID: "2", Amount: 20, Category: "transport", ExpenseDate: core.NewDate(2024, time.January, 12)},
	}

	out := RenderDashboard(presenter.NewDashboard(expenses, now))

	for _, want := range []string{"January 2024", "This Month", "$100.00", "Food & Dining", "80.0%", "Transport"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderBreakdownEmpty(t *testing.T) {
	assert.Contains(t, RenderBreakdown(nil), "No expenses to display")
}

func TestSetupLoggerInstallsDefault(t *testing.T) {
	logger := SetupLogger("debug")
	assert.Equal(t, log.ComponentApp, logger.Component())
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestOpenBackend(t *testing.T) {
	res, err := OpenBackend(context.Background(), log.Discard(), &config.Config{DataBackend: config.BackendMemory})
	require.NoError(t, err)
	defer res.Cleanup()
	assert.NoError(t, res.Backend.Ping(context.Background()))

	_, err = OpenBackend(context.Background(), log.Discard(), &config.Config{DataBackend: "csv"})
	assert.Error(t, err)
}

func TestRequireSharedBackend(t *testing.T) {
	err := RequireSharedBackend(&config.Config{DataBackend: config.BackendMemory})
	assert.ErrorIs(t, err, ErrProcessLocalBackend)
	assert.ErrorContains(t, err, "DATA_BACKEND=sqlite")

	assert.NoError(t, RequireSharedBackend(&config.Config{DataBackend: config.BackendSQLite}))
}
