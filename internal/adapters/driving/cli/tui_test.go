package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
	assert.Contains(t, tuiCmd.Long, "Ctrl+S")
	assert.Contains(t, tuiCmd.Long, "Ctrl+C")
}

func TestTUICmd_NeedsTerminal(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return false }
	ran := false
	runProgram = func(*tui.App) error {
		ran = true
		return nil
	}

	_, _, err := execute(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
	assert.False(t, ran)
}

func TestTUICmd_RunsApp(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return true }
	var got *tui.App
	runProgram = func(app *tui.App) error {
		got = app
		return nil
	}

	_, _, err := execute(t, "tui")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Err())
}

func TestTUICmd_ProgramError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return true }
	runProgram = func(*tui.App) error { return errors.New("tty closed") }

	_, _, err := execute(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: tty closed")
}

func TestTUICmd_RecoversPanic(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return true }
	runProgram = func(*tui.App) error { panic("boom") }

	_, _, err := execute(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI panic: boom")
}

func TestTUICmd_MissingSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return true }
	sessionService = nil
	SetFactories(nil, nil)

	_, _, err := execute(t, "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session service not configured")
}

func TestTUICmd_BuildsServicesOnDemand(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	isTerminal = func() bool { return true }
	runProgram = func(*tui.App) error { return nil }
	sessionService = nil
	built := false
	SetFactories(nil, func(_ context.Context, _ BuildOptions, _ driving.SettingsService) (*Services, error) {
		built = true
		return &Services{Session: mocks.session, Ingestor: mocks.ingestor, Answerer: mocks.answerer}, nil
	})

	_, _, err := execute(t, "tui")

	require.NoError(t, err)
	assert.True(t, built)
}
