package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/promowizard/internal/config"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, app *App, sessionID string, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), app, RunOptions{
		AccountID: "001ACC",
		SessionID: sessionID,
		In:        strings.NewReader(strings.Join(lines, "\n") + "\n"),
		Out:       &out,
	})
	require.NoError(t, err, out.String())
	return out.String()
}

func TestRun_EndToEnd(t *testing.T) {
	app := build(t, testConfig(t))

	out := runScript(t, app, "",
		"next",
		"Spring Sale",
		"next",
		"next",
		"t P1",
		"d P1 150",
		"n",
		"next",
		"s S1",
		"submit",
	)

	assert.Contains(t, out, "# Step 1: Promotion Details")
	assert.Contains(t, out, ">>> [Validation Error] "+wizard.MsgEnterName)
	assert.Contains(t, out, ">>> [Validation Error] "+wizard.MsgSelectProducts)
	assert.Contains(t, out, "| [x] | P1 | Product 1 | Tools | 100% |")
	assert.Contains(t, out, "_6-7 of 7 (page 2/2), 1 selected_")
	assert.Contains(t, out, "| [x] | S1 | Downtown | North |")
	assert.Contains(t, out, ">>> [Success] "+wizard.DefaultSuccessMessage)
	assert.Contains(t, out, ">>> Wizard closed.")
	assert.Contains(t, out, ">>> Promotion record: ")

	ids, err := app.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids, "a submitted session is removed")
	assert.Zero(t, app.Shells.Len())
}

func TestRun_Errors(t *testing.T) {
	app := build(t, testConfig(t))

	out := runScript(t, app, "",
		"Sale",
		"next",
		"zzz",
		"t P9",
		"p",
		"submit",
		"back",
		"back",
		"back",
		"quit",
	)

	assert.Contains(t, out, `>>> unknown command "zzz"`)
	assert.Contains(t, out, "item is not on the current page")
	assert.Contains(t, out, "page out of range")
	assert.Contains(t, out, "only permitted from the final step")
	assert.Contains(t, out, ">>> Session '")
}

func TestRun_ResumeFromFileStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Persistence.Driver = config.DriverFile
	cfg.Persistence.Dir = t.TempDir()

	first := build(t, cfg)
	runScript(t, first, "", "Spring Sale", "next", "t P2", "d P2 30", "quit")

	ids, err := first.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	// A new process rehydrates the session from disk.
	second := build(t, cfg)
	out := runScript(t, second, ids[0])

	assert.Contains(t, out, ">>> Resuming session '"+ids[0]+"'.")
	assert.Contains(t, out, "# Step 2: Select Products")
	assert.Contains(t, out, "| [x] | P2 | Product 2 | N/A | 30% |")
}

func TestRun_UnknownSession(t *testing.T) {
	app := build(t, testConfig(t))
	err := Run(context.Background(), app, RunOptions{SessionID: "missing", In: strings.NewReader("")})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRun_CancelledContext(t *testing.T) {
	app := build(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, app, RunOptions{In: strings.NewReader("next\n")})
	assert.NoError(t, err)
}
