package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/MJE43/cognitive-gauntlet/internal/board"
	"github.com/MJE43/cognitive-gauntlet/internal/store"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func TestUnknownCommand(t *testing.T) {
	_, err := runCLI(t, "", "dance")
	assert.ErrorContains(t, err, "unknown command")

	_, err = runCLI(t, "")
	assert.Error(t, err)

	out, err := runCLI(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
}

func TestBoardCommand(t *testing.T) {
	out, err := runCLI(t, "", "board", "-seed", "42")
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimRight(board.Render(board.Generate(42)), "\n"), "\n") {
		assert.Contains(t, out, "  "+line+"\n")
	}

	out, err = runCLI(t, "", "board", "-seed", "42", "-stage", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Stage 2: The Labyrinth")

	_, err = runCLI(t, "", "board", "-seed", "42", "-stage", "2", "-pattern", "maze")
	assert.Error(t, err)
	_, err = runCLI(t, "", "board", "-pattern", "spiral")
	assert.Error(t, err)
}

func TestRunWithBuiltinScript(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")

	out, err := runCLI(t, "", "run",
		"-script", "baseline", "-mode", "single", "-seed", "42",
		"-logs", filepath.Join(dir, "logs"), "-db", dbPath, "-readme", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Board Preview (Seed: 42)")
	assert.Contains(t, out, "BENCHMARK RESULTS")
	assert.Contains(t, out, "baseline")

	db, err := store.Open(context.Background(), dbPath)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.ListRuns(context.Background(), store.RunsQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, runs.TotalCount)
	assert.Equal(t, "script/baseline", runs.Runs[0].Model)

	out, err = runCLI(t, "", "leaderboard", "-db", dbPath, "-mode", "single")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")
}

func TestRunRejectsBadFlags(t *testing.T) {
	_, err := runCLI(t, "", "run", "-script", "baseline", "-mode", "arcade", "-db", "", "-readme", "")
	assert.Error(t, err)

	_, err = runCLI(t, "", "run", "-script", "baseline", "-seed", "x", "-db", "", "-readme", "")
	assert.Error(t, err)

	_, err = runCLI(t, "", "run", "-script", filepath.Join(t.TempDir(), "missing.js"), "-db", "", "-readme", "")
	assert.Error(t, err)
}

func TestKeyCommand(t *testing.T) {
	keyring.MockInit()

	out, err := runCLI(t, "sk-or-v1-secret\n", "key", "-profile", "cli-test", "set")
	require.NoError(t, err)
	assert.Contains(t, out, "cret")
	assert.NotContains(t, out, "sk-or-v1-secret")

	out, err = runCLI(t, "", "key", "-profile", "cli-test", "get")
	require.NoError(t, err)
	assert.Equal(t, "***********cret\n", out)

	out, err = runCLI(t, "", "key", "-profile", "cli-test", "-reveal", "get")
	require.NoError(t, err)
	assert.Equal(t, "sk-or-v1-secret\n", out)

	_, err = runCLI(t, "", "key", "-profile", "cli-test", "delete")
	require.NoError(t, err)
	_, err = runCLI(t, "", "key", "-profile", "cli-test", "get")
	assert.ErrorContains(t, err, "no key stored")

	_, err = runCLI(t, "", "key", "rotate")
	assert.Error(t, err)
}
