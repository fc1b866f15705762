package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_DIR", dir)
	t.Setenv("STORAGE_SCORES_FILE", "")
	t.Setenv("STORAGE_USERS_FILE", "")
	t.Setenv("PASSWORD_DIGEST", "")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStoreInit(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, NewStoreCommand(), "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "database.json"))

	for _, name := range []string{"database.json", "users.json"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	}
}

func TestScoresCommands(t *testing.T) {
	setupEnv(t)

	_, err := run(t, NewScoresCommand(), "submit", "--name", "alice", "--score", "5")
	require.NoError(t, err)
	_, err = run(t, NewScoresCommand(), "submit", "--name", "bob", "--score", "9")
	require.NoError(t, err)
	out, err := run(t, NewScoresCommand(), "submit", "--name", "Alice", "--score", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "alice: 5")

	out, err = run(t, NewScoresCommand(), "top", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "alice")

	out, err = run(t, NewScoresCommand(), "rank", "ALICE")
	require.NoError(t, err)
	assert.Contains(t, out, "#2 of 2: alice (5)")

	_, err = run(t, NewScoresCommand(), "rank", "carol")
	assert.Error(t, err)

	out, err = run(t, NewStoreCommand(), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "database.json: 2 scores")
	assert.Contains(t, out, "users.json: 0 accounts")
}

func TestAccountCommands(t *testing.T) {
	setupEnv(t)

	out, err := run(t, NewAccountCommand(), "create", "--username", "alice", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created: alice")

	_, err = run(t, NewAccountCommand(), "create", "--username", "alice", "--password", "again")
	assert.Error(t, err)

	out, err = run(t, NewAccountCommand(), "verify", "--username", "alice", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Credentials OK")

	_, err = run(t, NewAccountCommand(), "verify", "--username", "alice", "--password", "nope")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, NewVersionCommand())
	require.NoError(t, err)
	assert.Equal(t, "flapboard dev\n", out)
}
