package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/runlock"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const queueCSV = `Caption,Hashtags,Reel URL,Posted,Upload Time
Old one,#a,https://cdn.example.com/1.mp4,TRUE,2020-01-01 10:00:00
Next one,#b,https://cdn.example.com/2.mp4,,
`

// setupEnv points every file the commands touch into a temp dir and selects
// the CSV queue.
func setupEnv(t *testing.T) (dir string) {
	t.Helper()
	dir = t.TempDir()
	csvPath := filepath.Join(dir, "queue.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(queueCSV), 0o600))

	t.Setenv("QUEUE_SOURCE", "csv")
	t.Setenv("QUEUE_CSV_PATH", csvPath)
	t.Setenv("TOKEN_FILE", filepath.Join(dir, "tokens.json"))
	t.Setenv("RUN_LOCK_FILE", filepath.Join(dir, "autopost.lock"))
	t.Setenv("TEMP_FILE", filepath.Join(dir, "temp.mp4"))
	for _, key := range []string{
		"REFRESH_TOKEN", "YOUTUBE_REFRESH_TOKEN",
		"CLIENT_ID", "YOUTUBE_CLIENT_ID",
		"CLIENT_SECRET", "YOUTUBE_CLIENT_SECRET",
		"AUTH_FLOW", "POSTED_MATCH", "PUBSUB_TOPIC", "SECRET_KEY",
		"LOG_TO_FILE", "LOG_LEVEL", "LOG_FORMAT", "ENV",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_AbortedRunExitsCleanly(t *testing.T) {
	dir := setupEnv(t)

	for _, args := range [][]string{{"run"}, {}} {
		out, err := execute(t, args...)
		require.NoError(t, err, "args %v", args)

		var result model.RunResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, model.RunStateAborted, result.State)
		assert.Contains(t, result.Error, "REFRESH_TOKEN")
	}

	// queue untouched, lock released
	data, err := os.ReadFile(filepath.Join(dir, "queue.csv"))
	require.NoError(t, err)
	assert.Equal(t, queueCSV, string(data))
	lock := runlock.NewFileLock(filepath.Join(dir, "autopost.lock"))
	require.NoError(t, lock.Lock(0))
	require.NoError(t, lock.Unlock())
}

func TestRun_SkipsWhenLocked(t *testing.T) {
	dir := setupEnv(t)

	held := runlock.NewFileLock(filepath.Join(dir, "autopost.lock"))
	require.NoError(t, held.Lock(0))
	defer held.Unlock()

	out, err := execute(t, "run")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRun_InvalidConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv("POSTED_MATCH", "fuzzy")

	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid posted match")
}

func TestRun_InvalidQueueSource(t *testing.T) {
	setupEnv(t)
	t.Setenv("QUEUE_SOURCE", "excel")

	_, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid queue source")
}

func TestRun_MissingServiceAccountAborts(t *testing.T) {
	setupEnv(t)
	t.Setenv("QUEUE_SOURCE", "googlesheet")
	t.Setenv("GCP_PRIVATE_KEY", "")

	_, err := execute(t, "run")
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "status", "--json")
	require.NoError(t, err)

	var status model.QueueStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, 0, status.PostedToday)
	assert.Equal(t, 2, status.DailyCap)
	assert.Equal(t, 2, status.RemainingToday)
	assert.Equal(t, 2, status.Total)
	assert.Equal(t, 1, status.Pending)
	assert.Equal(t, "Next one", status.NextCaption)
	assert.Equal(t, 3, status.NextRow)

	out, err = execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Posted today:    0 of 2")
	assert.Contains(t, out, `row 3 "Next one"`)
}

func TestStatus_QueueMissing(t *testing.T) {
	setupEnv(t)
	t.Setenv("QUEUE_CSV_PATH", filepath.Join(t.TempDir(), "missing.csv"))

	_, err := execute(t, "status")
	assert.ErrorIs(t, err, model.ErrQueueAccess)
}

func TestToken(t *testing.T) {
	setupEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	out, err := execute(t, "token", "--subject", "cron", "--ttl", "1h")
	require.NoError(t, err)

	claims := &model.TriggerClaims{}
	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "cron", claims.Subject)
	assert.Equal(t, model.ScopeRun, claims.Scope)
	assert.NotZero(t, claims.ExpiresAt)
}

func TestToken_RequiresSecret(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLogFlagsOverrideConfiguration(t *testing.T) {
	setupEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	_, err := execute(t, "--log-level", "debug", "--log-format", "text", "token")
	require.NoError(t, err)
	assert.Equal(t, "debug", configuration.C.Logger.Level)
	assert.Equal(t, "text", configuration.C.Logger.Format)
}

func TestAuth_ManualWithoutClientFails(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "auth", "--manual")
	assert.ErrorIs(t, err, model.ErrAuthentication)
}
