package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/ledger-bot/internal/app"
	"github.com/baharkarakas/ledger-bot/internal/config"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
)

func memoryConfig() config.Config {
	return config.Config{
		Env:              "test",
		Storage:          "memory",
		JWTAccessSecret:  "a",
		JWTRefreshSecret: "r",
		JWTAccessTTL:     time.Minute,
		JWTRefreshTTL:    time.Hour,
		Workers:          1,
		PersistTimeout:   time.Second,
		Scoring:          scoring.DefaultThresholds(),
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(app.New, memoryConfig)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScoreCleanCandidate(t *testing.T) {
	out, err := execute(t, "score", "--user", "u1", "--category", "Food", "--amount", "50.000", "--desc", "team lunch")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 0")
	assert.Contains(t, out, "status: approved")
	assert.Contains(t, out, "manual approval: false")
	assert.NotContains(t, out, "flags:")
}

func TestScoreFlagsUnrealisticAndMissingDescription(t *testing.T) {
	out, err := execute(t, "score", "--user", "u1", "--type", "income", "--category", "Sales", "--amount", "150000000")
	require.NoError(t, err)
	assert.Contains(t, out, "score: 45")
	assert.Contains(t, out, "status: pending")
	assert.Contains(t, out, "unrealistic_amount, lacks_description")
}

func TestScoreRejectsBadInput(t *testing.T) {
	_, err := execute(t, "score", "--category", "Food", "--amount", "abc")
	assert.ErrorContains(t, err, "--amount")

	_, err = execute(t, "score", "--type", "transfer", "--category", "Food", "--amount", "100")
	assert.ErrorContains(t, err, "--type")

	_, err = execute(t, "score", "--category", "Food")
	assert.Error(t, err)
}

func TestPendingEmpty(t *testing.T) {
	out, err := execute(t, "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "no pending transactions")
}

func TestApproveUnknownTransaction(t *testing.T) {
	_, err := execute(t, "approve", "missing", "--as", "boss")
	assert.Error(t, err)

	_, err = execute(t, "approve", "missing")
	assert.ErrorContains(t, err, "as")
}

func TestUserAdd(t *testing.T) {
	out, err := execute(t, "useradd", "--id", "+62811", "--name", "Ana", "--email", "ana@example.com", "--password", "s3cretpass")
	require.NoError(t, err)
	assert.Contains(t, out, "created +62811 (approver)")

	_, err = execute(t, "useradd", "--id", "x", "--email", "x@example.com", "--password", "s3cretpass", "--role", "root")
	assert.ErrorContains(t, err, "--role")
}

func TestStorageFlagOverridesConfig(t *testing.T) {
	cmd := newRootCmd(app.New, func() config.Config {
		c := memoryConfig()
		c.Storage = "nowhere"
		return c
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"pending"})
	assert.ErrorContains(t, cmd.Execute(), "unknown STORAGE")

	cmd.SetArgs([]string{"--storage", "memory", "pending"})
	assert.NoError(t, cmd.Execute())
}
