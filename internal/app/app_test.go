package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/config"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
	"github.com/baharkarakas/ledger-bot/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestNew_MemoryStorageEndToEnd(t *testing.T) {
	a, err := New(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer a.Close()

	h := a.Router()
	send := func(text string) workflow.Reply {
		body, _ := json.Marshal(map[string]string{"from": "6281", "name": "Alice", "text": text})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body)))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var r workflow.Reply
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &r))
		return r
	}

	for _, step := range []string{"new", "2", "Food", "50000 Lunch"} {
		send(step)
	}
	r := send("yes")
	assert.Contains(t, r.Text, "approved")

	txs, err := a.Transactions.ListByUser(context.Background(), "6281", 10, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestNew_UnknownStorage(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage = "mongo"
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
