package session

import (
	"context"
	"sync"
	"testing"

	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	sess := models.NewSession()
	sess.Category = models.Ptr("Food")
	require.NoError(t, s.Set(ctx, "u1", sess))

	*sess.Category = "Transport"
	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Food", *got.Category)

	*got.Category = "Utilities"
	again, _ := s.Get(ctx, "u1")
	assert.Equal(t, "Food", *again.Category)
}

func TestStore_MissingSessionIsNil(t *testing.T) {
	got, err := NewStore().Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStore_UpdateCreatesAndClearRemoves(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.Update(ctx, "u1", func(sess *models.Session) {
		sess.MenuState = models.StateCategory
	}))
	got, _ := s.Get(ctx, "u1")
	require.NotNil(t, got)
	assert.Equal(t, models.StateCategory, got.MenuState)

	require.NoError(t, s.Clear(ctx, "u1"))
	got, _ = s.Get(ctx, "u1")
	assert.Nil(t, got)
	assert.Equal(t, 0, s.Len())
}

func TestLocker_SerializesSameKey(t *testing.T) {
	l := NewLocker()
	s := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("u1")
			defer unlock()
			// read-modify-write that would lose updates without the lock
			sess, _ := s.Get(ctx, "u1")
			if sess == nil {
				sess = models.NewSession()
			}
			sess.RetryCount++
			_ = s.Set(ctx, "u1", sess)
		}()
	}
	wg.Wait()

	got, _ := s.Get(ctx, "u1")
	assert.Equal(t, 50, got.RetryCount)
	assert.Equal(t, 0, l.size())
}
