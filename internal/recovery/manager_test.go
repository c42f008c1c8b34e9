package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/repository/memory"
	"github.com/baharkarakas/ledger-bot/internal/services"
	"github.com/baharkarakas/ledger-bot/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubmitter struct{ mock.Mock }

func (m *mockSubmitter) Submit(ctx context.Context, req services.SubmitRequest) (services.SubmitResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(services.SubmitResult), args.Error(1)
}

func confirmSession() *models.Session {
	s := models.NewSession()
	s.MenuState = models.StateConfirm
	s.SetFields(models.Fields{
		Type:        models.Ptr(models.TxnExpense),
		Category:    models.Ptr("Food"),
		Amount:      models.Ptr("50,000"),
		Description: models.Ptr("Lunch"),
	})
	return s
}

func setup(t *testing.T) (*Manager, *session.Store, *memory.Partials, *mockSubmitter) {
	t.Helper()
	sessions := session.NewStore()
	partials := memory.NewPartials()
	sub := &mockSubmitter{}
	return NewManager(sessions, partials, sub, time.Second), sessions, partials, sub
}

func TestSubmit_SuccessClearsSnapshotAndSession(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sess := confirmSession()
	require.NoError(t, sessions.Set(ctx, "u1", sess))

	sub.On("Submit", mock.Anything, mock.MatchedBy(func(r services.SubmitRequest) bool {
		return r.UserID == "u1" && r.Category == "Food" && r.Amount.String() == "50000" && *r.Description == "Lunch"
	})).Return(services.SubmitResult{Transaction: models.Transaction{ID: "t1"}}, nil).Once()

	res, err := m.Submit(ctx, "u1", sess)
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Transaction.ID)

	p, _ := partials.Load(ctx, "u1")
	assert.Nil(t, p)
	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got)
	sub.AssertExpectations(t)
}

func TestSubmit_TransientFailureKeepsSnapshotAndParksSession(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sess := confirmSession()
	require.NoError(t, sessions.Set(ctx, "u1", sess))

	sub.On("Submit", mock.Anything, mock.Anything).
		Return(services.SubmitResult{}, errors.New("connection reset")).Once()

	_, err := m.Submit(ctx, "u1", sess)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrTransient)

	p, _ := partials.Load(ctx, "u1")
	require.NotNil(t, p)
	assert.Equal(t, "Food", p.Category)
	assert.Equal(t, "50,000", p.Amount)
	assert.Equal(t, "Lunch", *p.Description)

	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got, "only Retry brings the entry back to CONFIRM")
}

func TestSubmit_FailedAttemptsAfterRetryKeepCount(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sub.On("Submit", mock.Anything, mock.Anything).
		Return(services.SubmitResult{}, errors.New("db down"))

	sess := confirmSession()
	require.NoError(t, sessions.Set(ctx, "u1", sess))
	_, err := m.Submit(ctx, "u1", sess)
	require.ErrorIs(t, err, apperrors.ErrTransient)

	res, err := m.Retry(ctx, "u1")
	require.NoError(t, err)
	_, err = m.Submit(ctx, "u1", res.Session)
	require.ErrorIs(t, err, apperrors.ErrTransient)

	p, _ := partials.Load(ctx, "u1")
	require.NotNil(t, p)
	assert.Equal(t, 1, p.RetryCount)
	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got)
	sub.AssertNumberOfCalls(t, "Submit", 2)
}

func TestSubmit_MissingFieldsIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sess := models.NewSession()
	sess.MenuState = models.StateConfirm
	sess.Category = models.Ptr("Food")
	require.NoError(t, sessions.Set(ctx, "u1", sess))

	_, err := m.Submit(ctx, "u1", sess)
	assert.ErrorIs(t, err, apperrors.ErrSessionIntegrity)

	p, _ := partials.Load(ctx, "u1")
	assert.Nil(t, p)
	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got)
	sub.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSubmit_ValidationFailureDiscards(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sess := confirmSession()
	require.NoError(t, sessions.Set(ctx, "u1", sess))

	sub.On("Submit", mock.Anything, mock.Anything).
		Return(services.SubmitResult{}, apperrors.ErrValidation).Once()

	_, err := m.Submit(ctx, "u1", sess)
	assert.ErrorIs(t, err, apperrors.ErrSessionIntegrity)
	p, _ := partials.Load(ctx, "u1")
	assert.Nil(t, p)
}

func TestSubmit_SnapshotExistsDuringPersistence(t *testing.T) {
	ctx := context.Background()
	m, _, partials, sub := setup(t)

	var seen *models.PartialTransaction
	sub.On("Submit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen, _ = partials.Load(ctx, "u1") }).
		Return(services.SubmitResult{}, nil).Once()

	_, err := m.Submit(ctx, "u1", confirmSession())
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "Food", seen.Category)
}

func TestSubmit_PassesDeadline(t *testing.T) {
	ctx := context.Background()
	m, _, _, sub := setup(t)

	sub.On("Submit", mock.MatchedBy(func(c context.Context) bool {
		_, ok := c.Deadline()
		return ok
	}), mock.Anything).Return(services.SubmitResult{}, nil).Once()

	_, err := m.Submit(ctx, "u1", confirmSession())
	require.NoError(t, err)
	sub.AssertExpectations(t)
}

func TestRetry_WithoutSnapshotIsNotFound(t *testing.T) {
	m, _, _, _ := setup(t)
	_, err := m.Retry(context.Background(), "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRetry_ThreeRestoresThenAbandons(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, sub := setup(t)
	sub.On("Submit", mock.Anything, mock.Anything).
		Return(services.SubmitResult{}, errors.New("db down"))

	sess := confirmSession()
	require.NoError(t, sessions.Set(ctx, "u1", sess))
	_, err := m.Submit(ctx, "u1", sess)
	require.ErrorIs(t, err, apperrors.ErrTransient)

	for attempt := 1; attempt <= MaxRetries; attempt++ {
		res, err := m.Retry(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, RetryRestored, res.Status)
		assert.Equal(t, attempt, res.Attempt)

		got, _ := sessions.Get(ctx, "u1")
		require.NotNil(t, got)
		assert.Equal(t, models.StateConfirm, got.MenuState)
		assert.Equal(t, attempt, got.RetryCount)
		assert.Equal(t, "50,000", *got.Amount)

		_, err = m.Submit(ctx, "u1", got)
		require.ErrorIs(t, err, apperrors.ErrTransient)
	}

	res, err := m.Retry(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, RetryAbandoned, res.Status)
	assert.Equal(t, "Food", res.Data.Category)
	assert.Equal(t, "50,000", res.Data.Amount)

	p, _ := partials.Load(ctx, "u1")
	assert.Nil(t, p)
	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got)

	_, err = m.Retry(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRetry_CountSurvivesSessionLoss(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, _ := setup(t)
	require.NoError(t, partials.Save(ctx, models.PartialTransaction{
		UserID: "u1", Type: models.TxnIncome, Category: "Services", Amount: "1000", RetryCount: 3,
	}))
	require.NoError(t, sessions.Clear(ctx, "u1"))

	res, err := m.Retry(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, RetryAbandoned, res.Status)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	m, sessions, partials, _ := setup(t)
	require.NoError(t, partials.Save(ctx, models.PartialTransaction{UserID: "u1", Amount: "5"}))
	require.NoError(t, sessions.Set(ctx, "u1", confirmSession()))

	require.NoError(t, m.Discard(ctx, "u1"))
	p, err := m.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, p)
	got, _ := sessions.Get(ctx, "u1")
	assert.Nil(t, got)
}
