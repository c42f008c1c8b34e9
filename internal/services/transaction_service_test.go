package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/apperrors"
	"github.com/baharkarakas/ledger-bot/internal/models"
	"github.com/baharkarakas/ledger-bot/internal/repository/memory"
	"github.com/baharkarakas/ledger-bot/internal/scoring"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[string][]string
}

func (r *recordingNotifier) Notify(_ context.Context, userID, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent == nil {
		r.sent = map[string][]string{}
	}
	r.sent[userID] = append(r.sent[userID], msg)
}

func (r *recordingNotifier) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent[userID])
}

type TransactionServiceSuite struct {
	suite.Suite
	ctx      context.Context
	clock    time.Time
	txs      *memory.Transactions
	users    *memory.Users
	audit    *memory.AuditLogs
	notifier *recordingNotifier
	svc      *TransactionService
}

func (s *TransactionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = testNow
	s.txs = memory.NewTransactions()
	s.users = memory.NewUsers()
	s.audit = memory.NewAuditLogs()
	s.notifier = &recordingNotifier{}

	now := func() time.Time { return s.clock }
	scorer := scoring.NewEngine(s.txs, scoring.DefaultThresholds()).WithClock(now, time.UTC)
	s.svc = NewTransactionService(s.txs, s.users, s.audit, scorer, s.notifier).WithClock(now)

	for _, u := range []models.User{
		{ID: "alice", Name: "Alice", Role: models.RoleSubmitter, Active: true},
		{ID: "bob", Name: "Bob", Role: models.RoleApprover, Active: true},
		{ID: "dana", Name: "Dana", Role: models.RoleAdmin, Active: true},
		{ID: "eve", Name: "Eve", Role: models.RoleApprover, Active: false},
	} {
		_, err := s.users.Create(s.ctx, u)
		s.Require().NoError(err)
	}
}

func TestTransactionServiceSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceSuite))
}

func req(category, amount, desc string) SubmitRequest {
	r := SubmitRequest{
		UserID:   "alice",
		Type:     models.TxnExpense,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
	if desc != "" {
		r.Description = &desc
	}
	return r
}

func (s *TransactionServiceSuite) TestListPending_NonPositiveLimitUsesDefault() {
	for i := 0; i < DefaultListLimit+5; i++ {
		_, err := s.txs.Create(s.ctx, models.Transaction{
			UserID:         "alice",
			Type:           models.TxnExpense,
			Category:       "Food",
			Amount:         decimal.NewFromInt(int64(1000 + i)),
			CreatedAt:      testNow.Add(time.Duration(i) * time.Second),
			ApprovalStatus: models.ApprovalPending,
		})
		s.Require().NoError(err)
	}

	for _, limit := range []int{0, -1} {
		got, err := s.svc.ListPending(s.ctx, limit)
		s.Require().NoError(err)
		s.Len(got, DefaultListLimit)

		mine, err := s.svc.ListByUser(s.ctx, "alice", limit, -3)
		s.Require().NoError(err)
		s.Len(mine, DefaultListLimit)
	}

	got, err := s.svc.ListPending(s.ctx, 3)
	s.Require().NoError(err)
	s.Len(got, 3)
}

func (s *TransactionServiceSuite) TestSubmit_CleanEntryAutoApproved() {
	res, err := s.svc.Submit(s.ctx, req("Food", "50000", "Lunch"))
	s.Require().NoError(err)

	s.Equal(models.ApprovalApproved, res.Transaction.ApprovalStatus)
	s.Equal(0, res.Analysis.ConfidenceScore)
	s.Equal(testNow, res.Transaction.CreatedAt)
	s.NotEmpty(res.Transaction.ID)
	s.Equal(0, s.notifier.count("bob"))

	entries := s.audit.Entries()
	s.Require().Len(entries, 1)
	s.Equal("created", entries[0].Action)
}

func (s *TransactionServiceSuite) TestSubmit_ResubmissionIsDuplicateAndNotifiesApprovers() {
	_, err := s.svc.Submit(s.ctx, req("Food", "50000", "Lunch"))
	s.Require().NoError(err)

	s.clock = testNow.Add(2 * time.Minute)
	res, err := s.svc.Submit(s.ctx, req("Food", "51000", "Lunch"))
	s.Require().NoError(err)

	s.Equal(models.ApprovalPending, res.Transaction.ApprovalStatus)
	s.Equal(30, res.Transaction.RiskScore)
	s.Equal([]string{string(scoring.FlagDuplicate)}, res.Transaction.RiskFlags)
	s.Equal(1, s.notifier.count("bob"))
	s.Equal(1, s.notifier.count("dana"))
	s.Equal(0, s.notifier.count("eve"), "inactive approver")
}

func (s *TransactionServiceSuite) TestSubmit_UnrealisticAmountForcedPending() {
	res, err := s.svc.Submit(s.ctx, req("Office Supplies", "150000000", "renovation"))
	s.Require().NoError(err)

	s.Equal(models.ApprovalPending, res.Transaction.ApprovalStatus)
	s.True(res.Analysis.IsUnrealisticAmount)
	s.Equal(40, res.Analysis.ConfidenceScore)
}

func (s *TransactionServiceSuite) TestSubmit_InvalidRequest() {
	_, err := s.svc.Submit(s.ctx, req("", "100", "x"))
	s.ErrorIs(err, apperrors.ErrValidation)

	r := req("Food", "100", "lunch")
	r.Amount = decimal.Zero
	_, err = s.svc.Submit(s.ctx, r)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransactionServiceSuite) pending(id string) {
	s.txs.Insert(models.Transaction{
		ID:             id,
		UserID:         "alice",
		Type:           models.TxnExpense,
		Category:       "Food",
		Amount:         decimal.NewFromInt(20_000_000),
		CreatedAt:      testNow,
		ApprovalStatus: models.ApprovalPending,
	})
}

func (s *TransactionServiceSuite) TestApprove_AppliesOnceThenAlreadyProcessed() {
	s.pending("t1")

	out, tx, err := s.svc.Approve(s.ctx, "t1", "bob")
	s.Require().NoError(err)
	s.Equal(OutcomeApplied, out)
	s.Equal(models.ApprovalApproved, tx.ApprovalStatus)
	s.Equal("bob", *tx.ApproverID)
	s.Equal(testNow, *tx.ApprovedAt)
	s.Equal(1, s.notifier.count("alice"))

	out, tx, err = s.svc.Reject(s.ctx, "t1", "dana", nil)
	s.Require().NoError(err)
	s.Equal(OutcomeAlreadyProcessed, out)
	s.Equal(models.ApprovalApproved, tx.ApprovalStatus)
	s.Equal("bob", *tx.ApproverID)
	s.Equal(1, s.notifier.count("alice"))
}

func (s *TransactionServiceSuite) TestReject_StoresReason() {
	s.pending("t1")
	reason := "no receipt"

	out, _, err := s.svc.Reject(s.ctx, "t1", "dana", &reason)
	s.Require().NoError(err)
	s.Equal(OutcomeApplied, out)

	stored, err := s.svc.GetByID(s.ctx, "t1")
	s.Require().NoError(err)
	s.Equal(models.ApprovalRejected, stored.ApprovalStatus)
	s.Equal("no receipt", *stored.RejectionReason)

	var last models.AuditLog
	for _, e := range s.audit.Entries() {
		last = e
	}
	s.Equal("status_change", last.Action)
	s.Equal("no receipt", last.Details["reason"])
}

func (s *TransactionServiceSuite) TestDecide_Forbidden() {
	s.pending("t1")

	_, _, err := s.svc.Approve(s.ctx, "t1", "alice")
	s.ErrorIs(err, apperrors.ErrForbidden, "submitter role")

	_, _, err = s.svc.Approve(s.ctx, "t1", "eve")
	s.ErrorIs(err, apperrors.ErrForbidden, "inactive approver")

	s.txs.Insert(models.Transaction{ID: "t2", UserID: "bob", Type: models.TxnIncome, Category: "Services",
		Amount: decimal.NewFromInt(1), CreatedAt: testNow, ApprovalStatus: models.ApprovalPending})
	_, _, err = s.svc.Approve(s.ctx, "t2", "bob")
	s.ErrorIs(err, apperrors.ErrForbidden, "own transaction")
}

func (s *TransactionServiceSuite) TestDecide_UnknownTransaction() {
	_, _, err := s.svc.Approve(s.ctx, "missing", "bob")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceSuite) TestApprove_ConcurrentApproversExactlyOneWins() {
	for i := 0; i < 20; i++ {
		s.SetupTest()
		s.pending("t1")

		var wg sync.WaitGroup
		outcomes := make([]Outcome, 2)
		errs := make([]error, 2)
		for j, approver := range []string{"bob", "dana"} {
			wg.Add(1)
			go func(j int, approver string) {
				defer wg.Done()
				outcomes[j], _, errs[j] = s.svc.Approve(s.ctx, "t1", approver)
			}(j, approver)
		}
		wg.Wait()

		s.Require().NoError(errs[0])
		s.Require().NoError(errs[1])
		s.ElementsMatch([]Outcome{OutcomeApplied, OutcomeAlreadyProcessed}, outcomes)

		tx, err := s.svc.GetByID(s.ctx, "t1")
		s.Require().NoError(err)
		s.Equal(models.ApprovalApproved, tx.ApprovalStatus)
		s.Require().NotNil(tx.ApproverID)
		winner := "bob"
		if outcomes[1] == OutcomeApplied {
			winner = "dana"
		}
		s.Equal(winner, *tx.ApproverID)
	}
}

// failingTransactions lets a test make individual repository calls fail.
type failingTransactions struct {
	*memory.Transactions
	mock.Mock
}

func (f *failingTransactions) Create(ctx context.Context, tx models.Transaction) (models.Transaction, error) {
	args := f.Called(ctx, tx)
	return args.Get(0).(models.Transaction), args.Error(1)
}

func TestSubmit_PersistenceFailureIsReturned(t *testing.T) {
	repo := &failingTransactions{Transactions: memory.NewTransactions()}
	repo.On("Create", mock.Anything, mock.Anything).Return(models.Transaction{}, errors.New("too many connections"))

	scorer := scoring.NewEngine(repo, scoring.DefaultThresholds())
	svc := NewTransactionService(repo, memory.NewUsers(), memory.NewAuditLogs(), scorer, &recordingNotifier{})

	_, err := svc.Submit(context.Background(), req("Food", "50000", "Lunch"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many connections")
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertExpectations(t)
}
