package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Chat
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Inbound chat messages by handling outcome",
		},
		[]string{"outcome"}, // workflow|approval|ignored|error
	)

	// Submissions
	TransactionsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_submitted_total",
			Help: "Persisted transactions by initial approval status",
		},
		[]string{"status"},
	)
	SubmissionsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submissions_failed_total",
			Help: "Submissions that failed in the persistence step",
		},
	)
	RiskFlags = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_flags_total",
			Help: "Scoring rules triggered on submission",
		},
		[]string{"flag"},
	)

	// Approvals
	ApprovalDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_decisions_total",
			Help: "Approve/reject attempts by outcome",
		},
		[]string{"decision", "outcome"}, // outcome: applied|already_processed
	)

	// Recovery
	RecoveryRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recovery_retries_total",
			Help: "Retry requests on saved partial transactions",
		},
		[]string{"result"}, // restored|abandoned
	)

	NotificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Outbound notifications dropped because the worker queue was full",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(MessagesTotal)
		prometheus.MustRegister(TransactionsSubmitted)
		prometheus.MustRegister(SubmissionsFailed)
		prometheus.MustRegister(RiskFlags)
		prometheus.MustRegister(ApprovalDecisions)
		prometheus.MustRegister(RecoveryRetries)
		prometheus.MustRegister(NotificationsDropped)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
