// Package notify delivers outbound chat messages without blocking the caller.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/baharkarakas/ledger-bot/internal/metrics"
	"github.com/baharkarakas/ledger-bot/internal/worker"
)

type Notifier interface {
	Notify(ctx context.Context, userID, message string)
}

// Sender performs the actual delivery.
type Sender interface {
	Send(ctx context.Context, userID, message string) error
}

// Async hands each notification to the worker pool and returns immediately. When the
// queue is full the notification is dropped and logged.
type Async struct {
	s       Sender
	wp      *worker.Pool
	timeout time.Duration
}

func NewAsync(s Sender, wp *worker.Pool, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Async{s: s, wp: wp, timeout: timeout}
}

func (a *Async) Notify(_ context.Context, userID, message string) {
	queued := a.wp.TrySubmit(func() {
		// detached from the request context; the request may finish first
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.s.Send(ctx, userID, message); err != nil {
			slog.Warn("notify failed", "user", userID, "err", err)
		}
	})
	if !queued {
		metrics.NotificationsDropped.Inc()
		slog.Warn("notify dropped, queue full", "user", userID)
	}
}

// WebhookSender posts {"to","text"} to the chat gateway.
type WebhookSender struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewWebhookSender(url, token string) *WebhookSender {
	return &WebhookSender{URL: url, Token: token, Client: &http.Client{Timeout: 10 * time.Second}}
}

type outbound struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

func (w *WebhookSender) Send(ctx context.Context, userID, message string) error {
	body, err := json.Marshal(outbound{To: userID, Text: message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.Token != "" {
		req.Header.Set("X-Gateway-Token", w.Token)
	}
	resp, err := w.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return nil
}

// LogSender only logs; used when no gateway webhook is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, userID, message string) error {
	slog.Info("notify", "user", userID, "message", message)
	return nil
}
