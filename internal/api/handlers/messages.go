package handlers

import (
	"context"
	"net/http"

	"github.com/baharkarakas/ledger-bot/internal/api/httpx"
	"github.com/baharkarakas/ledger-bot/internal/chat"
	"github.com/baharkarakas/ledger-bot/internal/workflow"
)

type Dispatcher interface {
	Handle(ctx context.Context, m chat.Message) (workflow.Reply, error)
}

// MessageHandler is the inbound webhook of the chat gateway.
type MessageHandler struct {
	d Dispatcher
}

func NewMessageHandler(d Dispatcher) *MessageHandler { return &MessageHandler{d: d} }

func (h *MessageHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var m chat.Message
	if !httpx.Decode(w, r, &m) {
		return
	}
	reply, err := h.d.Handle(r.Context(), m)
	if err != nil {
		httpx.WriteAppError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reply)
}
