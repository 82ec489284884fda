package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/assistant-service/internal/ai"
	"github.com/bookdeskhq/bookdesk/services/assistant-service/internal/storage"
)

type ChatHandler struct {
	chats        *storage.ChatRepository
	model        *ai.Client
	logger       *slog.Logger
	systemPrompt string
	historySize  int
}

func NewChatHandler(chats *storage.ChatRepository, model *ai.Client, logger *slog.Logger, systemPrompt string) *ChatHandler {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = "You are a friendly scheduling assistant for a small business. " +
			"Help visitors pick an appointment time and answer questions briefly."
	}
	return &ChatHandler{
		chats:        chats,
		model:        model,
		logger:       logger,
		systemPrompt: systemPrompt,
		historySize:  20,
	}
}

type chatRequest struct {
	Client    string `json:"client"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// Chat serves POST /api/v1/chat: persist the visitor message, run the model
// with the session history, persist and return the reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.Client = strings.TrimSpace(req.Client)
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Message = strings.TrimSpace(req.Message)
	if req.Client == "" || req.SessionID == "" || req.Message == "" {
		httpx.BadRequest(w, "client, session_id, and message are required")
		return
	}

	ctx := r.Context()
	if _, err := h.chats.Append(ctx, req.Client, req.SessionID, "user", req.Message); err != nil {
		h.logger.Error("persist visitor message failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}

	history, err := h.chats.History(ctx, req.Client, req.SessionID, h.historySize)
	if err != nil {
		h.logger.Error("load session history failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: "system", Content: h.systemPrompt})
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := h.model.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			h.logger.Error("model api unavailable", "client", req.Client, "err", err)
			httpx.Error(w, http.StatusServiceUnavailable, "assistant is temporarily unavailable, please try again")
			return
		}
		h.logger.Error("model call failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}

	if _, err := h.chats.Append(ctx, req.Client, req.SessionID, "assistant", reply); err != nil {
		h.logger.Error("persist assistant reply failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}

	httpx.JSON(w, http.StatusOK, chatResponse{SessionID: req.SessionID, Reply: reply})
}
