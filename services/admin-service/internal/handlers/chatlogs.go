package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type ChatLogHandler struct {
	chatLogs *storage.ChatLogRepository
	logger   *slog.Logger
}

func NewChatLogHandler(chatLogs *storage.ChatLogRepository, logger *slog.Logger) *ChatLogHandler {
	return &ChatLogHandler{chatLogs: chatLogs, logger: logger}
}

type chatMessageItem struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func chatMessageToItem(m model.ChatMessage) chatMessageItem {
	return chatMessageItem{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: rfc3339(m.CreatedAt),
	}
}

func (h *ChatLogHandler) ChatLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.append(w, r)
	case http.MethodDelete:
		h.deleteSession(w, r)
	default:
		httpx.MethodNotAllowed(w)
	}
}

func (h *ChatLogHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.chatLogs.List(r.Context(), clientID, sessionID, limit)
	if err != nil {
		h.logger.Error("list chat messages failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	items := make([]chatMessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, chatMessageToItem(m))
	}
	httpx.JSON(w, http.StatusOK, items)
}

type appendMessageRequest struct {
	Client    string `json:"client"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

func (h *ChatLogHandler) append(w http.ResponseWriter, r *http.Request) {
	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.Client = strings.TrimSpace(req.Client)
	req.SessionID = strings.TrimSpace(req.SessionID)
	req.Role = strings.TrimSpace(req.Role)
	if req.Client == "" || req.SessionID == "" || req.Content == "" {
		httpx.BadRequest(w, "client, session_id, and content are required")
		return
	}
	if !sameTenant(r.Context(), req.Client) {
		forbidden(w)
		return
	}
	if req.Role != "user" && req.Role != "assistant" {
		httpx.BadRequest(w, "role must be user or assistant")
		return
	}

	msg, err := h.chatLogs.Append(r.Context(), req.Client, req.SessionID, req.Role, req.Content)
	if err != nil {
		h.logger.Error("append chat message failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, chatMessageToItem(msg))
}

func (h *ChatLogHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if clientID == "" || sessionID == "" {
		httpx.BadRequest(w, "client and session_id are required")
		return
	}

	deleted, err := h.chatLogs.DeleteSession(r.Context(), clientID, sessionID)
	if err != nil {
		h.logger.Error("delete chat session failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}
	if deleted == 0 {
		httpx.NotFound(w, "session not found")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
