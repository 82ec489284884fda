package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type BlackoutHandler struct {
	blackouts *storage.BlackoutRepository
	logger    *slog.Logger
}

func NewBlackoutHandler(blackouts *storage.BlackoutRepository, logger *slog.Logger) *BlackoutHandler {
	return &BlackoutHandler{blackouts: blackouts, logger: logger}
}

type blackoutItem struct {
	ID        string     `json:"id"`
	Date      slots.Date `json:"date"`
	Reason    string     `json:"reason,omitempty"`
	CreatedAt string     `json:"created_at"`
}

func blackoutToItem(b model.BlackoutDate) blackoutItem {
	return blackoutItem{
		ID:        b.ID,
		Date:      b.Date,
		Reason:    b.Reason,
		CreatedAt: rfc3339(b.CreatedAt),
	}
}

func (h *BlackoutHandler) Blackouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		httpx.MethodNotAllowed(w)
	}
}

func (h *BlackoutHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}

	blackouts, err := h.blackouts.List(r.Context(), clientID, 0)
	if err != nil {
		h.logger.Error("list blackouts failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	items := make([]blackoutItem, 0, len(blackouts))
	for _, b := range blackouts {
		items = append(items, blackoutToItem(b))
	}
	httpx.JSON(w, http.StatusOK, items)
}

type createBlackoutRequest struct {
	Client string `json:"client"`
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

func (h *BlackoutHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBlackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.Client = strings.TrimSpace(req.Client)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Client == "" {
		httpx.BadRequest(w, "client is required")
		return
	}
	if !sameTenant(r.Context(), req.Client) {
		forbidden(w)
		return
	}
	date, err := slots.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		httpx.BadRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}

	id, err := h.blackouts.Create(r.Context(), req.Client, date, req.Reason)
	if err != nil {
		if db.IsUniqueViolation(err) {
			httpx.Conflict(w, "date is already blacked out")
			return
		}
		h.logger.Error("create blackout failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}

	httpx.JSON(w, http.StatusCreated, blackoutItem{ID: id, Date: date, Reason: req.Reason})
}

func (h *BlackoutHandler) delete(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if clientID == "" || id == "" {
		httpx.BadRequest(w, "client and id are required")
		return
	}

	if err := h.blackouts.Delete(r.Context(), clientID, id); err != nil {
		if db.IsNotFound(err) {
			httpx.NotFound(w, "blackout not found")
			return
		}
		h.logger.Error("delete blackout failed", "id", id, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": id})
}
