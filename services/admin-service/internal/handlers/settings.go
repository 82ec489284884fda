package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type SettingsHandler struct {
	settings *storage.SettingsRepository
	logger   *slog.Logger
}

func NewSettingsHandler(settings *storage.SettingsRepository, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

type settingsPayload struct {
	DurationMinutes      int `json:"duration_minutes"`
	BufferMinutes        int `json:"buffer_minutes"`
	AdvanceNoticeHours   int `json:"advance_notice_hours"`
	MaxBookingWindowDays int `json:"max_booking_window_days"`
}

func settingsToPayload(s slots.Settings) settingsPayload {
	return settingsPayload{
		DurationMinutes:      s.DurationMinutes,
		BufferMinutes:        s.BufferMinutes,
		AdvanceNoticeHours:   s.AdvanceNoticeHours,
		MaxBookingWindowDays: s.MaxBookingWindowDays,
	}
}

func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.update(w, r)
	default:
		httpx.MethodNotAllowed(w)
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}

	cfg, err := h.settings.GetOrCreate(r.Context(), clientID)
	if err != nil {
		h.logger.Error("load settings failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, settingsToPayload(cfg))
}

type updateSettingsRequest struct {
	Client string `json:"client"`
	settingsPayload
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.Client = strings.TrimSpace(req.Client)
	if req.Client == "" {
		httpx.BadRequest(w, "client is required")
		return
	}
	if !sameTenant(r.Context(), req.Client) {
		forbidden(w)
		return
	}

	cfg := slots.Settings{
		DurationMinutes:      req.DurationMinutes,
		BufferMinutes:        req.BufferMinutes,
		AdvanceNoticeHours:   req.AdvanceNoticeHours,
		MaxBookingWindowDays: req.MaxBookingWindowDays,
	}
	if err := cfg.Validate(); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	if err := h.settings.Update(r.Context(), req.Client, cfg); err != nil {
		h.logger.Error("update settings failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, settingsToPayload(cfg))
}
