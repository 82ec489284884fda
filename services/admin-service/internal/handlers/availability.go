package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type AvailabilityHandler struct {
	availability *storage.AvailabilityRepository
	blackouts    *storage.BlackoutRepository
	appointments *storage.AppointmentRepository
	settings     *storage.SettingsRepository
	logger       *slog.Logger
}

func NewAvailabilityHandler(
	availability *storage.AvailabilityRepository,
	blackouts *storage.BlackoutRepository,
	appointments *storage.AppointmentRepository,
	settings *storage.SettingsRepository,
	logger *slog.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		blackouts:    blackouts,
		appointments: appointments,
		settings:     settings,
		logger:       logger,
	}
}

var weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// dayWindowPayload is the wire shape of one weekday in the template, with
// clock strings at the boundary instead of raw minutes.
type dayWindowPayload struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type weekPayload map[string]dayWindowPayload

func weekToPayload(tmpl slots.WeekTemplate) weekPayload {
	out := make(weekPayload, 7)
	for i, win := range tmpl {
		out[weekdayNames[i]] = dayWindowPayload{
			Enabled: win.Enabled,
			Start:   slots.FormatClock(win.StartMinute),
			End:     slots.FormatClock(win.EndMinute),
		}
	}
	return out
}

func weekFromPayload(p weekPayload) (slots.WeekTemplate, string) {
	var tmpl slots.WeekTemplate
	for i, name := range weekdayNames {
		day, ok := p[name]
		if !ok {
			// Omitted weekdays stay disabled.
			continue
		}
		start, err := slots.ParseClock(day.Start)
		if err != nil {
			return tmpl, name + ": invalid start time, want HH:MM"
		}
		end, err := slots.ParseClock(day.End)
		if err != nil {
			return tmpl, name + ": invalid end time, want HH:MM"
		}
		if day.Enabled && end <= start {
			return tmpl, name + ": end must be after start"
		}
		tmpl[i] = slots.DayWindow{Enabled: day.Enabled, StartMinute: start, EndMinute: end}
	}
	for name := range p {
		if !validWeekdayName(name) {
			return tmpl, "unknown weekday: " + name
		}
	}
	return tmpl, ""
}

func validWeekdayName(name string) bool {
	for _, n := range weekdayNames {
		if n == name {
			return true
		}
	}
	return false
}

// Template serves GET and POST /api/v1/availability.
func (h *AvailabilityHandler) Template(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getTemplate(w, r)
	case http.MethodPost:
		h.replaceTemplate(w, r)
	default:
		httpx.MethodNotAllowed(w)
	}
}

func (h *AvailabilityHandler) getTemplate(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}

	tmpl, err := h.availability.GetWeek(r.Context(), clientID)
	if err != nil {
		h.logger.Error("load weekly template failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, weekToPayload(tmpl))
}

type replaceTemplateRequest struct {
	Client string      `json:"client"`
	Week   weekPayload `json:"week"`
}

func (h *AvailabilityHandler) replaceTemplate(w http.ResponseWriter, r *http.Request) {
	var req replaceTemplateRequest
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
	if len(req.Week) == 0 {
		httpx.BadRequest(w, "week is required")
		return
	}

	tmpl, msg := weekFromPayload(req.Week)
	if msg != "" {
		httpx.BadRequest(w, msg)
		return
	}

	if err := h.availability.ReplaceWeek(r.Context(), req.Client, tmpl); err != nil {
		h.logger.Error("replace weekly template failed", "client", req.Client, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, weekToPayload(tmpl))
}

// bookingWindow bounds a slot scan so it never offers slots past the tenant's
// booking horizon (today plus maxDays). requested is the caller's days
// parameter, 0 when absent. A start date at or beyond the horizon scans
// nothing.
func bookingWindow(start, today slots.Date, requested, maxDays int) int {
	if requested <= 0 || requested > maxDays {
		requested = maxDays
	}
	remaining := start.DaysUntil(today.AddDays(maxDays))
	if remaining < requested {
		requested = remaining
	}
	if requested < 0 {
		return 0
	}
	return requested
}

type checkResponse struct {
	Days     []slots.DaySlots `json:"days"`
	Settings settingsPayload  `json:"settings"`
}

// Check serves GET /api/v1/availability/check: the bookable-slot feed that the
// dashboard calendar and the chat assistant both read.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpx.MethodNotAllowed(w)
		return
	}

	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}

	now := time.Now()
	start := slots.DateOf(now)
	if raw := strings.TrimSpace(r.URL.Query().Get("start_date")); raw != "" {
		parsed, err := slots.ParseDate(raw)
		if err != nil {
			httpx.BadRequest(w, "invalid start_date, want YYYY-MM-DD")
			return
		}
		start = parsed
	}

	ctx := r.Context()
	cfg, err := h.settings.GetOrCreate(ctx, clientID)
	if err != nil {
		h.logger.Error("load settings failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	requested := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.BadRequest(w, "days must be a positive integer")
			return
		}
		requested = n
	}
	days := bookingWindow(start, slots.DateOf(now), requested, cfg.MaxBookingWindowDays)

	tmpl, err := h.availability.GetWeek(ctx, clientID)
	if err != nil {
		h.logger.Error("load weekly template failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	end := start.AddDays(days)
	blackouts, err := h.blackouts.SetBetween(ctx, clientID, start, end)
	if err != nil {
		h.logger.Error("load blackouts failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	appts, err := h.appointments.ListActiveBetween(ctx, clientID, start, end)
	if err != nil {
		h.logger.Error("load appointments failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}
	booked := make([]slots.Booked, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, slots.Booked{Date: a.Date, StartMinute: a.StartMinute})
	}

	result := slots.Generate(start, days, tmpl, blackouts, booked, cfg, now)
	if result == nil {
		result = []slots.DaySlots{}
	}
	httpx.JSON(w, http.StatusOK, checkResponse{
		Days:     result,
		Settings: settingsToPayload(cfg),
	})
}
