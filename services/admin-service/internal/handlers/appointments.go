package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/libs/httpx"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/outbox"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/storage"
)

type AppointmentHandler struct {
	appointments *storage.AppointmentRepository
	outboxRepo   *outbox.Repository
	logger       *slog.Logger
}

func NewAppointmentHandler(appointments *storage.AppointmentRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		appointments: appointments,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

type appointmentItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Company       string     `json:"company,omitempty"`
	Interest      string     `json:"interest,omitempty"`
	Date          slots.Date `json:"date"`
	Time          string     `json:"time"`
	Display       string     `json:"display"`
	Status        string     `json:"status"`
	ChatSessionID string     `json:"chat_session_id,omitempty"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

func appointmentToItem(a model.Appointment) appointmentItem {
	return appointmentItem{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Phone:         a.Phone,
		Company:       a.Company,
		Interest:      a.Interest,
		Date:          a.Date,
		Time:          slots.FormatClock(a.StartMinute),
		Display:       slots.Format12Hour(a.StartMinute),
		Status:        a.Status,
		ChatSessionID: a.ChatSessionID,
		CreatedAt:     rfc3339(a.CreatedAt),
		UpdatedAt:     rfc3339(a.UpdatedAt),
	}
}

// Appointments serves /api/v1/appointments for all four verbs.
func (h *AppointmentHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		httpx.MethodNotAllowed(w)
	}
}

func (h *AppointmentHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	if clientID == "" {
		httpx.BadRequest(w, "client is required")
		return
	}

	var filter storage.AppointmentFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := slots.ParseDate(raw)
		if err != nil {
			httpx.BadRequest(w, "invalid date, want YYYY-MM-DD")
			return
		}
		filter.Date = &d
	}
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		if !model.ValidStatus(status) {
			httpx.BadRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	appts, err := h.appointments.List(r.Context(), clientID, filter)
	if err != nil {
		h.logger.Error("list appointments failed", "client", clientID, "err", err)
		httpx.Internal(w)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, appointmentToItem(a))
	}
	httpx.JSON(w, http.StatusOK, items)
}

type appointmentRequest struct {
	Client        string `json:"client"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Company       string `json:"company"`
	Interest      string `json:"interest"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	ChatSessionID string `json:"chat_session_id"`
}

func (req *appointmentRequest) trim() {
	req.Client = strings.TrimSpace(req.Client)
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Company = strings.TrimSpace(req.Company)
	req.Interest = strings.TrimSpace(req.Interest)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Status = strings.TrimSpace(req.Status)
	req.ChatSessionID = strings.TrimSpace(req.ChatSessionID)
}

func (h *AppointmentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.trim()

	if req.Client == "" || req.Name == "" || req.Email == "" {
		httpx.BadRequest(w, "client, name, and email are required")
		return
	}
	if !sameTenant(r.Context(), req.Client) {
		forbidden(w)
		return
	}
	date, err := slots.ParseDate(req.Date)
	if err != nil {
		httpx.BadRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}
	startMinute, err := slots.ParseClock(req.Time)
	if err != nil {
		httpx.BadRequest(w, "invalid time, want HH:MM")
		return
	}
	if req.Status == "" {
		req.Status = model.StatusConfirmed
	}
	if !model.ValidStatus(req.Status) {
		httpx.BadRequest(w, "invalid status")
		return
	}

	appt := model.Appointment{
		ClientID:      req.Client,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		Interest:      req.Interest,
		Date:          date,
		StartMinute:   startMinute,
		Status:        req.Status,
		ChatSessionID: req.ChatSessionID,
	}

	ctx := r.Context()

	if appt.Status != model.StatusCancelled {
		taken, err := h.appointments.HasActiveConflict(ctx, appt.ClientID, appt.Date, appt.StartMinute, "")
		if err != nil {
			h.logger.Error("conflict check failed", "client", appt.ClientID, "err", err)
			httpx.Internal(w)
			return
		}
		if taken {
			httpx.Conflict(w, "time slot already booked")
			return
		}
	}

	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		h.logger.Error("begin tx failed", "err", err)
		httpx.Internal(w)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := h.appointments.Create(ctx, tx, &appt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			httpx.Conflict(w, "time slot already booked")
			return
		}
		h.logger.Error("create appointment failed", "client", appt.ClientID, "err", err)
		httpx.Internal(w)
		return
	}
	appt.ID = id

	if appt.Status != model.StatusCancelled {
		if err := h.emitEvent(ctx, tx, outbox.EventAppointmentBooked, appt); err != nil {
			h.logger.Error("write outbox event failed", "err", err)
			httpx.Internal(w)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit failed", "err", err)
		httpx.Internal(w)
		return
	}

	stored, err := h.appointments.Get(ctx, appt.ClientID, id)
	if err != nil {
		h.logger.Error("reload appointment failed", "id", id, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusCreated, appointmentToItem(stored))
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid json body")
		return
	}
	req.trim()

	if req.Client == "" || req.ID == "" {
		httpx.BadRequest(w, "client and id are required")
		return
	}
	if !sameTenant(r.Context(), req.Client) {
		forbidden(w)
		return
	}
	date, err := slots.ParseDate(req.Date)
	if err != nil {
		httpx.BadRequest(w, "invalid date, want YYYY-MM-DD")
		return
	}
	startMinute, err := slots.ParseClock(req.Time)
	if err != nil {
		httpx.BadRequest(w, "invalid time, want HH:MM")
		return
	}
	if !model.ValidStatus(req.Status) {
		httpx.BadRequest(w, "invalid status")
		return
	}
	if req.Name == "" || req.Email == "" {
		httpx.BadRequest(w, "name and email are required")
		return
	}

	ctx := r.Context()
	tx, err := h.appointments.Begin(ctx)
	if err != nil {
		h.logger.Error("begin tx failed", "err", err)
		httpx.Internal(w)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := h.appointments.GetForUpdate(ctx, tx, req.Client, req.ID)
	if err != nil {
		if db.IsNotFound(err) {
			httpx.NotFound(w, "appointment not found")
			return
		}
		h.logger.Error("load appointment failed", "id", req.ID, "err", err)
		httpx.Internal(w)
		return
	}

	if req.Status != model.StatusCancelled {
		taken, err := h.appointments.HasActiveConflict(ctx, req.Client, date, startMinute, req.ID)
		if err != nil {
			h.logger.Error("conflict check failed", "client", req.Client, "err", err)
			httpx.Internal(w)
			return
		}
		if taken {
			httpx.Conflict(w, "time slot already booked")
			return
		}
	}

	updated := current
	updated.Name = req.Name
	updated.Email = req.Email
	updated.Phone = req.Phone
	updated.Company = req.Company
	updated.Interest = req.Interest
	updated.Date = date
	updated.StartMinute = startMinute
	updated.Status = req.Status
	updated.ChatSessionID = req.ChatSessionID

	if err := h.appointments.Update(ctx, tx, &updated); err != nil {
		if db.IsUniqueViolation(err) {
			httpx.Conflict(w, "time slot already booked")
			return
		}
		if db.IsNotFound(err) {
			httpx.NotFound(w, "appointment not found")
			return
		}
		h.logger.Error("update appointment failed", "id", req.ID, "err", err)
		httpx.Internal(w)
		return
	}

	if evt := transitionEvent(current.Status, updated.Status); evt != "" {
		if err := h.emitEvent(ctx, tx, evt, updated); err != nil {
			h.logger.Error("write outbox event failed", "err", err)
			httpx.Internal(w)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("commit failed", "err", err)
		httpx.Internal(w)
		return
	}

	stored, err := h.appointments.Get(ctx, req.Client, req.ID)
	if err != nil {
		h.logger.Error("reload appointment failed", "id", req.ID, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, appointmentToItem(stored))
}

func (h *AppointmentHandler) delete(w http.ResponseWriter, r *http.Request) {
	clientID := clientParam(r)
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if clientID == "" || id == "" {
		httpx.BadRequest(w, "client and id are required")
		return
	}

	if err := h.appointments.Delete(r.Context(), clientID, id); err != nil {
		if db.IsNotFound(err) {
			httpx.NotFound(w, "appointment not found")
			return
		}
		h.logger.Error("delete appointment failed", "id", id, "err", err)
		httpx.Internal(w)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": id})
}

// transitionEvent maps a status change to the outbox event it owes downstream
// notifications, or "" when none is due. Cancelling an active appointment
// announces the cancellation; reactivating a cancelled one announces the slot
// as booked again.
func transitionEvent(oldStatus, newStatus string) string {
	switch {
	case oldStatus != model.StatusCancelled && newStatus == model.StatusCancelled:
		return outbox.EventAppointmentCancelled
	case oldStatus == model.StatusCancelled && newStatus != model.StatusCancelled:
		return outbox.EventAppointmentBooked
	default:
		return ""
	}
}

func (h *AppointmentHandler) emitEvent(ctx context.Context, tx pgx.Tx, eventType string, a model.Appointment) error {
	payload, err := json.Marshal(map[string]any{
		"appointment_id":  a.ID,
		"client":          a.ClientID,
		"name":            a.Name,
		"email":           a.Email,
		"phone":           a.Phone,
		"date":            a.Date.String(),
		"time":            slots.FormatClock(a.StartMinute),
		"display":         slots.Format12Hour(a.StartMinute),
		"status":          a.Status,
		"chat_session_id": a.ChatSessionID,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   a.ID,
		EventType:     eventType,
		Payload:       payload,
	})
}
