package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

const appointmentColumns = `
	id::text, client_id, name, email, phone, company, interest,
	date, start_minute, status, COALESCE(chat_session_id, ''), created_at, updated_at`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	var date time.Time
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Company,
		&a.Interest,
		&date,
		&a.StartMinute,
		&a.Status,
		&a.ChatSessionID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	a.Date = slots.DateOf(date)
	return a, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, a *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(client_id, name, email, phone, company, interest, date, start_minute, status, chat_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
		RETURNING id::text
	`, a.ClientID, a.Name, a.Email, a.Phone, a.Company, a.Interest,
		a.Date.At(0, time.UTC), a.StartMinute, a.Status, a.ChatSessionID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, clientID, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1 AND id = $2
	`, clientID, id)
	return scanAppointment(row)
}

// GetForUpdate locks the row for the duration of the surrounding transaction
// so status transitions cannot race each other.
func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, clientID, id string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1 AND id = $2
		FOR UPDATE
	`, clientID, id)
	return scanAppointment(row)
}

type AppointmentFilter struct {
	Date   *slots.Date
	Status string
	Limit  int
}

func (r *AppointmentRepository) List(ctx context.Context, clientID string, f AppointmentFilter) ([]model.Appointment, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var date any
	if f.Date != nil {
		date = f.Date.At(0, time.UTC)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1
			AND ($2::date IS NULL OR date = $2::date)
			AND ($3 = '' OR status = $3)
		ORDER BY date ASC, start_minute ASC
		LIMIT $4
	`, clientID, date, f.Status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET name = $3,
			email = $4,
			phone = $5,
			company = $6,
			interest = $7,
			date = $8,
			start_minute = $9,
			status = $10,
			chat_session_id = NULLIF($11, ''),
			updated_at = now()
		WHERE client_id = $1 AND id = $2
	`, a.ClientID, a.ID, a.Name, a.Email, a.Phone, a.Company, a.Interest,
		a.Date.At(0, time.UTC), a.StartMinute, a.Status, a.ChatSessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, clientID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE client_id = $1 AND id = $2
	`, clientID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// HasActiveConflict reports whether a non-cancelled appointment already holds
// the (date, start_minute) slot. excludeID skips the appointment being
// updated. The partial unique index enforces the same rule; this pre-check
// exists to return a clean 409 instead of a constraint error.
func (r *AppointmentRepository) HasActiveConflict(ctx context.Context, clientID string, date slots.Date, startMinute int, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE client_id = $1
				AND date = $2
				AND start_minute = $3
				AND status <> 'cancelled'
				AND ($4 = '' OR id::text <> $4)
		)
	`, clientID, date.At(0, time.UTC), startMinute, excludeID).Scan(&exists)
	return exists, err
}

// ListActiveBetween returns non-cancelled appointments with date in
// [from, to), feeding conflict filtering in the slot generator.
func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, clientID string, from, to slots.Date) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE client_id = $1
			AND status <> 'cancelled'
			AND date >= $2
			AND date < $3
		ORDER BY date ASC, start_minute ASC
	`, clientID, from.At(0, time.UTC), to.At(0, time.UTC))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
