package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

type BlackoutRepository struct {
	pool *db.Pool
}

func NewBlackoutRepository(pool *db.Pool) *BlackoutRepository {
	return &BlackoutRepository{pool: pool}
}

func (r *BlackoutRepository) List(ctx context.Context, clientID string, limit int) ([]model.BlackoutDate, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, client_id, date, reason, created_at
		FROM blackout_dates
		WHERE client_id = $1
		ORDER BY date ASC
		LIMIT $2
	`, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlackoutDate
	for rows.Next() {
		var b model.BlackoutDate
		var date time.Time
		if err := rows.Scan(&b.ID, &b.ClientID, &date, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Date = slots.DateOf(date)
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Create inserts a blackout; the unique (client_id, date) constraint turns a
// duplicate into a conflict the handler maps to 409.
func (r *BlackoutRepository) Create(ctx context.Context, clientID string, date slots.Date, reason string) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blackout_dates (id, client_id, date, reason)
		VALUES ($1, $2, $3, $4)
	`, id, clientID, date.At(0, time.UTC), reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BlackoutRepository) Delete(ctx context.Context, clientID, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM blackout_dates
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

// SetBetween returns the blackout dates in [from, to) keyed for O(1) lookup
// during slot generation.
func (r *BlackoutRepository) SetBetween(ctx context.Context, clientID string, from, to slots.Date) (map[slots.Date]struct{}, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date
		FROM blackout_dates
		WHERE client_id = $1 AND date >= $2 AND date < $3
	`, clientID, from.At(0, time.UTC), to.At(0, time.UTC))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[slots.Date]struct{}{}
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		out[slots.DateOf(date)] = struct{}{}
	}
	return out, rows.Err()
}
