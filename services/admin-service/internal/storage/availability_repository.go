package storage

import (
	"context"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

type AvailabilityRepository struct {
	pool *db.Pool
}

func NewAvailabilityRepository(pool *db.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

// GetWeek loads the tenant's weekly template. Weekdays without a stored row
// come back disabled, which is also the state of a freshly created tenant.
func (r *AvailabilityRepository) GetWeek(ctx context.Context, clientID string) (slots.WeekTemplate, error) {
	var tmpl slots.WeekTemplate

	rows, err := r.pool.Query(ctx, `
		SELECT weekday, enabled, start_minute, end_minute
		FROM availability
		WHERE client_id = $1
		ORDER BY weekday ASC
	`, clientID)
	if err != nil {
		return tmpl, err
	}
	defer rows.Close()

	for rows.Next() {
		var weekday int
		var win slots.DayWindow
		if err := rows.Scan(&weekday, &win.Enabled, &win.StartMinute, &win.EndMinute); err != nil {
			return tmpl, err
		}
		if weekday >= 0 && weekday <= 6 {
			tmpl[weekday] = win
		}
	}
	return tmpl, rows.Err()
}

// ReplaceWeek upserts all seven weekday rows atomically.
func (r *AvailabilityRepository) ReplaceWeek(ctx context.Context, clientID string, tmpl slots.WeekTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for weekday, win := range tmpl {
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability (client_id, weekday, enabled, start_minute, end_minute)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (client_id, weekday) DO UPDATE
			SET enabled = EXCLUDED.enabled,
				start_minute = EXCLUDED.start_minute,
				end_minute = EXCLUDED.end_minute,
				updated_at = now()
		`, clientID, weekday, win.Enabled, win.StartMinute, win.EndMinute); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
