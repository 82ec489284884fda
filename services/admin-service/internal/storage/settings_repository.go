package storage

import (
	"context"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/slots"
)

type SettingsRepository struct {
	pool *db.Pool
}

func NewSettingsRepository(pool *db.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// GetOrCreate returns the tenant's scheduling settings, seeding the default
// row on first read so new tenants always have a usable configuration.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, clientID string) (slots.Settings, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_settings (client_id)
		VALUES ($1)
		ON CONFLICT (client_id) DO NOTHING
	`, clientID)
	if err != nil {
		return slots.Settings{}, err
	}

	var s slots.Settings
	err = r.pool.QueryRow(ctx, `
		SELECT duration_minutes, buffer_minutes, advance_notice_hours, max_booking_window_days
		FROM client_settings
		WHERE client_id = $1
	`, clientID).Scan(&s.DurationMinutes, &s.BufferMinutes, &s.AdvanceNoticeHours, &s.MaxBookingWindowDays)
	return s, err
}

func (r *SettingsRepository) Update(ctx context.Context, clientID string, s slots.Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_settings
			(client_id, duration_minutes, buffer_minutes, advance_notice_hours, max_booking_window_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id) DO UPDATE
		SET duration_minutes = EXCLUDED.duration_minutes,
			buffer_minutes = EXCLUDED.buffer_minutes,
			advance_notice_hours = EXCLUDED.advance_notice_hours,
			max_booking_window_days = EXCLUDED.max_booking_window_days,
			updated_at = now()
	`, clientID, s.DurationMinutes, s.BufferMinutes, s.AdvanceNoticeHours, s.MaxBookingWindowDays)
	return err
}
