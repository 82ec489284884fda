package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
)

type ChatLogRepository struct {
	pool *db.Pool
}

func NewChatLogRepository(pool *db.Pool) *ChatLogRepository {
	return &ChatLogRepository{pool: pool}
}

// List returns messages for a tenant, newest session activity last so the
// dashboard can render transcripts top-down. sessionID narrows the result to
// one conversation when non-empty.
func (r *ChatLogRepository) List(ctx context.Context, clientID, sessionID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, client_id, session_id, role, content, created_at
		FROM chat_messages
		WHERE client_id = $1
			AND ($2 = '' OR session_id = $2)
		ORDER BY created_at ASC, id ASC
		LIMIT $3
	`, clientID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ClientID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ChatLogRepository) Append(ctx context.Context, clientID, sessionID, role, content string) (model.ChatMessage, error) {
	m := model.ChatMessage{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, client_id, session_id, role, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, m.ID, m.ClientID, m.SessionID, m.Role, m.Content).Scan(&m.CreatedAt)
	if err != nil {
		return model.ChatMessage{}, err
	}
	return m, nil
}

// DeleteSession removes every message of one conversation and reports how
// many rows went away.
func (r *ChatLogRepository) DeleteSession(ctx context.Context, clientID, sessionID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM chat_messages
		WHERE client_id = $1 AND session_id = $2
	`, clientID, sessionID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
