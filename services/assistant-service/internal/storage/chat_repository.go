package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookdeskhq/bookdesk/libs/db"
)

type ChatMessage struct {
	ID        string
	ClientID  string
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

type ChatRepository struct {
	pool *db.Pool
}

func NewChatRepository(pool *db.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// History returns the most recent messages of a session in chronological
// order, bounding how much conversation rides along on each model call.
func (r *ChatRepository) History(ctx context.Context, clientID, sessionID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, client_id, session_id, role, content, created_at
		FROM (
			SELECT id, client_id, session_id, role, content, created_at
			FROM chat_messages
			WHERE client_id = $1 AND session_id = $2
			ORDER BY created_at DESC, id DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC, id ASC
	`, clientID, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
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

func (r *ChatRepository) Append(ctx context.Context, clientID, sessionID, role, content string) (ChatMessage, error) {
	m := ChatMessage{
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
		return ChatMessage{}, err
	}
	return m, nil
}
