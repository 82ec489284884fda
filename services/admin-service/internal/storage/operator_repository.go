package storage

import (
	"context"

	"github.com/bookdeskhq/bookdesk/libs/db"
	"github.com/bookdeskhq/bookdesk/services/admin-service/internal/model"
)

type OperatorRepository struct {
	pool *db.Pool
}

func NewOperatorRepository(pool *db.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

func (r *OperatorRepository) GetByEmail(ctx context.Context, email string) (model.Operator, error) {
	var op model.Operator
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, client_id, email, password_hash, created_at
		FROM operators
		WHERE email = $1
	`, email).Scan(&op.ID, &op.ClientID, &op.Email, &op.PasswordHash, &op.CreatedAt)
	return op, err
}
