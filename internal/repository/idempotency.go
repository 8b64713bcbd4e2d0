package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/models"
)

// IdempotencyRepository records processed create requests
type IdempotencyRepository interface {
	// Claim stores the key and reports false when it had already been stored
	Claim(ctx context.Context, key *models.IdempotencyKey) (bool, error)
}

type idempotencyRepository struct {
	db db.Querier
}

// NewIdempotencyRepository creates a new IdempotencyRepository on a pool or a transaction
func NewIdempotencyRepository(q db.Querier) IdempotencyRepository {
	return &idempotencyRepository{db: q}
}

func (r *idempotencyRepository) Claim(ctx context.Context, key *models.IdempotencyKey) (bool, error) {
	if key.CreatedAt.IsZero() {
		key.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO idempotency_keys (key, operation, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key, operation) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, key.Key, key.Operation, key.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to store idempotency key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}
