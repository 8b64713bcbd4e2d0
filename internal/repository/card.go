package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/google/uuid"
)

// CardRepository defines the interface for card data access
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	FindCardByNumber(ctx context.Context, number string) (*models.Card, error)
}

type cardRepository struct {
	db db.Querier
}

// NewCardRepository creates a new CardRepository on a pool or a transaction
func NewCardRepository(q db.Querier) CardRepository {
	return &cardRepository{db: q}
}

// Create inserts a card. A taken number yields models.ErrDuplicate.
func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	if card.ID == "" {
		card.ID = uuid.NewString()
	}

	query := `
		INSERT INTO cards (id, number, cvc, expires_at, account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		card.ID,
		card.Number,
		card.CVC,
		card.ExpiresAt,
		card.AccountID,
	).Scan(&card.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("card number already issued: %w", models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

// FindCardByNumber retrieves a live card by its number
func (r *cardRepository) FindCardByNumber(ctx context.Context, number string) (*models.Card, error) {
	query := `
		SELECT id, number, cvc, expires_at, account_id, is_deleted, created_at
		FROM cards
		WHERE number = $1 AND NOT is_deleted
	`

	var card models.Card
	err := r.db.QueryRowContext(ctx, query, number).Scan(
		&card.ID,
		&card.Number,
		&card.CVC,
		&card.ExpiresAt,
		&card.AccountID,
		&card.IsDeleted,
		&card.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card by number: %w", err)
	}

	return &card, nil
}
