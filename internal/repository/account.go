// Package repository provides data access layer implementations for the ledger.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const pqUniqueViolation = "23505"

// AccountRepository defines the interface for account data access. It is the
// account lookup collaborator of the movement engine and the IBAN generator.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindAccountByIban(ctx context.Context, iban string) (*models.Account, error)
	FindAccountByIbanForUpdate(ctx context.Context, iban string) (*models.Account, error)
	FindAccountsByClient(ctx context.Context, clientID string) ([]models.Account, error)
	UpdateAccountBalance(ctx context.Context, iban string, newBalance decimal.Decimal) error
	LinkCard(ctx context.Context, accountID, cardID string) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db db.Querier
}

// NewAccountRepository creates a new AccountRepository on a pool or a transaction
func NewAccountRepository(q db.Querier) AccountRepository {
	return &accountRepository{db: q}
}

const accountColumns = `id, iban, client_id, product_id, account_type, balance, card_id, is_deleted, created_at, updated_at`

// Create inserts an account. A taken IBAN yields models.ErrDuplicate.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	query := `
		INSERT INTO accounts (id, iban, client_id, product_id, account_type, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.IBAN,
		account.ClientID,
		account.ProductID,
		account.Type,
		account.Balance,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("iban %s already assigned: %w", account.IBAN, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// FindByID retrieves an account by its id
func (r *accountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND NOT is_deleted`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find account by id: %w", err)
	}

	return account, nil
}

// FindAccountByIban retrieves the account owning an IBAN
func (r *accountRepository) FindAccountByIban(ctx context.Context, iban string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1 AND NOT is_deleted`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, iban))
	if err != nil {
		return nil, fmt.Errorf("failed to find account by iban: %w", err)
	}

	return account, nil
}

// FindAccountByIbanForUpdate retrieves an account and locks its row until the surrounding transaction ends
func (r *accountRepository) FindAccountByIbanForUpdate(ctx context.Context, iban string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE iban = $1 AND NOT is_deleted FOR UPDATE`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, iban))
	if err != nil {
		return nil, fmt.Errorf("failed to lock account by iban: %w", err)
	}

	return account, nil
}

// FindAccountsByClient lists the live accounts of a client, oldest first
func (r *accountRepository) FindAccountsByClient(ctx context.Context, clientID string) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE client_id = $1 AND NOT is_deleted ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by client: %w", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccountBalance overwrites the balance of the account owning iban
func (r *accountRepository) UpdateAccountBalance(ctx context.Context, iban string, newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return fmt.Errorf("refusing negative balance %s for %s", newBalance, iban)
	}

	query := `
		UPDATE accounts
		SET balance = $2,
		    updated_at = NOW()
		WHERE iban = $1 AND NOT is_deleted
	`

	result, err := r.db.ExecContext(ctx, query, iban, newBalance)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	return expectOneRow(result, "account")
}

// LinkCard sets the card of an account
func (r *accountRepository) LinkCard(ctx context.Context, accountID, cardID string) error {
	query := `UPDATE accounts SET card_id = $2, updated_at = NOW() WHERE id = $1 AND NOT is_deleted`

	result, err := r.db.ExecContext(ctx, query, accountID, cardID)
	if err != nil {
		return fmt.Errorf("failed to link card: %w", err)
	}

	return expectOneRow(result, "account")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		account models.Account
		cardID  sql.NullString
	)

	err := row.Scan(
		&account.ID,
		&account.IBAN,
		&account.ClientID,
		&account.ProductID,
		&account.Type,
		&account.Balance,
		&cardID,
		&account.IsDeleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if cardID.Valid {
		account.CardID = &cardID.String
	}

	return &account, nil
}

func expectOneRow(result sql.Result, entity string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s not found: %w", entity, models.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
