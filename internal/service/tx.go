package service

import (
	"context"
	"database/sql"

	"github.com/benx421/banking-ledger/internal/db"
)

// withTx runs fn in a ReadCommitted transaction, committing only when fn succeeds
func withTx(ctx context.Context, database *db.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return internalError("failed to start transaction", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // rollback error is not critical in defer
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return internalError("failed to commit transaction", err)
	}

	return nil
}
