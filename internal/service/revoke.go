package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
)

// RevocarTransferencia reverses a transfer of owner. A transfer is revoked at
// most once; later calls fail with already_revoked and change nothing.
func (s *MovementService) RevocarTransferencia(ctx context.Context, owner, movementID string) (*models.Movement, error) {
	current, err := findMovement(ctx, repository.NewMovementRepository(s.db), movementID)
	if err != nil {
		return nil, err
	}
	transfer, err := ownedTransfer(current, owner)
	if err != nil {
		return nil, err
	}

	var movement *models.Movement
	err = s.serialize(ctx, []string{transfer.IbanOrigen, transfer.IbanDestino}, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performRevocation(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			owner, movementID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "revocar_transferencia", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer revoked",
		"guid", movement.GUID,
		"client_id", owner,
	)

	return movement, nil
}

// performRevocation re-reads the transfer under a row lock so concurrent
// revocations see each other's flag
func (s *MovementService) performRevocation(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	owner, movementID string,
) (*models.Movement, error) {
	movement, err := movementRepo.FindByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, movementLookupError(err)
	}

	transfer, err := ownedTransfer(movement, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := checkRevocable(transfer, now); err != nil {
		return nil, err
	}

	accounts, err := lockAccounts(ctx, accountRepo, transfer.IbanOrigen, transfer.IbanDestino)
	if err != nil {
		return nil, err
	}
	origin, ok := accounts[transfer.IbanOrigen]
	if !ok {
		return nil, accountNotFound("origin", transfer.IbanOrigen)
	}
	destination, ok := accounts[transfer.IbanDestino]
	if !ok {
		return nil, accountNotFound("destination", transfer.IbanDestino)
	}

	if destination.Balance.LessThan(transfer.Cantidad) {
		return nil, insufficientFunds(destination)
	}

	if err := moveFunds(ctx, accountRepo, destination, origin, transfer.Cantidad); err != nil {
		return nil, err
	}

	if err := transfer.Revoke(now); err != nil {
		return nil, checkRevocable(transfer, now)
	}

	if err := movementRepo.Update(ctx, movement.ID, movement); err != nil {
		return nil, internalError("failed to mark transfer as revoked", err)
	}

	return movement, nil
}

func checkRevocable(transfer *models.Transferencia, now time.Time) error {
	err := transfer.CheckRevocable(now)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrAlreadyRevoked):
		return &ServiceError{
			Code:    ErrCodeAlreadyRevoked,
			Message: "transfer already revoked",
			Err:     err,
		}
	case errors.Is(err, models.ErrRevocationWindowExpired):
		return &ServiceError{
			Code:    ErrCodeRevocationWindowExpired,
			Message: "transfer can no longer be revoked",
			Err:     err,
		}
	default:
		return internalError("failed to check revocation", err)
	}
}

// ownedTransfer hides movements of other clients, deleted ones and other kinds behind movement_not_found
func ownedTransfer(movement *models.Movement, owner string) (*models.Transferencia, error) {
	if movement.ClientID != owner || movement.IsDeleted {
		return nil, movementNotFound()
	}
	transfer, ok := movement.Transferencia()
	if !ok {
		return nil, movementNotFound()
	}
	return transfer, nil
}
