package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
)

// FindAllMovimientos returns one zero-based page of movements. Pages past the end are empty.
func (s *MovementService) FindAllMovimientos(
	ctx context.Context,
	pageNumber, pageSize int,
	filter models.MovementFilter,
	sort models.SortDirection,
) (models.Page[models.Movement], error) {
	return findPage(ctx, repository.NewMovementRepository(s.db), pageNumber, pageSize, filter, sort)
}

func findPage(
	ctx context.Context,
	movementRepo repository.MovementRepository,
	pageNumber, pageSize int,
	filter models.MovementFilter,
	sort models.SortDirection,
) (models.Page[models.Movement], error) {
	if err := validatePage(pageNumber, pageSize); err != nil {
		return models.Page[models.Movement]{}, err
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return models.Page[models.Movement]{}, &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "unknown movement type " + string(filter.Type),
		}
	}

	switch sort {
	case "":
		sort = models.SortAsc
	case models.SortAsc, models.SortDesc:
	default:
		return models.Page[models.Movement]{}, &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "sort direction must be ASC or DESC",
		}
	}

	page, err := movementRepo.FindAllPaged(ctx, pageNumber, pageSize, filter, sort)
	if err != nil {
		return models.Page[models.Movement]{}, internalError("failed to list movements", err)
	}

	return page, nil
}

// FindByGuid retrieves a movement by its public identifier
func (s *MovementService) FindByGuid(ctx context.Context, guid string) (*models.Movement, error) {
	movement, err := repository.NewMovementRepository(s.db).FindByGUID(ctx, guid)
	if err != nil {
		return nil, movementLookupError(err)
	}
	return movement, nil
}

// FindByID retrieves a movement by its store identifier
func (s *MovementService) FindByID(ctx context.Context, id string) (*models.Movement, error) {
	return findMovement(ctx, repository.NewMovementRepository(s.db), id)
}

// FindAllByClient lists the live movements of a client
func (s *MovementService) FindAllByClient(ctx context.Context, clientID string) ([]models.Movement, error) {
	movements, err := repository.NewMovementRepository(s.db).FindAllByClient(ctx, clientID)
	if err != nil {
		return nil, internalError("failed to list client movements", err)
	}
	return movements, nil
}

// DeleteMovimiento marks a movement of owner as deleted. Balances are not touched.
func (s *MovementService) DeleteMovimiento(ctx context.Context, owner, movementID string) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		return performDelete(ctx, repository.NewMovementRepository(tx), owner, movementID)
	})
	if err != nil {
		s.logFailure(ctx, "delete_movimiento", err)
		return err
	}

	s.logger.InfoContext(ctx, "movement deleted", "id", movementID, "client_id", owner)
	return nil
}

func performDelete(ctx context.Context, movementRepo repository.MovementRepository, owner, movementID string) error {
	movement, err := movementRepo.FindByIDForUpdate(ctx, movementID)
	if err != nil {
		return movementLookupError(err)
	}
	if movement.ClientID != owner || movement.IsDeleted {
		return movementNotFound()
	}

	if err := movementRepo.Delete(ctx, movement.ID); err != nil {
		return internalError("failed to delete movement", err)
	}
	return nil
}

// PurgeMovimiento physically removes a movement, deleted or not
func (s *MovementService) PurgeMovimiento(ctx context.Context, movementID string) error {
	if err := repository.NewMovementRepository(s.db).Purge(ctx, movementID); err != nil {
		return movementLookupError(err)
	}

	s.logger.InfoContext(ctx, "movement purged", "id", movementID)
	return nil
}

func findMovement(ctx context.Context, movementRepo repository.MovementRepository, id string) (*models.Movement, error) {
	movement, err := movementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, movementLookupError(err)
	}
	return movement, nil
}

func movementLookupError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return movementNotFound()
	}
	return internalError("failed to find movement", err)
}

func movementNotFound() *ServiceError {
	return &ServiceError{
		Code:    ErrCodeMovementNotFound,
		Message: "movement not found",
	}
}
