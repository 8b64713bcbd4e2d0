package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
)

// ExecuteDueDomiciliaciones executes every active mandate due at now, once.
// A failing mandate is reported and does not stop the others.
func (s *MovementService) ExecuteDueDomiciliaciones(ctx context.Context, now time.Time) (*DirectDebitReport, error) {
	mandates, err := repository.NewMovementRepository(s.db).FindActiveDomiciliaciones(ctx)
	if err != nil {
		return nil, internalError("failed to list direct debit mandates", err)
	}

	report := &DirectDebitReport{
		Checked: len(mandates),
		Failed:  make(map[string]error),
	}

	for _, mandate := range dueMandates(mandates, now) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if _, err := s.ExecuteDomiciliacion(ctx, mandate.ID, now); err != nil {
			// Executed or switched off by someone else since the scan
			if IsCode(err, ErrCodeMandateNotDue) || IsCode(err, ErrCodeMandateInactive) {
				continue
			}
			report.Failed[mandate.ID] = err
			continue
		}
		report.Executed = append(report.Executed, mandate.ID)
	}

	return report, nil
}

func dueMandates(movements []models.Movement, now time.Time) []models.Movement {
	var due []models.Movement
	for _, movement := range movements {
		mandate, ok := movement.Domiciliacion()
		if !ok || movement.IsDeleted {
			continue
		}
		if mandate.State(now) == models.DomiciliacionDue {
			due = append(due, movement)
		}
	}
	return due
}

// ExecuteDomiciliacion debits one due mandate and advances its last execution by one interval
func (s *MovementService) ExecuteDomiciliacion(ctx context.Context, movementID string, now time.Time) (*models.Movement, error) {
	current, err := findMovement(ctx, repository.NewMovementRepository(s.db), movementID)
	if err != nil {
		return nil, err
	}
	mandate, err := liveMandate(current)
	if err != nil {
		return nil, err
	}

	var movement *models.Movement
	err = s.serialize(ctx, []string{mandate.IbanOrigen, mandate.IbanDestino}, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performExecution(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			movementID, now)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "ejecutar_domiciliacion", err)
		return nil, err
	}

	executed, _ := movement.Domiciliacion()
	s.logger.InfoContext(ctx, "direct debit executed",
		"guid", movement.GUID,
		"amount", executed.Cantidad.String(),
		"ultima_ejecucion", executed.UltimaEjecucion,
	)

	return movement, nil
}

// performExecution contains the core direct debit execution logic. The
// destination is credited only when it is an account of this ledger.
func (s *MovementService) performExecution(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	movementID string,
	now time.Time,
) (*models.Movement, error) {
	movement, err := movementRepo.FindByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, movementLookupError(err)
	}

	mandate, err := liveMandate(movement)
	if err != nil {
		return nil, err
	}

	switch mandate.State(now) {
	case models.DomiciliacionInactive:
		return nil, &ServiceError{
			Code:    ErrCodeMandateInactive,
			Message: "direct debit mandate is inactive",
		}
	case models.DomiciliacionPending:
		return nil, &ServiceError{
			Code:    ErrCodeMandateNotDue,
			Message: "direct debit mandate is not due until " + mandate.NextExecution().Format(time.RFC3339),
		}
	}

	accounts, err := lockAccounts(ctx, accountRepo, mandate.IbanOrigen, mandate.IbanDestino)
	if err != nil {
		return nil, err
	}
	origin, ok := accounts[mandate.IbanOrigen]
	if !ok || origin.ClientID != movement.ClientID {
		return nil, accountNotFound("origin", mandate.IbanOrigen)
	}

	if origin.Balance.LessThan(mandate.Cantidad) {
		return nil, insufficientFunds(origin)
	}

	if destination, ok := accounts[mandate.IbanDestino]; ok {
		err = moveFunds(ctx, accountRepo, origin, destination, mandate.Cantidad)
	} else {
		err = setBalance(ctx, accountRepo, origin, origin.Balance.Sub(mandate.Cantidad))
	}
	if err != nil {
		return nil, err
	}

	mandate.Advance()

	if err := movementRepo.Update(ctx, movement.ID, movement); err != nil {
		return nil, internalError("failed to advance direct debit mandate", err)
	}

	return movement, nil
}

// DesactivarDomiciliacion switches a mandate of owner off. Deactivating an inactive mandate is a no-op.
func (s *MovementService) DesactivarDomiciliacion(ctx context.Context, owner, movementID string) (*models.Movement, error) {
	var movement *models.Movement
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performDeactivation(ctx, repository.NewMovementRepository(tx), owner, movementID)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "desactivar_domiciliacion", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "direct debit mandate deactivated", "guid", movement.GUID, "client_id", owner)

	return movement, nil
}

func (s *MovementService) performDeactivation(
	ctx context.Context,
	movementRepo repository.MovementRepository,
	owner, movementID string,
) (*models.Movement, error) {
	movement, err := movementRepo.FindByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, movementLookupError(err)
	}
	if movement.ClientID != owner {
		return nil, movementNotFound()
	}

	mandate, err := liveMandate(movement)
	if err != nil {
		return nil, err
	}
	if !mandate.Activa {
		return movement, nil
	}

	mandate.Activa = false
	if err := movementRepo.Update(ctx, movement.ID, movement); err != nil {
		return nil, internalError("failed to deactivate direct debit mandate", err)
	}

	return movement, nil
}

func liveMandate(movement *models.Movement) (*models.Domiciliacion, error) {
	mandate, ok := movement.Domiciliacion()
	if !ok || movement.IsDeleted {
		return nil, movementNotFound()
	}
	return mandate, nil
}
