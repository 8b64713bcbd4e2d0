package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/lock"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// MovementService records movements and applies their effects on account balances
type MovementService struct {
	db               *db.DB
	locker           lock.Locker
	logger           *slog.Logger
	now              func() time.Time
	revocationWindow time.Duration
}

// NewMovementService creates a new MovementService. A zero revocationWindow
// leaves transfers revocable at any time.
func NewMovementService(
	database *db.DB,
	locker lock.Locker,
	logger *slog.Logger,
	revocationWindow time.Duration,
) *MovementService {
	if locker == nil {
		locker = lock.NopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MovementService{
		db:               database,
		locker:           locker,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
		revocationWindow: revocationWindow,
	}
}

// AddDomiciliacion records an active direct debit mandate. Nothing is debited
// until the mandate falls due.
func (s *MovementService) AddDomiciliacion(ctx context.Context, owner string, req DomiciliacionRequest) (*models.Movement, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := validateIban("origin IBAN", req.IbanOrigen); err != nil {
		return nil, err
	}
	if err := validateIban("destination IBAN", req.IbanDestino); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Cantidad); err != nil {
		return nil, err
	}

	var movement *models.Movement
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performDomiciliacion(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			repository.NewIdempotencyRepository(tx),
			owner, req)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "domiciliacion", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "direct debit mandate recorded",
		"guid", movement.GUID,
		"client_id", owner,
		"periodicidad", req.Periodicidad,
	)

	return movement, nil
}

// performDomiciliacion contains the core mandate creation logic. The origin
// must be an account of owner; the destination may be external.
func (s *MovementService) performDomiciliacion(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	idempotencyRepo repository.IdempotencyRepository,
	owner string,
	req DomiciliacionRequest,
) (*models.Movement, error) {
	if err := s.claim(ctx, idempotencyRepo, req.IdempotencyKey, opDomiciliacion); err != nil {
		return nil, err
	}

	origin, err := accountRepo.FindAccountByIban(ctx, req.IbanOrigen)
	if errors.Is(err, models.ErrNotFound) || (err == nil && origin.ClientID != owner) {
		return nil, accountNotFound("origin", req.IbanOrigen)
	}
	if err != nil {
		return nil, internalError("failed to find origin account", err)
	}

	start := req.FechaInicio
	if start.IsZero() {
		start = s.now()
	}

	return s.insertMovement(ctx, movementRepo, owner, &models.Domiciliacion{
		FechaInicio:     start.UTC(),
		UltimaEjecucion: start.UTC(),
		Cantidad:        req.Cantidad,
		IbanOrigen:      req.IbanOrigen,
		IbanDestino:     req.IbanDestino,
		Acreedor:        req.Acreedor,
		Periodicidad:    req.Periodicidad,
		Activa:          true,
	})
}

// AddTransferencia debits the origin and credits the destination in one unit of work
func (s *MovementService) AddTransferencia(ctx context.Context, owner string, req TransferenciaRequest) (*models.Movement, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := validateIban("origin IBAN", req.IbanOrigen); err != nil {
		return nil, err
	}
	if err := validateIban("destination IBAN", req.IbanDestino); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Cantidad); err != nil {
		return nil, err
	}

	var movement *models.Movement
	err := s.serialize(ctx, []string{req.IbanOrigen, req.IbanDestino}, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performTransferencia(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			repository.NewIdempotencyRepository(tx),
			owner, req)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "transferencia", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "transfer recorded",
		"guid", movement.GUID,
		"client_id", owner,
		"amount", req.Cantidad.String(),
	)

	return movement, nil
}

// performTransferencia contains the core transfer logic
func (s *MovementService) performTransferencia(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	idempotencyRepo repository.IdempotencyRepository,
	owner string,
	req TransferenciaRequest,
) (*models.Movement, error) {
	if err := s.claim(ctx, idempotencyRepo, req.IdempotencyKey, opTransferencia); err != nil {
		return nil, err
	}

	accounts, err := lockAccounts(ctx, accountRepo, req.IbanOrigen, req.IbanDestino)
	if err != nil {
		return nil, err
	}

	origin, ok := accounts[req.IbanOrigen]
	if !ok || origin.ClientID != owner {
		return nil, accountNotFound("origin", req.IbanOrigen)
	}
	destination, ok := accounts[req.IbanDestino]
	if !ok {
		return nil, accountNotFound("destination", req.IbanDestino)
	}

	if origin.Balance.LessThan(req.Cantidad) {
		return nil, insufficientFunds(origin)
	}

	if err := moveFunds(ctx, accountRepo, origin, destination, req.Cantidad); err != nil {
		return nil, err
	}

	transfer := &models.Transferencia{
		Cantidad:    req.Cantidad,
		IbanOrigen:  req.IbanOrigen,
		IbanDestino: req.IbanDestino,
	}
	if s.revocationWindow > 0 {
		deadline := s.now().Add(s.revocationWindow)
		transfer.RevocableHasta = &deadline
	}

	return s.insertMovement(ctx, movementRepo, owner, transfer)
}

// AddIngresoDeNomina credits a payroll into the destination account
func (s *MovementService) AddIngresoDeNomina(ctx context.Context, owner string, req IngresoDeNominaRequest) (*models.Movement, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := validateIban("destination IBAN", req.IbanDestino); err != nil {
		return nil, err
	}
	if err := validateTaxID(req.Pagador); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Cantidad); err != nil {
		return nil, err
	}

	var movement *models.Movement
	err := s.serialize(ctx, []string{req.IbanDestino}, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performIngresoDeNomina(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			repository.NewIdempotencyRepository(tx),
			owner, req)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "ingreso_nomina", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "payroll credit recorded",
		"guid", movement.GUID,
		"client_id", owner,
		"amount", req.Cantidad.String(),
	)

	return movement, nil
}

// performIngresoDeNomina contains the core payroll credit logic
func (s *MovementService) performIngresoDeNomina(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	idempotencyRepo repository.IdempotencyRepository,
	owner string,
	req IngresoDeNominaRequest,
) (*models.Movement, error) {
	if err := s.claim(ctx, idempotencyRepo, req.IdempotencyKey, opIngresoDeNomina); err != nil {
		return nil, err
	}

	accounts, err := lockAccounts(ctx, accountRepo, req.IbanDestino)
	if err != nil {
		return nil, err
	}
	destination, ok := accounts[req.IbanDestino]
	if !ok {
		return nil, accountNotFound("destination", req.IbanDestino)
	}

	if err := setBalance(ctx, accountRepo, destination, destination.Balance.Add(req.Cantidad)); err != nil {
		return nil, err
	}

	return s.insertMovement(ctx, movementRepo, owner, &models.IngresoDeNomina{
		Cantidad:    req.Cantidad,
		IbanDestino: req.IbanDestino,
		Pagador:     req.Pagador,
	})
}

// AddPagoConTarjeta debits a card payment from the account the card is linked to
func (s *MovementService) AddPagoConTarjeta(ctx context.Context, owner string, req PagoConTarjetaRequest) (*models.Movement, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := validateCardNumber(req.NumeroTarjeta); err != nil {
		return nil, err
	}
	if err := validateAmount(req.Cantidad); err != nil {
		return nil, err
	}

	card, account, err := s.resolveCard(ctx,
		repository.NewCardRepository(s.db),
		repository.NewAccountRepository(s.db),
		owner, req.NumeroTarjeta)
	if err != nil {
		s.logFailure(ctx, "pago_tarjeta", err)
		return nil, err
	}

	var movement *models.Movement
	err = s.serialize(ctx, []string{account.IBAN}, func(tx *sql.Tx) error {
		var err error
		movement, err = s.performPagoConTarjeta(ctx,
			repository.NewAccountRepository(tx),
			repository.NewMovementRepository(tx),
			repository.NewIdempotencyRepository(tx),
			owner, card, account.IBAN, req)
		return err
	})
	if err != nil {
		s.logFailure(ctx, "pago_tarjeta", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "card payment recorded",
		"guid", movement.GUID,
		"client_id", owner,
		"amount", req.Cantidad.String(),
	)

	return movement, nil
}

// resolveCard finds a usable card of owner and the account it is linked to
func (s *MovementService) resolveCard(
	ctx context.Context,
	cardRepo repository.CardRepository,
	accountRepo repository.AccountRepository,
	owner, number string,
) (*models.Card, *models.Account, error) {
	card, err := cardRepo.FindCardByNumber(ctx, number)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, &ServiceError{
			Code:    ErrCodeCardNotFound,
			Message: "card not found",
		}
	}
	if err != nil {
		return nil, nil, internalError("failed to find card", err)
	}

	account, err := accountRepo.FindByID(ctx, card.AccountID)
	if errors.Is(err, models.ErrNotFound) || (err == nil && account.ClientID != owner) {
		return nil, nil, &ServiceError{
			Code:    ErrCodeCardNotFound,
			Message: "card not found",
		}
	}
	if err != nil {
		return nil, nil, internalError("failed to find card account", err)
	}

	if card.Expired(s.now()) {
		return nil, nil, &ServiceError{
			Code:    ErrCodeCardExpired,
			Message: fmt.Sprintf("card expired on %s", card.ExpiresAt.Format(time.DateOnly)),
		}
	}

	return card, account, nil
}

// performPagoConTarjeta contains the core card payment logic
func (s *MovementService) performPagoConTarjeta(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	movementRepo repository.MovementRepository,
	idempotencyRepo repository.IdempotencyRepository,
	owner string,
	card *models.Card,
	iban string,
	req PagoConTarjetaRequest,
) (*models.Movement, error) {
	if err := s.claim(ctx, idempotencyRepo, req.IdempotencyKey, opPagoConTarjeta); err != nil {
		return nil, err
	}

	accounts, err := lockAccounts(ctx, accountRepo, iban)
	if err != nil {
		return nil, err
	}
	account, ok := accounts[iban]
	if !ok || account.ID != card.AccountID {
		return nil, &ServiceError{
			Code:    ErrCodeCardNotFound,
			Message: "card is no longer linked to an account",
		}
	}

	if account.Balance.LessThan(req.Cantidad) {
		return nil, insufficientFunds(account)
	}

	if err := setBalance(ctx, accountRepo, account, account.Balance.Sub(req.Cantidad)); err != nil {
		return nil, err
	}

	return s.insertMovement(ctx, movementRepo, owner, &models.PagoConTarjeta{
		Cantidad:      req.Cantidad,
		NumeroTarjeta: req.NumeroTarjeta,
		Comercio:      req.Comercio,
	})
}

// serialize holds the IBAN locks around one transaction running fn
func (s *MovementService) serialize(ctx context.Context, ibans []string, fn func(tx *sql.Tx) error) error {
	err := s.locker.WithLock(ctx, lock.IbanKeys(ibans...), func(ctx context.Context) error {
		return withTx(ctx, s.db, fn)
	})

	var svcErr *ServiceError
	if err != nil && !errors.As(err, &svcErr) {
		return internalError("failed to serialize account access", err)
	}
	return err
}

func (s *MovementService) claim(
	ctx context.Context,
	idempotencyRepo repository.IdempotencyRepository,
	key, operation string,
) error {
	if key == "" {
		return nil
	}

	claimed, err := idempotencyRepo.Claim(ctx, &models.IdempotencyKey{
		Key:       key,
		Operation: operation,
		CreatedAt: s.now(),
	})
	if err != nil {
		return internalError("failed to store idempotency key", err)
	}
	if !claimed {
		return &ServiceError{
			Code:    ErrCodeDuplicateRequest,
			Message: "request already processed",
		}
	}

	return nil
}

func (s *MovementService) insertMovement(
	ctx context.Context,
	movementRepo repository.MovementRepository,
	owner string,
	payload models.Payload,
) (*models.Movement, error) {
	movement := &models.Movement{
		ClientID:  owner,
		CreatedAt: s.now(),
		Payload:   payload,
	}

	if err := movementRepo.Insert(ctx, movement); err != nil {
		return nil, internalError("failed to record movement", err)
	}

	return movement, nil
}

func (s *MovementService) logFailure(ctx context.Context, operation string, err error) {
	if IsCode(err, ErrCodeInternalError) {
		s.logger.ErrorContext(ctx, "movement operation failed", "operation", operation, "error", err)
		return
	}
	s.logger.WarnContext(ctx, "movement operation rejected", "operation", operation, "error", err)
}

// lockAccounts takes row locks in ascending IBAN order. Unknown IBANs are absent from the result.
func lockAccounts(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	ibans ...string,
) (map[string]*models.Account, error) {
	sorted := slices.Clone(ibans)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	accounts := make(map[string]*models.Account, len(sorted))
	for _, iban := range sorted {
		account, err := accountRepo.FindAccountByIbanForUpdate(ctx, iban)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, internalError("failed to lock account", err)
		}
		accounts[iban] = account
	}

	return accounts, nil
}

// moveFunds debits from and credits to by exactly amount. from must hold enough funds.
func moveFunds(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	from, to *models.Account,
	amount decimal.Decimal,
) error {
	if err := setBalance(ctx, accountRepo, from, from.Balance.Sub(amount)); err != nil {
		return err
	}
	return setBalance(ctx, accountRepo, to, to.Balance.Add(amount))
}

func setBalance(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	account *models.Account,
	balance decimal.Decimal,
) error {
	if err := accountRepo.UpdateAccountBalance(ctx, account.IBAN, balance); err != nil {
		return internalError("failed to update balance", err)
	}
	account.Balance = balance
	return nil
}

func accountNotFound(role, iban string) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeAccountNotFound,
		Message: fmt.Sprintf("%s account %s not found", role, iban),
	}
}

func insufficientFunds(account *models.Account) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInsufficientFunds,
		Message: fmt.Sprintf("insufficient funds on %s", account.IBAN),
	}
}
