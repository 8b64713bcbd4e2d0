package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/identifier"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// maxInsertRaces bounds how often a freshly generated identifier may lose the
// unique index race against a concurrent insert before giving up
const maxInsertRaces = 3

// AccountService opens accounts with unique IBANs
type AccountService struct {
	db        *db.DB
	generator *identifier.Generator
	logger    *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(database *db.DB, generator *identifier.Generator, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		db:        database,
		generator: generator,
		logger:    logger,
	}
}

// CreateAccount mints a unique IBAN and opens an empty account with it.
// No lock or transaction is held while the IBAN is generated.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	account, err := s.performCreateAccount(ctx, repository.NewAccountRepository(s.db), req)
	if err != nil {
		if IsCode(err, ErrCodeInternalError) {
			s.logger.ErrorContext(ctx, "failed to create account", "client_id", req.ClientID, "error", err)
		} else {
			s.logger.WarnContext(ctx, "account creation rejected", "client_id", req.ClientID, "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "account created",
		"account_id", account.ID,
		"iban", account.IBAN,
		"client_id", account.ClientID,
		"type", account.Type,
	)

	return account, nil
}

// performCreateAccount contains the core account opening logic
func (s *AccountService) performCreateAccount(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	req CreateAccountRequest,
) (*models.Account, error) {
	for range maxInsertRaces {
		iban, err := s.generator.GenerateUniqueIban(ctx, accountRepo)
		if err != nil {
			return nil, generationError("IBAN", err)
		}
		if err := validateIban("generated IBAN", iban); err != nil {
			return nil, internalError("generated an invalid IBAN", err)
		}

		account := &models.Account{
			IBAN:      iban,
			ClientID:  req.ClientID,
			ProductID: req.ProductID,
			Type:      req.Type,
			Balance:   decimal.Zero,
		}

		err = accountRepo.Create(ctx, account)
		if errors.Is(err, models.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, internalError("failed to create account", err)
		}

		return account, nil
	}

	return nil, &ServiceError{
		Code:    ErrCodeIdentifierExhausted,
		Message: "IBAN kept colliding with concurrent account creation",
	}
}

// FindAccountByIban retrieves a live account by IBAN
func (s *AccountService) FindAccountByIban(ctx context.Context, iban string) (*models.Account, error) {
	if err := validateIban("IBAN", iban); err != nil {
		return nil, err
	}

	account, err := repository.NewAccountRepository(s.db).FindAccountByIban(ctx, iban)
	if errors.Is(err, models.ErrNotFound) {
		return nil, accountNotFound("requested", iban)
	}
	if err != nil {
		return nil, internalError("failed to find account", err)
	}

	return account, nil
}

// FindAccountsByClient lists the live accounts of a client
func (s *AccountService) FindAccountsByClient(ctx context.Context, clientID string) ([]models.Account, error) {
	accounts, err := repository.NewAccountRepository(s.db).FindAccountsByClient(ctx, clientID)
	if err != nil {
		return nil, internalError("failed to list client accounts", err)
	}
	return accounts, nil
}

func generationError(kind string, err error) error {
	if errors.Is(err, identifier.ErrIdentifierExhausted) {
		return &ServiceError{
			Code:    ErrCodeIdentifierExhausted,
			Message: kind + " generation exhausted",
			Err:     err,
		}
	}
	return internalError("failed to generate "+kind, err)
}
