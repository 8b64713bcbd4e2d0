package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/identifier"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
)

// CardService issues payment cards linked to accounts
type CardService struct {
	db          *db.DB
	generator   *identifier.Generator
	logger      *slog.Logger
	expiryYears int
}

// NewCardService creates a new CardService issuing cards valid for up to expiryYears
func NewCardService(database *db.DB, generator *identifier.Generator, logger *slog.Logger, expiryYears int) *CardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardService{
		db:          database,
		generator:   generator,
		logger:      logger,
		expiryYears: expiryYears,
	}
}

// IssueCard creates a card on an account of owner and links it to the account
func (s *CardService) IssueCard(ctx context.Context, owner, iban string) (*models.Card, error) {
	if err := validateIban("IBAN", iban); err != nil {
		return nil, err
	}

	var card *models.Card
	for range maxInsertRaces {
		number, err := s.generator.GenerateUniqueCardNumber(ctx, repository.NewCardRepository(s.db))
		if err != nil {
			return nil, generationError("card number", err)
		}

		err = withTx(ctx, s.db, func(tx *sql.Tx) error {
			var err error
			card, err = s.performIssueCard(ctx,
				repository.NewAccountRepository(tx),
				repository.NewCardRepository(tx),
				owner, iban, number)
			return err
		})
		if errors.Is(err, models.ErrDuplicate) {
			continue
		}
		if err != nil {
			s.logger.WarnContext(ctx, "card issuing failed", "client_id", owner, "error", err)
			return nil, err
		}

		s.logger.InfoContext(ctx, "card issued", "card_id", card.ID, "account_id", card.AccountID)
		return card, nil
	}

	return nil, &ServiceError{
		Code:    ErrCodeIdentifierExhausted,
		Message: "card number kept colliding with concurrent issuing",
	}
}

// performIssueCard contains the core card issuing logic. A taken number is
// returned as models.ErrDuplicate so the caller can draw another one.
func (s *CardService) performIssueCard(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	cardRepo repository.CardRepository,
	owner, iban, number string,
) (*models.Card, error) {
	account, err := accountRepo.FindAccountByIbanForUpdate(ctx, iban)
	if errors.Is(err, models.ErrNotFound) || (err == nil && account.ClientID != owner) {
		return nil, accountNotFound("card", iban)
	}
	if err != nil {
		return nil, internalError("failed to find account", err)
	}

	card := &models.Card{
		Number:    number,
		CVC:       s.generator.GenerateCVC(),
		ExpiresAt: s.generator.GenerateExpiryDate(s.expiryYears),
		AccountID: account.ID,
	}

	if err := cardRepo.Create(ctx, card); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, err
		}
		return nil, internalError("failed to create card", err)
	}

	if err := accountRepo.LinkCard(ctx, account.ID, card.ID); err != nil {
		return nil, internalError("failed to link card", err)
	}

	return card, nil
}
