package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the product family of an account and fixes its interest rate
type AccountType string

const (
	AccountTypeSaving   AccountType = "SAVING"
	AccountTypeStandard AccountType = "STANDARD"
)

var interestRates = map[AccountType]decimal.Decimal{
	AccountTypeSaving:   decimal.RequireFromString("0.0200"),
	AccountTypeStandard: decimal.Zero,
}

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	_, ok := interestRates[t]
	return ok
}

// InterestRate returns the fixed yearly rate of the account type
func (t AccountType) InterestRate() decimal.Decimal {
	return interestRates[t]
}

// Account represents a client account identified by its IBAN
type Account struct {
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
	Balance   decimal.Decimal `db:"balance"`
	CardID    *string         `db:"card_id"`
	ID        string          `db:"id"`
	IBAN      string          `db:"iban"`
	ClientID  string          `db:"client_id"`
	ProductID string          `db:"product_id"`
	Type      AccountType     `db:"account_type"`
	IsDeleted bool            `db:"is_deleted"`
}

// Card is a payment card linked to an account
type Card struct {
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
	ID        string    `db:"id"`
	Number    string    `db:"number"`
	CVC       string    `db:"cvc"`
	AccountID string    `db:"account_id"`
	IsDeleted bool      `db:"is_deleted"`
}

// Expired reports whether the card can no longer be used at the given instant.
// A card stays valid through its whole expiry date.
func (c *Card) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt.AddDate(0, 0, 1))
}

// IdempotencyKey records a processed create request so that replays apply nothing
type IdempotencyKey struct {
	CreatedAt time.Time `db:"created_at"`
	Key       string    `db:"key"`
	Operation string    `db:"operation"`
}
