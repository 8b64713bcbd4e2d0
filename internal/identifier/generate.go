package identifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benx421/banking-ledger/internal/models"
)

// MaxAttempts bounds the collision retries of every unique generator
const MaxAttempts = 1000

const (
	cardPayloadLength = 15
	cvcLength         = 3
	ibanRandomDigits  = 12
)

// AccountLookup finds the owner of an IBAN. Implementations return an error
// wrapping models.ErrNotFound when the IBAN is free.
type AccountLookup interface {
	FindAccountByIban(ctx context.Context, iban string) (*models.Account, error)
}

// CardLookup finds the card holding a number, with the same not-found contract as AccountLookup
type CardLookup interface {
	FindCardByNumber(ctx context.Context, number string) (*models.Card, error)
}

// IbanFormat fixes the non-random part of generated IBANs
type IbanFormat struct {
	Country    string
	BankCode   string
	BranchCode string
}

// Generator produces random identifiers from an explicitly provided source.
// It is safe for concurrent use.
type Generator struct {
	rng    *rand.Rand
	now    func() time.Time
	format IbanFormat
	mu     sync.Mutex
}

// NewGenerator creates a Generator drawing from src
func NewGenerator(src rand.Source, format IbanFormat, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		rng:    rand.New(src),
		now:    now,
		format: format,
	}
}

// GenerateRandomDigits returns exactly length uniformly random digits, leading zeros included
func (g *Generator) GenerateRandomDigits(length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

// GenerateIban builds one candidate IBAN with valid control digits
func (g *Generator) GenerateIban() (string, error) {
	bban := g.format.BankCode + g.format.BranchCode + g.GenerateRandomDigits(ibanRandomDigits)

	control, err := CalculateControlDigits(g.format.Country, bban)
	if err != nil {
		return "", err
	}

	iban := FormatIban(g.format.Country, control, bban)

	valid, err := ValidateIban(iban)
	if err != nil {
		return "", err
	}
	if !valid {
		return "", fmt.Errorf("generated IBAN %s failed validation", iban)
	}

	return iban, nil
}

// GenerateUniqueIban returns the first candidate IBAN not owned by any account.
// Lookup failures other than not-found are returned as is.
func (g *Generator) GenerateUniqueIban(ctx context.Context, accounts AccountLookup) (string, error) {
	for range MaxAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		iban, err := g.GenerateIban()
		if err != nil {
			return "", err
		}

		owner, err := accounts.FindAccountByIban(ctx, iban)
		free, err := isFree(owner, err)
		if err != nil {
			return "", fmt.Errorf("failed to check IBAN availability: %w", err)
		}
		if free {
			return iban, nil
		}
	}

	return "", &ExhaustedError{Kind: "Iban", Attempts: MaxAttempts}
}

// GenerateCardNumber returns 15 random digits followed by their Luhn check digit
func (g *Generator) GenerateCardNumber() (string, error) {
	payload := g.GenerateRandomDigits(cardPayloadLength)

	check, err := LuhnCheckDigit(payload)
	if err != nil {
		return "", err
	}

	return payload + strconv.Itoa(check), nil
}

// GenerateUniqueCardNumber returns the first card number not held by any card
func (g *Generator) GenerateUniqueCardNumber(ctx context.Context, cards CardLookup) (string, error) {
	for range MaxAttempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		number, err := g.GenerateCardNumber()
		if err != nil {
			return "", err
		}

		holder, err := cards.FindCardByNumber(ctx, number)
		free, err := isFree(holder, err)
		if err != nil {
			return "", fmt.Errorf("failed to check card number availability: %w", err)
		}
		if free {
			return number, nil
		}
	}

	return "", &ExhaustedError{Kind: "Card number", Attempts: MaxAttempts}
}

// GenerateCVC returns a zero-padded code in 000-999
func (g *Generator) GenerateCVC() string {
	return g.GenerateRandomDigits(cvcLength)
}

// GenerateExpiryDate returns a uniformly random date between today and today plus years
func (g *Generator) GenerateExpiryDate(years int) time.Time {
	years = max(years, 0)
	now := g.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.AddDate(years, 0, 0).Sub(today) / (24 * time.Hour))

	g.mu.Lock()
	offset := g.rng.IntN(days + 1)
	g.mu.Unlock()

	return today.AddDate(0, 0, offset)
}

func isFree[T any](found *T, err error) (bool, error) {
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return found == nil, nil
}
