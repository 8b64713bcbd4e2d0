package service

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/benx421/banking-ledger/internal/lock"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

const (
	ibanOrigin      = "ES9121000418450200051332"
	ibanDestination = "ES7921000813610123456789"
	ibanExternal    = "DE89370400440532013000"
	testCardNumber  = "4539017389256427"
	testClient      = "client-1"
	otherClient     = "client-2"
)

var testNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMovementService(window time.Duration) *MovementService {
	svc := NewMovementService(nil, lock.NopLocker{}, testLogger(), window)
	svc.now = func() time.Time { return testNow }
	return svc
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalEq matches a decimal argument by value, whatever its exponent
func decimalEq(s string) any {
	want := amount(s)
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}

func testAccount(iban, clientID, balance string) *models.Account {
	return &models.Account{
		ID:        uuid.NewString(),
		IBAN:      iban,
		ClientID:  clientID,
		ProductID: "product-1",
		Type:      models.AccountTypeStandard,
		Balance:   amount(balance),
	}
}

// fakeAccounts is an in-memory account store used to check balance arithmetic end to end
type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func newFakeAccounts(accounts ...*models.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[string]*models.Account)}
	for _, a := range accounts {
		f.accounts[a.IBAN] = a
	}
	return f
}

func (f *fakeAccounts) balance(iban string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[iban].Balance
}

func (f *fakeAccounts) get(iban string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[iban]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.IBAN]; ok {
		return models.ErrDuplicate
	}
	f.accounts[account.IBAN] = account
	return nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAccounts) FindAccountByIban(_ context.Context, iban string) (*models.Account, error) {
	return f.get(iban)
}

func (f *fakeAccounts) FindAccountByIbanForUpdate(_ context.Context, iban string) (*models.Account, error) {
	return f.get(iban)
}

func (f *fakeAccounts) FindAccountsByClient(_ context.Context, clientID string) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.accounts {
		if a.ClientID == clientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) UpdateAccountBalance(_ context.Context, iban string, newBalance decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[iban]
	if !ok {
		return models.ErrNotFound
	}
	a.Balance = newBalance
	return nil
}

func (f *fakeAccounts) LinkCard(_ context.Context, accountID, cardID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.ID == accountID {
			a.CardID = &cardID
			return nil
		}
	}
	return models.ErrNotFound
}

// fakeMovements keeps movements by id, copying payloads the way a real store would
type fakeMovements struct {
	mu        sync.Mutex
	movements map[string]*models.Movement
}

func newFakeMovements() *fakeMovements {
	return &fakeMovements{movements: make(map[string]*models.Movement)}
}

func (f *fakeMovements) Insert(_ context.Context, movement *models.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	if movement.GUID == "" {
		movement.GUID = movement.ID[:11]
	}
	f.movements[movement.ID] = cloneMovement(movement)
	return nil
}

func (f *fakeMovements) find(id string) (*models.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movements[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneMovement(m), nil
}

func (f *fakeMovements) FindByID(_ context.Context, id string) (*models.Movement, error) {
	return f.find(id)
}

func (f *fakeMovements) FindByIDForUpdate(_ context.Context, id string) (*models.Movement, error) {
	return f.find(id)
}

func (f *fakeMovements) FindByGUID(_ context.Context, guid string) (*models.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.movements {
		if m.GUID == guid {
			return cloneMovement(m), nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeMovements) FindAllByClient(_ context.Context, clientID string) ([]models.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Movement
	for _, m := range f.movements {
		if m.ClientID == clientID && !m.IsDeleted {
			out = append(out, *cloneMovement(m))
		}
	}
	return out, nil
}

func (f *fakeMovements) FindActiveDomiciliaciones(_ context.Context) ([]models.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Movement
	for _, m := range f.movements {
		if d, ok := m.Domiciliacion(); ok && d.Activa && !m.IsDeleted {
			out = append(out, *cloneMovement(m))
		}
	}
	slices.SortFunc(out, func(a, b models.Movement) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (f *fakeMovements) FindAllPaged(
	_ context.Context,
	pageNumber, pageSize int,
	_ models.MovementFilter,
	_ models.SortDirection,
) (models.Page[models.Movement], error) {
	return models.NewPage[models.Movement](nil, pageNumber, pageSize, 0), nil
}

func (f *fakeMovements) Update(_ context.Context, id string, movement *models.Movement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.movements[id]; !ok {
		return models.ErrNotFound
	}
	f.movements[id] = cloneMovement(movement)
	return nil
}

func (f *fakeMovements) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.movements[id]
	if !ok {
		return models.ErrNotFound
	}
	m.IsDeleted = true
	return nil
}

func (f *fakeMovements) Purge(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.movements[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.movements, id)
	return nil
}

func cloneMovement(m *models.Movement) *models.Movement {
	cp := *m
	switch p := m.Payload.(type) {
	case *models.Transferencia:
		payload := *p
		cp.Payload = &payload
	case *models.Domiciliacion:
		payload := *p
		cp.Payload = &payload
	case *models.IngresoDeNomina:
		payload := *p
		cp.Payload = &payload
	case *models.PagoConTarjeta:
		payload := *p
		cp.Payload = &payload
	}
	return &cp
}
