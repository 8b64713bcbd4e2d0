package service

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benx421/banking-ledger/internal/config"
	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/identifier"
	"github.com/benx421/banking-ledger/internal/lock"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/benx421/banking-ledger/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const integrationDBName = "ledger_service_test"

var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgConnStr   string
	pgErr       error
)

func TestMain(m *testing.M) {
	flag.Parse()
	code := m.Run()

	if pgContainer != nil {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}

	os.Exit(code)
}

func startPostgres() {
	ctx := context.Background()

	pgContainer, pgErr = postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(integrationDBName),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		postgres.BasicWaitStrategies(),
	)
	if pgErr != nil {
		return
	}

	pgConnStr, pgErr = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if pgErr != nil {
		return
	}

	sqlDB, err := sql.Open("postgres", pgConnStr)
	if err != nil {
		pgErr = err
		return
	}
	database := db.NewTestDB(sqlDB, integrationDBName)
	defer database.Close() //nolint:errcheck // test setup

	pgErr = database.Migrate()
}

// integrationDB starts Postgres on first use, so unit tests of this package never need Docker
func integrationDB(t *testing.T) *db.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	pgOnce.Do(startPostgres)
	if pgErr != nil {
		t.Skipf("postgres container unavailable: %v", pgErr)
	}

	sqlDB, err := sql.Open("postgres", pgConnStr)
	require.NoError(t, err)
	database := db.NewTestDB(sqlDB, integrationDBName)

	_, err = database.ExecContext(context.Background(),
		"TRUNCATE TABLE movements, idempotency_keys, cards, accounts CASCADE")
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })
	return database
}

type ledgerFixture struct {
	db        *db.DB
	accounts  *AccountService
	cards     *CardService
	movements *MovementService
}

func newLedgerFixture(t *testing.T, locker lock.Locker) *ledgerFixture {
	t.Helper()

	database := integrationDB(t)
	// wall clock, so issued cards are not already expired for the movement service
	generator := identifier.NewGenerator(
		rand.NewPCG(1, 2),
		identifier.IbanFormat{Country: "ES", BankCode: "0182", BranchCode: "5141"},
		nil,
	)

	return &ledgerFixture{
		db:        database,
		accounts:  NewAccountService(database, generator, testLogger()),
		cards:     NewCardService(database, generator, testLogger(), 4),
		movements: NewMovementService(database, locker, testLogger(), 0),
	}
}

func (f *ledgerFixture) openAccount(t *testing.T, clientID, balance string) *models.Account {
	t.Helper()
	ctx := context.Background()

	account, err := f.accounts.CreateAccount(ctx, CreateAccountRequest{
		ClientID:  clientID,
		ProductID: "product-1",
		Type:      models.AccountTypeStandard,
	})
	require.NoError(t, err)

	require.NoError(t, repository.NewAccountRepository(f.db).UpdateAccountBalance(ctx, account.IBAN, amount(balance)))
	return account
}

func (f *ledgerFixture) balance(t *testing.T, iban string) string {
	t.Helper()
	account, err := f.accounts.FindAccountByIban(context.Background(), iban)
	require.NoError(t, err)
	return account.Balance.StringFixed(2)
}

func TestIntegration_TransferAndRevoke(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := lock.NewRedisLocker(client, &config.RedisConfig{
		Addr:       mr.Addr(),
		LockExpiry: 5 * time.Second,
		LockTries:  32,
		RetryDelay: 10 * time.Millisecond,
	}, testLogger())

	f := newLedgerFixture(t, locker)
	ctx := context.Background()
	origin := f.openAccount(t, testClient, "100.00")
	destination := f.openAccount(t, otherClient, "0")

	movement, err := f.movements.AddTransferencia(ctx, testClient, TransferenciaRequest{
		Cantidad:    amount("30.50"),
		IbanOrigen:  origin.IBAN,
		IbanDestino: destination.IBAN,
	})
	require.NoError(t, err)
	assert.Len(t, movement.GUID, 11)
	assert.Equal(t, "69.50", f.balance(t, origin.IBAN))
	assert.Equal(t, "30.50", f.balance(t, destination.IBAN))

	byGUID, err := f.movements.FindByGuid(ctx, movement.GUID)
	require.NoError(t, err)
	assert.Equal(t, movement.ID, byGUID.ID)

	_, err = f.movements.RevocarTransferencia(ctx, testClient, movement.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", f.balance(t, origin.IBAN))
	assert.Equal(t, "0.00", f.balance(t, destination.IBAN))

	_, err = f.movements.RevocarTransferencia(ctx, testClient, movement.ID)
	assert.True(t, IsCode(err, ErrCodeAlreadyRevoked), "got %v", err)
	assert.Equal(t, "100.00", f.balance(t, origin.IBAN))
	assert.Equal(t, "0.00", f.balance(t, destination.IBAN))

	assert.Empty(t, mr.Keys(), "every IBAN lock released")
}

func TestIntegration_ConcurrentOppositeTransfers(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	a := f.openAccount(t, testClient, "1000.00")
	b := f.openAccount(t, testClient, "1000.00")

	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)

	for range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.movements.AddTransferencia(ctx, testClient, TransferenciaRequest{
				Cantidad: amount("7.25"), IbanOrigen: a.IBAN, IbanDestino: b.IBAN,
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.movements.AddTransferencia(ctx, testClient, TransferenciaRequest{
				Cantidad: amount("3.10"), IbanOrigen: b.IBAN, IbanDestino: a.IBAN,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// 20 * (7.25 - 3.10) = 83.00
	assert.Equal(t, "917.00", f.balance(t, a.IBAN))
	assert.Equal(t, "1083.00", f.balance(t, b.IBAN))
}

func TestIntegration_ConcurrentRevocations(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	origin := f.openAccount(t, testClient, "50.00")
	destination := f.openAccount(t, otherClient, "0")

	movement, err := f.movements.AddTransferencia(ctx, testClient, TransferenciaRequest{
		Cantidad: amount("50"), IbanOrigen: origin.IBAN, IbanDestino: destination.IBAN,
	})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.movements.RevocarTransferencia(ctx, testClient, movement.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, IsCode(err, ErrCodeAlreadyRevoked), "got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, "50.00", f.balance(t, origin.IBAN))
	assert.Equal(t, "0.00", f.balance(t, destination.IBAN))
}

func TestIntegration_IdempotentTransfer(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	origin := f.openAccount(t, testClient, "10.00")
	destination := f.openAccount(t, otherClient, "0")

	req := TransferenciaRequest{
		Cantidad:       amount("4"),
		IbanOrigen:     origin.IBAN,
		IbanDestino:    destination.IBAN,
		IdempotencyKey: "transfer-42",
	}

	_, err := f.movements.AddTransferencia(ctx, testClient, req)
	require.NoError(t, err)

	_, err = f.movements.AddTransferencia(ctx, testClient, req)
	assert.True(t, IsCode(err, ErrCodeDuplicateRequest), "got %v", err)
	assert.Equal(t, "6.00", f.balance(t, origin.IBAN))

	movements, err := f.movements.FindAllByClient(ctx, testClient)
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestIntegration_CardPayment(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	account := f.openAccount(t, testClient, "80.00")

	card, err := f.cards.IssueCard(ctx, testClient, account.IBAN)
	require.NoError(t, err)

	linked, err := f.accounts.FindAccountByIban(ctx, account.IBAN)
	require.NoError(t, err)
	require.NotNil(t, linked.CardID)
	assert.Equal(t, card.ID, *linked.CardID)

	_, err = f.movements.AddPagoConTarjeta(ctx, testClient, PagoConTarjetaRequest{
		Cantidad:      amount("19.99"),
		NumeroTarjeta: card.Number,
		Comercio:      "Bookshop",
	})
	require.NoError(t, err)
	assert.Equal(t, "60.01", f.balance(t, account.IBAN))

	_, err = f.movements.AddPagoConTarjeta(ctx, otherClient, PagoConTarjetaRequest{
		Cantidad:      amount("1"),
		NumeroTarjeta: card.Number,
		Comercio:      "Bookshop",
	})
	assert.True(t, IsCode(err, ErrCodeCardNotFound), "got %v", err)
}

func TestIntegration_DirectDebitRecurrence(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	origin := f.openAccount(t, testClient, "100.00")
	creditor := f.openAccount(t, otherClient, "0")

	now := time.Now().UTC()
	mandate, err := f.movements.AddDomiciliacion(ctx, testClient, DomiciliacionRequest{
		FechaInicio:  now.Add(-31 * 24 * time.Hour),
		Cantidad:     amount("25"),
		IbanOrigen:   origin.IBAN,
		IbanDestino:  creditor.IBAN,
		Acreedor:     "Utility Co",
		Periodicidad: models.PeriodicidadMonthly,
	})
	require.NoError(t, err)

	report, err := f.movements.ExecuteDueDomiciliaciones(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []string{mandate.ID}, report.Executed)
	assert.Empty(t, report.Failed)
	assert.Equal(t, "75.00", f.balance(t, origin.IBAN))
	assert.Equal(t, "25.00", f.balance(t, creditor.IBAN))

	report, err = f.movements.ExecuteDueDomiciliaciones(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, report.Executed, "a mandate runs at most once per due date")
	assert.Equal(t, "75.00", f.balance(t, origin.IBAN))

	_, err = f.movements.DesactivarDomiciliacion(ctx, testClient, mandate.ID)
	require.NoError(t, err)

	report, err = f.movements.ExecuteDueDomiciliaciones(ctx, now.Add(60*24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Equal(t, "75.00", f.balance(t, origin.IBAN))
}

func TestIntegration_MandateOnForeignAccount(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	foreign := f.openAccount(t, otherClient, "100.00")
	own := f.openAccount(t, testClient, "0")

	_, err := f.movements.AddDomiciliacion(ctx, testClient, DomiciliacionRequest{
		FechaInicio:  time.Now().UTC().Add(-31 * 24 * time.Hour),
		Cantidad:     amount("100"),
		IbanOrigen:   foreign.IBAN,
		IbanDestino:  own.IBAN,
		Acreedor:     "Utility Co",
		Periodicidad: models.PeriodicidadMonthly,
	})
	assert.True(t, IsCode(err, ErrCodeAccountNotFound), "got %v", err)

	report, err := f.movements.ExecuteDueDomiciliaciones(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Equal(t, "100.00", f.balance(t, foreign.IBAN))
	assert.Equal(t, "0.00", f.balance(t, own.IBAN))
}

func TestIntegration_ListingAndDeletion(t *testing.T) {
	f := newLedgerFixture(t, nil)
	ctx := context.Background()
	account := f.openAccount(t, testClient, "0")

	var ids []string
	for range 5 {
		movement, err := f.movements.AddIngresoDeNomina(ctx, testClient, IngresoDeNominaRequest{
			Cantidad:    amount("10"),
			IbanDestino: account.IBAN,
			Pagador:     "A58818501",
		})
		require.NoError(t, err)
		ids = append(ids, movement.ID)
	}
	assert.Equal(t, "50.00", f.balance(t, account.IBAN))

	require.NoError(t, f.movements.DeleteMovimiento(ctx, testClient, ids[0]))
	assert.Equal(t, "50.00", f.balance(t, account.IBAN), "deletion never touches balances")

	page, err := f.movements.FindAllMovimientos(ctx, 0, 3, models.MovementFilter{ClientID: testClient}, models.SortAsc)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Content, 3)
	assert.Equal(t, ids[1], page.Content[0].ID)

	past, err := f.movements.FindAllMovimientos(ctx, 5, 3, models.MovementFilter{}, "")
	require.NoError(t, err)
	assert.Empty(t, past.Content)

	require.NoError(t, f.movements.PurgeMovimiento(ctx, ids[0]))
	_, err = f.movements.FindByID(ctx, ids[0])
	assert.True(t, IsCode(err, ErrCodeMovementNotFound), "got %v", err)
}
