package service

import (
	"context"
	"time"

	"github.com/benx421/banking-ledger/internal/models"
)

// HealthChecker validates system health.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// MovementRecorder creates movements and applies their balance effects
type MovementRecorder interface {
	AddDomiciliacion(ctx context.Context, owner string, req DomiciliacionRequest) (*models.Movement, error)
	AddTransferencia(ctx context.Context, owner string, req TransferenciaRequest) (*models.Movement, error)
	AddIngresoDeNomina(ctx context.Context, owner string, req IngresoDeNominaRequest) (*models.Movement, error)
	AddPagoConTarjeta(ctx context.Context, owner string, req PagoConTarjetaRequest) (*models.Movement, error)
}

// TransferRevoker reverses transfers
type TransferRevoker interface {
	RevocarTransferencia(ctx context.Context, owner, movementID string) (*models.Movement, error)
}

// DirectDebitExecutor runs the recurrence of direct debit mandates
type DirectDebitExecutor interface {
	ExecuteDueDomiciliaciones(ctx context.Context, now time.Time) (*DirectDebitReport, error)
	ExecuteDomiciliacion(ctx context.Context, movementID string, now time.Time) (*models.Movement, error)
	DesactivarDomiciliacion(ctx context.Context, owner, movementID string) (*models.Movement, error)
}

// MovementFinder reads and removes recorded movements
type MovementFinder interface {
	FindAllMovimientos(ctx context.Context, pageNumber, pageSize int, filter models.MovementFilter, sort models.SortDirection) (models.Page[models.Movement], error)
	FindByGuid(ctx context.Context, guid string) (*models.Movement, error)
	FindByID(ctx context.Context, id string) (*models.Movement, error)
	FindAllByClient(ctx context.Context, clientID string) ([]models.Movement, error)
	DeleteMovimiento(ctx context.Context, owner, movementID string) error
	PurgeMovimiento(ctx context.Context, movementID string) error
}

// AccountManager opens and reads accounts
type AccountManager interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*models.Account, error)
	FindAccountByIban(ctx context.Context, iban string) (*models.Account, error)
	FindAccountsByClient(ctx context.Context, clientID string) ([]models.Account, error)
}

// CardIssuer issues payment cards on accounts
type CardIssuer interface {
	IssueCard(ctx context.Context, owner, iban string) (*models.Card, error)
}

// Ensure concrete types implement interfaces
var (
	_ MovementRecorder    = (*MovementService)(nil)
	_ TransferRevoker     = (*MovementService)(nil)
	_ DirectDebitExecutor = (*MovementService)(nil)
	_ MovementFinder      = (*MovementService)(nil)
	_ AccountManager      = (*AccountService)(nil)
	_ CardIssuer          = (*CardService)(nil)
)
