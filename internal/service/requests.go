package service

import (
	"time"

	"github.com/benx421/banking-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Idempotency operations, one namespace per create request kind
const (
	opDomiciliacion   = "domiciliacion"
	opTransferencia   = "transferencia"
	opIngresoDeNomina = "ingreso_nomina"
	opPagoConTarjeta  = "pago_tarjeta"
)

// DomiciliacionRequest creates a direct debit mandate. A zero FechaInicio starts it now.
type DomiciliacionRequest struct {
	FechaInicio    time.Time
	Cantidad       decimal.Decimal     `validate:"positive_decimal"`
	IbanOrigen     string              `validate:"required"`
	IbanDestino    string              `validate:"required"`
	Acreedor       string              `validate:"required,max=140"`
	Periodicidad   models.Periodicidad `validate:"required,oneof=WEEKLY MONTHLY QUARTERLY ANNUAL"`
	IdempotencyKey string              `validate:"omitempty,max=255"`
}

// TransferenciaRequest moves money from an account of the acting client to any account
type TransferenciaRequest struct {
	Cantidad       decimal.Decimal `validate:"positive_decimal"`
	IbanOrigen     string          `validate:"required"`
	IbanDestino    string          `validate:"required,nefield=IbanOrigen"`
	IdempotencyKey string          `validate:"omitempty,max=255"`
}

// IngresoDeNominaRequest credits a payroll into an account
type IngresoDeNominaRequest struct {
	Cantidad       decimal.Decimal `validate:"positive_decimal"`
	IbanDestino    string          `validate:"required"`
	Pagador        string          `validate:"required"`
	IdempotencyKey string          `validate:"omitempty,max=255"`
}

// PagoConTarjetaRequest debits the account linked to a card
type PagoConTarjetaRequest struct {
	Cantidad       decimal.Decimal `validate:"positive_decimal"`
	NumeroTarjeta  string          `validate:"required"`
	Comercio       string          `validate:"required,max=140"`
	IdempotencyKey string          `validate:"omitempty,max=255"`
}

// CreateAccountRequest opens an account with a freshly minted IBAN
type CreateAccountRequest struct {
	ClientID  string             `validate:"required"`
	ProductID string             `validate:"required"`
	Type      models.AccountType `validate:"required,oneof=SAVING STANDARD"`
}

// DirectDebitReport summarizes one ExecuteDueDomiciliaciones pass
type DirectDebitReport struct {
	Executed []string
	Failed   map[string]error
	Checked  int
}
