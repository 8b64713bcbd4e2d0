package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the discriminant of a movement payload
type MovementType string

const (
	MovementTypeDomiciliacion   MovementType = "DOMICILIACION"
	MovementTypeTransferencia   MovementType = "TRANSFERENCIA"
	MovementTypeIngresoDeNomina MovementType = "INGRESO_NOMINA"
	MovementTypePagoConTarjeta  MovementType = "PAGO_TARJETA"
)

// Valid reports whether t names one of the four payload variants
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeDomiciliacion, MovementTypeTransferencia,
		MovementTypeIngresoDeNomina, MovementTypePagoConTarjeta:
		return true
	}
	return false
}

var (
	// ErrAlreadyRevoked is returned when a transfer is revoked a second time
	ErrAlreadyRevoked = errors.New("transfer already revoked")

	// ErrRevocationWindowExpired is returned when the revocation deadline has passed
	ErrRevocationWindowExpired = errors.New("revocation window expired")
)

// Payload is the variant part of a movement. The set of implementations is
// closed: Domiciliacion, Transferencia, IngresoDeNomina and PagoConTarjeta.
type Payload interface {
	Type() MovementType
	isPayload()
}

// Movement is a ledger entry owned by a client carrying exactly one payload
type Movement struct {
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Payload   Payload   `db:"payload"`
	ID        string    `db:"id"`
	GUID      string    `db:"guid"`
	ClientID  string    `db:"client_id"`
	IsDeleted bool      `db:"is_deleted"`
}

// Type returns the discriminant of the payload, or "" when none is set
func (m *Movement) Type() MovementType {
	if m == nil || m.Payload == nil {
		return ""
	}
	return m.Payload.Type()
}

// Transferencia returns the transfer payload when the movement is a transfer
func (m *Movement) Transferencia() (*Transferencia, bool) {
	p, ok := m.Payload.(*Transferencia)
	return p, ok
}

// Domiciliacion returns the direct debit payload when the movement is a mandate
func (m *Movement) Domiciliacion() (*Domiciliacion, bool) {
	p, ok := m.Payload.(*Domiciliacion)
	return p, ok
}

// Periodicidad is the recurrence of a direct debit mandate
type Periodicidad string

const (
	PeriodicidadWeekly    Periodicidad = "WEEKLY"
	PeriodicidadMonthly   Periodicidad = "MONTHLY"
	PeriodicidadQuarterly Periodicidad = "QUARTERLY"
	PeriodicidadAnnual    Periodicidad = "ANNUAL"
)

const day = 24 * time.Hour

// Interval is the fixed time between two executions. Months, quarters and
// years are approximated as 30, 90 and 365 days.
func (p Periodicidad) Interval() time.Duration {
	switch p {
	case PeriodicidadWeekly:
		return 7 * day
	case PeriodicidadMonthly:
		return 30 * day
	case PeriodicidadQuarterly:
		return 90 * day
	case PeriodicidadAnnual:
		return 365 * day
	default:
		return 0
	}
}

// Valid reports whether p is a known periodicity
func (p Periodicidad) Valid() bool {
	return p.Interval() > 0
}

// DomiciliacionState is the recurrence state of a mandate at a given instant
type DomiciliacionState string

const (
	DomiciliacionPending  DomiciliacionState = "PENDING"
	DomiciliacionDue      DomiciliacionState = "DUE"
	DomiciliacionInactive DomiciliacionState = "INACTIVE"
)

// Domiciliacion is a recurring direct debit mandate
type Domiciliacion struct {
	FechaInicio     time.Time       `json:"fechaInicio"`
	UltimaEjecucion time.Time       `json:"ultimaEjecucion"`
	Cantidad        decimal.Decimal `json:"cantidad"`
	IbanOrigen      string          `json:"ibanOrigen"`
	IbanDestino     string          `json:"ibanDestino"`
	Acreedor        string          `json:"acreedor"`
	Periodicidad    Periodicidad    `json:"periodicidad"`
	Activa          bool            `json:"activa"`
}

func (*Domiciliacion) Type() MovementType { return MovementTypeDomiciliacion }
func (*Domiciliacion) isPayload()         {}

// NextExecution is the instant from which the mandate is due again
func (d *Domiciliacion) NextExecution() time.Time {
	return d.UltimaEjecucion.Add(d.Periodicidad.Interval())
}

// State reports whether the mandate is inactive, waiting or due at now
func (d *Domiciliacion) State(now time.Time) DomiciliacionState {
	if !d.Activa {
		return DomiciliacionInactive
	}
	if now.Before(d.NextExecution()) {
		return DomiciliacionPending
	}
	return DomiciliacionDue
}

// Advance records one execution, moving UltimaEjecucion forward by a single interval
func (d *Domiciliacion) Advance() {
	d.UltimaEjecucion = d.NextExecution()
}

// Transferencia is a transfer between two accounts that may be revoked once
type Transferencia struct {
	RevocableHasta *time.Time      `json:"revocableHasta,omitempty"`
	RevocadaEn     *time.Time      `json:"revocadaEn,omitempty"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	IbanOrigen     string          `json:"ibanOrigen"`
	IbanDestino    string          `json:"ibanDestino"`
	Revocada       bool            `json:"revocada"`
}

func (*Transferencia) Type() MovementType { return MovementTypeTransferencia }
func (*Transferencia) isPayload()         {}

// CheckRevocable returns nil when the transfer can be revoked at now
func (t *Transferencia) CheckRevocable(now time.Time) error {
	if t.Revocada {
		return ErrAlreadyRevoked
	}
	if t.RevocableHasta != nil && now.After(*t.RevocableHasta) {
		return ErrRevocationWindowExpired
	}
	return nil
}

// Revoke marks the transfer as revoked. Callers restore balances in the same unit of work.
func (t *Transferencia) Revoke(now time.Time) error {
	if err := t.CheckRevocable(now); err != nil {
		return err
	}
	t.Revocada = true
	t.RevocadaEn = &now
	return nil
}

// IngresoDeNomina is a payroll credit paid by an employer
type IngresoDeNomina struct {
	Cantidad    decimal.Decimal `json:"cantidad"`
	IbanDestino string          `json:"ibanDestino"`
	Pagador     string          `json:"pagador"`
}

func (*IngresoDeNomina) Type() MovementType { return MovementTypeIngresoDeNomina }
func (*IngresoDeNomina) isPayload()         {}

// PagoConTarjeta is a card payment to a merchant
type PagoConTarjeta struct {
	Cantidad      decimal.Decimal `json:"cantidad"`
	NumeroTarjeta string          `json:"numeroTarjeta"`
	Comercio      string          `json:"comercio"`
}

func (*PagoConTarjeta) Type() MovementType { return MovementTypePagoConTarjeta }
func (*PagoConTarjeta) isPayload()         {}

// DecodePayload rebuilds a payload from its discriminant and JSON document
func DecodePayload(t MovementType, raw []byte) (Payload, error) {
	var p Payload
	switch t {
	case MovementTypeDomiciliacion:
		p = &Domiciliacion{}
	case MovementTypeTransferencia:
		p = &Transferencia{}
	case MovementTypeIngresoDeNomina:
		p = &IngresoDeNomina{}
	case MovementTypePagoConTarjeta:
		p = &PagoConTarjeta{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMovementType, t)
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", t, err)
	}
	return p, nil
}
