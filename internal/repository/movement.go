package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/benx421/banking-ledger/internal/db"
	"github.com/benx421/banking-ledger/internal/models"
	"github.com/google/uuid"
)

// guidBytes random bytes encode to an 11-character URL-safe GUID
const guidBytes = 8

// MovementRepository is the movement store: the only owner of persisted movements
type MovementRepository interface {
	Insert(ctx context.Context, movement *models.Movement) error
	FindByID(ctx context.Context, id string) (*models.Movement, error)
	FindByIDForUpdate(ctx context.Context, id string) (*models.Movement, error)
	FindByGUID(ctx context.Context, guid string) (*models.Movement, error)
	FindAllByClient(ctx context.Context, clientID string) ([]models.Movement, error)
	FindActiveDomiciliaciones(ctx context.Context) ([]models.Movement, error)
	FindAllPaged(ctx context.Context, pageNumber, pageSize int, filter models.MovementFilter, sort models.SortDirection) (models.Page[models.Movement], error)
	Update(ctx context.Context, id string, movement *models.Movement) error
	Delete(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}

type movementRepository struct {
	db db.Querier
}

// NewMovementRepository creates a new MovementRepository on a pool or a transaction
func NewMovementRepository(q db.Querier) MovementRepository {
	return &movementRepository{db: q}
}

const movementColumns = `id, guid, client_id, type, payload, is_deleted, created_at, updated_at`

// NewGUID returns an opaque 11-character URL-safe identifier drawn from 8 random bytes
func NewGUID() (string, error) {
	b := make([]byte, guidBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Insert persists a new movement, assigning ID and GUID when they are empty
func (r *movementRepository) Insert(ctx context.Context, movement *models.Movement) error {
	if movement.Payload == nil {
		return fmt.Errorf("movement has no payload")
	}

	if movement.ID == "" {
		movement.ID = uuid.NewString()
	}
	if movement.GUID == "" {
		guid, err := NewGUID()
		if err != nil {
			return err
		}
		movement.GUID = guid
	}

	payload, err := json.Marshal(movement.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode movement payload: %w", err)
	}

	query := `
		INSERT INTO movements (id, guid, client_id, type, payload, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, COALESCE($6, NOW()), COALESCE($6, NOW()))
		RETURNING created_at, updated_at
	`

	var createdAt sql.NullTime
	if !movement.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: movement.CreatedAt, Valid: true}
	}

	err = r.db.QueryRowContext(ctx, query,
		movement.ID,
		movement.GUID,
		movement.ClientID,
		movement.Type(),
		string(payload),
		createdAt,
	).Scan(&movement.CreatedAt, &movement.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movement %s already exists: %w", movement.GUID, models.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	return nil
}

// FindByID retrieves a movement by its store id, deleted ones included
func (r *movementRepository) FindByID(ctx context.Context, id string) (*models.Movement, error) {
	return r.findOneByID(ctx, id, false)
}

// FindByIDForUpdate retrieves a movement and locks its row until the surrounding transaction ends
func (r *movementRepository) FindByIDForUpdate(ctx context.Context, id string) (*models.Movement, error) {
	return r.findOneByID(ctx, id, true)
}

func (r *movementRepository) findOneByID(ctx context.Context, id string, forUpdate bool) (*models.Movement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}

	query := `SELECT ` + movementColumns + ` FROM movements WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	movement, err := scanMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to find movement by id: %w", err)
	}

	return movement, nil
}

// FindByGUID retrieves a movement by its public identifier
func (r *movementRepository) FindByGUID(ctx context.Context, guid string) (*models.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE guid = $1`

	movement, err := scanMovement(r.db.QueryRowContext(ctx, query, guid))
	if err != nil {
		return nil, fmt.Errorf("failed to find movement by guid: %w", err)
	}

	return movement, nil
}

// FindAllByClient lists the live movements of a client, oldest first
func (r *movementRepository) FindAllByClient(ctx context.Context, clientID string) ([]models.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE client_id = $1 AND NOT is_deleted ORDER BY created_at, id`
	return r.list(ctx, query, clientID)
}

// FindActiveDomiciliaciones lists every live mandate still switched on
func (r *movementRepository) FindActiveDomiciliaciones(ctx context.Context) ([]models.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE type = $1 AND NOT is_deleted AND (payload ->> 'activa')::BOOLEAN
		ORDER BY created_at, id
	`
	return r.list(ctx, query, models.MovementTypeDomiciliacion)
}

// FindAllPaged returns one zero-based page of the movements matching filter.
// A page past the end is empty, not an error.
func (r *movementRepository) FindAllPaged(
	ctx context.Context,
	pageNumber, pageSize int,
	filter models.MovementFilter,
	sort models.SortDirection,
) (models.Page[models.Movement], error) {
	if pageNumber < 0 || pageSize < 1 {
		return models.Page[models.Movement]{}, fmt.Errorf("invalid page %d of size %d", pageNumber, pageSize)
	}

	where, args := movementWhere(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM movements` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return models.Page[models.Movement]{}, fmt.Errorf("failed to count movements: %w", err)
	}

	order := "ASC"
	if sort == models.SortDesc {
		order = "DESC"
	}

	args = append(args, pageSize, int64(pageNumber)*int64(pageSize))
	query := `SELECT ` + movementColumns + ` FROM movements` + where +
		` ORDER BY created_at ` + order + `, id ` + order +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	content, err := r.list(ctx, query, args...)
	if err != nil {
		return models.Page[models.Movement]{}, err
	}

	return models.NewPage(content, pageNumber, pageSize, total), nil
}

func movementWhere(filter models.MovementFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if !filter.IncludeDeleted {
		conditions = append(conditions, "NOT is_deleted")
	}
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conditions = append(conditions, "client_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, "type = $"+strconv.Itoa(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Update replaces the payload of a movement. Only the mutable payload fields
// (transfer revocation, mandate activity and last execution) are expected to differ.
func (r *movementRepository) Update(ctx context.Context, id string, movement *models.Movement) error {
	if movement.Payload == nil {
		return fmt.Errorf("movement has no payload")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}

	payload, err := json.Marshal(movement.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode movement payload: %w", err)
	}

	query := `
		UPDATE movements
		SET payload = $2,
		    updated_at = NOW()
		WHERE id = $1 AND type = $3
		RETURNING updated_at
	`

	err = r.db.QueryRowContext(ctx, query, id, string(payload), movement.Type()).Scan(&movement.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update movement: %w", err)
	}

	return nil
}

// Delete marks a movement as deleted; the row stays in the store
func (r *movementRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}

	query := `UPDATE movements SET is_deleted = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}

	return expectOneRow(result, "movement")
}

// Purge removes a movement row for good
func (r *movementRepository) Purge(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to purge movement: %w", err)
	}

	return expectOneRow(result, "movement")
}

func (r *movementRepository) list(ctx context.Context, query string, args ...any) ([]models.Movement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, *movement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}

	return movements, nil
}

func scanMovement(row rowScanner) (*models.Movement, error) {
	var (
		movement     models.Movement
		movementType models.MovementType
		payload      []byte
	)

	err := row.Scan(
		&movement.ID,
		&movement.GUID,
		&movement.ClientID,
		&movementType,
		&payload,
		&movement.IsDeleted,
		&movement.CreatedAt,
		&movement.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movement not found: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	movement.Payload, err = models.DecodePayload(movementType, payload)
	if err != nil {
		return nil, err
	}

	return &movement, nil
}
