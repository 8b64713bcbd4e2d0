package repository

import (
	"context"
	"testing"
	"time"

	"github.com/benx421/banking-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransferMovement(clientID string, createdAt time.Time) *models.Movement {
	return &models.Movement{
		ClientID:  clientID,
		CreatedAt: createdAt,
		Payload: &models.Transferencia{
			Cantidad:    decimal.RequireFromString("25.50"),
			IbanOrigen:  ibanA,
			IbanDestino: ibanB,
		},
	}
}

func newMandateMovement(clientID string, activa bool) *models.Movement {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &models.Movement{
		ClientID: clientID,
		Payload: &models.Domiciliacion{
			FechaInicio:     start,
			UltimaEjecucion: start,
			Cantidad:        decimal.RequireFromString("9.99"),
			IbanOrigen:      ibanA,
			IbanDestino:     ibanB,
			Acreedor:        "Utility Co",
			Periodicidad:    models.PeriodicidadMonthly,
			Activa:          activa,
		},
	}
}

func TestNewGUID(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		guid, err := NewGUID()
		require.NoError(t, err)
		assert.Len(t, guid, 11)
		assert.Regexp(t, `^[A-Za-z0-9_-]{11}$`, guid)
		seen[guid] = struct{}{}
	}
	assert.Len(t, seen, 100)
}

func TestMovementRepository_InsertAndFind(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	movement := newTransferMovement("client-1", time.Time{})
	require.NoError(t, repo.Insert(ctx, movement))

	_, err := uuid.Parse(movement.ID)
	require.NoError(t, err, "id should be a uuid")
	assert.Len(t, movement.GUID, 11)
	assert.False(t, movement.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, movement.ID)
	require.NoError(t, err)
	byGUID, err := repo.FindByGUID(ctx, movement.GUID)
	require.NoError(t, err)

	for _, found := range []*models.Movement{byID, byGUID} {
		assert.Equal(t, movement.ID, found.ID)
		assert.Equal(t, movement.GUID, found.GUID)
		assert.Equal(t, models.MovementTypeTransferencia, found.Type())

		transfer, ok := found.Transferencia()
		require.True(t, ok)
		assert.True(t, decimal.RequireFromString("25.50").Equal(transfer.Cantidad))
		assert.Equal(t, ibanA, transfer.IbanOrigen)
		assert.False(t, transfer.Revocada)
	}

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = repo.FindByGUID(ctx, "AAAAAAAAAAA")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMovementRepository_InsertDuplicateGUID(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	first := newTransferMovement("client-1", time.Time{})
	require.NoError(t, repo.Insert(ctx, first))

	second := newTransferMovement("client-1", time.Time{})
	second.GUID = first.GUID
	assert.ErrorIs(t, repo.Insert(ctx, second), models.ErrDuplicate)
}

func TestMovementRepository_Update(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	movement := newTransferMovement("client-1", time.Time{})
	require.NoError(t, repo.Insert(ctx, movement))

	transfer, _ := movement.Transferencia()
	require.NoError(t, transfer.Revoke(time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, movement.ID, movement))

	found, err := repo.FindByID(ctx, movement.ID)
	require.NoError(t, err)

	revoked, ok := found.Transferencia()
	require.True(t, ok)
	assert.True(t, revoked.Revocada)
	require.NotNil(t, revoked.RevocadaEn)

	err = repo.Update(ctx, uuid.NewString(), movement)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMovementRepository_DeleteAndPurge(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	movement := newTransferMovement("client-1", time.Time{})
	require.NoError(t, repo.Insert(ctx, movement))

	require.NoError(t, repo.Delete(ctx, movement.ID))

	found, err := repo.FindByID(ctx, movement.ID)
	require.NoError(t, err, "soft deleted movements stay retrievable by id")
	assert.True(t, found.IsDeleted)

	listed, err := repo.FindAllByClient(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, listed)

	require.NoError(t, repo.Purge(ctx, movement.ID))
	_, err = repo.FindByID(ctx, movement.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, repo.Purge(ctx, movement.ID), models.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, movement.ID), models.ErrNotFound)
}

func TestMovementRepository_FindActiveDomiciliaciones(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	active := newMandateMovement("client-1", true)
	inactive := newMandateMovement("client-1", false)
	deleted := newMandateMovement("client-2", true)
	transfer := newTransferMovement("client-1", time.Time{})

	for _, m := range []*models.Movement{active, inactive, deleted, transfer} {
		require.NoError(t, repo.Insert(ctx, m))
	}
	require.NoError(t, repo.Delete(ctx, deleted.ID))

	mandates, err := repo.FindActiveDomiciliaciones(ctx)
	require.NoError(t, err)
	require.Len(t, mandates, 1)
	assert.Equal(t, active.ID, mandates[0].ID)

	mandate, ok := mandates[0].Domiciliacion()
	require.True(t, ok)
	assert.Equal(t, models.PeriodicidadMonthly, mandate.Periodicidad)
	assert.True(t, mandate.FechaInicio.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMovementRepository_FindAllPaged(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewMovementRepository(database)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 5 {
		m := newTransferMovement("client-1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Insert(ctx, m))
		ids = append(ids, m.ID)
	}
	other := newMandateMovement("client-2", true)
	require.NoError(t, repo.Insert(ctx, other))

	tests := []struct {
		name       string
		page       int
		size       int
		filter     models.MovementFilter
		sort       models.SortDirection
		wantIDs    []string
		wantTotal  int64
		wantPages  int
		checkOrder bool
	}{
		{
			name:       "first page ascending",
			page:       0,
			size:       2,
			filter:     models.MovementFilter{ClientID: "client-1"},
			sort:       models.SortAsc,
			wantIDs:    ids[0:2],
			wantTotal:  5,
			wantPages:  3,
			checkOrder: true,
		},
		{
			name:       "last partial page",
			page:       2,
			size:       2,
			filter:     models.MovementFilter{ClientID: "client-1"},
			sort:       models.SortAsc,
			wantIDs:    ids[4:5],
			wantTotal:  5,
			wantPages:  3,
			checkOrder: true,
		},
		{
			name:       "descending",
			page:       0,
			size:       2,
			filter:     models.MovementFilter{ClientID: "client-1"},
			sort:       models.SortDesc,
			wantIDs:    []string{ids[4], ids[3]},
			wantTotal:  5,
			wantPages:  3,
			checkOrder: true,
		},
		{
			name:      "page past the end",
			page:      7,
			size:      2,
			filter:    models.MovementFilter{ClientID: "client-1"},
			sort:      models.SortAsc,
			wantIDs:   []string{},
			wantTotal: 5,
			wantPages: 3,
		},
		{
			name:      "filter by type",
			page:      0,
			size:      10,
			filter:    models.MovementFilter{Type: models.MovementTypeDomiciliacion},
			sort:      models.SortAsc,
			wantIDs:   []string{other.ID},
			wantTotal: 1,
			wantPages: 1,
		},
		{
			name:      "everything",
			page:      0,
			size:      10,
			sort:      models.SortAsc,
			wantIDs:   append(append([]string{}, ids...), other.ID),
			wantTotal: 6,
			wantPages: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.FindAllPaged(ctx, tt.page, tt.size, tt.filter, tt.sort)
			require.NoError(t, err)

			got := make([]string, 0, len(page.Content))
			for _, m := range page.Content {
				got = append(got, m.ID)
			}

			if tt.checkOrder {
				assert.Equal(t, tt.wantIDs, got)
			} else {
				assert.ElementsMatch(t, tt.wantIDs, got)
			}
			assert.Equal(t, tt.wantTotal, page.TotalElements)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.page, page.PageNumber)
			assert.Equal(t, tt.size, page.PageSize)
		})
	}

	t.Run("deleted excluded unless requested", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ids[0]))

		page, err := repo.FindAllPaged(ctx, 0, 10, models.MovementFilter{ClientID: "client-1"}, models.SortAsc)
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.TotalElements)

		page, err = repo.FindAllPaged(ctx, 0, 10, models.MovementFilter{ClientID: "client-1", IncludeDeleted: true}, models.SortAsc)
		require.NoError(t, err)
		assert.EqualValues(t, 5, page.TotalElements)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := repo.FindAllPaged(ctx, -1, 10, models.MovementFilter{}, models.SortAsc)
		assert.Error(t, err)
		_, err = repo.FindAllPaged(ctx, 0, 0, models.MovementFilter{}, models.SortAsc)
		assert.Error(t, err)
	})
}
