package services

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/repository"
)

func TestCreateTableIssuesQRCode(t *testing.T) {
	f := newFixture(t)

	view := f.createTable(t, 5, models.LocationPatio, 4)

	assert.Equal(t, 5, view.TableNumber)
	assert.Equal(t, models.TableAvailable, view.Status)
	assert.Nil(t, view.AssignedServer)
	require.NotNil(t, view.QRCode)
	assert.Regexp(t, `^table_[0-9a-f-]{36}\.png$`, *view.QRCode)

	p, err := f.tableSvc.TableQRPath(context.Background(), view.ID)
	require.NoError(t, err)
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Equal(t, []string{hub.EventTableCreate}, f.events.names())
}

func TestCreateTableRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	f.createTable(t, 5, models.LocationPatio, 4)

	_, err := f.tableSvc.CreateTable(context.Background(), CreateTableInput{
		TableNumber: 5,
		Location:    models.LocationBar,
		Capacity:    2,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, "Table number already exists", err.(*Error).Message)

	var count int64
	require.NoError(t, f.db.Model(&models.Table{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateTableValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTableInput
	}{
		{"zero number", CreateTableInput{TableNumber: 0, Location: models.LocationBar, Capacity: 2}},
		{"unknown location", CreateTableInput{TableNumber: 1, Location: "roof", Capacity: 2}},
		{"capacity too small", CreateTableInput{TableNumber: 1, Location: models.LocationBar, Capacity: 0}},
		{"capacity too large", CreateTableInput{TableNumber: 1, Location: models.LocationBar, Capacity: 21}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tableSvc.CreateTable(ctx, tc.in)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestUpdateTableToUsedNumberChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTable(t, 1, models.LocationMainDining, 4)
	second := f.createTable(t, 2, models.LocationBar, 2)

	number := 1
	capacity := 6
	_, err := f.tableSvc.UpdateTable(ctx, second.ID, UpdateTableInput{TableNumber: &number, Capacity: &capacity})
	require.Error(t, err)
	assert.Equal(t, KindDuplicateKey, KindOf(err))

	got, err := f.tableSvc.GetTable(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TableNumber)
	assert.Equal(t, 2, got.Capacity)
}

func TestUpdateTablePartialFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.createTable(t, 3, models.LocationMainDining, 4)

	loc := models.LocationPrivateRoom
	same := 3
	got, err := f.tableSvc.UpdateTable(ctx, table.ID, UpdateTableInput{Location: &loc, TableNumber: &same})
	require.NoError(t, err)
	assert.Equal(t, models.LocationPrivateRoom, got.Location)
	assert.Equal(t, 3, got.TableNumber)
	assert.Equal(t, 4, got.Capacity)

	_, err = f.tableSvc.UpdateTable(ctx, 999, UpdateTableInput{Location: &loc})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.createTable(t, 1, models.LocationBar, 2)

	_, err := f.tableSvc.UpdateStatus(ctx, table.ID, "dirty")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, models.TableAvailable, f.tableStatus(t, table.ID))

	got, err := f.tableSvc.UpdateStatus(ctx, table.ID, models.TableOutOfService)
	require.NoError(t, err)
	assert.Equal(t, models.TableOutOfService, got.Status)

	_, err = f.tableSvc.UpdateStatus(ctx, 42, models.TableOccupied)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAssignServerResolvesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.createTable(t, 1, models.LocationBar, 2)

	server := models.User{Name: "Dana", Email: "dana@example.com", Password: "x", Role: models.RoleServer}
	require.NoError(t, f.db.Create(&server).Error)

	got, err := f.tableSvc.AssignServer(ctx, table.ID, &server.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedServer)
	assert.Equal(t, server.ID, got.AssignedServer.ID)
	assert.Equal(t, "Dana", got.AssignedServer.Name)

	// unknown ids are stored as given
	ghost := uint(777)
	got, err = f.tableSvc.AssignServer(ctx, table.ID, &ghost)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedServer)
	assert.Equal(t, ghost, got.AssignedServer.ID)
	assert.Empty(t, got.AssignedServer.Name)

	got, err = f.tableSvc.AssignServer(ctx, table.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedServer)
}

func TestListTablesFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTable(t, 1, models.LocationPatio, 2)
	f.createTable(t, 2, models.LocationPatio, 6)
	f.createTable(t, 3, models.LocationBar, 8)

	patio := models.LocationPatio
	minCap := 4
	got, err := f.tableSvc.ListTables(ctx, repository.TableFilter{Location: &patio, MinCapacity: &minCap})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TableNumber)

	all, err := f.tableSvc.ListTables(ctx, repository.TableFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteTableBlockedByActiveReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	table := f.createTable(t, 1, models.LocationPatio, 4)

	pending := models.Reservation{
		TableID:         table.ID,
		CustomerName:    "Imported",
		CustomerPhone:   "555-0100",
		ReservationDate: time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC),
		PartySize:       2,
		Status:          models.ReservationPending,
	}
	require.NoError(t, f.db.Create(&pending).Error)

	err := f.tableSvc.DeleteTable(ctx, table.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, []uint{pending.ID}, svcErr.Details["reservations"])

	_, err = f.tableSvc.GetTable(ctx, table.ID)
	assert.NoError(t, err)

	require.NoError(t, f.db.Model(&pending).Update("status", models.ReservationCancelled).Error)
	require.NoError(t, f.tableSvc.DeleteTable(ctx, table.ID))

	_, err = f.tableSvc.GetTable(ctx, table.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(f.tableSvc.DeleteTable(ctx, table.ID), ErrNotFound))
}

func TestTableQRPathMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tableSvc.TableQRPath(ctx, 1)
	assert.True(t, errors.Is(err, ErrNotFound))

	plain := models.Table{TableNumber: 9, Location: models.LocationBar, Capacity: 2, Status: models.TableAvailable}
	require.NoError(t, f.db.Create(&plain).Error)
	_, err = f.tableSvc.TableQRPath(ctx, plain.ID)
	require.Error(t, err)
	assert.Equal(t, "QR code not found for this table", err.(*Error).Message)
}

func TestStatsCountsPerStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createTable(t, 1, models.LocationBar, 2)
	f.createTable(t, 2, models.LocationBar, 2)
	c := f.createTable(t, 3, models.LocationBar, 2)

	_, err := f.tableSvc.UpdateStatus(ctx, a.ID, models.TableOccupied)
	require.NoError(t, err)
	_, err = f.tableSvc.UpdateStatus(ctx, c.ID, models.TableOutOfService)
	require.NoError(t, err)

	stats, err := f.tableSvc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TableStats{Available: 1, Occupied: 1, OutOfService: 1, Total: 3}, stats)
}
