package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTableStatus(t *testing.T) {
	for _, from := range tableStatuses {
		for _, to := range tableStatuses {
			assert.NoError(t, TransitionTableStatus(from, to), "%s -> %s", from, to)
		}
	}

	assert.Error(t, TransitionTableStatus(TableAvailable, "dirty"))
	assert.Error(t, TransitionTableStatus(TableReserved, ""))
}

func TestTableValidate(t *testing.T) {
	valid := Table{TableNumber: 5, Location: LocationPatio, Capacity: 4, Status: TableAvailable}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Table)
	}{
		{"zero table number", func(tb *Table) { tb.TableNumber = 0 }},
		{"unknown location", func(tb *Table) { tb.Location = "terrace" }},
		{"capacity too small", func(tb *Table) { tb.Capacity = 0 }},
		{"capacity too large", func(tb *Table) { tb.Capacity = 21 }},
		{"unknown status", func(tb *Table) { tb.Status = "dirty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := valid
			tt.mutate(&tb)
			assert.Error(t, tb.Validate())
		})
	}
}

func TestReservationValidate(t *testing.T) {
	r := Reservation{
		CustomerName:    "Ada",
		CustomerPhone:   "+15550100",
		ReservationDate: time.Date(2026, 10, 20, 19, 0, 0, 0, time.UTC),
		PartySize:       2,
	}
	assert.NoError(t, r.Validate())

	r.PartySize = 0
	assert.Error(t, r.Validate())

	r.PartySize = 2
	r.CustomerPhone = ""
	assert.Error(t, r.Validate())
}

func TestReservationStatusValid(t *testing.T) {
	assert.True(t, ReservationNoShow.Valid())
	assert.True(t, ReservationCancelled.Valid())
	assert.False(t, ReservationPending.Valid())
	assert.False(t, ReservationStatus("seated").Valid())
}

func TestNormalizeReservationTime(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	in := time.Date(2026, 10, 20, 19, 0, 30, 999, loc)

	got := NormalizeReservationTime(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, 0, got.Nanosecond())
	assert.True(t, got.Equal(in.Truncate(time.Second)))
}
