package models

import (
	"fmt"
	"time"
)

type TableStatus string

const (
	TableAvailable    TableStatus = "available"
	TableOccupied     TableStatus = "occupied"
	TableReserved     TableStatus = "reserved"
	TableOutOfService TableStatus = "out-of-service"
)

type TableLocation string

const (
	LocationMainDining  TableLocation = "main-dining"
	LocationPatio       TableLocation = "patio"
	LocationPrivateRoom TableLocation = "private-room"
	LocationBar         TableLocation = "bar"
)

const (
	MinTableCapacity = 1
	MaxTableCapacity = 20
)

var tableStatuses = []TableStatus{TableAvailable, TableOccupied, TableReserved, TableOutOfService}

var tableLocations = []TableLocation{LocationMainDining, LocationPatio, LocationPrivateRoom, LocationBar}

// tableTransitions lists, per current status, the statuses a table may move to.
// Every path that changes Table.Status goes through TransitionTableStatus.
var tableTransitions = map[TableStatus][]TableStatus{
	TableAvailable:    tableStatuses,
	TableOccupied:     tableStatuses,
	TableReserved:     tableStatuses,
	TableOutOfService: tableStatuses,
}

func (s TableStatus) Valid() bool {
	for _, known := range tableStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (l TableLocation) Valid() bool {
	for _, known := range tableLocations {
		if l == known {
			return true
		}
	}
	return false
}

// TransitionTableStatus reports whether a table in status from may be moved to status to.
func TransitionTableStatus(from, to TableStatus) error {
	if !to.Valid() {
		return fmt.Errorf("unknown table status %q", to)
	}
	for _, allowed := range tableTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("table cannot move from %q to %q", from, to)
}

type Table struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	TableNumber      int           `gorm:"not null;uniqueIndex" json:"tableNumber"`
	Location         TableLocation `gorm:"type:varchar(20);not null" json:"location"`
	Capacity         int           `gorm:"not null" json:"capacity"`
	Status           TableStatus   `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	AssignedServerID *uint         `gorm:"index" json:"-"`
	QRCode           *string       `gorm:"type:varchar(255);uniqueIndex" json:"qrCode,omitempty"`
	CreatedAt        time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt        time.Time     `gorm:"not null" json:"updatedAt"`
}

// Validate checks the fields a caller supplies when creating or editing a table.
func (t *Table) Validate() error {
	if t.TableNumber < 1 {
		return fmt.Errorf("tableNumber must be a positive integer")
	}
	if !t.Location.Valid() {
		return fmt.Errorf("location must be one of %v", tableLocations)
	}
	if t.Capacity < MinTableCapacity || t.Capacity > MaxTableCapacity {
		return fmt.Errorf("capacity must be between %d and %d", MinTableCapacity, MaxTableCapacity)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("status must be one of %v", tableStatuses)
	}
	return nil
}

type ServerRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// TableView is a Table with its assigned server resolved to a display name.
type TableView struct {
	Table
	AssignedServer *ServerRef `json:"assignedServer"`
}

type TableStats struct {
	Available    int64 `json:"available"`
	Occupied     int64 `json:"occupied"`
	Reserved     int64 `json:"reserved"`
	OutOfService int64 `json:"outOfService"`
	Total        int64 `json:"total"`
}
