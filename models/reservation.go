package models

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no-show"

	// ReservationPending is never written by this service; rows imported from the
	// previous booking system may still carry it.
	ReservationPending ReservationStatus = "pending"
)

// ActiveReservationStatuses block deletion of the referenced table.
var ActiveReservationStatuses = []ReservationStatus{ReservationConfirmed, ReservationPending}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationConfirmed, ReservationCancelled, ReservationCompleted, ReservationNoShow:
		return true
	}
	return false
}

type Reservation struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	TableID         uint              `gorm:"not null;index" json:"table"`
	CustomerName    string            `gorm:"type:varchar(255);not null" json:"customerName"`
	CustomerPhone   string            `gorm:"type:varchar(50);not null" json:"customerPhone"`
	CustomerEmail   string            `gorm:"type:varchar(255)" json:"customerEmail"`
	ReservationDate time.Time         `gorm:"not null;index" json:"reservationDate"`
	PartySize       int               `gorm:"not null" json:"partySize"`
	SpecialRequests string            `gorm:"type:text" json:"specialRequests"`
	Status          ReservationStatus `gorm:"type:varchar(20);not null;default:'confirmed';index" json:"status"`
	CreatedAt       time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updatedAt"`
}

func (r *Reservation) Validate() error {
	if r.CustomerName == "" {
		return fmt.Errorf("customerName is required")
	}
	if r.CustomerPhone == "" {
		return fmt.Errorf("customerPhone is required")
	}
	if r.ReservationDate.IsZero() {
		return fmt.Errorf("reservationDate is required")
	}
	if r.PartySize < 1 {
		return fmt.Errorf("partySize must be at least 1")
	}
	return nil
}

// NormalizeReservationTime stores reservation instants in UTC at second precision
// so window comparisons behave the same on every driver.
func NormalizeReservationTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
