package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/metrics"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/repository"
	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

// AvailabilityWindow is how far either side of a requested instant an existing
// confirmed reservation still blocks its table. Both bounds are inclusive.
const AvailabilityWindow = 2 * time.Hour

type CreateReservationInput struct {
	TableID         uint
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	SpecialRequests string
	ReservationDate time.Time
	PartySize       int
}

type AvailabilityResult struct {
	AvailableTables []models.Table `json:"availableTables"`
	TotalAvailable  int            `json:"totalAvailable"`
}

type ReservationService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	CheckAvailability(ctx context.Context, at time.Time, partySize int) (*AvailabilityResult, error)
	ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error)
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id uint, status models.ReservationStatus) (*models.Reservation, error)
}

type reservationService struct {
	tables       repository.TableRepository
	reservations repository.ReservationRepository
	events       EventPublisher
}

func NewReservationService(
	tables repository.TableRepository,
	reservations repository.ReservationRepository,
	events EventPublisher,
) ReservationService {
	if events == nil {
		events = nopPublisher{}
	}
	return &reservationService{
		tables:       tables,
		reservations: reservations,
		events:       events,
	}
}

// CreateReservation books a table that is available and large enough and marks
// it reserved. The status flip is a conditional write inside the same transaction
// as the insert, so a concurrent booking of the same table makes one of the two
// fail instead of leaving two confirmed reservations.
func (s *reservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (res *models.Reservation, err error) {
	defer func() { metrics.RecordReservationOperation("create", outcome(err)) }()

	reservation := &models.Reservation{
		TableID:         in.TableID,
		CustomerName:    in.CustomerName,
		CustomerPhone:   in.CustomerPhone,
		CustomerEmail:   in.CustomerEmail,
		SpecialRequests: in.SpecialRequests,
		ReservationDate: models.NormalizeReservationTime(in.ReservationDate),
		PartySize:       in.PartySize,
		Status:          models.ReservationConfirmed,
	}
	table, err := s.tables.FindByID(ctx, in.TableID)
	if err != nil {
		return nil, storeError(err, "Table not found", "Error creating reservation")
	}
	if err := reservation.Validate(); err != nil {
		return nil, validation(err)
	}
	if e := checkReservable(table, in.PartySize); e != nil {
		return nil, e
	}

	err = s.tables.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.tables.ReserveIfAvailable(ctx, tx, table.ID, in.PartySize)
		if err != nil {
			return err
		}
		if !ok {
			// Someone changed the table since we read it; report what it looks like now.
			var current models.Table
			if err := tx.WithContext(ctx).First(&current, table.ID).Error; err != nil {
				return storeError(err, "Table not found", "Error creating reservation")
			}
			if e := checkReservable(&current, in.PartySize); e != nil {
				return e
			}
			return newError(KindInvalidState, "Table is not available for reservation", nil)
		}

		return s.reservations.Create(ctx, tx, reservation)
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, svcErr
		}
		return nil, internal("Error creating reservation", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"table_id":       reservation.TableID,
		"party_size":     reservation.PartySize,
		"at":             reservation.ReservationDate.Format(time.RFC3339),
	}).Info("Reservation created")

	table.Status = models.TableReserved
	s.events.Publish(hub.EventReservationCreate, map[string]interface{}{
		"reservation": reservation,
		"table":       table,
	})
	return reservation, nil
}

// checkReservable applies the reservation preconditions in order: the table
// must be available, then big enough for the party.
func checkReservable(table *models.Table, partySize int) *Error {
	if table.Status != models.TableAvailable {
		return newError(KindInvalidState, "Table is not available for reservation", nil)
	}
	if err := models.TransitionTableStatus(table.Status, models.TableReserved); err != nil {
		return newError(KindInvalidState, "Table is not available for reservation", err)
	}
	if partySize > table.Capacity {
		return newError(KindCapacityExceeded, "Party size exceeds table capacity", nil)
	}
	return nil
}

// CheckAvailability lists available tables that fit partySize and have no
// confirmed reservation within AvailabilityWindow of at.
func (s *reservationService) CheckAvailability(ctx context.Context, at time.Time, partySize int) (*AvailabilityResult, error) {
	defer metrics.TrackAvailabilityCheck()(time.Now())

	if partySize < 1 {
		return nil, validation(fmt.Errorf("partySize must be at least 1"))
	}

	status := models.TableAvailable
	candidates, err := s.tables.List(ctx, repository.TableFilter{
		Status:      &status,
		MinCapacity: &partySize,
	})
	if err != nil {
		return nil, internal("Error checking availability", err)
	}

	conflicts, err := s.reservations.ConflictingTableIDs(ctx, at.Add(-AvailabilityWindow), at.Add(AvailabilityWindow))
	if err != nil {
		return nil, internal("Error checking availability", err)
	}

	blocked := make(map[uint]struct{}, len(conflicts))
	for _, id := range conflicts {
		blocked[id] = struct{}{}
	}

	available := make([]models.Table, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := blocked[t.ID]; !ok {
			available = append(available, t)
		}
	}

	return &AvailabilityResult{
		AvailableTables: available,
		TotalAvailable:  len(available),
	}, nil
}

func (s *reservationService) ListReservations(ctx context.Context, filter repository.ReservationFilter) ([]models.Reservation, error) {
	if filter.Status != nil && !filter.Status.Valid() && *filter.Status != models.ReservationPending {
		return nil, validation(fmt.Errorf("unknown reservation status %q", *filter.Status))
	}
	reservations, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, internal("Error fetching reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Reservation not found", "Error fetching reservation")
	}
	return reservation, nil
}

// UpdateReservationStatus closes a confirmed reservation as cancelled, completed
// or no-show. Closing it hands a still-reserved table back to available.
func (s *reservationService) UpdateReservationStatus(ctx context.Context, id uint, status models.ReservationStatus) (res *models.Reservation, err error) {
	defer func() { metrics.RecordReservationOperation("update_status", outcome(err)) }()

	if !status.Valid() {
		return nil, validation(fmt.Errorf("status must be one of confirmed, cancelled, completed, no-show"))
	}

	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Reservation not found", "Error updating reservation")
	}
	if reservation.Status == status {
		return reservation, nil
	}
	if reservation.Status != models.ReservationConfirmed {
		return nil, newError(KindInvalidState,
			fmt.Sprintf("Reservation is already %s", reservation.Status), nil)
	}

	released := false
	err = s.reservations.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reservations.UpdateStatus(ctx, tx, id, status); err != nil {
			return err
		}

		var table models.Table
		if err := tx.WithContext(ctx).First(&table, reservation.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if table.Status != models.TableReserved {
			return nil
		}
		if err := models.TransitionTableStatus(table.Status, models.TableAvailable); err != nil {
			return nil
		}
		released = true
		return s.tables.SetStatus(ctx, tx, table.ID, models.TableAvailable)
	})
	if err != nil {
		return nil, internal("Error updating reservation", err)
	}

	reservation, err = s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Reservation not found", "Error updating reservation")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": id,
		"status":         status,
		"table_released": released,
	}).Info("Reservation status updated")

	s.events.Publish(hub.EventReservationUpdate, map[string]interface{}{
		"reservation":   reservation,
		"tableReleased": released,
	})
	return reservation, nil
}
