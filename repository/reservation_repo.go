package repository

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
)

type ReservationFilter struct {
	TableID *uint
	Status  *models.ReservationStatus
	From    *time.Time
	To      *time.Time
}

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	ActiveIDsForTable(ctx context.Context, tableID uint) ([]uint, error)
	ConflictingTableIDs(ctx context.Context, from, to time.Time) ([]uint, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReservationStatus) error
	GetDB() *gorm.DB
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, reservation *models.Reservation) error {
	return tx.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	var reservations []models.Reservation
	q := r.db.WithContext(ctx)
	if filter.TableID != nil {
		q = q.Where("table_id = ?", *filter.TableID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		q = q.Where("reservation_date >= ?", models.NormalizeReservationTime(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("reservation_date <= ?", models.NormalizeReservationTime(*filter.To))
	}
	if err := q.Order("reservation_date ASC, id ASC").Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ActiveIDsForTable returns the reservations that keep tableID from being deleted.
func (r *reservationRepository) ActiveIDsForTable(ctx context.Context, tableID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("table_id = ? AND status IN ?", tableID, models.ActiveReservationStatuses).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// ConflictingTableIDs returns the distinct tables holding a confirmed reservation
// with reservation_date in [from, to], both ends inclusive.
func (r *reservationRepository) ConflictingTableIDs(ctx context.Context, from, to time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("status = ?", models.ReservationConfirmed).
		Where("reservation_date >= ? AND reservation_date <= ?",
			models.NormalizeReservationTime(from), models.NormalizeReservationTime(to)).
		Distinct().
		Pluck("table_id", &ids).Error
	return ids, err
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReservationStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
