package repository

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
)

type TableFilter struct {
	Status      *models.TableStatus
	Location    *models.TableLocation
	MinCapacity *int
}

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	FindByID(ctx context.Context, id uint) (*models.Table, error)
	ExistsByNumber(ctx context.Context, number int, excludeID uint) (bool, error)
	List(ctx context.Context, filter TableFilter) ([]models.Table, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) (bool, error)
	CountByStatus(ctx context.Context) (map[models.TableStatus]int64, error)
	ReserveIfAvailable(ctx context.Context, tx *gorm.DB, id uint, partySize int) (bool, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TableStatus) error
	GetDB() *gorm.DB
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *tableRepository) FindByID(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := r.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

// ExistsByNumber reports whether another table already uses number.
// excludeID 0 checks every table.
func (r *tableRepository) ExistsByNumber(ctx context.Context, number int, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Table{}).Where("table_number = ?", number)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *tableRepository) List(ctx context.Context, filter TableFilter) ([]models.Table, error) {
	var tables []models.Table
	q := r.db.WithContext(ctx)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Location != nil {
		q = q.Where("location = ?", *filter.Location)
	}
	if filter.MinCapacity != nil {
		q = q.Where("capacity >= ?", *filter.MinCapacity)
	}
	if err := q.Order("table_number ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *tableRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *tableRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Table{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *tableRepository) CountByStatus(ctx context.Context) (map[models.TableStatus]int64, error) {
	var rows []struct {
		Status models.TableStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Table{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TableStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ReserveIfAvailable flips the table to reserved only if it is still available
// and large enough. It returns false when no row matched.
func (r *tableRepository) ReserveIfAvailable(ctx context.Context, tx *gorm.DB, id uint, partySize int) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ? AND status = ? AND capacity >= ?", id, models.TableAvailable, partySize).
		Updates(map[string]interface{}{
			"status":     models.TableReserved,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *tableRepository) SetStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TableStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
