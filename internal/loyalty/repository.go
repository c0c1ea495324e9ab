package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	CreateAccrual(ctx context.Context, accrual *Accrual) (bool, error)
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Accrual, error)
	TotalPointsForCustomer(ctx context.Context, email string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateAccrual inserts an accrual, ignoring the write when one already exists
// for the booking. Returns whether a new row was created.
func (r *repository) CreateAccrual(ctx context.Context, accrual *Accrual) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_id"}},
			DoNothing: true,
		}).
		Create(accrual)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*Accrual, error) {
	var accrual Accrual
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&accrual).Error
	if err != nil {
		return nil, err
	}
	return &accrual, nil
}

func (r *repository) TotalPointsForCustomer(ctx context.Context, email string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&Accrual{}).
		Where("customer_email = ?", email).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}
