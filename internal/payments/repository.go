package payments

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atlastours/internal/shared/apperrors"
)

type Repository interface {
	// CreateIfNoActive inserts a payment, enforcing the one-active-payment
	// invariant. A pre-check catches the common case; the partial unique index
	// on (booking_id) WHERE status IN ('PENDING','PENDING_REVIEW') closes the
	// race window, and its violation is returned as a ConflictError.
	CreateIfNoActive(ctx context.Context, payment *Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetLiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
	List(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error)

	// UpdateStatusIf performs a compare-and-set status transition. Returns
	// whether the row was updated.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error)

	// FindStalePending returns PENDING payments created before cutoff, for the
	// expiry sweep.
	FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateIfNoActive(ctx context.Context, payment *Payment) error {
	var liveCount int64
	err := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("booking_id = ?", payment.BookingID).
		Where("status IN ?", []Status{StatusPending, StatusPendingReview}).
		Count(&liveCount).Error
	if err != nil {
		return err
	}
	if liveCount > 0 {
		return apperrors.NewConflict("booking already has an active payment")
	}

	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent create; the partial index held.
			return apperrors.NewConflict("booking already has an active payment")
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetLiveByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Where("status IN ?", []Status{StatusPending, StatusPendingReview}).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) List(ctx context.Context, query PaymentListQuery) ([]Payment, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Payment{})

	if query.Status != "" {
		baseQuery = baseQuery.Where("status = ?", query.Status)
	}
	if query.Method != "" {
		baseQuery = baseQuery.Where("method = ?", query.Method)
	}
	if query.BookingID != "" {
		if bookingID, err := uuid.Parse(query.BookingID); err == nil {
			baseQuery = baseQuery.Where("booking_id = ?", bookingID)
		}
	}
	if query.Email != "" {
		baseQuery = baseQuery.Where("customer_email = ?", query.Email)
	}

	var totalCount int64
	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var payments []Payment
	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&payments).Error

	return payments, totalCount, err
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = target
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// CalculateTotalPages computes page count for paginated listings.
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
