package bookings

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	Update(ctx context.Context, booking *Booking) error

	// UpdateStatusIf performs a compare-and-set status transition: the update
	// applies only if the row is still in the expected status. Returns whether
	// the row was updated, so concurrent callers can tell who won.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error)

	// AttachPaymentIfNone links a payment only when no payment is linked yet.
	AttachPaymentIfNone(ctx context.Context, bookingID, paymentID uuid.UUID) (bool, error)
	// DetachPayment clears the link, but only if it still points at paymentID.
	DetachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error

	// CountConfirmed counts bookings that have ever been confirmed (status
	// CONFIRMED or COMPLETED). Seeds the numbering counter.
	CountConfirmed(ctx context.Context) (int64, error)

	// FindPendingForReminder returns PENDING bookings created before cutoff
	// whose last reminder (if any) is also older than cutoff.
	FindPendingForReminder(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error)
	StampReminder(ctx context.Context, id uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).Model(&Booking{})
	baseQuery = r.applyFilters(baseQuery, query)

	var totalCount int64
	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error

	return bookings, totalCount, err
}

func (r *repository) Update(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = target
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) AttachPaymentIfNone(ctx context.Context, bookingID, paymentID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND active_payment_id IS NULL", bookingID).
		Updates(map[string]interface{}{
			"active_payment_id": paymentID,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) DetachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND active_payment_id = ?", bookingID, paymentID).
		Updates(map[string]interface{}{
			"active_payment_id": nil,
			"updated_at":        time.Now(),
		}).Error
}

func (r *repository) CountConfirmed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("status IN ?", []Status{StatusConfirmed, StatusCompleted}).
		Count(&count).Error
	return count, err
}

func (r *repository) FindPendingForReminder(ctx context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Where("created_at < ?", cutoff).
		Where("last_reminder_at IS NULL OR last_reminder_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) StampReminder(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("last_reminder_at", at).Error
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.Email != "" {
		query = query.Where("customer_email = ?", filters.Email)
	}

	if filters.ServiceType != "" {
		query = query.Where("service_type = ?", filters.ServiceType)
	}

	if filters.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", filters.DateFrom); err == nil {
			query = query.Where("created_at >= ?", dateFrom)
		}
	}

	if filters.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", filters.DateTo); err == nil {
			// Add 23:59:59 to include the entire day
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			query = query.Where("created_at <= ?", dateTo)
		}
	}

	return query
}

// CalculateTotalPages computes page count for paginated listings.
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
