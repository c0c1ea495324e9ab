package loyalty

import (
	"time"

	"github.com/google/uuid"
)

// PointsPerDirham is the accrual rate: one point per 10 units of total price.
const PointsPerDirham = 10

// Accrual records a one-time loyalty grant for a confirmed booking. The unique
// booking_id is what makes double confirmation unable to double-accrue.
type Accrual struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	CustomerEmail string    `gorm:"index;not null" json:"customer_email"`
	Points        int64     `gorm:"not null" json:"points"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName sets the table name for Accrual
func (Accrual) TableName() string {
	return "loyalty_accruals"
}

// PointsForTotal converts a settled booking total into loyalty points.
func PointsForTotal(total float64) int64 {
	if total <= 0 {
		return 0
	}
	return int64(total / PointsPerDirham)
}
