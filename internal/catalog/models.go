package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType enumerates the kinds of bookable services the platform sells.
type ServiceType string

const (
	ServiceTypeAirportTransfer ServiceType = "AIRPORT_TRANSFER"
	ServiceTypeIntercity       ServiceType = "INTERCITY"
	ServiceTypeHourly          ServiceType = "HOURLY"
	ServiceTypeCustom          ServiceType = "CUSTOM"
	ServiceTypeVehicleRental   ServiceType = "VEHICLE_RENTAL"
)

func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeAirportTransfer, ServiceTypeIntercity, ServiceTypeHourly,
		ServiceTypeCustom, ServiceTypeVehicleRental:
		return true
	}
	return false
}

func (t ServiceType) String() string {
	return string(t)
}

// TourService is a bookable offering: a transfer route, a circuit, an hourly
// hire package or a rentable vehicle.
type TourService struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Type        ServiceType `gorm:"type:varchar(30);index;not null" json:"type"`
	Name        string      `gorm:"not null" json:"name"`
	Slug        string      `gorm:"uniqueIndex;not null" json:"slug"`
	Description string      `json:"description,omitempty"`
	BasePrice   float64     `gorm:"not null" json:"base_price"`
	Currency    string      `gorm:"type:varchar(4);default:'MAD'" json:"currency"`
	// DurationMinutes is informational; hourly hires price per started hour.
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	Capacity        int       `gorm:"default:4" json:"capacity"`
	Active          bool      `gorm:"default:true;index" json:"active"`
	CreatedBy       uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name for TourService
func (TourService) TableName() string {
	return "tour_services"
}
