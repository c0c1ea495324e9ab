package bookings

import (
	"time"

	"github.com/google/uuid"
)

// PriceAcceptance tracks what happened to a proposed (negotiated) price.
type PriceAcceptance string

const (
	PriceAcceptancePending  PriceAcceptance = "PENDING"
	PriceAcceptanceAccepted PriceAcceptance = "ACCEPTED"
	PriceAcceptanceDeclined PriceAcceptance = "DECLINED"
)

// Booking is a customer's reservation of a transport, circuit or vehicle
// service. Reservation and invoice numbers are assigned exactly once, at the
// moment the booking becomes CONFIRMED.
type Booking struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	// Customer contact
	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerEmail string `gorm:"index;not null" json:"customer_email"`
	CustomerPhone string `gorm:"not null" json:"customer_phone"`

	// Service reference. ServiceID is nil for CUSTOM requests that have no
	// catalog row; ServiceName and ServiceType are snapshots taken at creation.
	ServiceType string     `gorm:"type:varchar(30);not null" json:"service_type"`
	ServiceID   *uuid.UUID `gorm:"type:uuid;index" json:"service_id,omitempty"`
	ServiceName string     `gorm:"not null" json:"service_name"`

	// Schedule
	Date       time.Time `gorm:"not null" json:"date"`
	Time       string    `gorm:"type:varchar(5)" json:"time"`
	Passengers int       `gorm:"default:1" json:"passengers"`

	// Pricing. QuotedLabel is the human-readable quote shown to the customer
	// ("from 400 MAD"); CalculatedPrice is the system price; ProposedPrice is a
	// negotiated counter-offer, only effective once accepted.
	QuotedLabel     string          `json:"quoted_label,omitempty"`
	CalculatedPrice float64         `gorm:"not null" json:"calculated_price"`
	ProposedPrice   *float64        `json:"proposed_price,omitempty"`
	PriceAcceptance PriceAcceptance `gorm:"type:varchar(10);default:'PENDING'" json:"price_acceptance"`
	Currency        string          `gorm:"type:varchar(4);default:'MAD'" json:"currency"`

	Details string `json:"details,omitempty"`

	Status Status `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED');default:'PENDING'" json:"status"`

	// Assigned once, on confirmation. Empty until then.
	ReservationNumber string `gorm:"type:varchar(32);default:''" json:"reservation_number,omitempty"`
	InvoiceNumber     string `gorm:"type:varchar(32);default:''" json:"invoice_number,omitempty"`

	// Total is set from the settled payment amount, no earlier.
	Total float64 `gorm:"default:0" json:"total"`

	// ActivePaymentID links the live (or settled) payment attempt.
	ActivePaymentID *uuid.UUID `gorm:"type:uuid" json:"active_payment_id,omitempty"`

	InternalNotes      string     `json:"-"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	LastReminderAt     *time.Time `json:"last_reminder_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsCompleted() bool {
	return b.Status == StatusCompleted
}

// HasNumbers reports whether reservation/invoice numbers were assigned, which
// happens if and only if the booking has reached CONFIRMED at least once.
func (b *Booking) HasNumbers() bool {
	return b.ReservationNumber != "" && b.InvoiceNumber != ""
}

// EffectivePrice is the price a payment should settle: the accepted proposed
// price when one exists, the calculated price otherwise.
func (b *Booking) EffectivePrice() float64 {
	if b.ProposedPrice != nil && b.PriceAcceptance == PriceAcceptanceAccepted {
		return *b.ProposedPrice
	}
	return b.CalculatedPrice
}
