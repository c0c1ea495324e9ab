package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed   NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingReminder    NotificationType = "BOOKING_REMINDER"
	NotificationTypePaymentUnderReview NotificationType = "PAYMENT_UNDER_REVIEW"
	NotificationTypePaymentFailed      NotificationType = "PAYMENT_FAILED"
)

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "LOW"
	NotificationPriorityMedium NotificationPriority = "MEDIUM"
	NotificationPriorityHigh   NotificationPriority = "HIGH"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is the event payload published for the delivery service.
// Email/in-app delivery happens downstream; this service only publishes.
type Notification struct {
	ID       uuid.UUID            `json:"id"`
	Type     NotificationType     `json:"type"`
	Priority NotificationPriority `json:"priority"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	BookingID *uuid.UUID `json:"booking_id,omitempty"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`

	Status    NotificationStatus `json:"status"`
	LastError *string            `json:"last_error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type NotificationBuilder struct {
	notification *Notification
}

func NewNotificationBuilder() *NotificationBuilder {
	return &NotificationBuilder{
		notification: &Notification{
			ID:           uuid.New(),
			Status:       NotificationStatusPending,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
			TemplateData: make(map[string]interface{}),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	nb.notification.Priority = GetDefaultPriority(notType)
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	nb.notification.Subject = subject
	return nb
}

func (nb *NotificationBuilder) WithTemplateData(data map[string]interface{}) *NotificationBuilder {
	nb.notification.TemplateData = data
	return nb
}

func (nb *NotificationBuilder) WithBookingContext(bookingID uuid.UUID) *NotificationBuilder {
	nb.notification.BookingID = &bookingID
	return nb
}

func (nb *NotificationBuilder) WithPaymentContext(paymentID uuid.UUID) *NotificationBuilder {
	nb.notification.PaymentID = &paymentID
	return nb
}

func (nb *NotificationBuilder) Build() *Notification {
	return nb.notification
}

func GetDefaultPriority(notType NotificationType) NotificationPriority {
	switch notType {
	case NotificationTypeBookingConfirmed, NotificationTypePaymentFailed:
		return NotificationPriorityHigh
	case NotificationTypePaymentUnderReview:
		return NotificationPriorityMedium
	case NotificationTypeBookingReminder:
		return NotificationPriorityLow
	default:
		return NotificationPriorityMedium
	}
}

// GetPartitionKey routes all of one recipient's notifications to one partition.
func (n *Notification) GetPartitionKey() string {
	return n.RecipientEmail
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
