package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atlastours/internal/catalog"
	"atlastours/internal/shared/apperrors"
	"atlastours/pkg/logger"
)

// NumberingAuthority hands out reservation/invoice numbers (local interface to
// avoid a circular dependency and keep the confirmation path testable without
// Redis).
type NumberingAuthority interface {
	NextReservationNumber(ctx context.Context) (string, error)
	NextInvoiceNumber(ctx context.Context) (string, error)
}

// LoyaltyService accrues points on confirmation. Accrual is deduplicated on
// booking id, so re-running it is safe.
type LoyaltyService interface {
	AccrueForBooking(ctx context.Context, bookingID uuid.UUID, customerEmail string, total float64) (bool, error)
}

// NotificationPublisher emits customer-facing events.
type NotificationPublisher interface {
	PublishBookingConfirmed(ctx context.Context, email, name string, bookingID uuid.UUID, reservationNumber, invoiceNumber string, total float64, currency string) error
	PublishBookingReminder(ctx context.Context, email, name string, bookingID uuid.UUID, serviceName string) error
}

// PaymentService is the slice of the payment service needed when a booking is
// cancelled with a live payment attached. Injected via setter after both
// services exist.
type PaymentService interface {
	CancelForBooking(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// CatalogService resolves a catalog row at booking creation.
type CatalogService interface {
	GetServiceByID(ctx context.Context, id uuid.UUID) (*catalog.TourService, error)
}

// Service interface defines the contract for booking business logic
type Service interface {
	// SetPaymentService wires the payment dependency after construction (the
	// two services depend on each other).
	SetPaymentService(payments PaymentService)

	CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)
	RespondToPrice(ctx context.Context, bookingID uuid.UUID, accept bool) (*Booking, error)
	UpdateInternalNotes(ctx context.Context, bookingID uuid.UUID, notes string) error

	// Confirm is idempotent: confirming an already-confirmed booking returns
	// the existing numbers without reassigning anything.
	Confirm(ctx context.Context, bookingID uuid.UUID, total float64, currency string) (*ConfirmationResult, error)
	// ConfirmOverride is the operator path: confirm without a settled payment,
	// taking the booking's effective price as total.
	ConfirmOverride(ctx context.Context, bookingID uuid.UUID) (*ConfirmationResult, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string) error
	Complete(ctx context.Context, bookingID uuid.UUID) error

	// Engine-facing operations, consumed by the payment service through its
	// own local interface.
	InfoForPayment(ctx context.Context, bookingID uuid.UUID) (customerName, customerEmail, status string, price float64, currency string, err error)
	AttachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error
	DetachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error
	ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID, amount float64, currency string) (reservationNumber, invoiceNumber string, err error)
}

type service struct {
	repo           Repository
	numbering      NumberingAuthority
	loyalty        LoyaltyService
	notifier       NotificationPublisher
	catalogService CatalogService
	payments       PaymentService
	log            *logger.Logger
}

// NewService creates a new booking service instance. The payment service is
// injected later via SetPaymentService because the two depend on each other.
func NewService(repo Repository, numbering NumberingAuthority, loyalty LoyaltyService,
	notifier NotificationPublisher, catalogService CatalogService) Service {
	return &service{
		repo:           repo,
		numbering:      numbering,
		loyalty:        loyalty,
		notifier:       notifier,
		catalogService: catalogService,
		log:            logger.GetDefault(),
	}
}

func (s *service) SetPaymentService(payments PaymentService) {
	s.payments = payments
}

func (s *service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*Booking, error) {
	serviceType := catalog.ServiceType(req.ServiceType)
	if !serviceType.IsValid() {
		return nil, apperrors.NewValidation("invalid service type: %s", req.ServiceType)
	}
	if req.CalculatedPrice < 0 {
		return nil, apperrors.NewValidation("calculated price cannot be negative")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	booking := &Booking{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ServiceType:     string(serviceType),
		ServiceName:     "Custom request",
		Date:            date,
		Time:            req.Time,
		Passengers:      req.Passengers,
		QuotedLabel:     req.QuotedLabel,
		CalculatedPrice: req.CalculatedPrice,
		ProposedPrice:   req.ProposedPrice,
		PriceAcceptance: PriceAcceptancePending,
		Currency:        "MAD",
		Details:         req.Details,
		Status:          StatusPending,
	}
	if booking.Passengers == 0 {
		booking.Passengers = 1
	}

	if req.ServiceID != "" {
		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			return nil, apperrors.NewValidation("invalid service id")
		}
		svc, err := s.catalogService.GetServiceByID(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		if !svc.Active {
			return nil, apperrors.NewValidation("service %q is not available for booking", svc.Name)
		}
		booking.ServiceID = &serviceID
		booking.ServiceName = svc.Name
		booking.Currency = svc.Currency
		if booking.CalculatedPrice == 0 {
			booking.CalculatedPrice = svc.BasePrice
		}
	} else if serviceType != catalog.ServiceTypeCustom {
		return nil, apperrors.NewValidation("service id is required for type %s", serviceType)
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), booking.ServiceType, booking.CustomerEmail)
	return booking, nil
}

func (s *service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking not found")
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	return &BookingListResponse{
		Bookings:   bookings,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) RespondToPrice(ctx context.Context, bookingID uuid.UUID, accept bool) (*Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ProposedPrice == nil {
		return nil, apperrors.NewValidation("booking has no proposed price to respond to")
	}
	if !booking.IsPending() {
		return nil, apperrors.NewInvalidState("booking", booking.Status.String(), booking.Status.String())
	}

	if accept {
		booking.PriceAcceptance = PriceAcceptanceAccepted
	} else {
		booking.PriceAcceptance = PriceAcceptanceDeclined
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return booking, nil
}

func (s *service) UpdateInternalNotes(ctx context.Context, bookingID uuid.UUID, notes string) error {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	booking.InternalNotes = notes
	if err := s.repo.Update(ctx, booking); err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

func (s *service) Confirm(ctx context.Context, bookingID uuid.UUID, total float64, currency string) (*ConfirmationResult, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case StatusConfirmed, StatusCompleted:
		// Already done: return the existing numbers and re-run the accrual,
		// which dedupes on booking id.
		s.accrueLoyalty(ctx, booking.ID, booking.CustomerEmail, booking.Total)
		return confirmationResult(booking, true), nil
	case StatusCancelled:
		s.log.LogIllegalTransition(ctx, "booking", bookingID.String(), booking.Status.String(), StatusConfirmed.String())
		return nil, apperrors.NewInvalidState("booking", booking.Status.String(), StatusConfirmed.String())
	}

	// Numbers are drawn before the compare-and-set; a lost race leaves an
	// unused sequence value, which is harmless.
	reservationNumber, err := s.numbering.NextReservationNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign reservation number: %w", err)
	}
	invoiceNumber, err := s.numbering.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to assign invoice number: %w", err)
	}

	if currency == "" {
		currency = booking.Currency
	}
	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, StatusPending, StatusConfirmed, map[string]interface{}{
		"reservation_number": reservationNumber,
		"invoice_number":     invoiceNumber,
		"total":              total,
		"currency":           currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if !updated {
		// Lost a race. Re-read: a concurrent confirmation is success with the
		// winner's numbers, anything else is an illegal transition.
		booking, err = s.GetBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.IsConfirmed() || booking.IsCompleted() {
			s.accrueLoyalty(ctx, booking.ID, booking.CustomerEmail, booking.Total)
			return confirmationResult(booking, true), nil
		}
		s.log.LogIllegalTransition(ctx, "booking", bookingID.String(), booking.Status.String(), StatusConfirmed.String())
		return nil, apperrors.NewInvalidState("booking", booking.Status.String(), StatusConfirmed.String())
	}

	booking.Status = StatusConfirmed
	booking.ReservationNumber = reservationNumber
	booking.InvoiceNumber = invoiceNumber
	booking.Total = total
	booking.Currency = currency

	s.accrueLoyalty(ctx, booking.ID, booking.CustomerEmail, total)

	if s.notifier != nil {
		if err := s.notifier.PublishBookingConfirmed(ctx, booking.CustomerEmail, booking.CustomerName,
			booking.ID, reservationNumber, invoiceNumber, total, currency); err != nil {
			s.log.WithError(err).Warn("failed to publish booking confirmation", "booking_id", booking.ID.String())
		}
	}

	s.log.LogBookingConfirmed(ctx, booking.ID.String(), reservationNumber, invoiceNumber, total)
	return confirmationResult(booking, false), nil
}

func (s *service) ConfirmOverride(ctx context.Context, bookingID uuid.UUID) (*ConfirmationResult, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.Confirm(ctx, bookingID, booking.EffectivePrice(), booking.Currency)
}

func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID, reason string) error {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.IsCancelled() {
		return nil
	}
	if booking.IsCompleted() {
		s.log.LogIllegalTransition(ctx, "booking", bookingID.String(), booking.Status.String(), StatusCancelled.String())
		return apperrors.NewInvalidState("booking", booking.Status.String(), StatusCancelled.String())
	}

	// A live payment must not outlive its booking.
	if s.payments != nil {
		if err := s.payments.CancelForBooking(ctx, bookingID, reason); err != nil {
			return fmt.Errorf("failed to cancel live payment: %w", err)
		}
	}

	now := time.Now()
	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, booking.Status, StatusCancelled, map[string]interface{}{
		"cancellation_reason": reason,
		"cancelled_at":        now,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !updated {
		booking, err = s.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.IsCancelled() {
			return nil
		}
		s.log.LogIllegalTransition(ctx, "booking", bookingID.String(), booking.Status.String(), StatusCancelled.String())
		return apperrors.NewInvalidState("booking", booking.Status.String(), StatusCancelled.String())
	}
	return nil
}

func (s *service) Complete(ctx context.Context, bookingID uuid.UUID) error {
	updated, err := s.repo.UpdateStatusIf(ctx, bookingID, StatusConfirmed, StatusCompleted, nil)
	if err != nil {
		return fmt.Errorf("failed to complete booking: %w", err)
	}
	if !updated {
		booking, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.IsCompleted() {
			return nil
		}
		s.log.LogIllegalTransition(ctx, "booking", bookingID.String(), booking.Status.String(), StatusCompleted.String())
		return apperrors.NewInvalidState("booking", booking.Status.String(), StatusCompleted.String())
	}
	return nil
}

func (s *service) InfoForPayment(ctx context.Context, bookingID uuid.UUID) (string, string, string, float64, string, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return "", "", "", 0, "", err
	}
	return booking.CustomerName, booking.CustomerEmail, booking.Status.String(), booking.EffectivePrice(), booking.Currency, nil
}

func (s *service) AttachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	attached, err := s.repo.AttachPaymentIfNone(ctx, bookingID, paymentID)
	if err != nil {
		return fmt.Errorf("failed to attach payment: %w", err)
	}
	if !attached {
		return apperrors.NewConflict("booking already has a payment attached")
	}
	return nil
}

func (s *service) DetachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error {
	if err := s.repo.DetachPayment(ctx, bookingID, paymentID); err != nil {
		return fmt.Errorf("failed to detach payment: %w", err)
	}
	return nil
}

func (s *service) ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID, amount float64, currency string) (string, string, error) {
	result, err := s.Confirm(ctx, bookingID, amount, currency)
	if err != nil {
		return "", "", err
	}
	return result.ReservationNumber, result.InvoiceNumber, nil
}

func (s *service) accrueLoyalty(ctx context.Context, bookingID uuid.UUID, email string, total float64) {
	if s.loyalty == nil {
		return
	}
	if _, err := s.loyalty.AccrueForBooking(ctx, bookingID, email, total); err != nil {
		s.log.WithError(err).Warn("failed to accrue loyalty points", "booking_id", bookingID.String())
	}
}

func confirmationResult(b *Booking, already bool) *ConfirmationResult {
	return &ConfirmationResult{
		BookingID:         b.ID.String(),
		Status:            b.Status.String(),
		ReservationNumber: b.ReservationNumber,
		InvoiceNumber:     b.InvoiceNumber,
		Total:             b.Total,
		Currency:          b.Currency,
		AlreadyConfirmed:  already,
	}
}
