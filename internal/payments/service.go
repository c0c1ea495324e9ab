package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atlastours/internal/shared/apperrors"
	"atlastours/pkg/logger"
)

// BookingService is the slice of the booking service the reconciliation engine
// drives (local interface to avoid a circular dependency).
type BookingService interface {
	InfoForPayment(ctx context.Context, bookingID uuid.UUID) (customerName, customerEmail, status string, price float64, currency string, err error)
	AttachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error
	DetachPayment(ctx context.Context, bookingID, paymentID uuid.UUID) error
	ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID, amount float64, currency string) (reservationNumber, invoiceNumber string, err error)
}

// NotificationPublisher emits payment lifecycle events.
type NotificationPublisher interface {
	PublishPaymentUnderReview(ctx context.Context, email, name string, bookingID, paymentID uuid.UUID, method string) error
	PublishPaymentFailed(ctx context.Context, email, name string, bookingID, paymentID uuid.UUID, reason string) error
}

// Service is the reconciliation engine: it owns every legal payment status
// transition and the booking side effects each one triggers.
type Service interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, query PaymentListQuery) (*PaymentListResponse, error)

	SubmitEvidence(ctx context.Context, paymentID uuid.UUID, payload EvidencePayload) (*Payment, error)

	// Confirm settles the payment and drives the booking confirmation.
	// Confirming an already-completed payment is idempotent success returning
	// the existing booking numbers, never an error.
	Confirm(ctx context.Context, paymentID uuid.UUID, actor string) (*ConfirmResult, error)
	Reject(ctx context.Context, paymentID uuid.UUID, reason, actor string) error
	Cancel(ctx context.Context, paymentID uuid.UUID, reason string) error
	Refund(ctx context.Context, paymentID uuid.UUID, amount *float64, reason, actor string) (*Payment, error)

	// CancelForBooking cancels the booking's live payment, if any. Used when a
	// booking is cancelled and by the expiry sweep.
	CancelForBooking(ctx context.Context, bookingID uuid.UUID, reason string) error
}

type service struct {
	repo     Repository
	bookings BookingService
	notifier NotificationPublisher
	log      *logger.Logger
}

func NewService(repo Repository, bookings BookingService, notifier NotificationPublisher) Service {
	return &service{
		repo:     repo,
		bookings: bookings,
		notifier: notifier,
		log:      logger.GetDefault(),
	}
}

func (s *service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	method := Method(req.Method)
	if !method.IsValid() {
		return nil, apperrors.NewValidation("invalid payment method: %s", req.Method)
	}
	if req.Amount < MinAmount {
		return nil, apperrors.NewValidation("amount must be at least %.2f", MinAmount)
	}
	currency := req.Currency
	if currency == "" {
		currency = "MAD"
	}
	if !IsValidCurrency(currency) {
		return nil, apperrors.NewValidation("invalid currency: %s", currency)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid booking id")
	}

	customerName, customerEmail, bookingStatus, _, _, err := s.bookings.InfoForPayment(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bookingStatus != "PENDING" {
		return nil, apperrors.NewConflict("booking is not awaiting payment (status %s)", bookingStatus)
	}

	var evidence *Evidence
	if req.Evidence != nil {
		evidence = evidenceFromPayload(*req.Evidence)
		if err := validateEvidence(method, evidence); err != nil {
			return nil, err
		}
	}

	payment := &Payment{
		BookingID:     bookingID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Method:        method,
		Amount:        req.Amount,
		Currency:      currency,
		Status:        StatusPending,
		Evidence:      evidence,
		Notes:         req.Notes,
	}

	if err := s.repo.CreateIfNoActive(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.bookings.AttachPayment(ctx, bookingID, payment.ID); err != nil {
		// Undo the insert so the booking is not blocked by an orphan.
		if _, cErr := s.repo.UpdateStatusIf(ctx, payment.ID, StatusPending, StatusCancelled, map[string]interface{}{
			"cancellation_reason": "failed to attach to booking",
		}); cErr != nil {
			s.log.WithError(cErr).Error("failed to cancel orphan payment", "payment_id", payment.ID.String())
		}
		return nil, err
	}

	s.log.LogPaymentTransition(ctx, payment.ID.String(), "", StatusPending.String(), "customer")
	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *service) ListPayments(ctx context.Context, query PaymentListQuery) (*PaymentListResponse, error) {
	payments, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}
	return &PaymentListResponse{
		Payments:   payments,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) SubmitEvidence(ctx context.Context, paymentID uuid.UUID, payload EvidencePayload) (*Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Method == MethodCash {
		return nil, apperrors.NewValidation("cash payments are settled directly and take no evidence")
	}
	if payment.Status != StatusPending {
		s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusPendingReview.String())
		return nil, apperrors.NewInvalidState("payment", payment.Status.String(), StatusPendingReview.String())
	}

	evidence := evidenceFromPayload(payload)
	if err := validateEvidence(payment.Method, evidence); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatusIf(ctx, paymentID, StatusPending, StatusPendingReview, map[string]interface{}{
		"evidence": evidence,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit evidence: %w", err)
	}
	if !updated {
		payment, err = s.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusPendingReview.String())
		return nil, apperrors.NewInvalidState("payment", payment.Status.String(), StatusPendingReview.String())
	}

	payment.Status = StatusPendingReview
	payment.Evidence = evidence

	s.log.LogPaymentTransition(ctx, paymentID.String(), StatusPending.String(), StatusPendingReview.String(), "customer")

	if s.notifier != nil {
		if err := s.notifier.PublishPaymentUnderReview(ctx, payment.CustomerEmail, payment.CustomerName,
			payment.BookingID, payment.ID, payment.Method.String()); err != nil {
			s.log.WithError(err).Warn("failed to publish payment-under-review", "payment_id", paymentID.String())
		}
	}

	return payment, nil
}

func (s *service) Confirm(ctx context.Context, paymentID uuid.UUID, actor string) (*ConfirmResult, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	// The compare-and-set below serializes racing confirmations: exactly one
	// caller moves the row, everyone else re-reads and either treats the
	// operation as already done or reports the illegal transition. The loop
	// terminates because statuses only move forward.
	for {
		if payment.IsCompleted() {
			return s.confirmedResult(ctx, payment, true)
		}
		if !payment.Status.CanTransitionTo(StatusCompleted) {
			s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusCompleted.String())
			return nil, apperrors.NewInvalidState("payment", payment.Status.String(), StatusCompleted.String())
		}

		now := time.Now()
		updated, err := s.repo.UpdateStatusIf(ctx, paymentID, payment.Status, StatusCompleted, map[string]interface{}{
			"processed_at": now,
			"confirmed_by": actor,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to confirm payment: %w", err)
		}
		if updated {
			s.log.LogPaymentTransition(ctx, paymentID.String(), payment.Status.String(), StatusCompleted.String(), actor)
			payment.Status = StatusCompleted
			payment.ProcessedAt = &now
			payment.ConfirmedBy = actor
			return s.confirmedResult(ctx, payment, false)
		}

		payment, err = s.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
	}
}

// confirmedResult drives the booking confirmation for a completed payment and
// assembles the caller-facing result. Booking.Confirm is idempotent, so this
// is safe to re-run: a retry after a partial failure, or the loser of a
// confirmation race, gets the same numbers as the winner.
func (s *service) confirmedResult(ctx context.Context, payment *Payment, already bool) (*ConfirmResult, error) {
	reservationNumber, invoiceNumber, err := s.bookings.ConfirmFromPayment(ctx, payment.BookingID, payment.Amount, payment.Currency)
	if err != nil {
		return nil, fmt.Errorf("payment settled but booking confirmation failed (retry confirm): %w", err)
	}
	return &ConfirmResult{
		PaymentID:         payment.ID.String(),
		BookingID:         payment.BookingID.String(),
		Status:            StatusCompleted.String(),
		ReservationNumber: reservationNumber,
		InvoiceNumber:     invoiceNumber,
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		AlreadyCompleted:  already,
	}, nil
}

func (s *service) Reject(ctx context.Context, paymentID uuid.UUID, reason, actor string) error {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	for {
		if payment.Status == StatusFailed {
			return nil
		}
		if !payment.Status.CanTransitionTo(StatusFailed) {
			s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusFailed.String())
			return apperrors.NewInvalidState("payment", payment.Status.String(), StatusFailed.String())
		}

		updated, err := s.repo.UpdateStatusIf(ctx, paymentID, payment.Status, StatusFailed, map[string]interface{}{
			"failure_reason": reason,
			"processed_at":   time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to reject payment: %w", err)
		}
		if updated {
			break
		}
		payment, err = s.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
	}

	s.log.LogPaymentTransition(ctx, paymentID.String(), payment.Status.String(), StatusFailed.String(), actor)

	// The booking stays PENDING and its payment slot is freed so the customer
	// can retry with a new payment.
	if err := s.bookings.DetachPayment(ctx, payment.BookingID, paymentID); err != nil {
		s.log.WithError(err).Warn("failed to detach rejected payment", "payment_id", paymentID.String())
	}

	if s.notifier != nil {
		if err := s.notifier.PublishPaymentFailed(ctx, payment.CustomerEmail, payment.CustomerName,
			payment.BookingID, payment.ID, reason); err != nil {
			s.log.WithError(err).Warn("failed to publish payment-failed", "payment_id", paymentID.String())
		}
	}

	return nil
}

func (s *service) Cancel(ctx context.Context, paymentID uuid.UUID, reason string) error {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	for {
		if payment.Status == StatusCancelled {
			return nil
		}
		if !payment.Status.CanTransitionTo(StatusCancelled) {
			s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusCancelled.String())
			return apperrors.NewInvalidState("payment", payment.Status.String(), StatusCancelled.String())
		}

		updated, err := s.repo.UpdateStatusIf(ctx, paymentID, payment.Status, StatusCancelled, map[string]interface{}{
			"cancellation_reason": reason,
		})
		if err != nil {
			return fmt.Errorf("failed to cancel payment: %w", err)
		}
		if updated {
			break
		}
		payment, err = s.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
	}

	s.log.LogPaymentTransition(ctx, paymentID.String(), payment.Status.String(), StatusCancelled.String(), "system")

	if err := s.bookings.DetachPayment(ctx, payment.BookingID, paymentID); err != nil {
		s.log.WithError(err).Warn("failed to detach cancelled payment", "payment_id", paymentID.String())
	}

	return nil
}

func (s *service) Refund(ctx context.Context, paymentID uuid.UUID, amount *float64, reason, actor string) (*Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.IsRefunded() {
		return payment, nil
	}
	if payment.Status != StatusCompleted {
		s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusRefunded.String())
		return nil, apperrors.NewInvalidState("payment", payment.Status.String(), StatusRefunded.String())
	}

	refundAmount := payment.Amount
	if amount != nil {
		if *amount <= 0 || *amount > payment.Amount {
			return nil, apperrors.NewValidation("refund amount must be between 0 and %.2f", payment.Amount)
		}
		refundAmount = *amount
	}

	now := time.Now()
	updated, err := s.repo.UpdateStatusIf(ctx, paymentID, StatusCompleted, StatusRefunded, map[string]interface{}{
		"refund_amount": refundAmount,
		"refund_reason": reason,
		"refund_at":     now,
		"refund_actor":  actor,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}
	if !updated {
		payment, err = s.GetPayment(ctx, paymentID)
		if err != nil {
			return nil, err
		}
		if payment.IsRefunded() {
			return payment, nil
		}
		s.log.LogIllegalTransition(ctx, "payment", paymentID.String(), payment.Status.String(), StatusRefunded.String())
		return nil, apperrors.NewInvalidState("payment", payment.Status.String(), StatusRefunded.String())
	}

	s.log.LogPaymentTransition(ctx, paymentID.String(), StatusCompleted.String(), StatusRefunded.String(), actor)

	// Refund does not imply cancellation: the booking keeps its status and
	// numbers. Reverting the booking is a separate operator action.
	payment.Status = StatusRefunded
	payment.Refund = Refund{
		Amount: &refundAmount,
		Reason: reason,
		At:     &now,
		Actor:  actor,
	}
	return payment, nil
}

func (s *service) CancelForBooking(ctx context.Context, bookingID uuid.UUID, reason string) error {
	live, err := s.repo.GetLiveByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up live payment: %w", err)
	}
	return s.Cancel(ctx, live.ID, reason)
}

func evidenceFromPayload(p EvidencePayload) *Evidence {
	return &Evidence{
		TransactionHash: p.TransactionHash,
		Network:         p.Network,
		Reference:       p.Reference,
		BankName:        p.BankName,
		SenderName:      p.SenderName,
		TransferDate:    p.TransferDate,
	}
}

// validateEvidence enforces the per-method evidence shape.
func validateEvidence(method Method, e *Evidence) error {
	switch method {
	case MethodCryptoWallet:
		if e.TransactionHash == "" || e.Network == "" {
			return apperrors.NewValidation("crypto wallet evidence requires transaction_hash and network")
		}
	case MethodBankTransfer:
		if e.Reference == "" || e.BankName == "" || e.TransferDate == "" {
			return apperrors.NewValidation("bank transfer evidence requires reference, bank_name and transfer_date")
		}
	case MethodRemittance:
		if e.Reference == "" || e.SenderName == "" || e.TransferDate == "" {
			return apperrors.NewValidation("remittance evidence requires reference, sender_name and transfer_date")
		}
	case MethodCash:
		return apperrors.NewValidation("cash payments are settled directly and take no evidence")
	}
	return nil
}
