package invoices

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"atlastours/internal/bookings"
	"atlastours/internal/payments"
	"atlastours/internal/shared/apperrors"
)

type stubBookings struct {
	booking *bookings.Booking
}

func (s *stubBookings) GetBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error) {
	if s.booking == nil || s.booking.ID != bookingID {
		return nil, apperrors.NewNotFound("booking not found")
	}
	return s.booking, nil
}

type stubPayments struct {
	payment *payments.Payment
}

func (s *stubPayments) GetPayment(ctx context.Context, paymentID uuid.UUID) (*payments.Payment, error) {
	if s.payment == nil || s.payment.ID != paymentID {
		return nil, apperrors.NewNotFound("payment not found")
	}
	return s.payment, nil
}

func confirmedBooking() *bookings.Booking {
	return &bookings.Booking{
		ID:                uuid.New(),
		CustomerName:      "Khadija Bennis",
		CustomerEmail:     "khadija@example.com",
		CustomerPhone:     "+212600000000",
		ServiceType:       "AIRPORT_TRANSFER",
		ServiceName:       "Marrakech Airport Transfer",
		Date:              time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		Time:              "10:30",
		Passengers:        2,
		Status:            bookings.StatusConfirmed,
		ReservationNumber: "RES-20260914-0007",
		InvoiceNumber:     "INV-20260914-0007",
		Total:             450,
		Currency:          "MAD",
	}
}

func TestGenerateInvoiceForConfirmedBooking(t *testing.T) {
	booking := confirmedBooking()
	settled := &payments.Payment{ID: uuid.New(), Method: payments.MethodBankTransfer}
	booking.ActivePaymentID = &settled.ID
	svc := NewService(&stubBookings{booking: booking}, &stubPayments{payment: settled})

	pdf, filename, err := svc.GenerateInvoice(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	if filename != "INV-20260914-0007.pdf" {
		t.Errorf("filename = %q, want invoice number based name", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("output does not look like a PDF document")
	}
}

func TestGenerateInvoiceRequiresConfirmedBooking(t *testing.T) {
	booking := confirmedBooking()
	booking.Status = bookings.StatusPending
	booking.ReservationNumber = ""
	booking.InvoiceNumber = ""
	svc := NewService(&stubBookings{booking: booking}, nil)

	_, _, err := svc.GenerateInvoice(context.Background(), booking.ID)
	if !apperrors.IsInvalidState(err) {
		t.Fatalf("got %v, want InvalidStateError", err)
	}
}

func TestGenerateInvoiceUnknownBooking(t *testing.T) {
	svc := NewService(&stubBookings{}, nil)

	_, _, err := svc.GenerateInvoice(context.Background(), uuid.New())
	if !apperrors.IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}
