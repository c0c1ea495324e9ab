package invoices

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"atlastours/internal/bookings"
	"atlastours/internal/payments"
	"atlastours/internal/shared/apperrors"
)

// BookingSource is the slice of the booking service invoices need.
type BookingSource interface {
	GetBooking(ctx context.Context, bookingID uuid.UUID) (*bookings.Booking, error)
}

// PaymentSource resolves the settled payment linked to a booking.
type PaymentSource interface {
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*payments.Payment, error)
}

// Service renders PDF invoices for confirmed bookings.
type Service interface {
	GenerateInvoice(ctx context.Context, bookingID uuid.UUID) (pdf []byte, filename string, err error)
}

type service struct {
	bookings BookingSource
	payments PaymentSource
}

func NewService(bookingSource BookingSource, paymentSource PaymentSource) Service {
	return &service{bookings: bookingSource, payments: paymentSource}
}

func (s *service) GenerateInvoice(ctx context.Context, bookingID uuid.UUID) ([]byte, string, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	// An invoice exists only once the booking is numbered.
	if !booking.IsConfirmed() && !booking.IsCompleted() {
		return nil, "", apperrors.NewInvalidState("booking", booking.Status.String(), bookings.StatusConfirmed.String())
	}

	// The settled payment stays linked through ActivePaymentID; a missing or
	// unreadable payment just leaves the method line off the document.
	method := ""
	if s.payments != nil && booking.ActivePaymentID != nil {
		if payment, err := s.payments.GetPayment(ctx, *booking.ActivePaymentID); err == nil {
			method = string(payment.Method)
		}
	}

	data, err := buildInvoicePDF(booking, method)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render invoice: %w", err)
	}

	filename := fmt.Sprintf("%s.pdf", booking.InvoiceNumber)
	return data, filename, nil
}

func buildInvoicePDF(b *bookings.Booking, paymentMethod string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ATLAS TOURS - INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, "Invoice no     : "+b.InvoiceNumber)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Reservation no : "+b.ReservationNumber)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Issued         : "+time.Now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed to:")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Name  : %s", b.CustomerName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Email : %s", b.CustomerEmail))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Phone : %s", b.CustomerPhone))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Service")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 12)
	desc := fmt.Sprintf("%s (%s), %s %s, %d passenger(s)",
		b.ServiceName, b.ServiceType, b.Date.Format("2006-01-02"), b.Time, b.Passengers)
	pdf.MultiCell(0, 7, desc, "", "", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f %s", b.Total, b.Currency))
	pdf.Ln(8)

	if paymentMethod != "" {
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 7, "Paid via: "+paymentMethod)
		pdf.Ln(10)
	} else {
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Thank you for travelling with Atlas Tours. This invoice was generated for a settled payment.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
