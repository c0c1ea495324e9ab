package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"atlastours/internal/catalog"
	"atlastours/internal/shared/apperrors"
)

type memRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *memRepo) Create(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memRepo) List(_ context.Context, _ BookingListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) Update(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings[booking.ID] = &cp
	return nil
}

func (r *memRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.Status != expected {
		return false, nil
	}
	b.Status = target
	for k, v := range updates {
		switch k {
		case "reservation_number":
			b.ReservationNumber = v.(string)
		case "invoice_number":
			b.InvoiceNumber = v.(string)
		case "total":
			b.Total = v.(float64)
		case "currency":
			b.Currency = v.(string)
		case "cancellation_reason":
			b.CancellationReason = v.(string)
		case "cancelled_at":
			t := v.(time.Time)
			b.CancelledAt = &t
		}
	}
	return true, nil
}

func (r *memRepo) AttachPaymentIfNone(_ context.Context, bookingID, paymentID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok || b.ActivePaymentID != nil {
		return false, nil
	}
	b.ActivePaymentID = &paymentID
	return true, nil
}

func (r *memRepo) DetachPayment(_ context.Context, bookingID, paymentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[bookingID]; ok && b.ActivePaymentID != nil && *b.ActivePaymentID == paymentID {
		b.ActivePaymentID = nil
	}
	return nil
}

func (r *memRepo) CountConfirmed(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed || b.Status == StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) FindPendingForReminder(_ context.Context, cutoff time.Time, limit int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.Status == StatusPending && b.CreatedAt.Before(cutoff) && len(out) < limit {
			if b.LastReminderAt == nil || b.LastReminderAt.Before(cutoff) {
				out = append(out, *b)
			}
		}
	}
	return out, nil
}

func (r *memRepo) StampReminder(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		b.LastReminderAt = &at
	}
	return nil
}

// seqNumbering hands out strictly increasing numbers; safe under concurrency.
type seqNumbering struct {
	mu  sync.Mutex
	seq int
}

func (n *seqNumbering) NextReservationNumber(context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	return fmt.Sprintf("RES-20260831-%04d", n.seq), nil
}

func (n *seqNumbering) NextInvoiceNumber(context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	return fmt.Sprintf("INV-20260831-%04d", n.seq), nil
}

// countingLoyalty dedupes on booking id, like the real accrual table.
type countingLoyalty struct {
	mu       sync.Mutex
	accrued  map[uuid.UUID]bool
	accruals int
}

func newCountingLoyalty() *countingLoyalty {
	return &countingLoyalty{accrued: make(map[uuid.UUID]bool)}
}

func (l *countingLoyalty) AccrueForBooking(_ context.Context, bookingID uuid.UUID, _ string, _ float64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.accrued[bookingID] {
		return false, nil
	}
	l.accrued[bookingID] = true
	l.accruals++
	return true, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed int
	reminders int
}

func (n *recordingNotifier) PublishBookingConfirmed(context.Context, string, string, uuid.UUID, string, string, float64, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed++
	return nil
}

func (n *recordingNotifier) PublishBookingReminder(context.Context, string, string, uuid.UUID, string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders++
	return nil
}

type stubCatalog struct {
	services map[uuid.UUID]*catalog.TourService
}

func (c *stubCatalog) GetServiceByID(_ context.Context, id uuid.UUID) (*catalog.TourService, error) {
	if svc, ok := c.services[id]; ok {
		return svc, nil
	}
	return nil, apperrors.NewNotFound("service not found")
}

type noopPayments struct{ cancelled int }

func (p *noopPayments) CancelForBooking(context.Context, uuid.UUID, string) error {
	p.cancelled++
	return nil
}

func newTestService() (Service, *memRepo, *countingLoyalty, *recordingNotifier) {
	repo := newMemRepo()
	loyalty := newCountingLoyalty()
	notifier := &recordingNotifier{}
	svc := NewService(repo, &seqNumbering{}, loyalty, notifier, &stubCatalog{})
	return svc, repo, loyalty, notifier
}

func createTestBooking(t *testing.T, svc Service) *Booking {
	t.Helper()
	booking, err := svc.CreateBooking(context.Background(), CreateBookingRequest{
		CustomerName:    "Yassine Alami",
		CustomerEmail:   "yassine@example.com",
		CustomerPhone:   "+212600000000",
		ServiceType:     "CUSTOM",
		Date:            "2026-09-15",
		Time:            "09:30",
		Passengers:      3,
		CalculatedPrice: 1000,
		Details:         "Agadir circuit, 3 days",
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	return booking
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CreateBooking(ctx, CreateBookingRequest{
		CustomerName: "A", CustomerEmail: "a@b.c", CustomerPhone: "123456",
		ServiceType: "HELICOPTER", Date: "2026-09-15", CalculatedPrice: 10,
	}); !apperrors.IsValidation(err) {
		t.Errorf("unknown service type: got %v, want ValidationError", err)
	}

	if _, err := svc.CreateBooking(ctx, CreateBookingRequest{
		CustomerName: "A", CustomerEmail: "a@b.c", CustomerPhone: "123456",
		ServiceType: "CUSTOM", Date: "15/09/2026", CalculatedPrice: 10,
	}); !apperrors.IsValidation(err) {
		t.Errorf("bad date: got %v, want ValidationError", err)
	}

	// Non-custom bookings must reference a catalog service.
	if _, err := svc.CreateBooking(ctx, CreateBookingRequest{
		CustomerName: "A", CustomerEmail: "a@b.c", CustomerPhone: "123456",
		ServiceType: "INTERCITY", Date: "2026-09-15", CalculatedPrice: 10,
	}); !apperrors.IsValidation(err) {
		t.Errorf("missing service id: got %v, want ValidationError", err)
	}

	booking := createTestBooking(t, svc)
	if booking.Status != StatusPending {
		t.Errorf("new booking status = %s, want PENDING", booking.Status)
	}
	if booking.HasNumbers() {
		t.Error("new booking must not have reservation/invoice numbers")
	}
}

func TestConfirmAssignsNumbersOnce(t *testing.T) {
	svc, _, loyalty, notifier := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	result, err := svc.Confirm(ctx, booking.ID, 1000, "MAD")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if result.AlreadyConfirmed {
		t.Error("first confirm must not be already-confirmed")
	}
	if result.ReservationNumber == "" || result.InvoiceNumber == "" {
		t.Fatal("numbers not assigned")
	}
	if result.Total != 1000 {
		t.Errorf("total = %v, want 1000", result.Total)
	}

	// Second confirm: same numbers, no re-assignment, no double accrual.
	again, err := svc.Confirm(ctx, booking.ID, 999, "MAD")
	if err != nil {
		t.Fatalf("re-confirm: %v", err)
	}
	if !again.AlreadyConfirmed {
		t.Error("re-confirm must report already confirmed")
	}
	if again.ReservationNumber != result.ReservationNumber || again.InvoiceNumber != result.InvoiceNumber {
		t.Error("numbers changed on re-confirm")
	}
	if again.Total != 1000 {
		t.Errorf("total changed on re-confirm: %v", again.Total)
	}
	if loyalty.accruals != 1 {
		t.Errorf("accruals = %d, want 1", loyalty.accruals)
	}
	if notifier.confirmed != 1 {
		t.Errorf("confirmation notifications = %d, want 1", notifier.confirmed)
	}
}

func TestConcurrentConfirmAssignsOneNumber(t *testing.T) {
	svc, _, loyalty, _ := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	const n = 8
	results := make([]*ConfirmationResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Confirm(ctx, booking.ID, 1000, "MAD")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("confirm %d: %v", i, errs[i])
		}
		if results[i].ReservationNumber != results[0].ReservationNumber {
			t.Errorf("confirm %d got number %q, want %q", i, results[i].ReservationNumber, results[0].ReservationNumber)
		}
	}
	if loyalty.accruals != 1 {
		t.Errorf("accruals = %d, want exactly 1", loyalty.accruals)
	}
}

func TestConfirmCancelledBookingFails(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	if err := svc.Cancel(ctx, booking.ID, "customer no-show"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, booking.ID, 1000, "MAD"); !apperrors.IsInvalidState(err) {
		t.Errorf("confirm of cancelled booking: got %v, want InvalidStateError", err)
	}
}

func TestCancelCancelsLivePaymentFirst(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	payments := &noopPayments{}
	svc.SetPaymentService(payments)

	if err := svc.Cancel(ctx, booking.ID, "plans changed"); err != nil {
		t.Fatal(err)
	}
	if payments.cancelled != 1 {
		t.Errorf("payment cancellations = %d, want 1", payments.cancelled)
	}

	// Cancelling again is a no-op, and must not hit payments again.
	if err := svc.Cancel(ctx, booking.ID, "again"); err != nil {
		t.Errorf("re-cancel: %v", err)
	}
	if payments.cancelled != 1 {
		t.Errorf("payment cancellations after re-cancel = %d, want 1", payments.cancelled)
	}
}

func TestCompleteLifecycle(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	// Complete from PENDING is illegal.
	if err := svc.Complete(ctx, booking.ID); !apperrors.IsInvalidState(err) {
		t.Errorf("complete from PENDING: got %v, want InvalidStateError", err)
	}

	if _, err := svc.Confirm(ctx, booking.ID, 1000, "MAD"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Complete(ctx, booking.ID); err != nil {
		t.Fatalf("complete from CONFIRMED: %v", err)
	}

	// Cancel after completion is illegal.
	if err := svc.Cancel(ctx, booking.ID, "too late"); !apperrors.IsInvalidState(err) {
		t.Errorf("cancel of COMPLETED booking: got %v, want InvalidStateError", err)
	}
}

func TestAttachPaymentConflict(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	booking := createTestBooking(t, svc)

	first := uuid.New()
	if err := svc.AttachPayment(ctx, booking.ID, first); err != nil {
		t.Fatal(err)
	}
	if err := svc.AttachPayment(ctx, booking.ID, uuid.New()); !apperrors.IsConflict(err) {
		t.Errorf("second attach: got %v, want ConflictError", err)
	}

	// After detach the slot is free again.
	if err := svc.DetachPayment(ctx, booking.ID, first); err != nil {
		t.Fatal(err)
	}
	if err := svc.AttachPayment(ctx, booking.ID, uuid.New()); err != nil {
		t.Errorf("attach after detach: %v", err)
	}
}

func TestRespondToPrice(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	proposed := 850.0
	booking, err := svc.CreateBooking(ctx, CreateBookingRequest{
		CustomerName: "Sara", CustomerEmail: "sara@example.com", CustomerPhone: "+212611111111",
		ServiceType: "CUSTOM", Date: "2026-10-01",
		CalculatedPrice: 1000, ProposedPrice: &proposed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if booking.EffectivePrice() != 1000 {
		t.Errorf("effective price before acceptance = %v, want 1000", booking.EffectivePrice())
	}

	booking, err = svc.RespondToPrice(ctx, booking.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if booking.PriceAcceptance != PriceAcceptanceAccepted {
		t.Errorf("acceptance = %s, want ACCEPTED", booking.PriceAcceptance)
	}
	if booking.EffectivePrice() != 850 {
		t.Errorf("effective price after acceptance = %v, want 850", booking.EffectivePrice())
	}
}
