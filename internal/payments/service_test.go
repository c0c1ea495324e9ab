package payments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memRepo is an in-memory Repository with the same compare-and-set semantics
// as the SQL implementation.
type memRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*Payment
}

func newMemRepo() *memRepo {
	return &memRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (r *memRepo) CreateIfNoActive(_ context.Context, payment *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == payment.BookingID && p.Status.IsLive() {
			return conflictErr()
		}
	}
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	cp := *payment
	r.payments[payment.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) GetLiveByBookingID(_ context.Context, bookingID uuid.UUID) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == bookingID && p.Status.IsLive() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) List(_ context.Context, _ PaymentListQuery) ([]Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Payment
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) UpdateStatusIf(_ context.Context, id uuid.UUID, expected, target Status, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != expected {
		return false, nil
	}
	p.Status = target
	for k, v := range updates {
		switch k {
		case "evidence":
			p.Evidence = v.(*Evidence)
		case "failure_reason":
			p.FailureReason = v.(string)
		case "cancellation_reason":
			p.CancellationReason = v.(string)
		case "confirmed_by":
			p.ConfirmedBy = v.(string)
		case "processed_at":
			t := v.(time.Time)
			p.ProcessedAt = &t
		case "refund_amount":
			amt := v.(float64)
			p.Refund.Amount = &amt
		case "refund_reason":
			p.Refund.Reason = v.(string)
		case "refund_at":
			t := v.(time.Time)
			p.Refund.At = &t
		case "refund_actor":
			p.Refund.Actor = v.(string)
		}
	}
	return true, nil
}

func (r *memRepo) FindStalePending(_ context.Context, cutoff time.Time, limit int) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Payment
	for _, p := range r.payments {
		if p.Status == StatusPending && p.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, *p)
		}
	}
	return out, nil
}

func conflictErr() error {
	return &testConflictError{}
}

type testConflictError struct{}

func (*testConflictError) Error() string { return "booking already has an active payment" }

// memBookings mimics the booking service's confirmation semantics: a
// compare-and-set from PENDING to CONFIRMED with numbers assigned exactly
// once, plus a deduplicated loyalty accrual counter.
type memBookings struct {
	mu            sync.Mutex
	status        string
	customerName  string
	customerEmail string
	price         float64
	currency      string
	resNumber     string
	invNumber     string
	total         float64
	attached      *uuid.UUID
	numberSeq     int
	accruals      int
	accrued       map[uuid.UUID]bool
}

func newMemBookings() *memBookings {
	return &memBookings{
		status:        "PENDING",
		customerName:  "Yassine Alami",
		customerEmail: "yassine@example.com",
		price:         1000,
		currency:      "MAD",
		accrued:       make(map[uuid.UUID]bool),
	}
}

func (b *memBookings) InfoForPayment(_ context.Context, _ uuid.UUID) (string, string, string, float64, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.customerName, b.customerEmail, b.status, b.price, b.currency, nil
}

func (b *memBookings) AttachPayment(_ context.Context, _, paymentID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached != nil {
		return conflictErr()
	}
	b.attached = &paymentID
	return nil
}

func (b *memBookings) DetachPayment(_ context.Context, _, paymentID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.attached != nil && *b.attached == paymentID {
		b.attached = nil
	}
	return nil
}

func (b *memBookings) ConfirmFromPayment(_ context.Context, bookingID uuid.UUID, amount float64, _ string) (string, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.status {
	case "CONFIRMED", "COMPLETED":
		if !b.accrued[bookingID] {
			b.accrued[bookingID] = true
			b.accruals++
		}
		return b.resNumber, b.invNumber, nil
	case "CANCELLED":
		return "", "", fmt.Errorf("booking cannot move from CANCELLED to CONFIRMED")
	}
	b.numberSeq++
	b.status = "CONFIRMED"
	b.resNumber = fmt.Sprintf("RES-20260831-%04d", b.numberSeq)
	b.invNumber = fmt.Sprintf("INV-20260831-%04d", b.numberSeq)
	b.total = amount
	if !b.accrued[bookingID] {
		b.accrued[bookingID] = true
		b.accruals++
	}
	return b.resNumber, b.invNumber, nil
}

func newTestService() (Service, *memRepo, *memBookings) {
	repo := newMemRepo()
	bookings := newMemBookings()
	return NewService(repo, bookings, nil), repo, bookings
}

func createPayment(t *testing.T, svc Service, bookingID uuid.UUID, method string, amount float64, evidence *EvidencePayload) *Payment {
	t.Helper()
	payment, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{
		BookingID: bookingID.String(),
		Method:    method,
		Amount:    amount,
		Evidence:  evidence,
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	return payment
}

// Bank transfer end to end: create, submit evidence, operator confirm.
func TestBankTransferFullLifecycle(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()
	bookingID := uuid.New()

	payment := createPayment(t, svc, bookingID, "BANK_TRANSFER", 1000, nil)
	if payment.Status != StatusPending {
		t.Fatalf("new payment status = %s, want PENDING", payment.Status)
	}
	if payment.CustomerEmail != "yassine@example.com" {
		t.Errorf("customer email not duplicated from booking: %q", payment.CustomerEmail)
	}

	payment, err := svc.SubmitEvidence(ctx, payment.ID, EvidencePayload{
		Reference:    "REF-1",
		BankName:     "Attijariwafa",
		TransferDate: "2026-08-30",
	})
	if err != nil {
		t.Fatalf("SubmitEvidence: %v", err)
	}
	if payment.Status != StatusPendingReview {
		t.Fatalf("status after evidence = %s, want PENDING_REVIEW", payment.Status)
	}
	if payment.Evidence == nil || payment.Evidence.Reference != "REF-1" {
		t.Fatal("evidence not stored")
	}

	result, err := svc.Confirm(ctx, payment.ID, "ops@atlastours.ma")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if result.AlreadyCompleted {
		t.Error("first confirm must not report already completed")
	}
	if result.ReservationNumber == "" || result.InvoiceNumber == "" {
		t.Error("confirmation must return assigned numbers")
	}
	if bookings.status != "CONFIRMED" {
		t.Errorf("booking status = %s, want CONFIRMED", bookings.status)
	}
	if bookings.total != 1000 {
		t.Errorf("booking total = %v, want 1000", bookings.total)
	}
}

// Cash is confirmable straight from PENDING, no evidence step.
func TestCashDirectConfirm(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()

	payment := createPayment(t, svc, uuid.New(), "CASH", 500, nil)

	result, err := svc.Confirm(ctx, payment.ID, "ops@atlastours.ma")
	if err != nil {
		t.Fatalf("Confirm from PENDING: %v", err)
	}
	if result.Status != "COMPLETED" {
		t.Errorf("result status = %s, want COMPLETED", result.Status)
	}
	if bookings.status != "CONFIRMED" {
		t.Errorf("booking status = %s, want CONFIRMED", bookings.status)
	}

	if _, err := svc.SubmitEvidence(ctx, payment.ID, EvidencePayload{Reference: "X"}); err == nil {
		t.Error("cash payment must not accept evidence")
	}
}

// Reject leaves the booking PENDING and frees the slot for a new payment.
func TestRejectFreesBookingForRetry(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()
	bookingID := uuid.New()

	payment := createPayment(t, svc, bookingID, "REMITTANCE", 750, nil)

	// One-active-payment invariant: a second create must conflict.
	if _, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		BookingID: bookingID.String(),
		Method:    "CASH",
		Amount:    750,
	}); err == nil {
		t.Fatal("second payment for booking with a live payment must fail")
	}

	if err := svc.Reject(ctx, payment.ID, "insufficient proof", "ops@atlastours.ma"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	got, err := svc.GetPayment(ctx, payment.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusFailed {
		t.Errorf("status = %s, want FAILED", got.Status)
	}
	if got.FailureReason != "insufficient proof" {
		t.Errorf("failure reason = %q", got.FailureReason)
	}
	if bookings.status != "PENDING" {
		t.Errorf("booking status = %s, want PENDING after reject", bookings.status)
	}

	// Slot freed: a new payment now succeeds.
	if _, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		BookingID: bookingID.String(),
		Method:    "CASH",
		Amount:    750,
	}); err != nil {
		t.Fatalf("payment create after reject: %v", err)
	}
}

// Refund records the sub-record and leaves the booking untouched.
func TestRefundKeepsBookingConfirmed(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()

	payment := createPayment(t, svc, uuid.New(), "CRYPTO_WALLET", 1200, nil)
	if _, err := svc.SubmitEvidence(ctx, payment.ID, EvidencePayload{
		TransactionHash: "0xabc", Network: "TRC20",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Confirm(ctx, payment.ID, "ops@atlastours.ma"); err != nil {
		t.Fatal(err)
	}

	amount := 500.0
	refunded, err := svc.Refund(ctx, payment.ID, &amount, "customer request", "ops@atlastours.ma")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != StatusRefunded {
		t.Errorf("status = %s, want REFUNDED", refunded.Status)
	}
	if refunded.Refund.Amount == nil || *refunded.Refund.Amount != 500 {
		t.Error("refund amount not recorded")
	}
	if refunded.Refund.Reason != "customer request" {
		t.Errorf("refund reason = %q", refunded.Refund.Reason)
	}
	if bookings.status != "CONFIRMED" {
		t.Errorf("booking status = %s, refund must not revert it", bookings.status)
	}

	// Refunding more than the payment amount is rejected.
	svc2, _, _ := newTestService()
	fresh := createPayment(t, svc2, uuid.New(), "CASH", 100, nil)
	if _, err := svc2.Confirm(ctx, fresh.ID, "ops@atlastours.ma"); err != nil {
		t.Fatal(err)
	}
	tooMuch := 5000.0
	if _, err := svc2.Refund(ctx, fresh.ID, &tooMuch, "", "ops"); err == nil {
		t.Error("over-refund must fail")
	}

	// Re-refund is idempotent success.
	if _, err := svc.Refund(ctx, payment.ID, nil, "", "ops"); err != nil {
		t.Errorf("re-refund: %v", err)
	}
}

// Two racing confirms: exactly one loyalty accrual, both calls get the same
// reservation number.
func TestConcurrentConfirmIsIdempotent(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()

	payment := createPayment(t, svc, uuid.New(), "BANK_TRANSFER", 1000, nil)
	if _, err := svc.SubmitEvidence(ctx, payment.ID, EvidencePayload{
		Reference: "REF-9", BankName: "BMCE", TransferDate: "2026-08-30",
	}); err != nil {
		t.Fatal(err)
	}

	results := make([]*ConfirmResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Confirm(ctx, payment.ID, "ops@atlastours.ma")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("confirm %d: %v", i, errs[i])
		}
	}
	if results[0].ReservationNumber != results[1].ReservationNumber {
		t.Errorf("racing confirms returned different reservation numbers: %q vs %q",
			results[0].ReservationNumber, results[1].ReservationNumber)
	}
	if results[0].ReservationNumber == "" {
		t.Error("reservation number missing")
	}
	if bookings.accruals != 1 {
		t.Errorf("loyalty accruals = %d, want exactly 1", bookings.accruals)
	}

	// A third confirm is still idempotent success with the same numbers.
	again, err := svc.Confirm(ctx, payment.ID, "ops@atlastours.ma")
	if err != nil {
		t.Fatalf("re-confirm: %v", err)
	}
	if !again.AlreadyCompleted {
		t.Error("re-confirm must report already completed")
	}
	if again.ReservationNumber != results[0].ReservationNumber {
		t.Error("re-confirm returned different numbers")
	}
	if bookings.accruals != 1 {
		t.Errorf("loyalty accruals after re-confirm = %d, want 1", bookings.accruals)
	}
}

// Illegal transitions are errors naming the states; terminal states stay put.
func TestIllegalTransitions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	payment := createPayment(t, svc, uuid.New(), "BANK_TRANSFER", 300, nil)
	if err := svc.Cancel(ctx, payment.ID, "changed my mind"); err != nil {
		t.Fatal(err)
	}

	// Cancelled is terminal: no confirm, no evidence, no reject.
	if _, err := svc.Confirm(ctx, payment.ID, "ops"); err == nil {
		t.Error("confirm of CANCELLED payment must fail")
	}
	if _, err := svc.SubmitEvidence(ctx, payment.ID, EvidencePayload{
		Reference: "R", BankName: "B", TransferDate: "2026-01-01",
	}); err == nil {
		t.Error("evidence on CANCELLED payment must fail")
	}

	// Cancel again is idempotent, not an error.
	if err := svc.Cancel(ctx, payment.ID, "again"); err != nil {
		t.Errorf("re-cancel: %v", err)
	}

	// Refund requires COMPLETED.
	if _, err := svc.Refund(ctx, payment.ID, nil, "", "ops"); err == nil {
		t.Error("refund of CANCELLED payment must fail")
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	bookingID := uuid.New().String()

	if _, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		BookingID: bookingID, Method: "PAYPAL", Amount: 100,
	}); err == nil {
		t.Error("unknown method must fail")
	}
	if _, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		BookingID: bookingID, Method: "CASH", Amount: 0.001,
	}); err == nil {
		t.Error("amount below minimum must fail")
	}
	if _, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		BookingID: bookingID, Method: "CASH", Amount: 100, Currency: "GBP",
	}); err == nil {
		t.Error("unsupported currency must fail")
	}
}

func TestEvidenceShapePerMethod(t *testing.T) {
	tests := []struct {
		method Method
		ev     Evidence
		ok     bool
	}{
		{MethodCryptoWallet, Evidence{TransactionHash: "0xdead", Network: "ERC20"}, true},
		{MethodCryptoWallet, Evidence{TransactionHash: "0xdead"}, false},
		{MethodBankTransfer, Evidence{Reference: "R1", BankName: "CIH", TransferDate: "2026-08-01"}, true},
		{MethodBankTransfer, Evidence{Reference: "R1"}, false},
		{MethodRemittance, Evidence{Reference: "W2", SenderName: "Sara", TransferDate: "2026-08-01"}, true},
		{MethodRemittance, Evidence{SenderName: "Sara"}, false},
		{MethodCash, Evidence{Reference: "anything"}, false},
	}

	for _, tt := range tests {
		err := validateEvidence(tt.method, &tt.ev)
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.method, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("%s: expected validation error", tt.method)
		}
	}
}

// Payment expiry goes through the same cancel path as everyone else.
func TestCancelForBooking(t *testing.T) {
	svc, _, bookings := newTestService()
	ctx := context.Background()
	bookingID := uuid.New()

	payment := createPayment(t, svc, bookingID, "BANK_TRANSFER", 400, nil)

	if err := svc.CancelForBooking(ctx, bookingID, "booking cancelled"); err != nil {
		t.Fatalf("CancelForBooking: %v", err)
	}
	got, _ := svc.GetPayment(ctx, payment.ID)
	if got.Status != StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	if bookings.attached != nil {
		t.Error("cancelled payment must be detached from booking")
	}

	// No live payment: a no-op, not an error.
	if err := svc.CancelForBooking(ctx, bookingID, "again"); err != nil {
		t.Errorf("CancelForBooking with no live payment: %v", err)
	}
}
