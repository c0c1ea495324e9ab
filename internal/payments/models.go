package payments

import (
	"time"

	"github.com/google/uuid"
)

// Method is how the customer settles the booking. All methods are manually
// confirmed by an operator against off-band evidence; there is no synchronous
// gateway verification.
type Method string

const (
	MethodCash         Method = "CASH"
	MethodBankTransfer Method = "BANK_TRANSFER"
	MethodCryptoWallet Method = "CRYPTO_WALLET"
	MethodRemittance   Method = "REMITTANCE"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodCryptoWallet, MethodRemittance:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// MinAmount is the smallest accepted payment amount.
const MinAmount = 0.01

var validCurrencies = map[string]bool{
	"MAD": true, "EUR": true, "USD": true,
	"USDT": true, "BTC": true, "ETH": true,
}

// IsValidCurrency reports whether the currency code is accepted.
func IsValidCurrency(code string) bool {
	return validCurrencies[code]
}

// Evidence is the customer-supplied proof of payment. Which fields are
// required depends on the method; the whole struct is stored as one JSONB
// column since shapes differ per method.
type Evidence struct {
	TransactionHash string `json:"transaction_hash,omitempty"` // crypto wallet
	Network         string `json:"network,omitempty"`          // crypto wallet
	Reference       string `json:"reference,omitempty"`        // bank transfer / remittance
	BankName        string `json:"bank_name,omitempty"`        // bank transfer
	SenderName      string `json:"sender_name,omitempty"`      // remittance
	TransferDate    string `json:"transfer_date,omitempty"`    // bank transfer / remittance
}

// Refund records a refund of a previously completed payment.
type Refund struct {
	Amount *float64   `json:"amount,omitempty"`
	Reason string     `json:"reason,omitempty"`
	At     *time.Time `json:"at,omitempty"`
	Actor  string     `json:"actor,omitempty"`
}

// Payment is one attempt to settle a booking. Customer name and email are
// duplicated from the booking at creation time so the payment record stays a
// complete audit trail on its own.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`

	CustomerName  string `gorm:"not null" json:"customer_name"`
	CustomerEmail string `gorm:"index;not null" json:"customer_email"`

	Method   Method  `gorm:"type:varchar(20);not null" json:"method"`
	Amount   float64 `gorm:"not null" json:"amount"`
	Currency string  `gorm:"type:varchar(4);default:'MAD'" json:"currency"`

	Status Status `gorm:"type:varchar(20);check:status IN ('PENDING', 'PENDING_REVIEW', 'COMPLETED', 'FAILED', 'CANCELLED', 'REFUNDED');default:'PENDING'" json:"status"`

	Evidence *Evidence              `gorm:"serializer:json;type:jsonb" json:"evidence,omitempty"`
	Details  map[string]interface{} `gorm:"serializer:json;type:jsonb" json:"details,omitempty"`

	Refund Refund `gorm:"embedded;embeddedPrefix:refund_" json:"refund,omitempty"`

	FailureReason      string `json:"failure_reason,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	ConfirmedBy        string `json:"confirmed_by,omitempty"`
	Notes              string `json:"notes,omitempty"`

	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName sets the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsLive() bool {
	return p.Status.IsLive()
}

func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}

func (p *Payment) IsRefunded() bool {
	return p.Status == StatusRefunded
}
