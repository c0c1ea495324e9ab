package payments

// ConfirmResult is what a confirmation returns, whether this call settled the
// payment or an earlier one already had.
type ConfirmResult struct {
	PaymentID         string  `json:"payment_id"`
	BookingID         string  `json:"booking_id"`
	Status            string  `json:"status"`
	ReservationNumber string  `json:"reservation_number"`
	InvoiceNumber     string  `json:"invoice_number"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	AlreadyCompleted  bool    `json:"already_completed"`
}

type PaymentListResponse struct {
	Payments   []Payment `json:"payments"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
