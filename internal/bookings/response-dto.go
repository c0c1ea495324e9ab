package bookings

// ConfirmationResult carries what a caller gets back from a confirmation,
// whether this call performed it or an earlier one already had.
type ConfirmationResult struct {
	BookingID         string  `json:"booking_id"`
	Status            string  `json:"status"`
	ReservationNumber string  `json:"reservation_number"`
	InvoiceNumber     string  `json:"invoice_number"`
	Total             float64 `json:"total"`
	Currency          string  `json:"currency"`
	AlreadyConfirmed  bool    `json:"already_confirmed"`
}

type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}
