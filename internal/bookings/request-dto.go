package bookings

type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required,min=2,max=120"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone" binding:"required,min=6,max=20"`

	ServiceType string `json:"service_type" binding:"required"`
	ServiceID   string `json:"service_id" binding:"omitempty,uuid"`

	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	Time       string `json:"time" binding:"omitempty,len=5"`
	Passengers int    `json:"passengers" binding:"omitempty,gt=0"`

	QuotedLabel     string   `json:"quoted_label"`
	CalculatedPrice float64  `json:"calculated_price" binding:"required,gte=0"`
	ProposedPrice   *float64 `json:"proposed_price" binding:"omitempty,gt=0"`

	Details string `json:"details" binding:"omitempty,max=2000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

type UpdateNotesRequest struct {
	InternalNotes string `json:"internal_notes" binding:"max=2000"`
}

type RespondToPriceRequest struct {
	Accept bool `json:"accept"`
}

type BookingListQuery struct {
	Status      string `form:"status"`
	Email       string `form:"email"`
	ServiceType string `form:"service_type"`
	DateFrom    string `form:"date_from"`
	DateTo      string `form:"date_to"`
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=10"`
}
