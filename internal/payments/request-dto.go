package payments

type EvidencePayload struct {
	TransactionHash string `json:"transaction_hash" binding:"omitempty,max=128"`
	Network         string `json:"network" binding:"omitempty,max=32"`
	Reference       string `json:"reference" binding:"omitempty,max=64"`
	BankName        string `json:"bank_name" binding:"omitempty,max=120"`
	SenderName      string `json:"sender_name" binding:"omitempty,max=120"`
	TransferDate    string `json:"transfer_date" binding:"omitempty,len=10"` // YYYY-MM-DD
}

type CreatePaymentRequest struct {
	BookingID string           `json:"booking_id" binding:"required,uuid"`
	Method    string           `json:"method" binding:"required"`
	Amount    float64          `json:"amount" binding:"required"`
	Currency  string           `json:"currency" binding:"omitempty"`
	Evidence  *EvidencePayload `json:"evidence"`
	Notes     string           `json:"notes" binding:"omitempty,max=1000"`
}

type SubmitEvidenceRequest struct {
	Evidence EvidencePayload `json:"evidence" binding:"required"`
}

type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

type CancelPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

type RefundPaymentRequest struct {
	Amount *float64 `json:"amount" binding:"omitempty,gt=0"`
	Reason string   `json:"reason" binding:"omitempty,max=500"`
}

type PaymentListQuery struct {
	Status    string `form:"status"`
	Method    string `form:"method"`
	BookingID string `form:"booking_id"`
	Email     string `form:"email"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=10"`
}
