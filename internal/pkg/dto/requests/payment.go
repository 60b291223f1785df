package requests

// PaymentEntryInput is the inbound payload for recording one payment
// application. Amounts are minor currency units. TotalAmount is only
// consulted when the payment opens a new record; ExistingRecordID routes the
// entry onto an open record instead.
type PaymentEntryInput struct {
	PatientID        string `json:"patient_id"`
	PatientName      string `json:"patient_name"`
	Amount           int64  `json:"amount" validate:"required"`
	TotalAmount      int64  `json:"total_amount,omitempty"`
	Method           string `json:"method" validate:"required,oneof=cash card upi insurance transfer"`
	TransactionID    string `json:"transaction_id,omitempty"`
	PaidBy           string `json:"paid_by,omitempty"`
	Description      string `json:"description,omitempty"`
	ExistingRecordID string `json:"existing_record_id,omitempty"`
}
