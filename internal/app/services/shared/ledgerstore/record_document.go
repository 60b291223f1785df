package ledgerstore

import (
	"time"

	"medledger-service/internal/app/models"
)

// RecordDocument is the wire shape of a payment record in the remote store.
// Historic rows carry the total under different keys (totalAmount, fullAmount
// or plain amount) and their derived fields cannot be trusted; Normalize
// resolves the aliases and recomputes everything derivable from the entries.
type RecordDocument struct {
	ID          string          `json:"id,omitempty"`
	PatientID   string          `json:"patientId"`
	PatientName string          `json:"patientName"`
	TotalAmount int64           `json:"totalAmount,omitempty"`
	FullAmount  int64           `json:"fullAmount,omitempty"`
	Amount      int64           `json:"amount,omitempty"`
	Entries     []EntryDocument `json:"paymentHistory"`
	Status      string          `json:"status,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	SyncedAt    *time.Time      `json:"syncedAt,omitempty"`
}

type EntryDocument struct {
	ID            string    `json:"id,omitempty"`
	Amount        int64     `json:"amount"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transactionId,omitempty"`
	PaidAt        time.Time `json:"paidAt"`
	PaidBy        string    `json:"paidBy,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// Normalize maps a remote document onto the canonical record model. The
// remote id lands in RemoteID; paid, due and status are always recomputed
// from the entries rather than read off the document.
func (d *RecordDocument) Normalize() models.PaymentRecord {
	total := d.TotalAmount
	if total == 0 {
		total = d.FullAmount
	}
	if total == 0 {
		total = d.Amount
	}

	entries := make([]models.PaymentEntry, 0, len(d.Entries))
	var paid int64
	var lastPayment time.Time
	for _, entry := range d.Entries {
		paid += entry.Amount
		if entry.PaidAt.After(lastPayment) {
			lastPayment = entry.PaidAt
		}
		entries = append(entries, models.PaymentEntry{
			ID:            entry.ID,
			Amount:        entry.Amount,
			Method:        entry.Method,
			TransactionID: entry.TransactionID,
			PaidAt:        entry.PaidAt,
			PaidBy:        entry.PaidBy,
			Description:   entry.Description,
		})
	}

	due := total - paid
	if due < 0 {
		due = 0
	}

	record := models.PaymentRecord{
		RemoteID:       d.ID,
		PatientID:      d.PatientID,
		PatientName:    d.PatientName,
		TotalAmount:    total,
		PaymentHistory: entries,
		PaidAmount:     paid,
		DueAmount:      due,
		Status:         computeStatus(paid, total),
		SyncState:      models.SyncSynced,
		CreatedAt:      d.CreatedAt,
		SyncedAt:       d.SyncedAt,
	}
	if !lastPayment.IsZero() {
		record.LastPaymentAt = lastPayment
	}
	return record
}

func computeStatus(paid, total int64) models.PaymentStatus {
	switch {
	case paid <= 0:
		return models.StatusPending
	case paid < total:
		return models.StatusPartial
	default:
		return models.StatusPaid
	}
}

// NewRecordDocument maps the canonical model to the wire shape written back
// to the remote store. Writes always use the canonical totalAmount key.
func NewRecordDocument(record *models.PaymentRecord) *RecordDocument {
	entries := make([]EntryDocument, 0, len(record.PaymentHistory))
	for _, entry := range record.PaymentHistory {
		entries = append(entries, EntryDocument{
			ID:            entry.ID,
			Amount:        entry.Amount,
			Method:        entry.Method,
			TransactionID: entry.TransactionID,
			PaidAt:        entry.PaidAt,
			PaidBy:        entry.PaidBy,
			Description:   entry.Description,
		})
	}
	return &RecordDocument{
		ID:          record.RemoteID,
		PatientID:   record.PatientID,
		PatientName: record.PatientName,
		TotalAmount: record.TotalAmount,
		Entries:     entries,
		Status:      string(record.Status),
		CreatedAt:   record.CreatedAt,
		SyncedAt:    record.SyncedAt,
	}
}
