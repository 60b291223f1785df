package models

import (
	"time"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

type SyncState string

const (
	SyncLocal   SyncState = "local"
	SyncSyncing SyncState = "syncing"
	SyncSynced  SyncState = "synced"
	SyncFailed  SyncState = "failed"
)

// PaymentEntry is one discrete payment application. Entries are immutable and
// never removed; the history is the audit trail.
type PaymentEntry struct {
	ID            string    `json:"id" bson:"id"`
	Amount        int64     `json:"amount" bson:"amount"`
	Method        string    `json:"method" bson:"method"`
	TransactionID string    `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	PaidAt        time.Time `json:"paid_at" bson:"paid_at"`
	PaidBy        string    `json:"paid_by" bson:"paid_by"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
}

// PaymentRecord tracks installments against a billable total. Amounts are in
// minor currency units. PaidAmount, DueAmount and Status are derived from the
// entry history and recomputed on every mutation, never trusted as stored.
type PaymentRecord struct {
	ID             string         `json:"id" bson:"_id"`
	RemoteID       string         `json:"remote_id,omitempty" bson:"remote_id,omitempty"`
	PatientID      string         `json:"patient_id" bson:"patient_id"`
	PatientName    string         `json:"patient_name" bson:"patient_name"`
	TotalAmount    int64          `json:"total_amount" bson:"total_amount"`
	PaymentHistory []PaymentEntry `json:"payment_history" bson:"payment_history"`
	PaidAmount     int64          `json:"paid_amount" bson:"paid_amount"`
	DueAmount      int64          `json:"due_amount" bson:"due_amount"`
	Status         PaymentStatus  `json:"status" bson:"status"`
	SyncState      SyncState      `json:"sync_state" bson:"sync_state"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	LastPaymentAt  time.Time      `json:"last_payment_at" bson:"last_payment_at"`
	SyncedAt       *time.Time     `json:"synced_at,omitempty" bson:"synced_at,omitempty"`
}

// Clone returns a deep copy. Mutations always operate on copies so concurrent
// readers never observe a half-updated record.
func (r *PaymentRecord) Clone() *PaymentRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.PaymentHistory = make([]PaymentEntry, len(r.PaymentHistory))
	copy(clone.PaymentHistory, r.PaymentHistory)
	if r.SyncedAt != nil {
		syncedAt := *r.SyncedAt
		clone.SyncedAt = &syncedAt
	}
	return &clone
}

// UpdatedAt is the instant used for recency ordering and collapse preference.
func (r *PaymentRecord) UpdatedAt() time.Time {
	if r.LastPaymentAt.After(r.CreatedAt) {
		return r.LastPaymentAt
	}
	return r.CreatedAt
}
