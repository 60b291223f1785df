package models

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceIssued    InvoiceStatus = "issued"
	InvoiceDelivered InvoiceStatus = "delivered"
	InvoiceVoided    InvoiceStatus = "voided"
)

type InvoiceLineItem struct {
	Description string `json:"description" bson:"description"`
	Amount      int64  `json:"amount" bson:"amount"`
}

// PaymentRef points back at the ledger mutation that produced the invoice.
type PaymentRef struct {
	RecordID string `json:"record_id" bson:"record_id"`
	EntryID  string `json:"entry_id" bson:"entry_id"`
}

// Invoice is an immutable audit row issued once per applied payment entry.
// Amount is the incremental entry amount, not the record's running total.
// The patient fields are copied so the invoice survives record deletion.
type Invoice struct {
	InvoiceNumber   string            `json:"invoice_number" bson:"invoice_number"`
	PatientID       string            `json:"patient_id" bson:"patient_id"`
	PatientName     string            `json:"patient_name" bson:"patient_name"`
	IssueDate       time.Time         `json:"issue_date" bson:"issue_date"`
	DueDate         time.Time         `json:"due_date" bson:"due_date"`
	Amount          int64             `json:"amount" bson:"amount"`
	Status          InvoiceStatus     `json:"status" bson:"status"`
	LineItems       []InvoiceLineItem `json:"line_items" bson:"line_items"`
	PaymentRef      PaymentRef        `json:"payment_ref" bson:"payment_ref"`
	GeneratedAt     time.Time         `json:"generated_at" bson:"generated_at"`
	IsAutoGenerated bool              `json:"is_auto_generated" bson:"is_auto_generated"`
}
