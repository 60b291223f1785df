package ledger

import (
	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/dto/requests"
	"medledger-service/internal/pkg/exceptions"
	"medledger-service/internal/pkg/utils"
	"time"
)

// The engine is pure bookkeeping: validate, append, recompute. It performs no
// I/O and never mutates its inputs; callers own persistence, events and sync.

// ComputeStatus derives the payment status from amounts alone.
func ComputeStatus(paidAmount, totalAmount int64) models.PaymentStatus {
	switch {
	case paidAmount <= 0:
		return models.StatusPending
	case paidAmount < totalAmount:
		return models.StatusPartial
	default:
		return models.StatusPaid
	}
}

// ComputeDue derives the unpaid remainder from the entry history. The clamp
// at zero is an invariant guard; overpayment is rejected before it can occur.
func ComputeDue(record *models.PaymentRecord) int64 {
	due := record.TotalAmount - sumEntries(record.PaymentHistory)
	if due < 0 {
		return 0
	}
	return due
}

func sumEntries(entries []models.PaymentEntry) int64 {
	var total int64
	for _, entry := range entries {
		total += entry.Amount
	}
	return total
}

// RecordPayment validates the input against the existing record (nil opens a
// new one) and returns a fresh record with the entry appended and all derived
// fields recomputed. On error the existing record is untouched and no partial
// mutation exists anywhere.
func RecordPayment(existing *models.PaymentRecord, input *requests.PaymentEntryInput, now time.Time) (*models.PaymentRecord, error) {
	if input == nil {
		return nil, exceptions.NewValidationError(exceptions.MissingRequiredField, "input", "is required")
	}
	if input.Amount <= 0 {
		return nil, exceptions.NewValidationError(exceptions.InvalidAmount, "amount", "must be greater than zero")
	}

	var record *models.PaymentRecord
	if existing == nil {
		if input.PatientID == "" {
			return nil, exceptions.NewValidationError(exceptions.MissingRequiredField, "patient_id", "is required on the first entry")
		}
		if input.PatientName == "" {
			return nil, exceptions.NewValidationError(exceptions.MissingRequiredField, "patient_name", "is required on the first entry")
		}
		if input.TotalAmount <= 0 {
			return nil, exceptions.NewValidationError(exceptions.MissingRequiredField, "total_amount", "is required on the first entry")
		}
		if input.Amount > input.TotalAmount {
			return nil, exceptions.NewValidationError(exceptions.ExceedsDue, "amount", "exceeds the billable total")
		}
		record = &models.PaymentRecord{
			ID:          utils.GenerateLocalID(),
			PatientID:   input.PatientID,
			PatientName: input.PatientName,
			TotalAmount: input.TotalAmount,
			SyncState:   models.SyncLocal,
			CreatedAt:   now,
		}
	} else {
		if input.Amount > ComputeDue(existing) {
			return nil, exceptions.NewValidationError(exceptions.ExceedsDue, "amount", "exceeds the remaining due amount")
		}
		record = existing.Clone()
	}

	entry := models.PaymentEntry{
		ID:            utils.GenerateLocalID(),
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
		PaidAt:        now,
		PaidBy:        input.PaidBy,
		Description:   input.Description,
	}
	record.PaymentHistory = append(record.PaymentHistory, entry)

	record.PaidAmount = sumEntries(record.PaymentHistory)
	record.DueAmount = ComputeDue(record)
	record.Status = ComputeStatus(record.PaidAmount, record.TotalAmount)
	record.LastPaymentAt = now

	return record, nil
}

// AppliedEntry returns the entry appended by the most recent RecordPayment.
func AppliedEntry(record *models.PaymentRecord) models.PaymentEntry {
	return record.PaymentHistory[len(record.PaymentHistory)-1]
}
