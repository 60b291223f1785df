package invoices

import (
	"testing"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildGenerator() *Generator {
	cfg := &config.InternalConfig{}
	cfg.Invoice.DueInDays = 30
	return NewGenerator(zap.NewNop(), cfg, nil, nil)
}

func appliedEvent(recordID, entryID string, amount int64) contracts.PaymentApplied {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return contracts.PaymentApplied{
		Record: &models.PaymentRecord{
			ID:          recordID,
			PatientID:   "pat-1",
			PatientName: "Asha Verma",
			TotalAmount: 5000,
		},
		Entry: models.PaymentEntry{
			ID:     entryID,
			Amount: amount,
			Method: "card",
			PaidAt: now,
		},
	}
}

func TestBuildInvoice(t *testing.T) {
	generator := buildGenerator()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	t.Run("amount is the incremental entry amount", func(t *testing.T) {
		first := generator.Build(appliedEvent("rec-1", "entry-1", 1000), now)
		second := generator.Build(appliedEvent("rec-1", "entry-2", 1500), now)

		assert.Equal(t, int64(1000), first.Amount)
		assert.Equal(t, int64(1500), second.Amount)
		assert.NotEqual(t, first.InvoiceNumber, second.InvoiceNumber)
	})

	t.Run("references the originating record and entry", func(t *testing.T) {
		invoice := generator.Build(appliedEvent("rec-7", "entry-9", 250), now)

		assert.Equal(t, "rec-7", invoice.PaymentRef.RecordID)
		assert.Equal(t, "entry-9", invoice.PaymentRef.EntryID)
		assert.Equal(t, "pat-1", invoice.PatientID)
		assert.Equal(t, models.InvoiceIssued, invoice.Status)
		assert.True(t, invoice.IsAutoGenerated)
		require.Len(t, invoice.LineItems, 1)
		assert.Equal(t, int64(250), invoice.LineItems[0].Amount)
	})

	t.Run("due date follows the configured horizon", func(t *testing.T) {
		invoice := generator.Build(appliedEvent("rec-1", "entry-1", 100), now)
		assert.Equal(t, now.AddDate(0, 0, 30), invoice.DueDate)
	})
}

func TestInvoiceNumbersUniqueWithinSameTimestamp(t *testing.T) {
	generator := buildGenerator()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		number := generator.nextNumber(now)
		require.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true
	}
}

func TestInvoiceNumbersDistinctAcrossGenerators(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	first := buildGenerator()
	second := buildGenerator()

	// same wall-clock second, same counter position: the instance id keeps
	// restarted or replicated generators from colliding
	assert.NotEqual(t, first.nextNumber(now), second.nextNumber(now))
}
