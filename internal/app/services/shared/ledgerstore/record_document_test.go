package ledgerstore

import (
	"testing"
	"time"

	"medledger-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	created := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	t.Run("resolves legacy total aliases", func(t *testing.T) {
		byFullAmount := RecordDocument{ID: "remote-1", FullAmount: 2000, CreatedAt: created}
		byAmount := RecordDocument{ID: "remote-2", Amount: 1500, CreatedAt: created}
		canonical := RecordDocument{ID: "remote-3", TotalAmount: 900, FullAmount: 111, CreatedAt: created}

		assert.Equal(t, int64(2000), byFullAmount.Normalize().TotalAmount)
		assert.Equal(t, int64(1500), byAmount.Normalize().TotalAmount)
		assert.Equal(t, int64(900), canonical.Normalize().TotalAmount)
	})

	t.Run("derived fields are recomputed from entries", func(t *testing.T) {
		doc := RecordDocument{
			ID:          "remote-1",
			PatientID:   "pat-1",
			TotalAmount: 1000,
			// remote status is stale on purpose
			Status:    "paid",
			CreatedAt: created,
			Entries: []EntryDocument{
				{ID: "e1", Amount: 300, Method: "cash", PaidAt: created},
				{ID: "e2", Amount: 100, Method: "card", PaidAt: created.Add(time.Hour)},
			},
		}

		record := doc.Normalize()
		assert.Equal(t, int64(400), record.PaidAmount)
		assert.Equal(t, int64(600), record.DueAmount)
		assert.Equal(t, models.StatusPartial, record.Status)
		assert.Equal(t, created.Add(time.Hour), record.LastPaymentAt)
		assert.Equal(t, "remote-1", record.RemoteID)
		assert.Equal(t, models.SyncSynced, record.SyncState)
	})

	t.Run("overpaid history clamps due to zero", func(t *testing.T) {
		doc := RecordDocument{
			ID:          "remote-1",
			TotalAmount: 100,
			CreatedAt:   created,
			Entries: []EntryDocument{
				{ID: "e1", Amount: 250, PaidAt: created},
			},
		}

		record := doc.Normalize()
		assert.Equal(t, int64(0), record.DueAmount)
		assert.Equal(t, models.StatusPaid, record.Status)
	})
}
