package projection

import (
	"testing"
	"time"

	"medledger-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRecord(id, remoteID, patientID string, total int64, createdAt time.Time, state models.SyncState) models.PaymentRecord {
	return models.PaymentRecord{
		ID:          id,
		RemoteID:    remoteID,
		PatientID:   patientID,
		TotalAmount: total,
		CreatedAt:   createdAt,
		SyncState:   state,
	}
}

func TestProject(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("Synced Record Absorbs Stale Local Duplicate", func(t *testing.T) {
		synced := makeRecord("rec-a", "R1", "pat-1", 2500, base, models.SyncSynced)
		staleLocal := makeRecord("rec-b", "", "pat-1", 2500, base.Add(300*time.Millisecond), models.SyncLocal)

		out := Project(Input{Records: []models.PaymentRecord{staleLocal, synced}})

		require.Len(t, out.Records, 1)
		assert.Equal(t, "rec-a", out.Records[0].ID)
		assert.Equal(t, "R1", out.Records[0].RemoteID)
	})

	t.Run("Unsynced Records Sort First Then By Recency", func(t *testing.T) {
		oldSynced := makeRecord("rec-1", "R1", "pat-1", 100, base, models.SyncSynced)
		newSynced := makeRecord("rec-2", "R2", "pat-2", 100, base.Add(2*time.Hour), models.SyncSynced)
		failed := makeRecord("rec-3", "", "pat-3", 100, base.Add(time.Hour), models.SyncFailed)

		out := Project(Input{Records: []models.PaymentRecord{oldSynced, newSynced, failed}})

		require.Len(t, out.Records, 3)
		assert.Equal(t, "rec-3", out.Records[0].ID)
		assert.Equal(t, "rec-2", out.Records[1].ID)
		assert.Equal(t, "rec-1", out.Records[2].ID)
	})

	t.Run("Idempotent On Unchanged Input", func(t *testing.T) {
		records := []models.PaymentRecord{
			makeRecord("rec-1", "R1", "pat-1", 100, base, models.SyncSynced),
			makeRecord("rec-2", "", "pat-2", 200, base.Add(time.Minute), models.SyncLocal),
			makeRecord("rec-3", "", "pat-2", 200, base.Add(time.Minute), models.SyncFailed),
		}

		first := Project(Input{Records: records})
		second := Project(Input{Records: records, PreviousKeys: first.Keys})

		require.Equal(t, len(first.Records), len(second.Records))
		for i := range first.Records {
			assert.Equal(t, first.Records[i].ID, second.Records[i].ID)
		}
		assert.Equal(t, first.Keys, second.Keys)
	})

	t.Run("Previously Displayed Identity Survives Equal Rank Jitter", func(t *testing.T) {
		a := makeRecord("rec-a", "", "pat-1", 500, base, models.SyncLocal)
		b := makeRecord("rec-b", "", "pat-1", 500, base.Add(100*time.Millisecond), models.SyncFailed)

		first := Project(Input{Records: []models.PaymentRecord{a, b}})
		require.Len(t, first.Records, 1)
		chosenID := first.Records[0].ID

		second := Project(Input{Records: []models.PaymentRecord{b, a}, PreviousKeys: first.Keys})
		require.Len(t, second.Records, 1)
		assert.Equal(t, chosenID, second.Records[0].ID)
	})

	t.Run("Distinct Records Never Collapse", func(t *testing.T) {
		out := Project(Input{Records: []models.PaymentRecord{
			makeRecord("rec-1", "", "pat-1", 500, base, models.SyncLocal),
			makeRecord("rec-2", "", "pat-1", 700, base, models.SyncLocal),
			makeRecord("rec-3", "", "pat-2", 500, base, models.SyncLocal),
			makeRecord("rec-4", "", "pat-1", 500, base.Add(2*time.Second), models.SyncLocal),
		}})
		assert.Len(t, out.Records, 4)
	})

	t.Run("Most Recently Updated Wins Within Same Rank", func(t *testing.T) {
		older := makeRecord("rec-old", "", "pat-1", 500, base, models.SyncFailed)
		newer := makeRecord("rec-new", "", "pat-1", 500, base.Add(200*time.Millisecond), models.SyncFailed)
		newer.LastPaymentAt = base.Add(time.Minute)

		out := Project(Input{Records: []models.PaymentRecord{older, newer}})

		require.Len(t, out.Records, 1)
		assert.Equal(t, "rec-new", out.Records[0].ID)
	})
}
