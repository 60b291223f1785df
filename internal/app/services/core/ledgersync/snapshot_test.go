package ledgersync

import (
	"testing"

	"medledger-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCopyOnWrite(t *testing.T) {
	snapshot := NewSnapshot()
	snapshot.Put(testRecord("rec-1", 1000, 400))

	t.Run("readers never observe writer mutations", func(t *testing.T) {
		before := snapshot.All()
		_, ok := snapshot.Update("rec-1", func(r *models.PaymentRecord) {
			r.PaidAmount = 999
		})
		require.True(t, ok)

		assert.Equal(t, int64(400), before[0].PaidAmount)

		after, ok := snapshot.Get("rec-1")
		require.True(t, ok)
		assert.Equal(t, int64(999), after.PaidAmount)
	})

	t.Run("returned records are detached copies", func(t *testing.T) {
		record, ok := snapshot.Get("rec-1")
		require.True(t, ok)
		record.PaidAmount = -1
		record.PaymentHistory[0].Amount = -1

		stored, ok := snapshot.Get("rec-1")
		require.True(t, ok)
		assert.Equal(t, int64(999), stored.PaidAmount)
		assert.Equal(t, int64(400), stored.PaymentHistory[0].Amount)
	})

	t.Run("update on unknown id reports not found", func(t *testing.T) {
		_, ok := snapshot.Update("missing", func(r *models.PaymentRecord) {})
		assert.False(t, ok)
	})

	t.Run("delete removes a single entry", func(t *testing.T) {
		snapshot.Put(testRecord("rec-2", 200, 0))
		snapshot.Delete("rec-1")
		assert.Equal(t, 1, snapshot.Len())
		_, ok := snapshot.Get("rec-1")
		assert.False(t, ok)
	})
}
