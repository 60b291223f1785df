package ledger

import (
	"errors"
	"testing"
	"time"

	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/dto/requests"
	"medledger-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPayment(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	t.Run("First Entry Opens A Partial Record", func(t *testing.T) {
		record, err := RecordPayment(nil, &requests.PaymentEntryInput{
			PatientID:   "pat-001",
			PatientName: "Asha Verma",
			Amount:      400,
			TotalAmount: 1000,
			Method:      "cash",
			PaidBy:      "reception",
		}, now)

		require.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, int64(400), record.PaidAmount)
		assert.Equal(t, int64(600), record.DueAmount)
		assert.Equal(t, models.StatusPartial, record.Status)
		assert.Equal(t, models.SyncLocal, record.SyncState)
		assert.Len(t, record.PaymentHistory, 1)
		assert.Equal(t, now, record.LastPaymentAt)
	})

	t.Run("Second Entry Settles The Record", func(t *testing.T) {
		first, err := RecordPayment(nil, &requests.PaymentEntryInput{
			PatientID:   "pat-001",
			PatientName: "Asha Verma",
			Amount:      400,
			TotalAmount: 1000,
			Method:      "cash",
		}, now)
		require.NoError(t, err)

		second, err := RecordPayment(first, &requests.PaymentEntryInput{
			Amount: 600,
			Method: "card",
		}, now.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, int64(1000), second.PaidAmount)
		assert.Equal(t, int64(0), second.DueAmount)
		assert.Equal(t, models.StatusPaid, second.Status)
		assert.Len(t, second.PaymentHistory, 2)

		// the prior record is untouched
		assert.Equal(t, int64(400), first.PaidAmount)
		assert.Len(t, first.PaymentHistory, 1)
	})

	t.Run("Amount Above Due Is Rejected Without Mutation", func(t *testing.T) {
		record, err := RecordPayment(nil, &requests.PaymentEntryInput{
			PatientID:   "pat-002",
			PatientName: "Ben Okafor",
			Amount:      400,
			TotalAmount: 1000,
			Method:      "cash",
		}, now)
		require.NoError(t, err)

		updated, err := RecordPayment(record, &requests.PaymentEntryInput{
			Amount: 601,
			Method: "cash",
		}, now)

		assert.Nil(t, updated)
		var validationErr *exceptions.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, exceptions.ExceedsDue, validationErr.Reason)
		assert.Equal(t, int64(400), record.PaidAmount)
		assert.Len(t, record.PaymentHistory, 1)
	})

	t.Run("Non Positive Amount Is Rejected", func(t *testing.T) {
		for _, amount := range []int64{0, -50} {
			_, err := RecordPayment(nil, &requests.PaymentEntryInput{
				PatientID:   "pat-003",
				PatientName: "Carla Diaz",
				Amount:      amount,
				TotalAmount: 1000,
				Method:      "cash",
			}, now)

			var validationErr *exceptions.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, exceptions.InvalidAmount, validationErr.Reason)
		}
	})

	t.Run("First Entry Requires Patient And Total", func(t *testing.T) {
		cases := []struct {
			name  string
			input requests.PaymentEntryInput
			field string
		}{
			{"missing patient id", requests.PaymentEntryInput{PatientName: "X", Amount: 100, TotalAmount: 500, Method: "cash"}, "patient_id"},
			{"missing patient name", requests.PaymentEntryInput{PatientID: "p", Amount: 100, TotalAmount: 500, Method: "cash"}, "patient_name"},
			{"missing total", requests.PaymentEntryInput{PatientID: "p", PatientName: "X", Amount: 100, Method: "cash"}, "total_amount"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := RecordPayment(nil, &tc.input, now)
				var validationErr *exceptions.ValidationError
				require.True(t, errors.As(err, &validationErr))
				assert.Equal(t, exceptions.MissingRequiredField, validationErr.Reason)
				assert.Equal(t, tc.field, validationErr.Field)
			})
		}
	})

	t.Run("First Entry Above Total Is Rejected", func(t *testing.T) {
		_, err := RecordPayment(nil, &requests.PaymentEntryInput{
			PatientID:   "pat-004",
			PatientName: "Dev Nair",
			Amount:      1500,
			TotalAmount: 1000,
			Method:      "cash",
		}, now)

		var validationErr *exceptions.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, exceptions.ExceedsDue, validationErr.Reason)
	})

	t.Run("Paid Amount Always Equals Entry Sum", func(t *testing.T) {
		record, err := RecordPayment(nil, &requests.PaymentEntryInput{
			PatientID:   "pat-005",
			PatientName: "Eva Lindt",
			Amount:      250,
			TotalAmount: 1000,
			Method:      "cash",
		}, now)
		require.NoError(t, err)

		for _, amount := range []int64{250, 100, 400} {
			record, err = RecordPayment(record, &requests.PaymentEntryInput{Amount: amount, Method: "cash"}, now)
			require.NoError(t, err)

			var sum int64
			for _, entry := range record.PaymentHistory {
				sum += entry.Amount
			}
			assert.Equal(t, sum, record.PaidAmount)
			assert.GreaterOrEqual(t, record.DueAmount, int64(0))
			assert.Equal(t, ComputeStatus(record.PaidAmount, record.TotalAmount), record.Status)
		}
		assert.Equal(t, models.StatusPaid, record.Status)
	})
}

func TestComputeStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, ComputeStatus(0, 1000))
	assert.Equal(t, models.StatusPartial, ComputeStatus(1, 1000))
	assert.Equal(t, models.StatusPartial, ComputeStatus(999, 1000))
	assert.Equal(t, models.StatusPaid, ComputeStatus(1000, 1000))
	assert.Equal(t, models.StatusPaid, ComputeStatus(1200, 1000))
}

func TestComputeDueNeverNegative(t *testing.T) {
	record := &models.PaymentRecord{
		TotalAmount: 100,
		PaymentHistory: []models.PaymentEntry{
			{ID: "e1", Amount: 80},
			{ID: "e2", Amount: 40},
		},
	}
	assert.Equal(t, int64(0), ComputeDue(record))
}
