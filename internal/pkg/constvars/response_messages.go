package constvars

const (
	ResponseSuccess = "Success"
	ResponseUnknown = "unknown"

	PaymentRecordedSuccessMessage = "Payment recorded"
	PaymentRetryScheduledMessage  = "Sync retry scheduled"
	PaymentRecordDeletedMessage   = "Payment record deleted"
	PaymentRecordsFetchedMessage  = "Payment records fetched"
)
