package constvars

type contextKey string

const (
	CONTEXT_REQUEST_ID_KEY           contextKey = "requestID"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY contextKey = "isClientRequestID"
)

const (
	MongoCollectionPaymentRecords = "payment_records"

	RedisKeyReconcilerLock    = "ledger:reconciler:lock"
	RedisKeyInvoiceWorkerLock = "invoices:worker:lock"
)

// Validation tags that carry a parameter into their message.
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
	"gt":    true,
	"gte":   true,
}

var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s",
	"max":      "must be at most %s",
	"gt":       "must be greater than %s",
	"oneof":    "must be one of: %s",
}
