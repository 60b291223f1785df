package constvars

// Client-facing messages. Kept deliberately vague for anything that is not
// the caller's fault.
const (
	ErrClientSomethingWrongWithApplication = "Something went wrong with the application, please try again later"
	ErrClientCannotProcessRequest          = "Cannot process the request, please check your input"
	ErrClientServerLongRespond             = "Server took too long to respond, please try again"
	ErrClientInvalidPaymentAmount          = "Payment amount must be greater than zero"
	ErrClientPaymentExceedsDue             = "Payment amount exceeds the remaining due amount"
	ErrClientMissingPaymentFields          = "Patient and total amount are required for a first payment"
	ErrClientRecordNotFound                = "Payment record not found"
	ErrClientRecordNotRetryable            = "Payment record is not in a failed state"
)

// Dev-facing messages. Logged, never returned to clients in production.
const (
	ErrDevValidationFailed           = "request validation failed"
	ErrDevInvalidInput               = "invalid input"
	ErrDevCannotParseJSON            = "failed to parse JSON body"
	ErrDevCannotMarshalJSON          = "failed to marshal value to JSON"
	ErrDevServerDeadlineExceeded     = "server deadline exceeded"
	ErrDevServerProcess              = "server failed to process the request"
	ErrDevMissingRequestID           = "request id missing from context"
	ErrDevURLParamIDValidationFailed = "URL parameter %s failed validation"

	ErrDevMongoDBFindDocument   = "mongodb failed to find document"
	ErrDevMongoDBInsertDocument = "mongodb failed to insert document"
	ErrDevMongoDBUpdateDocument = "mongodb failed to update document"
	ErrDevMongoDBDeleteDocument = "mongodb failed to delete document"
	ErrDevMongoDBIterateCursor  = "mongodb failed to iterate cursor"

	ErrDevRedisSetData       = "redis failed to set data"
	ErrDevRedisGetData       = "redis failed to get data"
	ErrDevRedisDeleteData    = "redis failed to delete data"
	ErrDevRedisUnlock        = "redis lock release failed"
	ErrDevRedisGetNoData     = "redis has no data for key %s"

	ErrDevRabbitMQPublishMessage = "rabbitmq failed to publish message to queue %s"

	ErrDevMinioPutObject = "minio failed to store object in bucket %s"

	ErrDevCreateHTTPRequest = "failed to create HTTP request"
	ErrDevSendHTTPRequest   = "failed to send HTTP request"

	ErrDevLedgerStoreCreate = "ledger store rejected create"
	ErrDevLedgerStoreUpdate = "ledger store rejected update"
	ErrDevLedgerStoreList   = "ledger store list failed"
	ErrDevLedgerStoreDecode = "failed to decode ledger store response"
	ErrDevInvoiceStoreCreate = "invoice store rejected create"

	ErrDevTokenSign = "failed to sign service token"
)
