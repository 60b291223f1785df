package config

type InternalConfig struct {
	App          App
	JWT          AppJWT
	LedgerStore  AppLedgerStore
	InvoiceStore AppInvoiceStore
	Invoice      AppInvoice
	Reconciler   AppReconciler
}

type App struct {
	Env                         string
	Port                        string
	Version                     string
	Address                     string
	Timezone                    string
	EndpointPrefix              string
	MaxRequests                 int
	ShutdownTimeoutInSeconds    int
	MaxTimeRequestsPerSeconds   int
	RequestBodyLimitInMegabyte  int
	SyncConfirmTimeoutInSeconds int
}

type AppJWT struct {
	Secret        string
	ExpTimeInHour int
}

// AppLedgerStore points at the remote document store holding the canonical
// payment record collection.
type AppLedgerStore struct {
	BaseUrl                 string
	RequestTimeoutInSeconds int
}

type AppInvoiceStore struct {
	BaseUrl                 string
	RequestTimeoutInSeconds int
}

// AppInvoice configures invoice generation and the delivery worker.
type AppInvoice struct {
	QueueName string
	DeadQueue string
	// MaxQueue defines how many queued invoices the worker processes per tick
	MaxQueue                int
	MaxFailedCount          int
	DueInDays               int
	WorkerIntervalInSeconds int
	ThrottleRetryInSeconds  int
	ArchiveBucketName       string
}

type AppReconciler struct {
	IntervalInSeconds   int
	LockTTLInSeconds    int
	MaxFetchesPerMinute int
}
