package config

import (
	"medledger-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "medledger"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "medledger-invoices"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                         utils.GetEnvString("APP_ENV", "development"),
			Port:                        utils.GetEnvString("APP_PORT", ":8080"),
			Version:                     utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                     utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                    utils.GetEnvString("APP_TIMEZONE", "Asia/Kolkata"),
			EndpointPrefix:              utils.GetEnvString("APP_ENDPOINT_PREFIX", "/v1"),
			MaxRequests:                 utils.GetEnvInt("APP_MAX_REQUEST", 10),
			ShutdownTimeoutInSeconds:    utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			MaxTimeRequestsPerSeconds:   utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 10),
			RequestBodyLimitInMegabyte:  utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 6),
			SyncConfirmTimeoutInSeconds: utils.GetEnvInt("APP_SYNC_CONFIRM_TIMEOUT_IN_SECONDS", 10),
		},
		JWT: AppJWT{
			Secret:        utils.GetEnvString("JWT_SECRET", "anyjwt"),
			ExpTimeInHour: utils.GetEnvInt("JWT_EXP_TIME_IN_HOUR", 1),
		},
		LedgerStore: AppLedgerStore{
			BaseUrl:                 utils.GetEnvString("LEDGER_STORE_BASE_URL", "http://localhost:5555/ledger"),
			RequestTimeoutInSeconds: utils.GetEnvInt("LEDGER_STORE_REQUEST_TIMEOUT_IN_SECONDS", 10),
		},
		InvoiceStore: AppInvoiceStore{
			BaseUrl:                 utils.GetEnvString("INVOICE_STORE_BASE_URL", "http://localhost:5556/invoices"),
			RequestTimeoutInSeconds: utils.GetEnvInt("INVOICE_STORE_REQUEST_TIMEOUT_IN_SECONDS", 10),
		},
		Invoice: AppInvoice{
			QueueName:               utils.GetEnvString("APP_RABBITMQ_INVOICE_QUEUE", "invoice_delivery"),
			DeadQueue:               utils.GetEnvString("APP_RABBITMQ_INVOICE_DEAD_QUEUE", "invoice_delivery_dead"),
			MaxQueue:                utils.GetEnvInt("INVOICE_WORKER_MAX_QUEUE", 20),
			MaxFailedCount:          utils.GetEnvInt("INVOICE_WORKER_MAX_FAILED_COUNT", 5),
			DueInDays:               utils.GetEnvInt("INVOICE_DUE_IN_DAYS", 30),
			WorkerIntervalInSeconds: utils.GetEnvInt("INVOICE_WORKER_INTERVAL_IN_SECONDS", 15),
			ThrottleRetryInSeconds:  utils.GetEnvInt("INVOICE_WORKER_THROTTLE_RETRY_IN_SECONDS", 60),
			ArchiveBucketName:       utils.GetEnvString("INVOICE_ARCHIVE_BUCKET_NAME", "medledger-invoices"),
		},
		Reconciler: AppReconciler{
			IntervalInSeconds:   utils.GetEnvInt("RECONCILER_INTERVAL_IN_SECONDS", 60),
			LockTTLInSeconds:    utils.GetEnvInt("RECONCILER_LOCK_TTL_IN_SECONDS", 30),
			MaxFetchesPerMinute: utils.GetEnvInt("RECONCILER_MAX_FETCHES_PER_MINUTE", 6),
		},
	}
}
