package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/app/delivery/http/controllers"
	"medledger-service/internal/app/delivery/http/middlewares"
	"medledger-service/internal/app/delivery/http/routers"
	"medledger-service/internal/app/drivers/database"
	"medledger-service/internal/app/drivers/logger"
	"medledger-service/internal/app/drivers/messaging"
	"medledger-service/internal/app/drivers/storage"
	"medledger-service/internal/app/services/core/invoices"
	"medledger-service/internal/app/services/core/ledger"
	"medledger-service/internal/app/services/core/ledgersync"
	"medledger-service/internal/app/services/core/records"
	"medledger-service/internal/app/services/shared/eventbus"
	"medledger-service/internal/app/services/shared/invoicequeue"
	"medledger-service/internal/app/services/shared/invoicestore"
	"medledger-service/internal/app/services/shared/jwtmanager"
	"medledger-service/internal/app/services/shared/ledgerstore"
	"medledger-service/internal/app/services/shared/locker"
	redisrepo "medledger-service/internal/app/services/shared/redis"
	miniostorage "medledger-service/internal/app/services/shared/storage"

	"github.com/go-chi/chi/v5"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	bootLog := logger.NewLogrusLogger(internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		bootLog.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		MongoClient:    mongoClient,
		MongoDB:        mongoClient.Database(driverConfig.MongoDB.DbName),
		Redis:          redisClient,
		Minio:          minioClient,
		Logger:         zapLogger,
		RabbitMQ:       rabbitConn,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	bootstrapingTheApp(&bootstrap)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			bootLog.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	bootLog.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		bootLog.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := bootstrap.Shutdown(shutdownCtx); err != nil {
		bootLog.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) {
	ctx := context.Background()

	// Redis and locks
	redisRepository := redisrepo.NewRedisRepository(bootstrap.Redis)
	lockerService := locker.NewLockService(redisRepository, bootstrap.Logger)

	// Outbound service tokens
	jwtManager, err := jwtmanager.NewJWTManager(bootstrap.InternalConfig, bootstrap.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize JWT manager: %v", err)
	}

	// Remote stores
	ledgerStoreClient := ledgerstore.NewLedgerStoreClient(bootstrap.InternalConfig, jwtManager, bootstrap.Logger)
	invoiceStoreClient := invoicestore.NewInvoiceStoreClient(bootstrap.InternalConfig, jwtManager, bootstrap.Logger)

	// Local record persistence and in-memory state
	recordRepository := records.NewRecordMongoRepository(bootstrap.MongoDB)
	snapshot := ledgersync.NewSnapshot()
	persisted, err := recordRepository.FindAll(ctx)
	if err != nil {
		log.Fatalf("Failed to load persisted payment records: %v", err)
	}
	snapshot.Load(persisted)

	// Sync coordination
	confirmTimeout := time.Duration(bootstrap.InternalConfig.App.SyncConfirmTimeoutInSeconds) * time.Second
	syncCoordinator := ledgersync.NewSyncCoordinator(snapshot, recordRepository, ledgerStoreClient, confirmTimeout, bootstrap.Logger)
	bootstrap.DrainSync = syncCoordinator.Wait
	syncCoordinator.Resume(ctx)

	reconciler := ledgersync.NewReconciler(bootstrap.Logger, bootstrap.InternalConfig, lockerService, ledgerStoreClient, syncCoordinator)
	bootstrap.ReconcilerStop = reconciler.Start(ctx)

	// Invoice pipeline
	invoiceQueue, err := invoicequeue.NewService(
		bootstrap.RabbitMQ,
		bootstrap.Logger,
		bootstrap.InternalConfig.Invoice.QueueName,
		bootstrap.InternalConfig.Invoice.DeadQueue,
		bootstrap.InternalConfig.Invoice.MaxQueue,
	)
	if err != nil {
		log.Fatalf("Failed to initialize invoice queue: %v", err)
	}
	invoiceArchive := miniostorage.NewMinioInvoiceArchive(bootstrap.Minio, bootstrap.InternalConfig.Invoice.ArchiveBucketName)

	eventBus := eventbus.NewPaymentEventBus(bootstrap.Logger, 64)
	invoiceGenerator := invoices.NewGenerator(bootstrap.Logger, bootstrap.InternalConfig, invoiceQueue, invoiceArchive)
	generatorStop := invoiceGenerator.Start(ctx, eventBus.Subscribe())

	invoiceWorker := invoices.NewWorker(bootstrap.Logger, bootstrap.InternalConfig, lockerService, invoiceQueue, invoiceStoreClient)
	workerStop := invoiceWorker.Start(ctx)
	bootstrap.WorkerStop = func() {
		workerStop()
		eventBus.Close()
		generatorStop()
	}

	// Ledger
	ledgerUsecase := ledger.NewLedgerUsecase(syncCoordinator, eventBus, bootstrap.Logger)
	ledgerController := controllers.NewLedgerController(bootstrap.Logger, ledgerUsecase)

	// HTTP surface
	mws := middlewares.NewMiddlewares()
	bootstrap.Router.Use(mws.RequestIDMiddleware)
	bootstrap.Router.Use(mws.Logging(bootstrap.Logger))
	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, mws, ledgerController)
}
