package invoices

import (
	"context"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/services/shared/invoicequeue"
	"medledger-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// Worker periodically delivers queued invoices to the invoice store with
// at-least-once semantics.
type Worker struct {
	log          *zap.Logger
	cfg          *config.InternalConfig
	locker       contracts.LockerService
	queue        *invoicequeue.Service
	invoiceStore contracts.InvoiceStoreClient
	stop         chan struct{}
}

func NewWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	queue *invoicequeue.Service,
	invoiceStore contracts.InvoiceStoreClient,
) *Worker {
	return &Worker{
		log:          log,
		cfg:          cfg,
		locker:       lockerSvc,
		queue:        queue,
		invoiceStore: invoiceStore,
		stop:         make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (w *Worker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Invoice.WorkerIntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case now := <-ticker.C:
				w.runOnce(ctx, now)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *Worker) runOnce(ctx context.Context, now time.Time) {
	ttl := time.Duration(w.cfg.Invoice.WorkerIntervalInSeconds) * time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.RedisKeyInvoiceWorkerLock, ttl)
	if err != nil {
		w.log.Info("invoice worker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		w.log.Info("invoice worker lock not acquired; another instance is running")
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.RedisKeyInvoiceWorkerLock, lockVal); err != nil {
			w.log.Error("invoice worker unlock failed", zap.Error(err))
		}
	}()

	max := w.cfg.Invoice.MaxQueue
	if max <= 0 {
		max = 1
	}
	out, err := w.queue.FetchN(ctx, &invoicequeue.FetchNInput{Max: max})
	if err != nil {
		w.log.Info("invoice queue FetchN error", zap.Error(err))
		return
	}

	for _, item := range out.Items {
		w.processItem(ctx, item)
	}
}

func (w *Worker) processItem(ctx context.Context, item invoicequeue.QueuedItem) {
	msg := item.Message

	remoteID, err := w.invoiceStore.Create(ctx, &msg.Invoice)
	if err != nil {
		w.requeueOnError(ctx, item, msg, err)
		return
	}

	if _, ackErr := w.queue.AckMessage(ctx, &invoicequeue.AckMessageInput{DeliveryTag: item.DeliveryTag}); ackErr != nil {
		w.log.Info("ack failed after successful delivery",
			zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
			zap.Error(ackErr),
		)
	}
	w.log.Info("invoice delivered to store",
		zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
		zap.String(constvars.LoggingRemoteIDKey, remoteID),
	)
}

func (w *Worker) requeueOnError(ctx context.Context, item invoicequeue.QueuedItem, msg invoicequeue.InvoiceQueueMessage, err error) {
	msg.FailedCount++

	maxFailed := w.cfg.Invoice.MaxFailedCount
	if maxFailed <= 0 {
		maxFailed = 5
	}
	if msg.FailedCount >= maxFailed {
		if _, e := w.queue.EnqueueToDeadQueue(ctx, &invoicequeue.EnqueueToDLQInput{Message: msg}); e != nil {
			w.log.Info("enqueue to DLQ failed",
				zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
				zap.Error(e),
			)
			return
		}
		_, _ = w.queue.AckMessage(ctx, &invoicequeue.AckMessageInput{DeliveryTag: item.DeliveryTag})
		w.log.Info("invoice moved to DLQ",
			zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
			zap.Int("failed_count", msg.FailedCount),
			zap.Error(err),
		)
		return
	}

	if _, e := w.queue.Reenqueue(ctx, &invoicequeue.ReenqueueInput{Message: msg}); e != nil {
		w.log.Info("invoice reenqueue failed",
			zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
			zap.Error(e),
		)
		return
	}
	_, _ = w.queue.AckMessage(ctx, &invoicequeue.AckMessageInput{DeliveryTag: item.DeliveryTag})
	w.log.Info("retryable delivery failure; invoice requeued",
		zap.String(constvars.LoggingInvoiceNumberKey, msg.Invoice.InvoiceNumber),
		zap.Int("failed_count", msg.FailedCount),
		zap.Error(err),
	)
}
