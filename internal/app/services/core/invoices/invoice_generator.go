package invoices

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medledger-service/internal/app/config"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/app/services/shared/invoicequeue"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Generator issues one invoice per applied payment entry, strictly
// best-effort: any failure here is logged and swallowed, never surfaced to
// the payment path, and never retried against the ledger.
type Generator struct {
	log      *zap.Logger
	cfg      *config.InternalConfig
	queue    *invoicequeue.Service
	archive  contracts.InvoiceArchive
	instance string
	counter  atomic.Uint64
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewGenerator(
	log *zap.Logger,
	cfg *config.InternalConfig,
	queue *invoicequeue.Service,
	archive contracts.InvoiceArchive,
) *Generator {
	return &Generator{
		log:      log,
		cfg:      cfg,
		queue:    queue,
		archive:  archive,
		instance: uuid.NewString()[:8],
		stop:     make(chan struct{}),
	}
}

// Start consumes applied-payment events until the bus closes or stop is
// called. It returns a stop function.
func (g *Generator) Start(ctx context.Context, events <-chan contracts.PaymentApplied) (stop func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stop:
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				g.handle(ctx, event)
			}
		}
	}()

	return func() {
		close(g.stop)
		g.wg.Wait()
	}
}

func (g *Generator) handle(ctx context.Context, event contracts.PaymentApplied) {
	defer func() {
		// invoice generation must never take the service down
		if r := recover(); r != nil {
			g.log.Error("invoices.Generator.handle panic recovered",
				zap.Any("panic", r),
			)
		}
	}()

	invoice := g.Build(event, time.Now())

	if err := g.archive.Archive(ctx, invoice); err != nil {
		g.log.Warn("invoices.Generator.handle archive failed",
			zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
			zap.Error(err),
		)
	}

	_, err := g.queue.Enqueue(ctx, &invoicequeue.EnqueueInput{
		Message: invoicequeue.InvoiceQueueMessage{
			ID:      utils.GenerateLocalID(),
			Invoice: *invoice,
		},
	})
	if err != nil {
		g.log.Warn("invoices.Generator.handle enqueue failed, invoice dropped",
			zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
			zap.String(constvars.LoggingRecordIDKey, event.Record.ID),
			zap.Error(err),
		)
		return
	}

	g.log.Info("invoices.Generator.handle invoice issued",
		zap.String(constvars.LoggingInvoiceNumberKey, invoice.InvoiceNumber),
		zap.String(constvars.LoggingRecordIDKey, event.Record.ID),
		zap.String(constvars.LoggingEntryIDKey, event.Entry.ID),
		zap.Int64(constvars.LoggingAmountKey, invoice.Amount),
	)
}

// Build constructs the invoice for one applied entry. The amount is the
// incremental entry amount; the running record total never appears on an
// invoice.
func (g *Generator) Build(event contracts.PaymentApplied, now time.Time) *models.Invoice {
	dueInDays := g.cfg.Invoice.DueInDays
	if dueInDays <= 0 {
		dueInDays = 30
	}

	description := event.Entry.Description
	if description == "" {
		description = fmt.Sprintf("Payment received via %s", event.Entry.Method)
	}

	return &models.Invoice{
		InvoiceNumber: g.nextNumber(now),
		PatientID:     event.Record.PatientID,
		PatientName:   event.Record.PatientName,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, dueInDays),
		Amount:        event.Entry.Amount,
		Status:        models.InvoiceIssued,
		LineItems: []models.InvoiceLineItem{
			{Description: description, Amount: event.Entry.Amount},
		},
		PaymentRef: models.PaymentRef{
			RecordID: event.Record.ID,
			EntryID:  event.Entry.ID,
		},
		GeneratedAt:     now,
		IsAutoGenerated: true,
	}
}

// nextNumber combines a timestamp, an instance id and a monotonic counter.
// The instance id keeps numbers unique across restarts and replicas; the
// counter alone would reset to zero with the process.
func (g *Generator) nextNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s-%06d", now.UTC().Format("20060102150405"), g.instance, g.counter.Add(1))
}
