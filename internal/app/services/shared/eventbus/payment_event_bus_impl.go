package eventbus

import (
	"context"
	"sync"

	"medledger-service/internal/app/contracts"
	"medledger-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

type paymentEventBus struct {
	Log    *zap.Logger
	mu     sync.Mutex
	closed bool
	ch     chan contracts.PaymentApplied
}

var (
	paymentEventBusInstance contracts.PaymentEventBus
	oncePaymentEventBus     sync.Once
)

func NewPaymentEventBus(logger *zap.Logger, buffer int) contracts.PaymentEventBus {
	oncePaymentEventBus.Do(func() {
		paymentEventBusInstance = newPaymentEventBus(logger, buffer)
	})
	return paymentEventBusInstance
}

func newPaymentEventBus(logger *zap.Logger, buffer int) *paymentEventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &paymentEventBus{
		Log: logger,
		ch:  make(chan contracts.PaymentApplied, buffer),
	}
}

// Publish never blocks the caller. If the subscriber has fallen behind and the
// buffer is full the event is dropped with a log line; invoice generation is
// best-effort and must not stall payment recording.
func (b *paymentEventBus) Publish(ctx context.Context, event contracts.PaymentApplied) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	select {
	case b.ch <- event:
	default:
		b.Log.Warn("paymentEventBus.Publish buffer full, event dropped",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingRecordIDKey, event.Record.ID),
			zap.String(constvars.LoggingEntryIDKey, event.Entry.ID),
		)
	}
}

func (b *paymentEventBus) Subscribe() <-chan contracts.PaymentApplied {
	return b.ch
}

func (b *paymentEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
