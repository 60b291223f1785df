package contracts

import (
	"context"
	"medledger-service/internal/app/models"
)

// PaymentApplied is emitted once per successful ledger append. It is fired by
// the usecase, not the engine, so the engine stays I/O-free.
type PaymentApplied struct {
	Record *models.PaymentRecord
	Entry  models.PaymentEntry
}

// PaymentEventBus decouples ledger mutations from their side-effect
// consumers. Publish never blocks the payment path.
type PaymentEventBus interface {
	Publish(ctx context.Context, event PaymentApplied)
	Subscribe() <-chan PaymentApplied
	Close()
}
