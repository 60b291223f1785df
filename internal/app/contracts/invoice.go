package contracts

import (
	"context"
	"medledger-service/internal/app/models"
)

// InvoiceStoreClient is the remote document store for invoices. Independent
// of the ledger store; failures here never affect payment writes.
type InvoiceStoreClient interface {
	Create(ctx context.Context, invoice *models.Invoice) (remoteID string, err error)
}

// InvoiceArchive keeps a best-effort document copy of each issued invoice.
type InvoiceArchive interface {
	Archive(ctx context.Context, invoice *models.Invoice) error
}
