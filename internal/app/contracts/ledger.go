package contracts

import (
	"context"
	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/dto/requests"
)

type LedgerUsecase interface {
	RecordPayment(ctx context.Context, input *requests.PaymentEntryInput) (*models.PaymentRecord, error)
	RetrySync(ctx context.Context, recordID string) (*models.PaymentRecord, error)
	ListRecords(ctx context.Context) ([]models.PaymentRecord, error)
	DeleteRecord(ctx context.Context, recordID string) error
}
