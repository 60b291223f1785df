package ledger

import (
	"context"
	"sync"
	"time"

	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/app/services/core/projection"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/dto/requests"
	"medledger-service/internal/pkg/exceptions"
	"medledger-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type ledgerUsecase struct {
	SyncCoordinator contracts.SyncCoordinator
	EventBus        contracts.PaymentEventBus
	Log             *zap.Logger

	// previousKeys carries projection identity between ListRecords calls so a
	// collapsed group keeps its displayed id across refreshes.
	mu           sync.Mutex
	previousKeys map[string]string
}

var (
	ledgerUsecaseInstance contracts.LedgerUsecase
	onceLedgerUsecase     sync.Once
)

func NewLedgerUsecase(
	syncCoordinator contracts.SyncCoordinator,
	eventBus contracts.PaymentEventBus,
	logger *zap.Logger,
) contracts.LedgerUsecase {
	onceLedgerUsecase.Do(func() {
		ledgerUsecaseInstance = newLedgerUsecase(syncCoordinator, eventBus, logger)
	})
	return ledgerUsecaseInstance
}

func newLedgerUsecase(
	syncCoordinator contracts.SyncCoordinator,
	eventBus contracts.PaymentEventBus,
	logger *zap.Logger,
) *ledgerUsecase {
	return &ledgerUsecase{
		SyncCoordinator: syncCoordinator,
		EventBus:        eventBus,
		Log:             logger,
		previousKeys:    make(map[string]string),
	}
}

func (uc *ledgerUsecase) RecordPayment(ctx context.Context, input *requests.PaymentEntryInput) (*models.PaymentRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if err := utils.ValidateStruct(input); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	var existing *models.PaymentRecord
	if input.ExistingRecordID != "" {
		record, ok := uc.SyncCoordinator.Get(input.ExistingRecordID)
		if !ok {
			uc.Log.Warn("ledgerUsecase.RecordPayment existing record not found",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRecordIDKey, input.ExistingRecordID),
			)
		} else {
			existing = record
		}
	}

	updated, err := RecordPayment(existing, input, time.Now())
	if err != nil {
		uc.Log.Info("ledgerUsecase.RecordPayment rejected by ledger engine",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPatientIDKey, input.PatientID),
			zap.Int64(constvars.LoggingAmountKey, input.Amount),
			zap.Error(err),
		)
		return nil, err
	}

	stored := uc.SyncCoordinator.Submit(ctx, updated)

	entry := AppliedEntry(stored)
	uc.EventBus.Publish(ctx, contracts.PaymentApplied{
		Record: stored.Clone(),
		Entry:  entry,
	})

	utils.LogBusinessEvent(uc.Log, "payment_applied", requestID,
		zap.String(constvars.LoggingRecordIDKey, stored.ID),
		zap.String(constvars.LoggingEntryIDKey, entry.ID),
		zap.Int64(constvars.LoggingAmountKey, entry.Amount),
		zap.String(constvars.LoggingSyncStateKey, string(stored.SyncState)),
	)
	return stored, nil
}

func (uc *ledgerUsecase) RetrySync(ctx context.Context, recordID string) (*models.PaymentRecord, error) {
	return uc.SyncCoordinator.Retry(ctx, recordID)
}

// ListRecords returns the deduplicated view of the collection, unsynced
// records first.
func (uc *ledgerUsecase) ListRecords(ctx context.Context) ([]models.PaymentRecord, error) {
	uc.mu.Lock()
	previousKeys := uc.previousKeys
	uc.mu.Unlock()

	output := projection.Project(projection.Input{
		Records:      uc.SyncCoordinator.All(),
		PreviousKeys: previousKeys,
	})

	uc.mu.Lock()
	uc.previousKeys = output.Keys
	uc.mu.Unlock()

	return output.Records, nil
}

func (uc *ledgerUsecase) DeleteRecord(ctx context.Context, recordID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if err := uc.SyncCoordinator.Remove(ctx, recordID); err != nil {
		return err
	}
	uc.Log.Info("ledgerUsecase.DeleteRecord record removed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, recordID),
	)
	return nil
}
