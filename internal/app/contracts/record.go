package contracts

import (
	"context"
	"medledger-service/internal/app/models"
)

// RecordRepository is the durable local store backing the in-memory snapshot.
// Unsynced and failed records live here too, so optimistic state survives a
// process restart.
type RecordRepository interface {
	FindAll(ctx context.Context) ([]models.PaymentRecord, error)
	Upsert(ctx context.Context, record *models.PaymentRecord) error
	DeleteByID(ctx context.Context, recordID string) error
}

// LedgerStoreClient is the remote document store for payment records. It is
// consumed as a black box with at-least-once semantics; calls may fail or
// time out and are never assumed transactional across records.
type LedgerStoreClient interface {
	Create(ctx context.Context, record *models.PaymentRecord) (remoteID string, err error)
	Update(ctx context.Context, remoteID string, record *models.PaymentRecord) error
	List(ctx context.Context) ([]models.PaymentRecord, error)
}

// SyncCoordinator wraps the ledger engine's results with local-first writes
// and background remote confirmation.
type SyncCoordinator interface {
	// Submit stores the record locally and returns immediately; remote
	// confirmation proceeds in the background and only ever touches
	// syncState, remoteId and syncedAt.
	Submit(ctx context.Context, record *models.PaymentRecord) *models.PaymentRecord
	// Retry re-runs confirmation for a failed record. Safe to call
	// repeatedly; concurrent calls for one record coalesce.
	Retry(ctx context.Context, recordID string) (*models.PaymentRecord, error)
	Get(recordID string) (*models.PaymentRecord, bool)
	All() []models.PaymentRecord
	Remove(ctx context.Context, recordID string) error
	// Reconcile merges a freshly fetched remote collection into local state
	// without corrupting unsynced records.
	Reconcile(ctx context.Context, remote []models.PaymentRecord)
	// Resume redispatches confirmation for records persisted in a non-synced
	// state, picking up work a restart interrupted.
	Resume(ctx context.Context)
	// Wait blocks until all in-flight confirmations have resolved.
	Wait()
}
