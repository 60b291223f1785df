package ledgersync

import (
	"context"
	"errors"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/constvars"
	"medledger-service/internal/pkg/exceptions"
	"medledger-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
)

type syncCoordinator struct {
	Snapshot         *Snapshot
	RecordRepository contracts.RecordRepository
	LedgerStore      contracts.LedgerStoreClient
	Log              *zap.Logger
	confirmTimeout   time.Duration

	mu      sync.Mutex
	flights map[string]*flight
	wg      sync.WaitGroup
}

// flight serializes remote confirmation per logical record. While one
// confirmation is in flight, further submit/retry calls for the same record
// coalesce into a single follow-up run instead of racing it.
type flight struct {
	busy   bool
	queued bool
}

var (
	syncCoordinatorInstance contracts.SyncCoordinator
	onceSyncCoordinator     sync.Once
)

func NewSyncCoordinator(
	snapshot *Snapshot,
	recordRepository contracts.RecordRepository,
	ledgerStore contracts.LedgerStoreClient,
	confirmTimeout time.Duration,
	logger *zap.Logger,
) contracts.SyncCoordinator {
	onceSyncCoordinator.Do(func() {
		syncCoordinatorInstance = newSyncCoordinator(snapshot, recordRepository, ledgerStore, confirmTimeout, logger)
	})
	return syncCoordinatorInstance
}

func newSyncCoordinator(
	snapshot *Snapshot,
	recordRepository contracts.RecordRepository,
	ledgerStore contracts.LedgerStoreClient,
	confirmTimeout time.Duration,
	logger *zap.Logger,
) *syncCoordinator {
	if confirmTimeout <= 0 {
		confirmTimeout = 10 * time.Second
	}
	return &syncCoordinator{
		Snapshot:         snapshot,
		RecordRepository: recordRepository,
		LedgerStore:      ledgerStore,
		Log:              logger,
		confirmTimeout:   confirmTimeout,
		flights:          make(map[string]*flight),
	}
}

func (c *syncCoordinator) Submit(ctx context.Context, record *models.PaymentRecord) *models.PaymentRecord {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	// a synced record that just took a new entry must confirm again
	local := record.Clone()
	local.SyncState = models.SyncLocal
	c.Snapshot.Put(local)
	c.persist(ctx, local)

	c.Log.Info("syncCoordinator.Submit stored record locally",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, local.ID),
		zap.String(constvars.LoggingSyncStateKey, string(local.SyncState)),
	)

	c.dispatch(local.ID)
	return local
}

func (c *syncCoordinator) Retry(ctx context.Context, recordID string) (*models.PaymentRecord, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	record, ok := c.Snapshot.Get(recordID)
	if !ok {
		return nil, exceptions.ErrRecordNotFound(nil)
	}
	if record.SyncState == models.SyncSynced {
		return nil, exceptions.ErrRecordNotRetryable(nil)
	}

	c.Log.Info("syncCoordinator.Retry scheduling confirmation",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingRecordIDKey, recordID),
		zap.String(constvars.LoggingSyncStateKey, string(record.SyncState)),
	)

	c.dispatch(recordID)
	return record, nil
}

func (c *syncCoordinator) Get(recordID string) (*models.PaymentRecord, bool) {
	return c.Snapshot.Get(recordID)
}

func (c *syncCoordinator) All() []models.PaymentRecord {
	return c.Snapshot.All()
}

func (c *syncCoordinator) Remove(ctx context.Context, recordID string) error {
	if _, ok := c.Snapshot.Get(recordID); !ok {
		return exceptions.ErrRecordNotFound(nil)
	}
	c.Snapshot.Delete(recordID)
	return c.RecordRepository.DeleteByID(ctx, recordID)
}

// Reconcile merges a freshly listed remote collection. Local records that are
// not yet confirmed keep their local truth; remote copies only win once the
// local side has nothing unconfirmed. A remote row matching an unsynced local
// record by composite identity heals it: the local record adopts the remote
// id and a confirmation is dispatched so the update path pushes any entries
// the remote twin is missing, instead of creating a duplicate row.
func (c *syncCoordinator) Reconcile(ctx context.Context, remote []models.PaymentRecord) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	for i := range remote {
		remoteRecord := &remote[i]
		if remoteRecord.RemoteID == "" {
			continue
		}

		if local := c.findByRemoteID(remoteRecord.RemoteID); local != nil {
			if local.SyncState == models.SyncSynced {
				adopted := remoteRecord.Clone()
				adopted.ID = local.ID
				adopted.SyncState = models.SyncSynced
				adopted.SyncedAt = local.SyncedAt
				c.Snapshot.Put(adopted)
				c.persist(ctx, adopted)
			}
			continue
		}

		if local := c.findUnsyncedTwin(remoteRecord); local != nil {
			// adopting the id alone is not enough: the local record may carry
			// entries the remote twin never received, so it must run the
			// normal confirmation path before it can claim synced
			adopted, _ := c.Snapshot.Update(local.ID, func(record *models.PaymentRecord) {
				record.RemoteID = remoteRecord.RemoteID
			})
			if adopted != nil {
				c.persist(ctx, adopted)
				c.Log.Info("syncCoordinator.Reconcile adopted remote identity for unsynced record",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.String(constvars.LoggingRecordIDKey, adopted.ID),
					zap.String(constvars.LoggingRemoteIDKey, remoteRecord.RemoteID),
				)
				c.dispatch(adopted.ID)
			}
			continue
		}

		added := remoteRecord.Clone()
		if added.ID == "" {
			added.ID = utils.GenerateLocalID()
		}
		added.SyncState = models.SyncSynced
		c.Snapshot.Put(added)
		c.persist(ctx, added)
	}
}

// Resume redispatches confirmation for every record loaded in a non-synced
// state. A restart can interrupt a confirmation after the syncing state was
// persisted; without this the record would sit unconfirmed until a user
// retried it by hand.
func (c *syncCoordinator) Resume(ctx context.Context) {
	for _, record := range c.Snapshot.All() {
		if record.SyncState == models.SyncSynced {
			continue
		}
		c.Log.Info("syncCoordinator.Resume redispatching unconfirmed record",
			zap.String(constvars.LoggingRecordIDKey, record.ID),
			zap.String(constvars.LoggingSyncStateKey, string(record.SyncState)),
		)
		c.dispatch(record.ID)
	}
}

// Wait blocks until every in-flight confirmation has resolved. Used on
// shutdown and by tests.
func (c *syncCoordinator) Wait() {
	c.wg.Wait()
}

func (c *syncCoordinator) findByRemoteID(remoteID string) *models.PaymentRecord {
	for _, record := range c.Snapshot.All() {
		if record.RemoteID == remoteID {
			return record.Clone()
		}
	}
	return nil
}

func (c *syncCoordinator) findUnsyncedTwin(remoteRecord *models.PaymentRecord) *models.PaymentRecord {
	remoteCreated := remoteRecord.CreatedAt.Truncate(time.Second)
	for _, record := range c.Snapshot.All() {
		if record.RemoteID != "" || record.SyncState == models.SyncSynced {
			continue
		}
		if record.PatientID == remoteRecord.PatientID &&
			record.TotalAmount == remoteRecord.TotalAmount &&
			record.CreatedAt.Truncate(time.Second).Equal(remoteCreated) {
			return record.Clone()
		}
	}
	return nil
}

// dispatch ensures exactly one confirmation goroutine per record id. Calls
// while one is running set a queued flag handled by the same goroutine.
func (c *syncCoordinator) dispatch(recordID string) {
	c.mu.Lock()
	f, ok := c.flights[recordID]
	if !ok {
		f = &flight{}
		c.flights[recordID] = f
	}
	if f.busy {
		f.queued = true
		c.mu.Unlock()
		return
	}
	f.busy = true
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(recordID)
}

func (c *syncCoordinator) run(recordID string) {
	defer c.wg.Done()
	for {
		c.confirm(recordID)

		c.mu.Lock()
		f := c.flights[recordID]
		if f.queued {
			f.queued = false
			c.mu.Unlock()
			continue
		}
		f.busy = false
		c.mu.Unlock()
		return
	}
}

// confirm performs one remote confirmation attempt. It only ever touches
// syncState, remoteId and syncedAt; the money fields computed by the ledger
// engine are never altered here.
func (c *syncCoordinator) confirm(recordID string) {
	record, _ := c.Snapshot.Update(recordID, func(r *models.PaymentRecord) {
		r.SyncState = models.SyncSyncing
	})
	if record == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.confirmTimeout)
	defer cancel()

	c.persist(ctx, record)

	var remoteID string
	var err error
	if record.RemoteID == "" {
		remoteID, err = c.LedgerStore.Create(ctx, record)
	} else {
		remoteID = record.RemoteID
		err = c.LedgerStore.Update(ctx, record.RemoteID, record)
	}

	if err != nil {
		syncErr := classifySyncError(err)
		failed, _ := c.Snapshot.Update(recordID, func(r *models.PaymentRecord) {
			r.SyncState = models.SyncFailed
		})
		if failed != nil {
			c.persist(ctx, failed)
		}
		c.Log.Warn("syncCoordinator.confirm remote confirmation failed",
			zap.String(constvars.LoggingRecordIDKey, recordID),
			zap.String("sync_reason", string(syncErr.Reason)),
			zap.Error(err),
		)
		return
	}

	now := time.Now()
	synced, _ := c.Snapshot.Update(recordID, func(r *models.PaymentRecord) {
		r.SyncState = models.SyncSynced
		r.RemoteID = remoteID
		r.SyncedAt = &now
	})
	if synced != nil {
		c.persist(ctx, synced)
	}
	c.Log.Info("syncCoordinator.confirm record confirmed by remote store",
		zap.String(constvars.LoggingRecordIDKey, recordID),
		zap.String(constvars.LoggingRemoteIDKey, remoteID),
	)
}

// persist writes through to the durable local store. Failures are logged and
// never surfaced; the in-memory record remains the user-visible truth.
func (c *syncCoordinator) persist(ctx context.Context, record *models.PaymentRecord) {
	if err := c.RecordRepository.Upsert(ctx, record); err != nil {
		c.Log.Error("syncCoordinator.persist local write-through failed",
			zap.String(constvars.LoggingRecordIDKey, record.ID),
			zap.Error(err),
		)
	}
}

func classifySyncError(err error) *exceptions.SyncError {
	var syncErr *exceptions.SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return exceptions.NewSyncError(exceptions.SyncTimeout, err)
	}
	return exceptions.NewSyncError(exceptions.SyncNetworkUnavailable, err)
}
