package ledgersync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"medledger-service/internal/app/models"
	"medledger-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRecordRepository struct {
	mu      sync.Mutex
	records map[string]models.PaymentRecord
}

func newFakeRecordRepository() *fakeRecordRepository {
	return &fakeRecordRepository{records: make(map[string]models.PaymentRecord)}
}

func (f *fakeRecordRepository) FindAll(ctx context.Context) ([]models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PaymentRecord, 0, len(f.records))
	for _, record := range f.records {
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeRecordRepository) Upsert(ctx context.Context, record *models.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[record.ID] = *record.Clone()
	return nil
}

func (f *fakeRecordRepository) DeleteByID(ctx context.Context, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, recordID)
	return nil
}

type fakeLedgerStore struct {
	mu          sync.Mutex
	failing     bool
	failWith    error
	createCalls int
	updateCalls int
	nextID      int
	rows        map[string]models.PaymentRecord
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{rows: make(map[string]models.PaymentRecord)}
}

func (f *fakeLedgerStore) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *fakeLedgerStore) Create(ctx context.Context, record *models.PaymentRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failing {
		if f.failWith != nil {
			return "", f.failWith
		}
		return "", exceptions.NewSyncError(exceptions.SyncNetworkUnavailable, errors.New("connection refused"))
	}
	f.nextID++
	remoteID := fmt.Sprintf("remote-%d", f.nextID)
	f.rows[remoteID] = *record.Clone()
	return remoteID, nil
}

func (f *fakeLedgerStore) Update(ctx context.Context, remoteID string, record *models.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failing {
		return exceptions.NewSyncError(exceptions.SyncNetworkUnavailable, errors.New("connection refused"))
	}
	f.rows[remoteID] = *record.Clone()
	return nil
}

func (f *fakeLedgerStore) List(ctx context.Context) ([]models.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PaymentRecord, 0, len(f.rows))
	for remoteID, record := range f.rows {
		row := *record.Clone()
		row.RemoteID = remoteID
		out = append(out, row)
	}
	return out, nil
}

func testRecord(id string, total, paid int64) *models.PaymentRecord {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return &models.PaymentRecord{
		ID:          id,
		PatientID:   "pat-1",
		PatientName: "Asha Verma",
		TotalAmount: total,
		PaidAmount:  paid,
		DueAmount:   total - paid,
		Status:      models.StatusPartial,
		SyncState:   models.SyncLocal,
		CreatedAt:   now,
		PaymentHistory: []models.PaymentEntry{
			{ID: "entry-1", Amount: paid, Method: "cash", PaidAt: now},
		},
		LastPaymentAt: now,
	}
}

func newTestCoordinator(store *fakeLedgerStore) (*syncCoordinator, *fakeRecordRepository) {
	repo := newFakeRecordRepository()
	coordinator := newSyncCoordinator(NewSnapshot(), repo, store, time.Second, zap.NewNop())
	return coordinator, repo
}

func TestSubmitConfirmsInBackground(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, repo := newTestCoordinator(store)

	returned := coordinator.Submit(context.Background(), testRecord("rec-1", 1000, 400))

	// immediate local result, before confirmation resolves
	assert.Equal(t, models.SyncLocal, returned.SyncState)
	assert.Empty(t, returned.RemoteID)

	coordinator.Wait()

	synced, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, models.SyncSynced, synced.SyncState)
	assert.Equal(t, "remote-1", synced.RemoteID)
	require.NotNil(t, synced.SyncedAt)
	assert.Equal(t, int64(400), synced.PaidAmount)

	persisted, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, models.SyncSynced, persisted[0].SyncState)
}

func TestSubmitFailureRetainsRecord(t *testing.T) {
	store := newFakeLedgerStore()
	store.setFailing(true)
	coordinator, _ := newTestCoordinator(store)

	coordinator.Submit(context.Background(), testRecord("rec-1", 1000, 400))
	coordinator.Wait()

	failed, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, models.SyncFailed, failed.SyncState)
	assert.Empty(t, failed.RemoteID)

	// financial fields are untouched by the failure
	assert.Equal(t, int64(400), failed.PaidAmount)
	assert.Equal(t, int64(600), failed.DueAmount)
	assert.Len(t, failed.PaymentHistory, 1)
}

func TestRetryAfterFailureSyncsOnce(t *testing.T) {
	store := newFakeLedgerStore()
	store.setFailing(true)
	coordinator, _ := newTestCoordinator(store)

	coordinator.Submit(context.Background(), testRecord("rec-1", 1000, 400))
	coordinator.Wait()

	record, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	require.Equal(t, models.SyncFailed, record.SyncState)

	store.setFailing(false)

	// two retries in quick succession coalesce; only one remote row appears
	_, err := coordinator.Retry(context.Background(), "rec-1")
	require.NoError(t, err)
	_, err = coordinator.Retry(context.Background(), "rec-1")
	require.NoError(t, err)
	coordinator.Wait()

	synced, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, models.SyncSynced, synced.SyncState)
	assert.NotEmpty(t, synced.RemoteID)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.rows, 1)
}

func TestRetryUnknownRecord(t *testing.T) {
	coordinator, _ := newTestCoordinator(newFakeLedgerStore())

	_, err := coordinator.Retry(context.Background(), "missing")
	require.Error(t, err)
}

func TestRetryOnSyncedRecordIsRejected(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	coordinator.Submit(context.Background(), testRecord("rec-1", 1000, 400))
	coordinator.Wait()

	_, err := coordinator.Retry(context.Background(), "rec-1")
	require.Error(t, err)
}

func TestReconcileHealsUnsyncedTwin(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	local := testRecord("rec-1", 1000, 400)
	local.SyncState = models.SyncFailed
	coordinator.Snapshot.Put(local)

	remoteTwin := *local.Clone()
	remoteTwin.ID = ""
	remoteTwin.RemoteID = "remote-9"
	remoteTwin.SyncState = models.SyncSynced

	coordinator.Reconcile(context.Background(), []models.PaymentRecord{remoteTwin})
	coordinator.Wait()

	healed, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, models.SyncSynced, healed.SyncState)
	assert.Equal(t, "remote-9", healed.RemoteID)
	assert.Equal(t, 1, coordinator.Snapshot.Len())

	// the adopted id routes confirmation through update, never create
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 0, store.createCalls)
	assert.Equal(t, 1, store.updateCalls)
}

func TestReconcileHealPushesEntriesRemoteIsMissing(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	// the first create landed remotely but its response was lost, then a
	// second entry was appended locally and its own sync failed
	local := testRecord("rec-1", 1000, 400)
	local.PaymentHistory = append(local.PaymentHistory, models.PaymentEntry{
		ID: "entry-2", Amount: 300, Method: "cash", PaidAt: local.LastPaymentAt,
	})
	local.PaidAmount = 700
	local.DueAmount = 300
	local.SyncState = models.SyncFailed
	coordinator.Snapshot.Put(local)

	remoteTwin := *testRecord("", 1000, 400)
	remoteTwin.RemoteID = "remote-9"
	remoteTwin.SyncState = models.SyncSynced
	store.mu.Lock()
	store.rows["remote-9"] = remoteTwin
	store.mu.Unlock()

	coordinator.Reconcile(context.Background(), []models.PaymentRecord{remoteTwin})
	coordinator.Wait()

	healed, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, models.SyncSynced, healed.SyncState)
	assert.Equal(t, "remote-9", healed.RemoteID)
	assert.Equal(t, int64(700), healed.PaidAmount)

	// the remote row now carries the full local history
	store.mu.Lock()
	defer store.mu.Unlock()
	require.Contains(t, store.rows, "remote-9")
	assert.Len(t, store.rows["remote-9"].PaymentHistory, 2)
	assert.Equal(t, int64(700), store.rows["remote-9"].PaidAmount)
	assert.Equal(t, 0, store.createCalls)
}

func TestResumeRedispatchesRecordsInterruptedMidConfirmation(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	interrupted := testRecord("rec-1", 1000, 400)
	interrupted.SyncState = models.SyncSyncing
	coordinator.Snapshot.Put(interrupted)

	failed := testRecord("rec-2", 2000, 500)
	failed.SyncState = models.SyncFailed
	coordinator.Snapshot.Put(failed)

	settled := testRecord("rec-3", 500, 500)
	settled.SyncState = models.SyncSynced
	settled.RemoteID = "remote-3"
	coordinator.Snapshot.Put(settled)

	coordinator.Resume(context.Background())
	coordinator.Wait()

	for _, id := range []string{"rec-1", "rec-2"} {
		record, ok := coordinator.Get(id)
		require.True(t, ok)
		assert.Equal(t, models.SyncSynced, record.SyncState, id)
		assert.NotEmpty(t, record.RemoteID, id)
	}

	// the already-confirmed record is left alone
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 2, store.createCalls)
	assert.Equal(t, 0, store.updateCalls)
}

func TestReconcileKeepsUnsyncedLocalTruth(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	local := testRecord("rec-1", 1000, 400)
	local.RemoteID = "remote-1"
	local.SyncState = models.SyncFailed
	coordinator.Snapshot.Put(local)

	stale := *local.Clone()
	stale.PaidAmount = 100
	stale.SyncState = models.SyncSynced

	coordinator.Reconcile(context.Background(), []models.PaymentRecord{stale})

	kept, ok := coordinator.Get("rec-1")
	require.True(t, ok)
	assert.Equal(t, int64(400), kept.PaidAmount)
	assert.Equal(t, models.SyncFailed, kept.SyncState)
}

func TestReconcileAddsUnknownRemoteRecords(t *testing.T) {
	store := newFakeLedgerStore()
	coordinator, _ := newTestCoordinator(store)

	remote := *testRecord("", 500, 500)
	remote.PatientID = "pat-9"
	remote.RemoteID = "remote-42"
	remote.SyncState = models.SyncSynced

	coordinator.Reconcile(context.Background(), []models.PaymentRecord{remote})
	// a second, interleaved pass must not duplicate
	coordinator.Reconcile(context.Background(), []models.PaymentRecord{remote})

	assert.Equal(t, 1, coordinator.Snapshot.Len())
}

func TestTimeoutClassification(t *testing.T) {
	syncErr := classifySyncError(context.DeadlineExceeded)
	assert.Equal(t, exceptions.SyncTimeout, syncErr.Reason)

	syncErr = classifySyncError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, exceptions.SyncNetworkUnavailable, syncErr.Reason)

	wrapped := exceptions.NewSyncError(exceptions.SyncRemoteRejected, errors.New("400"))
	assert.Equal(t, exceptions.SyncRemoteRejected, classifySyncError(wrapped).Reason)
}
