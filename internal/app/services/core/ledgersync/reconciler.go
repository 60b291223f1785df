package ledgersync

import (
	"context"
	"medledger-service/internal/app/config"
	"medledger-service/internal/app/contracts"
	"medledger-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Reconciler periodically pulls the full remote collection and merges it into
// local state. Runs are guarded by a distributed lock so only one instance
// reconciles at a time, and each run is idempotent: interleaving with
// user-issued payments is safe.
type Reconciler struct {
	log         *zap.Logger
	cfg         *config.InternalConfig
	locker      contracts.LockerService
	ledgerStore contracts.LedgerStoreClient
	coordinator contracts.SyncCoordinator
	limiter     *rate.Limiter
	stop        chan struct{}
}

func NewReconciler(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	ledgerStore contracts.LedgerStoreClient,
	coordinator contracts.SyncCoordinator,
) *Reconciler {
	fetchesPerMinute := cfg.Reconciler.MaxFetchesPerMinute
	if fetchesPerMinute <= 0 {
		fetchesPerMinute = 6
	}
	return &Reconciler{
		log:         log,
		cfg:         cfg,
		locker:      lockerSvc,
		ledgerStore: ledgerStore,
		coordinator: coordinator,
		limiter:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(fetchesPerMinute)), 1),
		stop:        make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (r *Reconciler) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(r.cfg.Reconciler.IntervalInSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-r.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				r.RunOnce(ctx)
			}
		}
	}()

	return func() {
		close(r.stop)
	}
}

// RunOnce performs a single reconciliation pass. Exposed so a pass can also
// be invoked on demand.
func (r *Reconciler) RunOnce(ctx context.Context) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	ttl := time.Duration(r.cfg.Reconciler.LockTTLInSeconds) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	acquired, lockValue, err := r.locker.TryLock(ctx, constvars.RedisKeyReconcilerLock, ttl)
	if err != nil {
		r.log.Warn("reconciler lock attempt failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}
	if !acquired {
		r.log.Info("reconciler lock not acquired; another instance is reconciling",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return
	}
	defer func() {
		if err := r.locker.Unlock(ctx, constvars.RedisKeyReconcilerLock, lockValue); err != nil {
			r.log.Error("reconciler unlock failed",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}()

	if err := r.limiter.Wait(ctx); err != nil {
		return
	}

	remote, err := r.ledgerStore.List(ctx)
	if err != nil {
		r.log.Warn("reconciler fetch failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return
	}

	r.coordinator.Reconcile(ctx, remote)
	r.log.Info("reconciler pass completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("remote_count", len(remote)),
	)
}
