package projection

import (
	"fmt"
	"medledger-service/internal/app/models"
	"sort"
	"time"
)

// Project turns a raw, possibly duplicated record collection into the stable
// display list. It is pure; callers thread the Keys output of one call into
// the PreviousKeys of the next so displayed identities do not churn between
// refreshes.

type Input struct {
	Records []models.PaymentRecord
	// PreviousKeys maps dedup key to the record id displayed for it on the
	// previous run.
	PreviousKeys map[string]string
}

type Output struct {
	Records []models.PaymentRecord
	Keys    map[string]string
}

// DedupKey prefers the remote identity; records that never reached the store
// fall back to a composite of patient, total and creation second.
func DedupKey(record *models.PaymentRecord) string {
	if record.RemoteID != "" {
		return "remote:" + record.RemoteID
	}
	return compositeKey(record)
}

func compositeKey(record *models.PaymentRecord) string {
	return fmt.Sprintf("composite:%s:%d:%d", record.PatientID, record.TotalAmount, record.CreatedAt.Truncate(time.Second).Unix())
}

// collapseRank orders sync states for duplicate collapse. Synced copies win
// over anything still local, syncing or failed.
func collapseRank(state models.SyncState) int {
	if state == models.SyncSynced {
		return 1
	}
	return 0
}

func Project(in Input) Output {
	// A stale local duplicate carries no remoteId, so alias its composite key
	// onto the remote identity of the synced copy it shadows.
	alias := make(map[string]string)
	for i := range in.Records {
		record := &in.Records[i]
		if record.RemoteID != "" {
			alias[compositeKey(record)] = "remote:" + record.RemoteID
		}
	}

	keyFor := func(record *models.PaymentRecord) string {
		if record.RemoteID != "" {
			return "remote:" + record.RemoteID
		}
		if remoteKey, ok := alias[compositeKey(record)]; ok {
			return remoteKey
		}
		return compositeKey(record)
	}

	groups := make(map[string][]*models.PaymentRecord)
	order := make([]string, 0, len(in.Records))
	for i := range in.Records {
		record := &in.Records[i]
		key := keyFor(record)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], record)
	}

	keys := make(map[string]string, len(order))
	projected := make([]models.PaymentRecord, 0, len(order))
	for _, key := range order {
		chosen := collapse(groups[key], in.PreviousKeys[key])
		keys[key] = chosen.ID
		projected = append(projected, *chosen.Clone())
	}

	sort.SliceStable(projected, func(i, j int) bool {
		a, b := &projected[i], &projected[j]
		aUnsynced := a.SyncState != models.SyncSynced
		bUnsynced := b.SyncState != models.SyncSynced
		if aUnsynced != bUnsynced {
			return aUnsynced
		}
		if !a.UpdatedAt().Equal(b.UpdatedAt()) {
			return a.UpdatedAt().After(b.UpdatedAt())
		}
		return a.ID < b.ID
	})

	return Output{Records: projected, Keys: keys}
}

// collapse picks the single record a duplicate group displays as: best sync
// rank first, then most recently updated. A previously displayed record of
// equal rank is kept so rows do not remount on timestamp jitter.
func collapse(group []*models.PaymentRecord, previousID string) *models.PaymentRecord {
	best := group[0]
	for _, candidate := range group[1:] {
		if collapseRank(candidate.SyncState) > collapseRank(best.SyncState) {
			best = candidate
			continue
		}
		if collapseRank(candidate.SyncState) < collapseRank(best.SyncState) {
			continue
		}
		if candidate.UpdatedAt().After(best.UpdatedAt()) {
			best = candidate
			continue
		}
		if candidate.UpdatedAt().Equal(best.UpdatedAt()) && candidate.ID < best.ID {
			best = candidate
		}
	}

	if previousID != "" {
		for _, candidate := range group {
			if candidate.ID == previousID && collapseRank(candidate.SyncState) == collapseRank(best.SyncState) {
				return candidate
			}
		}
	}
	return best
}
