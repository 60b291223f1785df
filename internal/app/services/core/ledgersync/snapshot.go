package ledgersync

import (
	"medledger-service/internal/app/models"
	"sync"
	"sync/atomic"
)

// Snapshot is the in-memory record collection. Every mutation swaps in a new
// map, so readers always see a complete, consistent collection without
// holding a lock. Writers serialize on a mutex.
type Snapshot struct {
	mu      sync.Mutex
	current atomic.Value // map[string]*models.PaymentRecord
}

func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.current.Store(map[string]*models.PaymentRecord{})
	return s
}

func (s *Snapshot) view() map[string]*models.PaymentRecord {
	return s.current.Load().(map[string]*models.PaymentRecord)
}

// Get returns a copy of the record so callers can never mutate shared state.
func (s *Snapshot) Get(recordID string) (*models.PaymentRecord, bool) {
	record, ok := s.view()[recordID]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

func (s *Snapshot) All() []models.PaymentRecord {
	view := s.view()
	records := make([]models.PaymentRecord, 0, len(view))
	for _, record := range view {
		records = append(records, *record.Clone())
	}
	return records
}

func (s *Snapshot) Len() int {
	return len(s.view())
}

func (s *Snapshot) Put(record *models.PaymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(record.Clone())
}

// Update applies mutate to a copy of the stored record and swaps the result
// in atomically. The stored record is returned; ok reports whether the id
// existed.
func (s *Snapshot) Update(recordID string, mutate func(*models.PaymentRecord)) (*models.PaymentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.view()[recordID]
	if !ok {
		return nil, false
	}
	updated := existing.Clone()
	mutate(updated)
	s.replace(updated)
	return updated.Clone(), true
}

func (s *Snapshot) Delete(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.view()
	if _, ok := old[recordID]; !ok {
		return
	}
	next := make(map[string]*models.PaymentRecord, len(old))
	for id, record := range old {
		if id != recordID {
			next[id] = record
		}
	}
	s.current.Store(next)
}

// Load replaces the whole collection, used once at boot.
func (s *Snapshot) Load(records []models.PaymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*models.PaymentRecord, len(records))
	for i := range records {
		record := records[i]
		next[record.ID] = record.Clone()
	}
	s.current.Store(next)
}

// replace copies the current map with one entry swapped. Callers hold mu.
func (s *Snapshot) replace(record *models.PaymentRecord) {
	old := s.view()
	next := make(map[string]*models.PaymentRecord, len(old)+1)
	for id, existing := range old {
		next[id] = existing
	}
	next[record.ID] = record
	s.current.Store(next)
}
