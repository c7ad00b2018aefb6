package baseline

import (
	"context"
	"sync"
	"time"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/merge"
)

// Record is one stored export with its provenance.
type Record struct {
	// Origin is the caller-chosen name of the source system.
	Origin string `json:"origin"`

	// Fingerprint is the content fingerprint of the stored file.
	Fingerprint string `json:"fingerprint"`

	// SnapshotDate mirrors the file header, when present.
	SnapshotDate *graph.CalendarDate `json:"snapshot_date,omitempty"`

	// StoredAt is the UTC save time.
	StoredAt time.Time `json:"stored_at"`

	File *graph.File `json:"file"`
}

// Store keeps the latest export per origin, plus a fingerprint history.
//
// Thread-safety: implementations are safe for concurrent use.
type Store interface {
	// Save validates and stores the file as the origin's new baseline.
	Save(ctx context.Context, origin string, f *graph.File) (*Record, error)

	// Latest returns the origin's current baseline, or ErrNotFound.
	Latest(ctx context.Context, origin string) (*Record, error)

	// History returns the fingerprints saved for the origin, newest first.
	History(ctx context.Context, origin string) ([]string, error)
}

func newRecord(origin string, f *graph.File) (*Record, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	if err := f.Validate(); err != nil {
		return nil, ErrInvalidFile
	}
	stored := f.Clone()
	return &Record{
		Origin:       origin,
		Fingerprint:  merge.Fingerprint(stored),
		SnapshotDate: stored.SnapshotDate,
		StoredAt:     time.Now().UTC(),
		File:         stored,
	}, nil
}

// MemoryStore is an in-process Store for tests and single-process pipelines.
type MemoryStore struct {
	mu      sync.RWMutex
	latest  map[string]*Record
	history map[string][]string
}

// NewMemoryStore creates an empty in-memory baseline store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		latest:  make(map[string]*Record),
		history: make(map[string][]string),
	}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, origin string, f *graph.File) (*Record, error) {
	rec, err := newRecord(origin, f)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[origin] = rec
	s.history[origin] = append([]string{rec.Fingerprint}, s.history[origin]...)
	return rec, nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(_ context.Context, origin string) (*Record, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.latest[origin]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	copied.File = rec.File.Clone()
	return &copied, nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, origin string) ([]string, error) {
	if origin == "" {
		return nil, ErrInvalidOrigin
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.history[origin]...), nil
}
