package core

// store.go keeps loaded datasets in memory for the length of a session.
//
// Datasets are immutable once stored: cleaning produces a new dataset that
// points back at its source through ParentID. Entries expire after a TTL and
// are evicted by the sweeper or lazily on lookup. When the store is full the
// oldest dataset is evicted to make room.

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDatasetNotFound is returned for unknown or expired dataset ids.
var ErrDatasetNotFound = errors.New("dataset not found")

// Dataset is a table held in the session store.
type Dataset struct {
	ID        string
	FileName  string
	Table     *Table
	ParentID  string  // source dataset for cleaned datasets
	Options   Options // cleaning options applied to the parent
	Stages    []StageResult
	SizeBytes int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// DatasetSummary is the JSON shape of a dataset.
type DatasetSummary struct {
	ID        string          `json:"id"`
	FileName  string          `json:"file_name"`
	ParentID  string          `json:"parent_id,omitempty"`
	Applied   []string        `json:"applied,omitempty"`
	Stages    []StageResult   `json:"stages,omitempty"`
	Rows      int             `json:"rows"`
	Columns   []ColumnProfile `json:"columns"`
	SizeBytes int64           `json:"size_bytes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Summary describes d without its rows.
func (d *Dataset) Summary() DatasetSummary {
	ov := Summarize(d.Table, 0)
	return DatasetSummary{
		ID:        d.ID,
		FileName:  d.FileName,
		ParentID:  d.ParentID,
		Applied:   d.Options.Flags(),
		Stages:    d.Stages,
		Rows:      ov.Rows,
		Columns:   ov.Profile,
		SizeBytes: d.SizeBytes,
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
	}
}

// Store is a concurrency-safe in-memory dataset registry.
type Store struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewStore creates a store. ttl <= 0 disables expiry; max <= 0 disables the cap.
func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		datasets: make(map[string]*Dataset),
	}
}

// Put assigns an id and timestamps to d and stores it. It returns the ids
// of any datasets evicted to respect the size cap.
func (s *Store) Put(d *Dataset) []string {
	now := s.now()
	d.ID = uuid.New().String()
	d.CreatedAt = now
	if s.ttl > 0 {
		d.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for s.max > 0 && len(s.datasets) >= s.max {
		id := s.oldestLocked()
		delete(s.datasets, id)
		evicted = append(evicted, id)
	}
	s.datasets[d.ID] = d
	return evicted
}

// oldestLocked returns the id of the earliest created dataset.
func (s *Store) oldestLocked() string {
	var oldest *Dataset
	for _, d := range s.datasets {
		if oldest == nil || d.CreatedAt.Before(oldest.CreatedAt) {
			oldest = d
		}
	}
	return oldest.ID
}

// Get returns a live dataset.
func (s *Store) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	d, ok := s.datasets[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrDatasetNotFound
	}
	if s.expired(d, s.now()) {
		s.Delete(id)
		return nil, ErrDatasetNotFound
	}
	return d, nil
}

// Delete removes a dataset. Deleting an unknown id returns ErrDatasetNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return ErrDatasetNotFound
	}
	delete(s.datasets, id)
	return nil
}

// List returns all live datasets, newest first.
func (s *Store) List() []*Dataset {
	now := s.now()

	s.mu.RLock()
	out := make([]*Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		if !s.expired(d, now) {
			out = append(out, d)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of stored datasets, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}

// Sweep removes expired datasets and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, d := range s.datasets {
		if s.expired(d, now) {
			delete(s.datasets, id)
			n++
		}
	}
	return n
}

func (s *Store) expired(d *Dataset, now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}
