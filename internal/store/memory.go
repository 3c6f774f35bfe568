package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/recordlist/internal/record"
)

// MemoryStore keeps the collection in process. It sorts on the "server" side
// exactly like the remote stores do, so engine tests see realistic ordering.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []record.Record
	now     func() time.Time
}

// NewMemoryStore creates a store seeded with the given records.
func NewMemoryStore(seed ...record.Record) *MemoryStore {
	return &MemoryStore{
		records: slices.Clone(seed),
		now:     time.Now,
	}
}

// ListRecords implements Store.
func (s *MemoryStore) ListRecords(ctx context.Context, params ListParams) (*ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Op: "list", Err: err}
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ordered := slices.Clone(s.records)
	s.mu.RUnlock()

	if params.SortColumn != "" {
		slices.SortStableFunc(ordered, func(a, b record.Record) int {
			c := record.Compare(a, b, params.SortColumn)
			if params.SortOrder == OrderDesc {
				return -c
			}
			return c
		})
	}

	from := min(params.Offset(), len(ordered))
	to := min(from+params.PageSize, len(ordered))

	return &ListResult{
		Records:    slices.Clone(ordered[from:to]),
		TotalCount: len(ordered),
	}, nil
}

// CreateRecord implements Store. Ids are ULIDs so insertion order and id order agree.
func (s *MemoryStore) CreateRecord(ctx context.Context, payload record.NewRecord) (*record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Op: "create", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec := payload.WithID(ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(), now)
	s.records = append(s.records, rec)
	return &rec, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
