package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/store"
)

// PageFetcher loads one page for an identity.
type PageFetcher interface {
	Fetch(ctx context.Context, page int, id QueryIdentity) (Page, error)
}

// Fetcher issues one store request per page and normalizes the answer.
// It never retries; that decision belongs to the caller.
type Fetcher struct {
	store    store.Store
	pageSize int
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher for pages of pageSize records.
func NewFetcher(s store.Store, pageSize int, logger zerolog.Logger) (*Fetcher, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if pageSize < 1 || pageSize > store.MaxPageSize {
		return nil, fmt.Errorf("%w: got %d", store.ErrInvalidPageSize, pageSize)
	}
	return &Fetcher{store: s, pageSize: pageSize, logger: logger}, nil
}

// PageSize returns the number of records requested per page.
func (f *Fetcher) PageSize() int {
	return f.pageSize
}

// Fetch requests page for id. A ProtocolError that still carries the decoded
// records degrades to an approximate total count (records seen up to and
// including this page), which ends pagination at this page.
func (f *Fetcher) Fetch(ctx context.Context, page int, id QueryIdentity) (Page, error) {
	params := id.ListParams(page, f.pageSize)
	if err := params.Validate(); err != nil {
		return Page{}, err
	}

	res, err := f.store.ListRecords(ctx, params)
	if err != nil {
		var pe *store.ProtocolError
		if !errors.As(err, &pe) || pe.Partial == nil {
			return Page{}, err
		}
		approx := params.Offset() + len(pe.Partial.Records)
		f.logger.Warn().
			Ctx(ctx).
			Str("operation", "fetch_page").
			Str("identity", id.String()).
			Int("page", page).
			Int("approx_total", approx).
			Err(err).
			Msg("total count unavailable, using degraded approximation")
		return Page{
			Identity:    id,
			Number:      page,
			Records:     pe.Partial.Records,
			TotalCount:  approx,
			Approximate: true,
		}, nil
	}

	f.logger.Debug().
		Ctx(ctx).
		Str("operation", "fetch_page").
		Str("identity", id.String()).
		Int("page", page).
		Int("records", len(res.Records)).
		Int("total", res.TotalCount).
		Msg("page fetched")

	return Page{
		Identity:   id,
		Number:     page,
		Records:    res.Records,
		TotalCount: res.TotalCount,
	}, nil
}
