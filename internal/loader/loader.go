package loader

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rshade/recordlist/internal/record"
)

// Request describes one page fetch the caller must perform with Fetch.
// Generation changes on every reset so responses to requests issued before
// a reset can be told apart from fresh ones for the same identity and page.
type Request struct {
	Identity   QueryIdentity
	Page       int
	Generation uint64
}

// Result is the answer to a Request, handed back to Apply.
type Result struct {
	Request Request
	Page    Page
	Err     error
}

// Outcome tells the caller what Apply did with a Result.
type Outcome int

const (
	// OutcomeApplied means the page was appended to the loaded set.
	OutcomeApplied Outcome = iota
	// OutcomeStale means the result no longer matched and was dropped.
	OutcomeStale
	// OutcomeFailed means the fetch failed and the loader entered its error state.
	OutcomeFailed
	// OutcomeReset means the page broke consistency and loading restarted.
	OutcomeReset
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeStale:
		return "stale"
	case OutcomeFailed:
		return "failed"
	case OutcomeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// maxConsistencyResets is how many consistency resets may follow each other
// before the loader gives up and enters its error state.
const maxConsistencyResets = 1

// Stats counts loader activity.
type Stats struct {
	Resets            int
	Requests          int
	Applied           int
	Stale             int
	Failed            int
	ConsistencyResets int
}

// Snapshot is what the display layer renders.
type Snapshot struct {
	Identity   QueryIdentity
	Records    []record.Record
	TotalCount int
	HasMore    bool
	NextPage   int
	// Loading is true while the first page of a load sequence is outstanding.
	Loading bool
	// FetchingNext is true while a later page is outstanding.
	FetchingNext bool
	// Err is the transport or protocol failure awaiting a retry.
	Err error
	// Degraded is true when a loaded page carried an approximate total count.
	Degraded bool
}

// Loader owns the sort controller, cursor, latch and visibility trigger and
// sequences every write to them. It is not safe for concurrent use; only
// Fetch may be called from other goroutines.
type Loader struct {
	fetcher PageFetcher
	sort    *SortController
	cursor  *Cursor
	latch   Latch
	trigger VisibilityTrigger

	generation uint64
	pending    *Request
	err        error
	degraded   bool
	stats      Stats

	// consistencyStreak counts consistency resets since the last applied page.
	consistencyStreak int

	logger zerolog.Logger
}

// New creates a loader. Nothing is requested until Start.
func New(fetcher PageFetcher, pageSize int, logger zerolog.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		sort:    NewSortController(),
		cursor:  NewCursor(pageSize),
		logger:  logger,
	}
}

// Start begins the first load sequence with no sort.
func (l *Loader) Start() *Request {
	return l.restart("mount")
}

// ToggleSort cycles the sort of column and restarts loading from page 1.
func (l *Loader) ToggleSort(column string) (*Request, error) {
	id, err := l.sort.Toggle(column)
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Str("operation", "toggle_sort").Str("identity", id.String()).Msg("sort changed")
	return l.restart("sort"), nil
}

// OnRecordCreated signals that the remote collection changed. The first
// signal after ClearChange resets the loader and refetches page 1; repeats
// of the same signal return nil.
func (l *Loader) OnRecordCreated() *Request {
	l.latch.Observe(true)
	if !l.latch.Take() {
		l.logger.Debug().Str("operation", "invalidate").Msg("change signal already handled")
		return nil
	}
	return l.restart("invalidate")
}

// ClearChange lowers the change signal so the next OnRecordCreated fires.
func (l *Loader) ClearChange() {
	l.latch.Observe(false)
}

// OnIntersect reports that the row rowID entered the viewport. It requests
// the next page when rowID is the observed tail row, nothing is outstanding,
// the loader is healthy and more pages exist.
func (l *Loader) OnIntersect(rowID string) *Request {
	if l.pending != nil || l.err != nil || !l.cursor.HasMore() {
		return nil
	}
	if !l.trigger.Intersect(rowID) {
		return nil
	}
	return l.dispatch(l.cursor.NextPage())
}

// Retry clears the error state and refetches page 1.
func (l *Loader) Retry() *Request {
	return l.restart("retry")
}

// Fetch performs req. It reads no mutable loader state.
func (l *Loader) Fetch(ctx context.Context, req Request) Result {
	page, err := l.fetcher.Fetch(ctx, req.Page, req.Identity)
	return Result{Request: req, Page: page, Err: err}
}

// Apply folds a fetch result into the loader. Results that do not answer the
// outstanding request for the current identity, generation and next page are
// dropped. A consistency failure restarts loading and returns the new request;
// a second one in a row is reported as OutcomeFailed with ErrUnstablePages.
func (l *Loader) Apply(res Result) (Outcome, *Request) {
	req := res.Request
	if !l.matchesPending(req) {
		l.stats.Stale++
		l.logger.Debug().
			Str("operation", "apply").
			Str("identity", req.Identity.String()).
			Int("page", req.Page).
			Uint64("generation", req.Generation).
			Msg("dropping stale page")
		return OutcomeStale, nil
	}
	l.pending = nil

	if res.Err != nil {
		l.err = res.Err
		l.stats.Failed++
		l.logger.Warn().
			Str("operation", "apply").
			Str("identity", req.Identity.String()).
			Int("page", req.Page).
			Err(res.Err).
			Msg("page fetch failed")
		return OutcomeFailed, nil
	}

	if err := l.cursor.Advance(res.Page); err != nil {
		var ce *ConsistencyError
		if !errors.As(err, &ce) {
			l.err = err
			l.stats.Failed++
			return OutcomeFailed, nil
		}
		l.consistencyStreak++
		if l.consistencyStreak > maxConsistencyResets {
			l.err = fmt.Errorf("%w: %w", ErrUnstablePages, err)
			l.stats.Failed++
			l.logger.Error().
				Str("operation", "apply").
				Int("consecutive_resets", l.consistencyStreak-1).
				Err(err).
				Msg("loaded pages still inconsistent, giving up until retry")
			return OutcomeFailed, nil
		}
		l.stats.ConsistencyResets++
		l.logger.Error().
			Str("operation", "apply").
			Err(err).
			Msg("loaded pages inconsistent, restarting load sequence")
		return OutcomeReset, l.restart(reasonConsistency)
	}

	l.stats.Applied++
	l.consistencyStreak = 0
	if res.Page.Approximate {
		l.degraded = true
	}
	l.retargetTail()
	return OutcomeApplied, nil
}

// Records returns the assembled list for the current identity.
func (l *Loader) Records() []record.Record {
	return Assemble(l.cursor.Set())
}

// Snapshot returns the current display state.
func (l *Loader) Snapshot() Snapshot {
	loaded := l.cursor.Set().Len()
	return Snapshot{
		Identity:     l.sort.Identity(),
		Records:      l.Records(),
		TotalCount:   l.cursor.TotalCount(),
		HasMore:      l.cursor.HasMore(),
		NextPage:     l.cursor.NextPage(),
		Loading:      l.pending != nil && loaded == 0,
		FetchingNext: l.pending != nil && loaded > 0,
		Err:          l.err,
		Degraded:     l.degraded,
	}
}

// Identity returns the current query identity.
func (l *Loader) Identity() QueryIdentity {
	return l.sort.Identity()
}

// Pending returns the outstanding request, if any.
func (l *Loader) Pending() (Request, bool) {
	if l.pending == nil {
		return Request{}, false
	}
	return *l.pending, true
}

// Target returns the row id the visibility trigger observes.
func (l *Loader) Target() string {
	return l.trigger.Target()
}

// Stats returns activity counters.
func (l *Loader) Stats() Stats {
	return l.stats
}

const reasonConsistency = "consistency"

// restart empties the loaded set, binds it to the current identity, starts a
// new generation and requests page 1. Any outstanding request becomes stale.
func (l *Loader) restart(reason string) *Request {
	id := l.sort.Identity()
	l.cursor.Reset()
	l.cursor.Set().Bind(id)
	l.generation++
	l.err = nil
	l.degraded = false
	l.trigger.Retarget("")
	l.stats.Resets++
	if reason != reasonConsistency {
		l.consistencyStreak = 0
	}

	l.logger.Debug().
		Str("operation", "reset").
		Str("reason", reason).
		Str("identity", id.String()).
		Uint64("generation", l.generation).
		Msg("load sequence restarted")

	return l.dispatch(1)
}

func (l *Loader) dispatch(page int) *Request {
	req := Request{Identity: l.sort.Identity(), Page: page, Generation: l.generation}
	l.pending = &req
	l.stats.Requests++
	return &req
}

func (l *Loader) matchesPending(req Request) bool {
	return l.pending != nil &&
		*l.pending == req &&
		req.Identity == l.sort.Identity() &&
		req.Generation == l.generation &&
		req.Page == l.cursor.NextPage()
}

func (l *Loader) retargetTail() {
	recs := l.Records()
	if len(recs) == 0 {
		l.trigger.Retarget("")
		return
	}
	l.trigger.Retarget(recs[len(recs)-1].ID)
}
