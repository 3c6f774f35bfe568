// Package loader keeps a lazily loaded, server-sorted window of the record
// collection consistent while pages load, the sort order changes and new
// records are created.
//
// The Loader is a single-owner state machine. All of its mutating methods are
// meant to run on one event loop (the bubbletea Update loop in this program).
// Network calls happen outside the loop through Loader.Fetch, which touches no
// loader state; their results come back through Loader.Apply, which drops any
// response that no longer matches the current query identity, load generation
// and next page. Staleness checks replace request cancellation.
//
// Components:
//   - Fetcher: one bounded store request per page, with degraded total counts
//   - SortController: three-state column sort cycle producing a QueryIdentity
//   - Cursor and LoadedSet: next page, hasMore and the pages of one identity
//   - Latch: edge-triggered invalidation on record creation
//   - VisibilityTrigger: loads the next page when the tail row becomes visible
//   - Assemble: flattens the loaded pages into the rendered list
package loader
