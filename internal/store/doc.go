// Package store defines the Record Store boundary: a remote, server-sorted
// collection of records that can be read one page at a time and appended to.
//
// Implementations:
//   - MemoryStore: in-process collection used by tests and the local server
//   - httpstore.Client: json-server compatible HTTP API
//   - sqlstore.Store: sqlite or postgres backed collection
//
// Failures crossing the boundary are classified as TransportError (network,
// timeout) or ProtocolError (malformed response).
package store
