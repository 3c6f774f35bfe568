// Package detail renders the full view of a single record.
package detail
