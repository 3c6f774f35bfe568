// Package pagination provides the page, page-size and sort flags of the list
// command and the pagination metadata it reports.
//
// Sorting always happens in the store; this package only validates the sort
// expression and turns the flags into a store.ListParams.
package pagination
