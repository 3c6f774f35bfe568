// Package listview provides a windowed list component for Bubble Tea.
//
// Only the rows inside the viewport are rendered. The owner can ask whether
// the last row is visible, which is how the records browser learns that the
// user scrolled to the end of what is loaded.
package listview
