// Package tui implements the interactive records browser: an infinitely
// scrolling, server-sorted table backed by internal/loader and a form for
// creating records.
package tui
