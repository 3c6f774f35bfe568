// Package record defines the user record managed by recordlist and the fixed
// set of columns the list view can display and sort by.
package record

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the activity state of a record.
type Status string

// Status values as stored by the remote collection.
const (
	StatusActive   Status = "Активен"
	StatusInactive Status = "Неактивен"
)

// DateLayout is the layout of JoinedDate on the wire.
const DateLayout = "2006-01-02"

// ErrUnknownColumn is returned when a column key is not part of Columns.
var ErrUnknownColumn = errors.New("unknown column")

// Record is a single entry of the remote collection.
// Records are immutable once created; the store may only replace them wholesale.
type Record struct {
	ID         string `json:"id"         yaml:"id"`
	FirstName  string `json:"firstName"  yaml:"firstName"`
	LastName   string `json:"lastName"   yaml:"lastName"`
	Email      string `json:"email"      yaml:"email"`
	Age        int    `json:"age"        yaml:"age"`
	City       string `json:"city"       yaml:"city"`
	Occupation string `json:"occupation" yaml:"occupation"`
	Status     Status `json:"status"     yaml:"status"`
	JoinedDate string `json:"joinedDate" yaml:"joinedDate"`
}

// NewRecord is the creation payload collected by the form. The store assigns
// the id; JoinedDate is stamped with the current date when empty.
type NewRecord struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Age        int    `json:"age"`
	City       string `json:"city"`
	Occupation string `json:"occupation"`
	Status     Status `json:"status"`
	JoinedDate string `json:"joinedDate,omitempty"`
}

// WithID builds the stored record for this payload.
func (n NewRecord) WithID(id string, now time.Time) Record {
	joined := n.JoinedDate
	if joined == "" {
		joined = now.Format(DateLayout)
	}
	return Record{
		ID:         id,
		FirstName:  n.FirstName,
		LastName:   n.LastName,
		Email:      n.Email,
		Age:        n.Age,
		City:       n.City,
		Occupation: n.Occupation,
		Status:     n.Status,
		JoinedDate: joined,
	}
}

// FullName joins first and last name.
func (r Record) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Column describes one displayable, sortable field.
type Column struct {
	// Key is the wire name of the field, used for server-side sorting.
	Key string
	// Title is the header label.
	Title string
	// Numeric columns compare as numbers.
	Numeric bool
}

// Columns lists the record fields in display order.
//
//nolint:gochecknoglobals // Fixed column table.
var Columns = []Column{
	{Key: "firstName", Title: "First name"},
	{Key: "lastName", Title: "Last name"},
	{Key: "email", Title: "Email"},
	{Key: "age", Title: "Age", Numeric: true},
	{Key: "city", Title: "City"},
	{Key: "occupation", Title: "Occupation"},
	{Key: "status", Title: "Status"},
	{Key: "joinedDate", Title: "Joined"},
}

// LookupColumn returns the column with the given key.
func LookupColumn(key string) (Column, error) {
	for _, c := range Columns {
		if c.Key == key {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("%w: %q", ErrUnknownColumn, key)
}

// IsColumn reports whether key names a known column.
func IsColumn(key string) bool {
	_, err := LookupColumn(key)
	return err == nil
}

// ColumnKeys returns the keys of all columns in display order.
func ColumnKeys() []string {
	keys := make([]string, len(Columns))
	for i, c := range Columns {
		keys[i] = c.Key
	}
	return keys
}

// Field returns the display value of the column with the given key.
func (r Record) Field(key string) string {
	switch key {
	case "id":
		return r.ID
	case "firstName":
		return r.FirstName
	case "lastName":
		return r.LastName
	case "email":
		return r.Email
	case "age":
		return strconv.Itoa(r.Age)
	case "city":
		return r.City
	case "occupation":
		return r.Occupation
	case "status":
		return string(r.Status)
	case "joinedDate":
		return r.JoinedDate
	default:
		return ""
	}
}

// Compare orders a and b by the given column. Numeric columns compare by value,
// everything else by string. Returns -1, 0 or 1.
func Compare(a, b Record, key string) int {
	if key == "age" {
		switch {
		case a.Age < b.Age:
			return -1
		case a.Age > b.Age:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.Field(key), b.Field(key))
}

// ParseStatus accepts the stored values and the english aliases "active" and "inactive".
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", strings.ToLower(string(StatusActive)):
		return StatusActive, nil
	case "inactive", strings.ToLower(string(StatusInactive)):
		return StatusInactive, nil
	default:
		return "", fmt.Errorf("invalid status %q", s)
	}
}
