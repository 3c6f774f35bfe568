package record

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Age bounds accepted for new records.
const (
	MinAge = 18
	MaxAge = 99
)

// Cities offered by the creation form. Other values are accepted.
//
//nolint:gochecknoglobals // Fixed choice list.
var Cities = []string{"Москва", "Санкт-Петербург", "Казань", "Новосибирск", "Екатеринбург"}

// ErrInvalidRecord is wrapped by every ValidationError.
var ErrInvalidRecord = errors.New("invalid record")

//nolint:gochecknoglobals // Compiled once.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected field of a NewRecord.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%v: %s", ErrInvalidRecord, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

// Message returns the error for field, or "".
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Validate checks the payload the way the creation form does.
func (n NewRecord) Validate() error {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	minLen := func(field, value string, minimum int) {
		value = strings.TrimSpace(value)
		switch {
		case value == "":
			add(field, "required")
		case utf8.RuneCountInString(value) < minimum:
			add(field, fmt.Sprintf("at least %d characters", minimum))
		}
	}

	minLen("firstName", n.FirstName, 2)
	minLen("lastName", n.LastName, 2)

	switch email := strings.TrimSpace(n.Email); {
	case email == "":
		add("email", "required")
	case !emailPattern.MatchString(email):
		add("email", "invalid email address")
	}

	if n.Age < MinAge || n.Age > MaxAge {
		add("age", fmt.Sprintf("must be between %d and %d", MinAge, MaxAge))
	}
	if strings.TrimSpace(n.City) == "" {
		add("city", "required")
	}
	minLen("occupation", n.Occupation, 3)

	if n.Status != StatusActive && n.Status != StatusInactive {
		add("status", fmt.Sprintf("must be %q or %q", StatusActive, StatusInactive))
	}
	if n.JoinedDate != "" {
		if _, err := time.Parse(DateLayout, n.JoinedDate); err != nil {
			add("joinedDate", "must be YYYY-MM-DD")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
