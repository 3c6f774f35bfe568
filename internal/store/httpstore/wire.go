package httpstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rshade/recordlist/internal/record"
)

// wireRecord is a record as json-server stores it. json-server keeps whatever
// the client posted, so ids and ages show up both as strings and as numbers.
type wireRecord struct {
	ID         flexString    `json:"id"`
	FirstName  string        `json:"firstName"`
	LastName   string        `json:"lastName"`
	Email      string        `json:"email"`
	Age        flexInt       `json:"age"`
	City       string        `json:"city"`
	Occupation string        `json:"occupation"`
	Status     record.Status `json:"status"`
	JoinedDate string        `json:"joinedDate"`
}

func (w wireRecord) record() record.Record {
	return record.Record{
		ID:         string(w.ID),
		FirstName:  w.FirstName,
		LastName:   w.LastName,
		Email:      w.Email,
		Age:        int(w.Age),
		City:       w.City,
		Occupation: w.Occupation,
		Status:     w.Status,
		JoinedDate: w.JoinedDate,
	}
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*i = 0
		return nil
	}
	raw := data
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		raw = []byte(v)
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("age must be an integer: %w", err)
	}
	*i = flexInt(n)
	return nil
}
