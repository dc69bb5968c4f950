package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// RecordID is the server-assigned identifier of a record. Collection stores
// disagree on whether ids are JSON strings or numbers, so both are accepted
// and the canonical string form is kept.
type RecordID string

func (id RecordID) String() string { return string(id) }

// IsZero reports whether the id is unset, i.e. the record is still a draft.
func (id RecordID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

func (id RecordID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("record id: %w", err)
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("record id must be a string or number: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Fields holds the editable attributes of a record. It is also the request
// body for create and update; all six keys are always sent.
type Fields struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	District string `json:"district"`
}

// Record is the canonical server-side entity.
//
// Invariants:
//   - A record with a non-empty ID exists in the store.
//   - A record under construction has no ID until create succeeds.
type Record struct {
	ID RecordID `json:"id"`
	Fields
}

// Get returns the value of a single field.
func (f Fields) Get(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldUsername:
		return f.Username
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldCity:
		return f.City
	case FieldDistrict:
		return f.District
	}
	return ""
}

// With returns a copy with one field replaced. Unknown fields yield
// ErrUnknownField and the receiver unchanged.
func (f Fields) With(field Field, value string) (Fields, error) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldUsername:
		f.Username = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldCity:
		f.City = value
	case FieldDistrict:
		f.District = value
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return f, nil
}
