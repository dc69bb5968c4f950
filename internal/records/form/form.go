// Package form holds the local draft of a record's editable fields. It does
// no I/O; every transition returns a new State.
package form

import (
	"strings"

	"recordsync/internal/records/models"
)

// State is a draft mirroring models.Fields. The zero value is the empty
// draft used by the create flow.
type State struct {
	fields models.Fields
}

// FromRecord seeds a draft from a fetched or listed record. The id is not
// part of the draft.
func FromRecord(r models.Record) State {
	return State{fields: r.Fields}
}

// FromFields seeds a draft from raw field values.
func FromFields(f models.Fields) State {
	return State{fields: f}
}

// Update sets exactly one field and leaves the others unchanged.
func (s State) Update(field models.Field, value string) (State, error) {
	next, err := s.fields.With(field, value)
	if err != nil {
		return s, err
	}
	return State{fields: next}, nil
}

func (s State) Get(field models.Field) string {
	return s.fields.Get(field)
}

// Payload returns the wire shape for create and update calls. All fields
// are present; untouched ones are empty strings.
func (s State) Payload() models.Fields {
	return s.fields
}

// ValidationResult reports the first invalid field, if any.
type ValidationResult struct {
	Field models.Field
}

func (r ValidationResult) Valid() bool { return r.Field == "" }

// Err converts an invalid result into a validation error carrying the field.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return models.NewValidationError("validate", r.Field, "is required")
}

// Validate checks the required fields in order (name, then email) and
// reports the first one that is blank after trimming. The order decides
// where the presentation layer puts focus.
func (s State) Validate() ValidationResult {
	for _, field := range models.RequiredFields() {
		if strings.TrimSpace(s.fields.Get(field)) == "" {
			return ValidationResult{Field: field}
		}
	}
	return ValidationResult{}
}
