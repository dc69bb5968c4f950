package models

import (
	"errors"
	"fmt"
	"strings"
)

// Field names one editable attribute of a record. The string value matches
// the JSON key on the wire and the input name used by the presentation layer.
type Field string

const (
	FieldName     Field = "name"
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldCity     Field = "city"
	FieldDistrict Field = "district"
)

// ErrUnknownField is returned when a field name is not one of the editable fields.
var ErrUnknownField = errors.New("unknown field")

// AllFields lists the editable fields in their canonical order.
func AllFields() []Field {
	return []Field{FieldName, FieldUsername, FieldEmail, FieldPhone, FieldCity, FieldDistrict}
}

// RequiredFields lists the fields that must be non-blank, in the order they
// are checked. Name is always reported before email.
func RequiredFields() []Field {
	return []Field{FieldName, FieldEmail}
}

func (f Field) IsValid() bool {
	for _, known := range AllFields() {
		if f == known {
			return true
		}
	}
	return false
}

func (f Field) String() string { return string(f) }

// ParseField maps a field name coming from the presentation layer.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}
