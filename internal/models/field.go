package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFieldType = errors.New("invalid field type")
	ErrInvalidForm      = errors.New("invalid form definition")
)

// FieldType is the closed set of input kinds a reservation form supports.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldSelect FieldType = "select"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldSelect:
		return true
	}
	return false
}

// InputKind is the HTML input affordance the field is rendered with.
func (t FieldType) InputKind() string {
	switch t {
	case FieldSelect:
		return "select"
	case FieldNumber:
		return "number"
	case FieldDate:
		return "date"
	case FieldText:
		return "text"
	}
	return "text"
}

func (t *FieldType) UnmarshalText(b []byte) error {
	v := FieldType(b)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidFieldType, string(b))
	}
	*t = v
	return nil
}

// Field is one question of an event's reservation form. Answers are stored
// under Label, so renaming a field detaches it from earlier reservations.
type Field struct {
	ID         int64     `json:"id" bson:"id"`
	Label      string    `json:"label" bson:"label"`
	Type       FieldType `json:"type" bson:"type"`
	Required   bool      `json:"required" bson:"required"`
	IsInternal bool      `json:"isInternal" bson:"is_internal"`
	Options    []string  `json:"options,omitempty" bson:"options,omitempty"`
}

// NewField returns a blank optional field with a creation-time id.
func NewField(label string, t FieldType, now time.Time) Field {
	f := Field{ID: now.UnixMilli(), Label: label, Type: t}
	return f.seedOptions()
}

func (f Field) seedOptions() Field {
	if f.Type == FieldSelect && len(f.Options) == 0 {
		f.Options = []string{""}
	}
	return f
}

// AssignFieldIDs gives every field without an id a creation-time id, the way
// NewField does, stepping past ids already used in the list.
func AssignFieldIDs(fields []Field, now time.Time) {
	taken := make(map[int64]bool, len(fields))
	for _, f := range fields {
		if f.ID != 0 {
			taken[f.ID] = true
		}
	}

	next := now.UnixMilli()
	for i := range fields {
		if fields[i].ID != 0 {
			continue
		}
		for taken[next] {
			next++
		}
		fields[i].ID = next
		taken[next] = true
		fields[i] = fields[i].seedOptions()
	}
}

// Normalize drops options from non-choice fields.
func (f Field) Normalize() Field {
	if f.Type != FieldSelect {
		f.Options = nil
	}
	return f
}

// DefaultFields is the form an event starts with.
func DefaultFields() []Field {
	return []Field{
		{ID: 1, Label: "Nombre", Type: FieldText, Required: true},
		{ID: 2, Label: "Número de personas", Type: FieldNumber, Required: true},
		{ID: 3, Label: "Gasto aproximado", Type: FieldNumber},
	}
}

// FindField returns the field with the given id.
func FindField(fields []Field, id int64) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FindFieldByLabel returns the first field with the given label.
func FindFieldByLabel(fields []Field, label string) (Field, bool) {
	for _, f := range fields {
		if f.Label == label {
			return f, true
		}
	}
	return Field{}, false
}

// MergeFieldTypes keeps the stored type of every field that already existed;
// a field's type cannot change after creation.
func MergeFieldTypes(previous, next []Field) []Field {
	out := make([]Field, len(next))
	for i, f := range next {
		if old, ok := FindField(previous, f.ID); ok {
			f.Type = old.Type
		}
		out[i] = f.Normalize()
	}
	return out
}

// ValidateFields checks types and id uniqueness, and that primary (when set)
// names one of the fields.
func ValidateFields(fields []Field, primary *int64) error {
	seen := make(map[int64]struct{}, len(fields))
	for _, f := range fields {
		if !f.Type.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidFieldType, f.Type)
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate field id %d", ErrInvalidForm, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	if primary != nil {
		if _, ok := seen[*primary]; !ok {
			return fmt.Errorf("%w: primary field %d is not part of the form", ErrInvalidForm, *primary)
		}
	}
	return nil
}
