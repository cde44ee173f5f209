// Package contact implements the contact form: its validation rules, a
// pure state reducer, and the controller that drives submission.
package contact

import (
	"errors"
	"fmt"
	"maps"
)

// Field names one user-editable input of the contact form.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldMessage Field = "message"
)

// ErrUnknownField indicates a field name outside the form.
var ErrUnknownField = errors.New("unknown field")

// ParseField resolves a field name.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldName, FieldEmail, FieldMessage:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Fields holds the raw form values.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Get returns the value of f.
func (v Fields) Get(f Field) string {
	switch f {
	case FieldName:
		return v.Name
	case FieldEmail:
		return v.Email
	case FieldMessage:
		return v.Message
	}
	return ""
}

// With returns a copy of v with f set to value.
func (v Fields) With(f Field, value string) Fields {
	switch f {
	case FieldName:
		v.Name = value
	case FieldEmail:
		v.Email = value
	case FieldMessage:
		v.Message = value
	}
	return v
}

func (v Fields) values() map[string]string {
	return map[string]string{
		string(FieldName):    v.Name,
		string(FieldEmail):   v.Email,
		string(FieldMessage): v.Message,
	}
}

// Status is the submission lifecycle marker.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	// StatusSucceeded is never stored in State; it only labels the
	// success notification.
	StatusSucceeded Status = "succeeded"
)

// Errors maps a failing field to its message. Passing fields are absent.
type Errors map[Field]string

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	return maps.Clone(e)
}

// State is one form instance's complete state.
type State struct {
	Fields Fields `json:"fields"`
	Errors Errors `json:"errors"`
	Status Status `json:"status"`
}

// NewState returns the state of a freshly mounted form.
func NewState() State {
	return State{Errors: Errors{}, Status: StatusIdle}
}

func (s State) clone() State {
	s.Errors = s.Errors.Clone()
	return s
}
