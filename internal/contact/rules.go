package contact

import "github.com/hyperengineering/showcase/internal/validation"

// Length limits, counted in characters after trimming.
const (
	NameMaxLength    = 100
	EmailMaxLength   = 255
	MessageMinLength = 10
	MessageMaxLength = 1000
)

// Rules is the contact form schema. Emptiness of email is reported as a
// format failure because the shape check runs first.
var Rules = validation.Schema{
	{
		Field:     string(FieldName),
		Transform: validation.TrimSpace,
		Checks: []validation.Check{
			{Predicate: validation.Required, Message: "Name is required"},
			{Predicate: validation.MaxLength(NameMaxLength), Message: "Name too long"},
		},
	},
	{
		Field:     string(FieldEmail),
		Transform: validation.TrimSpace,
		Checks: []validation.Check{
			{Predicate: validation.EmailShape, Message: "Invalid email address"},
			{Predicate: validation.MaxLength(EmailMaxLength), Message: "Email too long"},
		},
	},
	{
		Field:     string(FieldMessage),
		Transform: validation.TrimSpace,
		Checks: []validation.Check{
			{Predicate: validation.MinLength(MessageMinLength), Message: "Message must be at least 10 characters"},
			{Predicate: validation.MaxLength(MessageMaxLength), Message: "Message too long"},
		},
	},
}

// Result is the outcome of Validate.
type Result struct {
	OK     bool
	Errors Errors
}

// Validate checks fields against Rules. It is pure and deterministic.
func Validate(fields Fields) Result {
	r := Rules.Validate(fields.values())
	errs := make(Errors, len(r.Errors))
	for k, msg := range r.Errors {
		errs[Field(k)] = msg
	}
	return Result{OK: r.OK, Errors: errs}
}

// ValidationErrors returns errs in form field order, for transport.
func ValidationErrors(errs Errors) []validation.ValidationError {
	r := validation.Result{OK: len(errs) == 0, Errors: make(map[string]string, len(errs))}
	for f, msg := range errs {
		r.Errors[string(f)] = msg
	}
	return Rules.Ordered(r)
}
