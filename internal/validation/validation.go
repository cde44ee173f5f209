package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// Predicate reports whether a value satisfies a constraint.
type Predicate func(value string) bool

// Transform normalizes a value before its checks run.
// The caller's value is never modified.
type Transform func(value string) string

// Check pairs a predicate with the message reported when it fails.
type Check struct {
	Predicate Predicate
	Message   string
}

// Rule is the ordered list of checks for one field.
// Checks run in declaration order and the first failure wins.
type Rule struct {
	Field     string
	Transform Transform
	Checks    []Check
}

// Evaluate runs the rule against value and returns the first failure, or nil.
func (r Rule) Evaluate(value string) *ValidationError {
	if r.Transform != nil {
		value = r.Transform(value)
	}
	for _, c := range r.Checks {
		if !c.Predicate(value) {
			return &ValidationError{Field: r.Field, Message: c.Message}
		}
	}
	return nil
}

// Schema is a stateless set of field rules, reusable across inputs.
type Schema []Rule

// Result is the outcome of validating a set of values against a Schema.
// Errors holds entries only for fields that failed.
type Result struct {
	OK     bool
	Errors map[string]string
}

// Validate evaluates every rule against values. Missing fields are
// validated as empty strings. values is not modified.
func (s Schema) Validate(values map[string]string) Result {
	var c Collector
	for _, rule := range s {
		c.Add(rule.Evaluate(values[rule.Field]))
	}

	result := Result{OK: !c.HasErrors(), Errors: map[string]string{}}
	for _, e := range c.Errors() {
		result.Errors[e.Field] = e.Message
	}
	return result
}

// Ordered returns the result's errors in schema field order.
func (s Schema) Ordered(r Result) []ValidationError {
	out := make([]ValidationError, 0, len(r.Errors))
	for _, rule := range s {
		if msg, ok := r.Errors[rule.Field]; ok {
			out = append(out, ValidationError{Field: rule.Field, Message: msg})
		}
	}
	return out
}

// TrimSpace strips leading and trailing whitespace.
func TrimSpace(value string) string {
	return strings.TrimSpace(value)
}

// Required reports whether value is non-empty.
func Required(value string) bool {
	return value != ""
}

// MinLength returns a predicate requiring at least min runes.
func MinLength(min int) Predicate {
	return func(value string) bool {
		return utf8.RuneCountInString(value) >= min
	}
}

// MaxLength returns a predicate allowing at most max runes.
func MaxLength(max int) Predicate {
	return func(value string) bool {
		return utf8.RuneCountInString(value) <= max
	}
}

// emailPattern accepts local@domain.tld where the local part ends in an
// alphanumeric, '_', '+' or '-', and the TLD has at least two letters.
var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9_'+\-.]*[a-z0-9_+\-]@([a-z0-9][a-z0-9\-]*\.)+[a-z]{2,}$`)

// EmailShape reports whether value looks like an email address.
// The empty string is not an email address.
func EmailShape(value string) bool {
	if strings.HasPrefix(value, ".") || strings.Contains(value, "..") {
		return false
	}
	return emailPattern.MatchString(value)
}
