package contact

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// FieldUpdated overwrites one field. Errors are left as they are; they
// are only recomputed on submit.
type FieldUpdated struct {
	Field Field
	Value string
}

// SubmitRequested clears errors and validates. A valid form moves to
// Submitting; an invalid one records errors and stays Idle.
type SubmitRequested struct{}

// SubmissionCompleted resets the fields and returns to Idle.
type SubmissionCompleted struct{}

// SubmissionAborted returns to Idle keeping the fields, used when a
// pending submission is cancelled by teardown.
type SubmissionAborted struct{}

func (FieldUpdated) isEvent()        {}
func (SubmitRequested) isEvent()     {}
func (SubmissionCompleted) isEvent() {}
func (SubmissionAborted) isEvent()   {}

// Reduce returns the state after applying e to s. It does not modify s.
func Reduce(s State, e Event) State {
	s = s.clone()
	switch e := e.(type) {
	case FieldUpdated:
		s.Fields = s.Fields.With(e.Field, e.Value)

	case SubmitRequested:
		if s.Status == StatusSubmitting {
			return s
		}
		s.Errors = Errors{}
		result := Validate(s.Fields)
		if !result.OK {
			s.Errors = result.Errors
			s.Status = StatusIdle
			return s
		}
		s.Status = StatusSubmitting

	case SubmissionCompleted:
		if s.Status != StatusSubmitting {
			return s
		}
		s.Fields = Fields{}
		s.Status = StatusIdle

	case SubmissionAborted:
		if s.Status != StatusSubmitting {
			return s
		}
		s.Status = StatusIdle
	}
	return s
}
