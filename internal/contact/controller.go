package contact

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Observer receives submission lifecycle callbacks, e.g. for metrics.
type Observer interface {
	SubmitRejected(errs Errors)
	SubmitAccepted()
	SubmitCompleted(d time.Duration)
	SubmitAborted()
}

type nopObserver struct{}

func (nopObserver) SubmitRejected(Errors)         {}
func (nopObserver) SubmitAccepted()               {}
func (nopObserver) SubmitCompleted(time.Duration) {}
func (nopObserver) SubmitAborted()                {}

// Option configures a Controller.
type Option func(*Controller)

// WithSuccessMessage overrides SuccessMessage.
func WithSuccessMessage(msg string) Option {
	return func(c *Controller) {
		if msg != "" {
			c.successMessage = msg
		}
	}
}

// WithObserver attaches lifecycle callbacks.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// Controller owns one contact form instance. All mutation goes through
// UpdateField and Submit; reads go through Snapshot. At most one
// submission is in flight at a time.
type Controller struct {
	id             string
	submitter      Submitter
	notifier       Notifier
	observer       Observer
	successMessage string
	inflight       *inflight

	// lifetime bounds pending submissions; Close cancels it.
	lifetime context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	state   State
	pending *Pending
}

// NewController mounts a form with empty fields. Pending submissions are
// bounded by ctx and by Close.
func NewController(ctx context.Context, id string, s Submitter, n Notifier, opts ...Option) *Controller {
	lifetime, cancel := context.WithCancel(ctx)
	c := &Controller{
		id:             id,
		submitter:      s,
		notifier:       n,
		observer:       nopObserver{},
		successMessage: SuccessMessage,
		lifetime:       lifetime,
		cancel:         cancel,
		state:          NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the form instance identifier.
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// UpdateField overwrites one field without validating.
func (c *Controller) UpdateField(f Field, value string) error {
	if _, err := ParseField(string(f)); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, FieldUpdated{Field: f, Value: value})
	return nil
}

// Submit validates the form. Invalid input yields an Attempt carrying the
// field errors with the form left Idle and unchanged. Valid input moves the
// form to Submitting and starts delivery in the background; the returned
// Pending resolves after the notification is emitted and the fields reset.
func (c *Controller) Submit() (Attempt, error) {
	c.mu.Lock()
	if c.state.Status == StatusSubmitting {
		c.mu.Unlock()
		return Attempt{}, ErrSubmissionInFlight
	}

	c.state = Reduce(c.state, SubmitRequested{})
	if c.state.Status != StatusSubmitting {
		errs := c.state.Errors.Clone()
		c.mu.Unlock()
		c.observer.SubmitRejected(errs)
		return Attempt{Errors: errs}, nil
	}

	fields := c.state.Fields
	p := newPending()
	c.pending = p
	c.mu.Unlock()

	c.observer.SubmitAccepted()
	tracked := c.inflight != nil && c.inflight.add()
	go func() {
		if tracked {
			defer c.inflight.done()
		}
		c.complete(fields, p)
	}()
	return Attempt{Pending: p}, nil
}

func (c *Controller) complete(fields Fields, p *Pending) {
	start := time.Now()

	if err := c.submitter.Submit(c.lifetime, fields); err != nil {
		c.mu.Lock()
		c.state = Reduce(c.state, SubmissionAborted{})
		c.pending = nil
		c.mu.Unlock()

		slog.Warn("submission aborted",
			"component", "contact",
			"action", "submit_aborted",
			"form_id", c.id,
			"error", err,
		)
		c.observer.SubmitAborted()
		p.resolve(nil, err)
		return
	}

	n := Notification{
		ID:      ulid.Make().String(),
		FormID:  c.id,
		Kind:    StatusSucceeded,
		Message: c.successMessage,
		At:      time.Now().UTC(),
	}
	// The notification must still go out if teardown races completion.
	if err := c.notifier.Notify(context.WithoutCancel(c.lifetime), n); err != nil {
		slog.Error("notification failed",
			"component", "contact",
			"action", "notify_failed",
			"form_id", c.id,
			"error", err,
		)
	}

	c.mu.Lock()
	c.state = Reduce(c.state, SubmissionCompleted{})
	c.pending = nil
	c.mu.Unlock()

	c.observer.SubmitCompleted(time.Since(start))
	p.resolve(&n, nil)
}

// Pending returns the in-flight submission, or nil.
func (c *Controller) Pending() *Pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Close unmounts the form. A pending submission is cancelled and the form
// returns to Idle with its fields kept; no notification is emitted.
func (c *Controller) Close() {
	c.cancel()
}
