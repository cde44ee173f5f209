package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultSubmitDelay stands in for a network round trip.
const DefaultSubmitDelay = 1500 * time.Millisecond

// Submitter delivers a validated form. It is the controller's only
// suspension point; swapping transports only changes this interface's
// implementation.
type Submitter interface {
	Submit(ctx context.Context, fields Fields) error
}

// SimulatedSubmitter waits Delay and succeeds. It returns early only when
// ctx is cancelled.
type SimulatedSubmitter struct {
	Delay time.Duration
}

// Submit implements Submitter.
func (s SimulatedSubmitter) Submit(ctx context.Context, fields Fields) error {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		slog.Debug("simulated submission delivered",
			"component", "contact",
			"action", "submit_delivered",
			"message_length", len(fields.Message),
		)
		return nil
	}
}

// ErrSubmissionInFlight is returned by Submit while a previous submission
// has not completed. The state is left untouched.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Pending is the completion handle of an accepted submission.
type Pending struct {
	done         chan struct{}
	err          error
	notification *Notification
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(n *Notification, err error) {
	p.notification = n
	p.err = err
	close(p.done)
}

// Done is closed once the submission completed or was aborted.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns nil after a successful completion and the abort cause
// otherwise. It is only meaningful once Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Notification returns the notification emitted on success. ok is false
// while pending and after an abort.
func (p *Pending) Notification() (n Notification, ok bool) {
	select {
	case <-p.done:
		if p.notification == nil {
			return Notification{}, false
		}
		return *p.notification, true
	default:
		return Notification{}, false
	}
}

// Wait blocks until the submission resolves or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Attempt is the outcome of Controller.Submit. Exactly one of Errors
// (non-empty) or Pending (non-nil) is set.
type Attempt struct {
	Errors  Errors
	Pending *Pending
}

// Accepted reports whether validation passed and submission started.
func (a Attempt) Accepted() bool {
	return a.Pending != nil
}
