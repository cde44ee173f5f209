package contact

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// SuccessMessage is shown to the user after a successful submission.
const SuccessMessage = "Message sent successfully! I'll get back to you soon."

// Notification is the user-facing event emitted once per successful
// submission. It carries no form field contents.
type Notification struct {
	ID      string    `json:"id"`
	FormID  string    `json:"form_id"`
	Kind    Status    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogNotifier writes notifications to the default slog logger.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	slog.InfoContext(ctx, "notification emitted",
		"component", "contact",
		"action", "notify",
		"form_id", n.FormID,
		"kind", string(n.Kind),
		"notification_id", n.ID,
	)
	return nil
}

// Notifiers fans a notification out to every sink and joins their errors.
type Notifiers []Notifier

// Notify implements Notifier.
func (ns Notifiers) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range ns {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
