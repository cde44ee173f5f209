package worker

import (
	"context"
	"log/slog"
	"time"
)

// FormRegistry is the subset of contact.Registry the sweeper needs.
type FormRegistry interface {
	Sweep(ttl time.Duration) int
	Len() int
}

// SweepObserver is told the outcome of each sweep, e.g. for metrics.
type SweepObserver interface {
	FormsSwept(n int)
	SetOpenForms(n int)
}

// FormSweeper unmounts contact forms that have been idle longer than a TTL.
type FormSweeper struct {
	forms    FormRegistry
	interval time.Duration
	ttl      time.Duration
	observer SweepObserver
}

// NewFormSweeper creates a sweeper. observer may be nil.
func NewFormSweeper(forms FormRegistry, interval, ttl time.Duration, observer SweepObserver) *FormSweeper {
	return &FormSweeper{
		forms:    forms,
		interval: interval,
		ttl:      ttl,
		observer: observer,
	}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
// The first sweep happens one interval after start.
func (s *FormSweeper) Run(ctx context.Context) {
	slog.Info("form sweeper started",
		"component", "worker",
		"worker", "form-sweeper",
		"interval", s.interval.String(),
		"idle_ttl", s.ttl.String(),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("form sweeper stopped",
				"component", "worker",
				"worker", "form-sweeper",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one eviction pass and returns the number of forms removed.
func (s *FormSweeper) sweep() int {
	start := time.Now()
	removed := s.forms.Sweep(s.ttl)
	open := s.forms.Len()

	if s.observer != nil {
		s.observer.FormsSwept(removed)
		s.observer.SetOpenForms(open)
	}

	if removed > 0 {
		slog.Info("idle forms swept",
			"component", "worker",
			"worker", "form-sweeper",
			"forms_removed", removed,
			"forms_open", open,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return removed
}
