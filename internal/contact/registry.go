package contact

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ErrFormNotFound indicates no mounted form has the requested ID.
var ErrFormNotFound = errors.New("form not found")

type mounted struct {
	ctrl *Controller

	mu         sync.Mutex
	lastAccess time.Time
}

func (m *mounted) touch(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAccess = now
}

func (m *mounted) idleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAccess
}

// inflight counts completion goroutines so Shutdown can wait for them.
// Once closed it stops admitting new ones.
type inflight struct {
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func (f *inflight) add() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

func (f *inflight) done() {
	f.wg.Done()
}

func (f *inflight) closeAndWait() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.wg.Wait()
}

func withInflight(f *inflight) Option {
	return func(c *Controller) {
		c.inflight = f
	}
}

// Registry holds the mounted form instances of a running server, one
// Controller per form ID. Instances share nothing but the submitter and
// notifier.
type Registry struct {
	ctx       context.Context
	submitter Submitter
	notifier  Notifier
	opts      []Option
	now       func() time.Time
	inflight  *inflight

	mu    sync.RWMutex
	forms map[string]*mounted
}

// NewRegistry creates a registry whose forms live at most as long as ctx.
func NewRegistry(ctx context.Context, s Submitter, n Notifier, opts ...Option) *Registry {
	return &Registry{
		ctx:       ctx,
		submitter: s,
		notifier:  n,
		opts:      opts,
		now:       time.Now,
		inflight:  &inflight{},
		forms:     make(map[string]*mounted),
	}
}

// Open mounts a new form and returns its controller.
func (r *Registry) Open() *Controller {
	id := ulid.Make().String()
	opts := append([]Option{withInflight(r.inflight)}, r.opts...)
	ctrl := NewController(r.ctx, id, r.submitter, r.notifier, opts...)

	r.mu.Lock()
	r.forms[id] = &mounted{ctrl: ctrl, lastAccess: r.now()}
	r.mu.Unlock()

	slog.Debug("form opened",
		"component", "contact",
		"action", "form_opened",
		"form_id", id,
	)
	return ctrl
}

// Get returns the controller for id and marks it accessed.
func (r *Registry) Get(id string) (*Controller, error) {
	r.mu.RLock()
	m, ok := r.forms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrFormNotFound
	}
	m.touch(r.now())
	return m.ctrl, nil
}

// Close unmounts the form, cancelling any pending submission.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	m, ok := r.forms[id]
	if ok {
		delete(r.forms, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrFormNotFound
	}

	m.ctrl.Close()
	slog.Debug("form closed",
		"component", "contact",
		"action", "form_closed",
		"form_id", id,
	)
	return nil
}

// Len returns the number of mounted forms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Sweep unmounts forms idle for longer than ttl. Forms with a submission
// in flight are kept. It returns the number of forms removed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var evicted []*mounted
	for id, m := range r.forms {
		if m.idleSince().After(cutoff) || m.ctrl.Pending() != nil {
			continue
		}
		delete(r.forms, id)
		evicted = append(evicted, m)
	}
	r.mu.Unlock()

	for _, m := range evicted {
		m.ctrl.Close()
	}
	return len(evicted)
}

// Shutdown unmounts every form and waits for their submissions to settle,
// including notifications already past the submitter. Completions started
// after Shutdown are not waited for.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	forms := r.forms
	r.forms = make(map[string]*mounted)
	r.mu.Unlock()

	for _, m := range forms {
		m.ctrl.Close()
	}
	r.inflight.closeAndWait()
}
