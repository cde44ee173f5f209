package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/showcase/internal/contact"
)

// formContextKey is the context key for the resolved form controller.
type formContextKey struct{}

// ErrNoFormInContext indicates no form was found in the context.
var ErrNoFormInContext = errors.New("no form in context")

// WithForm returns a new context with the form controller attached.
func WithForm(ctx context.Context, c *contact.Controller) context.Context {
	return context.WithValue(ctx, formContextKey{}, c)
}

// FormFromContext extracts the form controller from the context.
// Returns ErrNoFormInContext if not present or nil.
func FormFromContext(ctx context.Context) (*contact.Controller, error) {
	c, ok := ctx.Value(formContextKey{}).(*contact.Controller)
	if !ok || c == nil {
		return nil, ErrNoFormInContext
	}
	return c, nil
}

// MustFormFromContext extracts the form controller or panics.
// Use only when FormMiddleware guarantees form presence.
func MustFormFromContext(ctx context.Context) *contact.Controller {
	c, err := FormFromContext(ctx)
	if err != nil {
		panic("form not in context: middleware misconfiguration")
	}
	return c
}

// FormMiddleware resolves the {formID} URL parameter against the registry.
// Unknown IDs get a 404 problem response.
func FormMiddleware(forms *contact.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := forms.Get(chi.URLParam(r, "formID"))
			if err != nil {
				MapError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithForm(r.Context(), c)))
		})
	}
}
