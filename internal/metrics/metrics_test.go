package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SubmissionOutcomes(t *testing.T) {
	m := New()

	m.SubmitRejected(contact.Errors{contact.FieldEmail: "Invalid email address", contact.FieldName: "Name is required"})
	m.SubmitAccepted()
	m.SubmitCompleted(1500 * time.Millisecond)
	m.SubmitAccepted()
	m.SubmitAborted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeAborted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("email")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("name")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("message")))
}

func TestMetrics_CatalogAndForms(t *testing.T) {
	m := New()

	m.CatalogQueried(catalog.All)
	m.CatalogQueried(catalog.CategoryFoodGrocery)
	m.CatalogQueried(catalog.CategoryFoodGrocery)
	m.SetOpenForms(3)
	m.FormsSwept(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.catalogQueries.WithLabelValues("all")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.catalogQueries.WithLabelValues("food-grocery")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.openForms))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.formsSwept))
}

func TestMetrics_NotifierCounts(t *testing.T) {
	m := New()

	require.NoError(t, m.Notifier().Notify(context.Background(), contact.Notification{ID: "n1"}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsSent))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SubmitAccepted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `showcase_contact_submissions_total{outcome="accepted"} 1`))
	assert.True(t, strings.Contains(string(body), "go_goroutines"))
}

func TestMetrics_ObservesController(t *testing.T) {
	m := New()
	c := contact.NewController(context.Background(), "f1",
		contact.SimulatedSubmitter{Delay: time.Millisecond}, contact.Notifiers{}, contact.WithObserver(m))

	_, err := c.Submit()
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationErrors.WithLabelValues("message")))
}
