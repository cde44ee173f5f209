package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/hyperengineering/showcase/internal/metrics"
	"github.com/hyperengineering/showcase/internal/snapshot"
	"github.com/hyperengineering/showcase/internal/store"
	"github.com/hyperengineering/showcase/internal/types"
)

// Notification list bounds.
const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 500
)

// Handler implements the API handlers
type Handler struct {
	catalog    *catalog.Catalog
	forms      *contact.Registry
	store      store.Store
	metrics    *metrics.Metrics
	info       contact.Info
	previewCap int
	version    string

	uploader     snapshot.Uploader
	snapshotPath string
}

// NewHandler creates a new Handler. m may be nil when metrics are disabled.
func NewHandler(cat *catalog.Catalog, forms *contact.Registry, s store.Store, m *metrics.Metrics, previewCap int, version string) *Handler {
	return &Handler{
		catalog:    cat,
		forms:      forms,
		store:      s,
		metrics:    m,
		info:       contact.DefaultInfo(),
		previewCap: previewCap,
		version:    version,
	}
}

// WithSnapshots enables the notification log snapshot download. uploader
// may be nil; path is the local snapshot file.
func (h *Handler) WithSnapshots(uploader snapshot.Uploader, path string) *Handler {
	h.uploader = uploader
	h.snapshotPath = path
	return h
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// parseLimit reads a non-negative integer query parameter. ok is false when
// the parameter is absent.
func parseLimit(r *http.Request, name string) (limit int, ok bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, true, nil
}

func (h *Handler) syncOpenForms() {
	if h.metrics != nil {
		h.metrics.SetOpenForms(h.forms.Len())
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		slog.Error("health check failed", "error", err)
		WriteProblem(w, r, http.StatusServiceUnavailable, "Notification log unavailable")
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:            "healthy",
		Version:           h.version,
		CatalogSize:       h.catalog.Len(),
		OpenForms:         h.forms.Len(),
		NotificationCount: stats.NotificationCount,
		LastNotification:  stats.LastNotification,
	})
}

// ListProjects handles GET /api/v1/projects?category=&limit=
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	limit, capped, err := parseLimit(r, "limit")
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var previewCap *int
	if capped {
		previewCap = &limit
	}
	f := catalog.NewFilter(h.catalog, previewCap)
	f.SelectCategory(category)

	if h.metrics != nil {
		h.metrics.CatalogQueried(category)
	}
	writeJSON(w, http.StatusOK, types.NewCatalogView(f))
}

// PreviewProjects handles GET /api/v1/projects/preview, the capped home
// page selection.
func (h *Handler) PreviewProjects(w http.ResponseWriter, r *http.Request) {
	f := catalog.NewFilter(h.catalog, &h.previewCap)

	if h.metrics != nil {
		h.metrics.CatalogQueried(catalog.All)
	}
	writeJSON(w, http.StatusOK, types.NewCatalogView(f))
}

// ListCategories handles GET /api/v1/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.CategoryOptions(catalog.All))
}

// ContactInfo handles GET /api/v1/contact/info
func (h *Handler) ContactInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.NewContactInfoResponse(h.info))
}

// OpenForm handles POST /api/v1/forms
func (h *Handler) OpenForm(w http.ResponseWriter, r *http.Request) {
	c := h.forms.Open()
	h.syncOpenForms()

	w.Header().Set("Location", "/api/v1/forms/"+c.ID())
	writeJSON(w, http.StatusCreated, types.NewFormView(c.ID(), c.Snapshot()))
}

// GetForm handles GET /api/v1/forms/{formID}
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	c := MustFormFromContext(r.Context())
	writeJSON(w, http.StatusOK, types.NewFormView(c.ID(), c.Snapshot()))
}

// UpdateField handles PUT /api/v1/forms/{formID}/fields/{field}
func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	c := MustFormFromContext(r.Context())

	field, err := contact.ParseField(chi.URLParam(r, "field"))
	if err != nil {
		MapError(w, r, err)
		return
	}

	var req types.FieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if err := c.UpdateField(field, req.Value); err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewFormView(c.ID(), c.Snapshot()))
}

// SubmitForm handles POST /api/v1/forms/{formID}/submit.
// Invalid input yields 422 with field errors. An accepted submission yields
// 202 while it is pending; with ?wait=true the handler blocks until it
// completes and returns 200 with the reset form.
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	c := MustFormFromContext(r.Context())

	attempt, err := c.Submit()
	if err != nil {
		MapError(w, r, err)
		return
	}
	if !attempt.Accepted() {
		WriteProblemWithErrors(w, r, "Form contains invalid fields", contact.ValidationErrors(attempt.Errors))
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, types.SubmitResponse{
			Form:    types.NewFormView(c.ID(), c.Snapshot()),
			Pending: true,
		})
		return
	}

	if err := attempt.Pending.Wait(r.Context()); err != nil {
		if r.Context().Err() != nil {
			// Client went away; the submission continues on the form's lifetime
			return
		}
		WriteProblem(w, r, http.StatusConflict, "Submission was cancelled")
		return
	}
	writeJSON(w, http.StatusOK, types.SubmitResponse{
		Form: types.NewFormView(c.ID(), c.Snapshot()),
	})
}

// CloseForm handles DELETE /api/v1/forms/{formID}
func (h *Handler) CloseForm(w http.ResponseWriter, r *http.Request) {
	c := MustFormFromContext(r.Context())

	if err := h.forms.Close(c.ID()); err != nil {
		MapError(w, r, err)
		return
	}
	h.syncOpenForms()
	w.WriteHeader(http.StatusNoContent)
}

// SubmitContact handles POST /api/v1/contact, a one-shot submission that
// mounts a form, fills it, submits and waits for completion.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req types.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	c := h.forms.Open()
	h.syncOpenForms()
	for _, fv := range []struct {
		field contact.Field
		value string
	}{
		{contact.FieldName, req.Name},
		{contact.FieldEmail, req.Email},
		{contact.FieldMessage, req.Message},
	} {
		if err := c.UpdateField(fv.field, fv.value); err != nil {
			h.closeQuietly(c.ID())
			MapError(w, r, err)
			return
		}
	}

	attempt, err := c.Submit()
	if err != nil {
		h.closeQuietly(c.ID())
		MapError(w, r, err)
		return
	}
	if !attempt.Accepted() {
		h.closeQuietly(c.ID())
		WriteProblemWithErrors(w, r, "Form contains invalid fields", contact.ValidationErrors(attempt.Errors))
		return
	}

	if err := attempt.Pending.Wait(r.Context()); err != nil {
		if r.Context().Err() != nil {
			// Client went away; the submission still completes, then the
			// form is unmounted.
			go func() {
				<-attempt.Pending.Done()
				h.closeQuietly(c.ID())
			}()
			return
		}
		h.closeQuietly(c.ID())
		WriteProblem(w, r, http.StatusServiceUnavailable, "Submission was cancelled")
		return
	}
	h.closeQuietly(c.ID())

	n, _ := attempt.Pending.Notification()
	writeJSON(w, http.StatusOK, types.NewNotificationView(n))
}

func (h *Handler) closeQuietly(id string) {
	if err := h.forms.Close(id); err != nil && !errors.Is(err, contact.ErrFormNotFound) {
		slog.Warn("close form failed", "form_id", id, "error", err)
	}
	h.syncOpenForms()
}

// ListNotifications handles GET /api/v1/notifications?limit=
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, ok, err := parseLimit(r, "limit")
	if err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !ok || limit == 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	items, err := h.store.ListNotifications(r.Context(), limit)
	if err != nil {
		MapError(w, r, err)
		return
	}

	views := make([]types.NotificationView, len(items))
	for i, n := range items {
		views[i] = types.NewNotificationView(n)
	}
	writeJSON(w, http.StatusOK, types.NotificationsResponse{
		Notifications: views,
		Total:         len(views),
	})
}

// GetNotification handles GET /api/v1/notifications/{id}
func (h *Handler) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.GetNotification(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewNotificationView(*n))
}

// NotificationSnapshot handles GET /api/v1/notifications/snapshot.
// It redirects to a pre-signed URL when S3 storage is configured and
// otherwise streams the local snapshot file.
func (h *Handler) NotificationSnapshot(w http.ResponseWriter, r *http.Request) {
	if h.uploader != nil {
		url, _, err := h.uploader.PresignedURL(r.Context())
		if err == nil {
			http.Redirect(w, r, url, http.StatusFound)
			return
		}
		if !errors.Is(err, snapshot.ErrNotConfigured) {
			slog.Warn("pre-signed URL failed, serving local snapshot",
				"component", "api",
				"action", "snapshot_presign_failed",
				"error", err,
			)
		}
	}

	if h.snapshotPath == "" {
		WriteProblem(w, r, http.StatusServiceUnavailable, "Snapshots are not enabled")
		return
	}

	f, err := os.Open(h.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			WriteProblem(w, r, http.StatusServiceUnavailable, "No snapshot has been generated yet")
			return
		}
		MapError(w, r, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		MapError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="notifications.db"`)
	http.ServeContent(w, r, "notifications.db", info.ModTime(), f)
}
