// Package types defines the read-only projections handed to presentation
// code, and the API response shapes built from them.
package types

import (
	"time"

	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/contact"
)

// Submit button labels.
const (
	SubmitLabelIdle       = "Send Message"
	SubmitLabelSubmitting = "Sending..."
)

// ProjectCard is the display data for one catalog entry.
type ProjectCard struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	TechStack   []string `json:"tech_stack"`
	Category    string   `json:"category"`
	LiveURL     string   `json:"live_url,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
}

// NewProjectCard projects a catalog entry.
func NewProjectCard(e catalog.Entry) ProjectCard {
	return ProjectCard{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Image:       e.Image,
		TechStack:   e.TechStack,
		Category:    string(e.Category),
		LiveURL:     e.LiveURL,
		SourceURL:   e.SourceURL,
	}
}

// CategoryOption is one button of the category filter bar.
type CategoryOption struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// CategoryOptions returns the filter bar with active highlighted.
func CategoryOptions(active catalog.Category) []CategoryOption {
	cats := catalog.Categories()
	out := make([]CategoryOption, len(cats))
	for i, c := range cats {
		out[i] = CategoryOption{Name: string(c), Slug: c.Slug(), Active: c == active}
	}
	return out
}

// CatalogView is the projection of a catalog filter.
// Empty is set when no project matches so the shell can render its empty
// state; ShowViewAll is set when a preview cap hides matching projects.
type CatalogView struct {
	ActiveCategory string           `json:"active_category"`
	Categories     []CategoryOption `json:"categories"`
	Projects       []ProjectCard    `json:"projects"`
	Total          int              `json:"total"`
	Empty          bool             `json:"empty"`
	ShowViewAll    bool             `json:"show_view_all"`
}

// NewCatalogView projects the filter's current output.
func NewCatalogView(f *catalog.Filter) CatalogView {
	visible := f.VisibleProjects()
	cards := make([]ProjectCard, len(visible))
	for i, e := range visible {
		cards[i] = NewProjectCard(e)
	}
	return CatalogView{
		ActiveCategory: string(f.ActiveCategory()),
		Categories:     CategoryOptions(f.ActiveCategory()),
		Projects:       cards,
		Total:          len(cards),
		Empty:          len(cards) == 0,
		ShowViewAll:    f.Truncated(),
	}
}

// FormView is the projection of one contact form instance.
type FormView struct {
	ID             string            `json:"id"`
	Fields         contact.Fields    `json:"fields"`
	Errors         map[string]string `json:"errors"`
	Status         string            `json:"status"`
	SubmitDisabled bool              `json:"submit_disabled"`
	SubmitLabel    string            `json:"submit_label"`
}

// NewFormView projects a form state.
func NewFormView(id string, s contact.State) FormView {
	errs := make(map[string]string, len(s.Errors))
	for f, msg := range s.Errors {
		errs[string(f)] = msg
	}
	submitting := s.Status == contact.StatusSubmitting
	label := SubmitLabelIdle
	if submitting {
		label = SubmitLabelSubmitting
	}
	return FormView{
		ID:             id,
		Fields:         s.Fields,
		Errors:         errs,
		Status:         string(s.Status),
		SubmitDisabled: submitting,
		SubmitLabel:    label,
	}
}

// FieldUpdateRequest is the body of a field update.
type FieldUpdateRequest struct {
	Value string `json:"value"`
}

// SubmitResponse is returned when a submission is accepted.
type SubmitResponse struct {
	Form    FormView `json:"form"`
	Pending bool     `json:"pending"`
}

// ContactRequest is the body of a one-shot contact submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// NotificationView is a delivered notification.
type NotificationView struct {
	ID      string    `json:"id"`
	FormID  string    `json:"form_id"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NewNotificationView projects a notification.
func NewNotificationView(n contact.Notification) NotificationView {
	return NotificationView{
		ID:      n.ID,
		FormID:  n.FormID,
		Kind:    string(n.Kind),
		Message: n.Message,
		At:      n.At,
	}
}

// NotificationsResponse lists notifications, newest first.
type NotificationsResponse struct {
	Notifications []NotificationView `json:"notifications"`
	Total         int                `json:"total"`
}

// ContactInfo is one line of static contact details.
type ContactInfo struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SocialLink is an outbound social profile link.
type SocialLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// ContactInfoResponse is the static contact panel next to the form.
type ContactInfoResponse struct {
	Details []ContactInfo `json:"details"`
	Social  []SocialLink  `json:"social"`
}

// NewContactInfoResponse projects the contact panel.
func NewContactInfoResponse(info contact.Info) ContactInfoResponse {
	resp := ContactInfoResponse{
		Details: make([]ContactInfo, len(info.Details)),
		Social:  make([]SocialLink, len(info.Social)),
	}
	for i, d := range info.Details {
		resp.Details[i] = ContactInfo{Label: d.Label, Value: d.Value}
	}
	for i, l := range info.Social {
		resp.Social[i] = SocialLink{Label: l.Label, Href: l.Href}
	}
	return resp
}

// StoreStats summarizes the notification log.
type StoreStats struct {
	NotificationCount int64      `json:"notification_count"`
	LastNotification  *time.Time `json:"last_notification,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status            string     `json:"status"`
	Version           string     `json:"version"`
	CatalogSize       int        `json:"catalog_size"`
	OpenForms         int        `json:"open_forms"`
	NotificationCount int64      `json:"notification_count"`
	LastNotification  *time.Time `json:"last_notification,omitempty"`
}
