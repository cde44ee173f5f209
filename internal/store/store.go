package store

import (
	"context"

	"github.com/hyperengineering/showcase/internal/contact"
	"github.com/hyperengineering/showcase/internal/types"
)

// Store defines the interface contract for the notification log.
type Store interface {
	RecordNotification(ctx context.Context, n contact.Notification) error
	GetNotification(ctx context.Context, id string) (*contact.Notification, error)
	ListNotifications(ctx context.Context, limit int) ([]contact.Notification, error)
	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}

// Sink adapts a Store into a contact.Notifier so delivered notifications
// are persisted.
func Sink(s Store) contact.Notifier {
	return contact.NotifierFunc(s.RecordNotification)
}
