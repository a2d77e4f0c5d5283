package repository

import (
	"context"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
)

// NotificationRepository defines persistence for listing notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]entity.Notification, error)
	// MarkRead flips is_read for the recipient's own notification;
	// ErrNotFound when the id does not belong to them.
	MarkRead(ctx context.Context, id, recipientID string) error
}
