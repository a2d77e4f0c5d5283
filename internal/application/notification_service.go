package application

import (
	"context"
	"errors"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	Repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

func (s *NotificationService) MyNotifications(ctx context.Context, userID string) ([]entity.Notification, error) {
	return s.Repo.ListByRecipient(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.Repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}
