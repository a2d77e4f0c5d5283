package application

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
	"github.com/homehunt/homehunt-api/pkg/mailer"
	tpl "github.com/homehunt/homehunt-api/pkg/mailer/templates"
)

// UserService handles profile updates and saved-listing toggles, including
// the notification fan-out to the listing owner.
type UserService struct {
	Repo          repository.UserRepository
	Properties    repository.PropertyRepository
	Notifications repository.NotificationRepository
	Pub           *helpers.RabbitPublisher
	MailEnabled   bool
	Logger        *logrus.Logger
}

func NewUserService(repo repository.UserRepository, properties repository.PropertyRepository, notifications repository.NotificationRepository, pub *helpers.RabbitPublisher, mailEnabled bool, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:          repo,
		Properties:    properties,
		Notifications: notifications,
		Pub:           pub,
		MailEnabled:   mailEnabled,
		Logger:        logger,
	}
}

type UpdateProfileInput struct {
	Name    string
	Phone   string
	Address string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if !u.IsActive {
		return nil, ErrAccountBlocked
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if in.Address != "" {
		u.Address = in.Address
	}
	if err := s.Repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ToggleSaveProperty saves or unsaves a listing for the user. Saving (not
// unsaving) notifies the listing owner: a notification row plus a queued
// email job. Both are best-effort relative to the toggle itself.
func (s *UserService) ToggleSaveProperty(ctx context.Context, user *entity.User, propertyID string) (bool, []string, error) {
	if !user.IsActive {
		return false, nil, ErrAccountBlocked
	}

	p, err := s.Properties.GetByID(ctx, propertyID)
	if err != nil {
		return false, nil, ErrPropertyNotFound
	}

	alreadySaved, err := s.Repo.IsPropertySaved(ctx, user.ID, propertyID)
	if err != nil {
		return false, nil, err
	}

	if alreadySaved {
		if err := s.Repo.UnsaveProperty(ctx, user.ID, propertyID); err != nil {
			return false, nil, err
		}
	} else {
		if err := s.Repo.SaveProperty(ctx, user.ID, propertyID); err != nil {
			return false, nil, err
		}
		s.notifyOwner(ctx, user, p)
	}

	ids, err := s.Repo.SavedPropertyIDs(ctx, user.ID)
	if err != nil {
		return false, nil, err
	}
	return !alreadySaved, ids, nil
}

func (s *UserService) notifyOwner(ctx context.Context, saver *entity.User, p *entity.Property) {
	n := &entity.Notification{
		RecipientID: p.CreatedBy,
		SenderID:    saver.ID,
		Message:     fmt.Sprintf("%s saved your listing %q", saver.Name, p.Title),
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("property_id", p.ID).Warn("create notification failed")
		}
		return
	}

	if s.Pub == nil || !s.MailEnabled || p.Owner == nil || p.Owner.Email == "" {
		return
	}
	job := mailer.EmailJob{
		To:       p.Owner.Email,
		Template: tpl.ListingSaved,
		Data: map[string]any{
			"AgentName":    p.Owner.Name,
			"SaverName":    saver.Name,
			"ListingTitle": p.Title,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("property_id", p.ID).Warn("enqueue listing_saved email failed")
	}
}

// SavedProperties returns the user's saved listing ids, newest first.
func (s *UserService) SavedProperties(ctx context.Context, userID string) ([]string, error) {
	return s.Repo.SavedPropertyIDs(ctx, userID)
}
