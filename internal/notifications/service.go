package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	"github.com/google/uuid"
)

const listLimit = 50

// NotifyInput describes one notification for one recipient.
type NotifyInput struct {
	UserID     uuid.UUID
	Type       enums.NotificationType
	Content    string
	FromUserID *uuid.UUID
	ListingID  *uuid.UUID
}

// View is a notification with its sender summary.
type View struct {
	models.Notification
	FromUser *models.UserSummary `json:"fromUser"`
}

// Service stores notifications and pushes them to the recipient's channel.
type Service interface {
	Notify(ctx context.Context, input NotifyInput) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]View, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

type ServiceParams struct {
	Repo      *Repository
	Publisher realtime.Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	publisher realtime.Publisher
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = realtime.Nop{}
	}
	return &service{
		repo:      params.Repo,
		publisher: publisher,
		logg:      params.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Notify persists first and then publishes. A failed publish is only logged.
func (s *service) Notify(ctx context.Context, input NotifyInput) (*models.Notification, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type")
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	notification := &models.Notification{
		UserID:     input.UserID,
		Type:       input.Type,
		Content:    content,
		FromUserID: input.FromUserID,
		ListingID:  input.ListingID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	if err := s.publisher.Publish(ctx, realtime.UserChannel(input.UserID), realtime.EventNewNotification, notification); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"notification_id": notification.ID.String(),
			"recipient_id":    input.UserID.String(),
		})
		s.logg.Error(logCtx, "notification publish failed", err)
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]View, error) {
	rows, err := s.repo.List(ctx, userID, unreadOnly, listLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	out := make([]View, 0, len(rows))
	for _, n := range rows {
		out = append(out, View{Notification: n, FromUser: n.FromUser.Summary()})
	}
	return out, nil
}

func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "notificationIds required")
	}
	if _, err := s.repo.MarkRead(ctx, userID, ids); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return nil
}

// PurgeRead deletes read notifications older than olderThan.
func (s *service) PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.repo.DeleteReadBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge read notifications")
	}
	return n, nil
}
