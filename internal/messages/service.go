package messages

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	dbtypes "github.com/Shashankphatkure/equico-app/pkg/db/types"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultLimit     = 20
	maxContentLength = 5000
)

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type listingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

// SendInput is the body of POST /messages.
type SendInput struct {
	ReceiverID uuid.UUID  `json:"receiverId" validate:"required"`
	Content    string     `json:"content" validate:"required"`
	ListingID  *uuid.UUID `json:"listingId"`
}

// ListingSummary is the listing card shown next to a message.
type ListingSummary struct {
	ID     uuid.UUID          `json:"id"`
	Title  string             `json:"title"`
	Price  decimal.Decimal    `json:"price"`
	Images dbtypes.StringList `json:"images"`
}

// View is a message with its parties and listing.
type View struct {
	models.Message
	Sender   *models.UserSummary `json:"sender"`
	Receiver *models.UserSummary `json:"receiver"`
	Listing  *ListingSummary     `json:"listing"`
}

type Service interface {
	Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*View, error)
	List(ctx context.Context, userID uuid.UUID, otherID *uuid.UUID, page, limit int) ([]View, error)
}

type ServiceParams struct {
	Repo      *Repository
	Users     userLookup
	Listings  listingLookup
	Notifier  notifier
	Publisher realtime.Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	users     userLookup
	listings  listingLookup
	notifier  notifier
	publisher realtime.Publisher
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listings repository required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = realtime.Nop{}
	}
	return &service{
		repo:      params.Repo,
		users:     params.Users,
		listings:  params.Listings,
		notifier:  params.Notifier,
		publisher: publisher,
		logg:      params.Logger,
	}, nil
}

// Send stores the message, pushes it to the receiver and leaves a notification.
func (s *service) Send(ctx context.Context, senderID uuid.UUID, input SendInput) (*View, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if len(content) > maxContentLength {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "content exceeds %d characters", maxContentLength)
	}
	if input.ReceiverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiverId is required")
	}
	if input.ReceiverID == senderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}

	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return nil, lookupErr(err, pkgerrors.CodeUnauthorized, "user not found", "load sender")
	}
	if _, err := s.users.FindByID(ctx, input.ReceiverID); err != nil {
		return nil, lookupErr(err, pkgerrors.CodeNotFound, "Receiver not found", "load receiver")
	}
	if input.ListingID != nil {
		if _, err := s.listings.FindByID(ctx, *input.ListingID); err != nil {
			return nil, lookupErr(err, pkgerrors.CodeNotFound, "Listing not found", "load listing")
		}
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		ListingID:  input.ListingID,
		Content:    content,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	stored, err := s.repo.FindByID(ctx, message.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload message")
	}
	view := toView(*stored)

	if err := s.publisher.Publish(ctx, realtime.UserChannel(input.ReceiverID), realtime.EventNewMessage, map[string]any{"message": view}); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "message_id", message.ID.String()), "message publish failed", err)
	}
	_, err = s.notifier.Notify(ctx, notifications.NotifyInput{
		UserID:     input.ReceiverID,
		Type:       enums.NotificationTypeNewMessage,
		Content:    fmt.Sprintf("%s sent you a message", sender.Name),
		FromUserID: &senderID,
		ListingID:  input.ListingID,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "message_id", message.ID.String()), "message notification failed", err)
	}
	return &view, nil
}

// List returns one conversation when otherID is set, otherwise the whole
// inbox. Opening a conversation marks the other user's messages read.
func (s *service) List(ctx context.Context, userID uuid.UUID, otherID *uuid.UUID, page, limit int) ([]View, error) {
	p := pagination.New(page, limit, defaultLimit)

	var (
		rows []models.Message
		err  error
	)
	if otherID != nil {
		rows, err = s.repo.Conversation(ctx, userID, *otherID, p.Limit, p.Offset())
	} else {
		rows, err = s.repo.Inbox(ctx, userID, p.Limit, p.Offset())
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	if otherID != nil {
		if _, err := s.repo.MarkConversationRead(ctx, *otherID, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark messages read")
		}
	}

	out := make([]View, 0, len(rows))
	for _, m := range rows {
		out = append(out, toView(m))
	}
	return out, nil
}

func toView(m models.Message) View {
	view := View{Message: m, Sender: m.Sender.Summary(), Receiver: m.Receiver.Summary()}
	if m.Listing != nil {
		view.Listing = &ListingSummary{ID: m.Listing.ID, Title: m.Listing.Title, Price: m.Listing.Price, Images: m.Listing.Images}
	}
	return view
}

func lookupErr(err error, code pkgerrors.Code, missing, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(code, missing)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
