package messages

import (
	"context"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists direct messages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *Repository) withParties(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sender").Preload("Receiver").Preload("Listing")
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.withParties(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// Conversation pages the messages exchanged between two users, newest first.
func (r *Repository) Conversation(ctx context.Context, userID, otherID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var rows []models.Message
	err := r.withParties(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userID, otherID, otherID, userID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// Inbox pages every message the user sent or received, newest first.
func (r *Repository) Inbox(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var rows []models.Message
	err := r.withParties(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// MarkConversationRead flags unread messages from senderID to receiverID as read.
func (r *Repository) MarkConversationRead(ctx context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
