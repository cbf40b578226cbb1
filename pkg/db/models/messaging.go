package models

import (
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is a direct message between two users, optionally about a listing.
type Message struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index" json:"senderId"`
	ReceiverID uuid.UUID  `gorm:"column:receiver_id;type:uuid;not null;index" json:"receiverId"`
	ListingID  *uuid.UUID `gorm:"column:listing_id;type:uuid" json:"listingId"`
	Content    string     `gorm:"column:content;not null" json:"content"`
	IsRead     bool       `gorm:"column:is_read;not null" json:"isRead"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`

	Sender   *User    `gorm:"foreignKey:SenderID" json:"-"`
	Receiver *User    `gorm:"foreignKey:ReceiverID" json:"-"`
	Listing  *Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Notification is an in-app alert for a single recipient.
type Notification struct {
	ID         uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	Type       enums.NotificationType `gorm:"column:type;type:text;not null" json:"type"`
	Content    string                 `gorm:"column:content;not null" json:"content"`
	FromUserID *uuid.UUID             `gorm:"column:from_user_id;type:uuid" json:"fromUserId"`
	ListingID  *uuid.UUID             `gorm:"column:listing_id;type:uuid" json:"listingId"`
	IsRead     bool                   `gorm:"column:is_read;not null" json:"isRead"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`

	FromUser *User `gorm:"foreignKey:FromUserID" json:"-"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
