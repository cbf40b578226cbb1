package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is an entry in the social feed.
type Post struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID  uuid.UUID  `gorm:"column:author_id;type:uuid;not null;index" json:"authorId"`
	Content   string     `gorm:"column:content;not null" json:"content"`
	ImageURL  *string    `gorm:"column:image_url" json:"imageUrl"`
	VideoURL  *string    `gorm:"column:video_url" json:"videoUrl"`
	IsPublic  bool       `gorm:"column:is_public;not null" json:"isPublic"`
	HorseID   *uuid.UUID `gorm:"column:horse_id;type:uuid" json:"horseId"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;index" json:"postId"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid;not null" json:"authorId"`
	Content   string    `gorm:"column:content;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Author *User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:likes_user_post_key" json:"userId"`
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;not null;uniqueIndex:likes_user_post_key" json:"postId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"column:follower_id;type:uuid;not null;uniqueIndex:follows_follower_following_key" json:"followerId"`
	FollowingID uuid.UUID `gorm:"column:following_id;type:uuid;not null;uniqueIndex:follows_follower_following_key;index" json:"followingId"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (f *Follow) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
