package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered member of the community.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"column:name;not null" json:"name"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	DateOfBirth  time.Time  `gorm:"column:date_of_birth;not null" json:"dateOfBirth"`
	IsOver18     bool       `gorm:"column:is_over_18;not null" json:"isOver18"`
	ProfileImage *string    `gorm:"column:profile_image" json:"profileImage"`
	Bio          *string    `gorm:"column:bio" json:"bio"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"-"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// UserSummary is the public projection embedded in other resources.
type UserSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profileImage"`
}

// Summary projects u for embedding; nil stays nil.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}
