package models

import (
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/enums"
	dbtypes "github.com/Shashankphatkure/equico-app/pkg/db/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TackShop is a user's storefront; each user owns at most one.
type TackShop struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID      uuid.UUID `gorm:"column:owner_id;type:uuid;not null;uniqueIndex" json:"ownerId"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Description  *string   `gorm:"column:description" json:"description"`
	ProfileImage *string   `gorm:"column:profile_image" json:"profileImage"`
	IsVerified   bool      `gorm:"column:is_verified;not null" json:"isVerified"`
	IsPremium    bool      `gorm:"column:is_premium;not null" json:"isPremium"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (s *TackShop) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Listing is an item offered for sale by a shop.
type Listing struct {
	ID          uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID      uuid.UUID              `gorm:"column:shop_id;type:uuid;not null;index" json:"shopId"`
	Title       string                 `gorm:"column:title;not null" json:"title"`
	Description string                 `gorm:"column:description;not null" json:"description"`
	Price       decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Condition   enums.ListingCondition `gorm:"column:condition;type:text;not null" json:"condition"`
	Category    string                 `gorm:"column:category;not null;index" json:"category"`
	Images      dbtypes.StringList     `gorm:"column:images;type:jsonb;not null" json:"images"`
	Status      enums.ListingStatus    `gorm:"column:status;type:text;not null;index" json:"status"`
	Views       int64                  `gorm:"column:views;not null" json:"views"`
	IsBoosted   bool                   `gorm:"column:is_boosted;not null" json:"isBoosted"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Shop *TackShop `gorm:"foreignKey:ShopID" json:"-"`
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	if l.Status == "" {
		l.Status = enums.ListingStatusActive
	}
	if l.Images == nil {
		l.Images = dbtypes.StringList{}
	}
	return nil
}

// SavedListing marks a listing as saved by a user.
type SavedListing struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:saved_listings_user_listing_key" json:"userId"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;uniqueIndex:saved_listings_user_listing_key;index" json:"listingId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (s *SavedListing) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// Review is an immutable buyer rating of a listing.
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"column:listing_id;type:uuid;not null;index" json:"listingId"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	Comment   string    `gorm:"column:comment;not null" json:"comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

type Dispute struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID   uuid.UUID           `gorm:"column:listing_id;type:uuid;not null;index" json:"listingId"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null" json:"userId"`
	Reason      string              `gorm:"column:reason;not null" json:"reason"`
	Description string              `gorm:"column:description;not null" json:"description"`
	Status      enums.DisputeStatus `gorm:"column:status;type:text;not null" json:"status"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (d *Dispute) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	if d.Status == "" {
		d.Status = enums.DisputeStatusOpen
	}
	return nil
}
