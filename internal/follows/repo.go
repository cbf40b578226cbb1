package follows

import (
	"context"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const uniqueConstraint = "follows_follower_following_key"

// Edge is one side of a follow relation joined with the user on the other end.
type Edge struct {
	UserID       uuid.UUID
	Name         string
	ProfileImage *string
	Bio          *string
	FollowedAt   time.Time
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, follow *models.Follow) error {
	return r.db.WithContext(ctx).Create(follow).Error
}

// Delete removes the relation and reports how many rows went away.
func (r *Repository) Delete(ctx context.Context, followerID, followingID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	return res.RowsAffected, res.Error
}

// Followers pages the users following userID, most recent first.
func (r *Repository) Followers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Edge, error) {
	return r.edges(ctx, "follows.following_id = ?", "follows.follower_id", userID, limit, offset)
}

// Following pages the users userID follows, most recent first.
func (r *Repository) Following(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Edge, error) {
	return r.edges(ctx, "follows.follower_id = ?", "follows.following_id", userID, limit, offset)
}

func (r *Repository) edges(ctx context.Context, where, joinColumn string, userID uuid.UUID, limit, offset int) ([]Edge, error) {
	var rows []Edge
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.id AS user_id, users.name, users.profile_image, users.bio, follows.created_at AS followed_at").
		Joins("JOIN users ON users.id = "+joinColumn).
		Where(where, userID).
		Order("follows.created_at DESC, users.id ASC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}
