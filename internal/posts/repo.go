package posts

import (
	"context"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const likeConstraint = "likes_user_post_key"

// Counts are the engagement totals of a post.
type Counts struct {
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Feed pages public posts together with the viewer's own private ones.
func (r *Repository) Feed(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("is_public = ? OR author_id = ?", true, viewerID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// ByAuthor pages every post of one author.
func (r *Repository) ByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Post, error) {
	var rows []models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

type postCount struct {
	PostID uuid.UUID
	N      int64
}

// Counts returns like and comment totals for each post id.
func (r *Repository) Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error) {
	out := make(map[uuid.UUID]Counts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var likes, comments []postCount
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&likes).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&comments).Error
	if err != nil {
		return nil, err
	}

	for _, row := range likes {
		c := out[row.PostID]
		c.Likes = row.N
		out[row.PostID] = c
	}
	for _, row := range comments {
		c := out[row.PostID]
		c.Comments = row.N
		out[row.PostID] = c
	}
	return out, nil
}

// HorseOwner returns the owner of a horse.
func (r *Repository) HorseOwner(ctx context.Context, horseID uuid.UUID) (uuid.UUID, error) {
	var horse models.Horse
	if err := r.db.WithContext(ctx).Select("id", "owner_id").First(&horse, "id = ?", horseID).Error; err != nil {
		return uuid.Nil, err
	}
	return horse.OwnerID, nil
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Like(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *Repository) Unlike(ctx context.Context, userID, postID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *Repository) FindComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// Comments pages the comments of a post, newest first.
func (r *Repository) Comments(ctx context.Context, postID uuid.UUID, limit, offset int) ([]models.Comment, error) {
	var rows []models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error
}
