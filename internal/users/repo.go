package users

import (
	"context"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Counts are the social totals shown next to a user.
type Counts struct {
	Followers   int64
	Following   int64
	TotalHorses int64
	TotalPosts  int64
}

// HorseSummary is the compact horse projection on a profile.
type HorseSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Breed *string   `json:"breed"`
	Color *string   `json:"color"`
}

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail retrieves the user matching the provided (already normalized) email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with id is present.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindByIDs loads users keyed by id; missing ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateProfile applies the given column updates.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// HorsesOf lists the compact horse summaries owned by userID.
func (r *Repository) HorsesOf(ctx context.Context, userID uuid.UUID) ([]HorseSummary, error) {
	out := []HorseSummary{}
	err := r.db.WithContext(ctx).
		Model(&models.Horse{}).
		Select("id, name, breed, color").
		Where("owner_id = ?", userID).
		Order("created_at ASC, id ASC").
		Scan(&out).Error
	return out, err
}

type groupCount struct {
	ID uuid.UUID
	N  int64
}

// Counts returns social totals for every id; ids without rows get zeroes.
func (r *Repository) Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Counts, error) {
	out := make(map[uuid.UUID]Counts, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	for _, id := range ids {
		out[id] = Counts{}
	}

	apply := func(model any, column string, set func(c *Counts, n int64)) error {
		var rows []groupCount
		err := r.db.WithContext(ctx).
			Model(model).
			Select(column+" AS id, COUNT(*) AS n").
			Where(column+" IN ?", ids).
			Group(column).
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, row := range rows {
			c := out[row.ID]
			set(&c, row.N)
			out[row.ID] = c
		}
		return nil
	}

	if err := apply(&models.Follow{}, "following_id", func(c *Counts, n int64) { c.Followers = n }); err != nil {
		return nil, err
	}
	if err := apply(&models.Follow{}, "follower_id", func(c *Counts, n int64) { c.Following = n }); err != nil {
		return nil, err
	}
	if err := apply(&models.Horse{}, "owner_id", func(c *Counts, n int64) { c.TotalHorses = n }); err != nil {
		return nil, err
	}
	if err := apply(&models.Post{}, "author_id", func(c *Counts, n int64) { c.TotalPosts = n }); err != nil {
		return nil, err
	}
	return out, nil
}

// Search matches name or email case-insensitively, excluding one user, ordered by name.
func (r *Repository) Search(ctx context.Context, term string, exclude uuid.UUID, limit, offset int) ([]models.User, error) {
	pattern := db.ContainsPattern(term)
	var rows []models.User
	err := r.db.WithContext(ctx).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern).
		Where("id <> ?", exclude).
		Order("name ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	return rows, err
}

// FollowingSet reports which of ids followerID follows.
func (r *Repository) FollowingSet(ctx context.Context, followerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 || followerID == uuid.Nil {
		return out, nil
	}
	var following []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id IN ?", followerID, ids).
		Pluck("following_id", &following).Error
	if err != nil {
		return nil, err
	}
	for _, id := range following {
		out[id] = true
	}
	return out, nil
}
