package users

import (
	"context"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/google/uuid"
)

const searchDefaultLimit = 10

type uploader interface {
	Upload(ctx context.Context, folder media.Folder, file media.File) (string, error)
	RemoveQuietly(ctx context.Context, urls []string)
}

// Profile is the caller's own profile with social totals.
type Profile struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	ProfileImage *string        `json:"profileImage"`
	Bio          *string        `json:"bio"`
	IsOver18     bool           `json:"isOver18"`
	Horses       []HorseSummary `json:"horses"`
	Followers    int64          `json:"followers"`
	Following    int64          `json:"following"`
	TotalHorses  int64          `json:"totalHorses"`
	TotalPosts   int64          `json:"totalPosts"`
}

// SearchResult is one row of the user directory search.
type SearchResult struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profileImage"`
	Bio          *string   `json:"bio"`
	IsOver18     bool      `json:"isOver18"`
	Followers    int64     `json:"followers"`
	Following    int64     `json:"following"`
	TotalHorses  int64     `json:"totalHorses"`
	IsFollowing  bool      `json:"isFollowing"`
}

// UpdateProfileInput carries the multipart profile edit. Nil fields are left alone.
type UpdateProfileInput struct {
	Name         *string
	Bio          *string
	ProfileImage *media.File
}

type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error)
	Search(ctx context.Context, callerID uuid.UUID, term string, page, limit int) ([]SearchResult, error)
}

type ServiceParams struct {
	Repo     *Repository
	Uploader uploader
}

type service struct {
	repo     *Repository
	uploader uploader
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	return &service{repo: params.Repo, uploader: params.Uploader}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	horses, err := s.repo.HorsesOf(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile horses")
	}
	counts, err := s.repo.Counts(ctx, []uuid.UUID{userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count profile relations")
	}
	c := counts[userID]

	return &Profile{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		IsOver18:     user.IsOver18,
		Horses:       horses,
		Followers:    c.Followers,
		Following:    c.Following,
		TotalHorses:  c.TotalHorses,
		TotalPosts:   c.TotalPosts,
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Bio != nil {
		updates["bio"] = strings.TrimSpace(*input.Bio)
	}

	var uploaded string
	if input.ProfileImage != nil {
		url, err := s.uploader.Upload(ctx, media.FolderProfiles, *input.ProfileImage)
		if err != nil {
			return nil, err
		}
		uploaded = url
		updates["profile_image"] = url
	}

	if err := s.repo.UpdateProfile(ctx, userID, updates); err != nil {
		if uploaded != "" {
			s.uploader.RemoveQuietly(ctx, []string{uploaded})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Profile(ctx, userID)
}

func (s *service) Search(ctx context.Context, callerID uuid.UUID, term string, page, limit int) ([]SearchResult, error) {
	p := pagination.New(page, limit, searchDefaultLimit)
	rows, err := s.repo.Search(ctx, strings.TrimSpace(term), callerID, p.Limit, p.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search users")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, u := range rows {
		ids = append(ids, u.ID)
	}
	counts, err := s.repo.Counts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count search relations")
	}
	following, err := s.repo.FollowingSet(ctx, callerID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load follow state")
	}

	out := make([]SearchResult, 0, len(rows))
	for _, u := range rows {
		c := counts[u.ID]
		out = append(out, SearchResult{
			ID:           u.ID,
			Name:         u.Name,
			ProfileImage: u.ProfileImage,
			Bio:          u.Bio,
			IsOver18:     u.IsOver18,
			Followers:    c.Followers,
			Following:    c.Following,
			TotalHorses:  c.TotalHorses,
			IsFollowing:  following[u.ID],
		})
	}
	return out, nil
}
