package follows

import (
	"context"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/users"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/google/uuid"
)

const defaultLimit = 20

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Counts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]users.Counts, error)
}

// FollowResult is returned after a successful follow.
type FollowResult struct {
	models.Follow
	Following *models.UserSummary `json:"following"`
}

// Connection is a follower or followed user with their own totals.
type Connection struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProfileImage *string   `json:"profileImage"`
	Bio          *string   `json:"bio"`
	Followers    int64     `json:"followers"`
	Following    int64     `json:"following"`
	FollowedAt   time.Time `json:"followedAt"`
}

type Service interface {
	Follow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowResult, error)
	Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error
	Followers(ctx context.Context, userID uuid.UUID, page, limit int) ([]Connection, error)
	Following(ctx context.Context, userID uuid.UUID, page, limit int) ([]Connection, error)
}

type ServiceParams struct {
	Repo  *Repository
	Users userDirectory
}

type service struct {
	repo  *Repository
	users userDirectory
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "follows repository required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: params.Repo, users: params.Users}, nil
}

func (s *service) Follow(ctx context.Context, followerID, targetID uuid.UUID) (*FollowResult, error) {
	if targetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "targetUserId is required")
	}
	if targetID == followerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "You cannot follow yourself")
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load target user")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
	if err := s.repo.Create(ctx, follow); err != nil {
		if db.IsUniqueViolation(err, uniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Already following this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create follow")
	}
	return &FollowResult{Follow: *follow, Following: target.Summary()}, nil
}

func (s *service) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	if targetID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "targetUserId is required")
	}
	n, err := s.repo.Delete(ctx, followerID, targetID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete follow")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Not following this user")
	}
	return nil
}

func (s *service) Followers(ctx context.Context, userID uuid.UUID, page, limit int) ([]Connection, error) {
	return s.connections(ctx, userID, page, limit, s.repo.Followers)
}

func (s *service) Following(ctx context.Context, userID uuid.UUID, page, limit int) ([]Connection, error) {
	return s.connections(ctx, userID, page, limit, s.repo.Following)
}

type edgeQuery func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Edge, error)

func (s *service) connections(ctx context.Context, userID uuid.UUID, page, limit int, query edgeQuery) ([]Connection, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
	}

	p := pagination.New(page, limit, defaultLimit)
	edges, err := query(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list connections")
	}

	ids := make([]uuid.UUID, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.UserID)
	}
	counts, err := s.users.Counts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count connections")
	}

	out := make([]Connection, 0, len(edges))
	for _, e := range edges {
		c := counts[e.UserID]
		out = append(out, Connection{
			ID:           e.UserID,
			Name:         e.Name,
			ProfileImage: e.ProfileImage,
			Bio:          e.Bio,
			Followers:    c.Followers,
			Following:    c.Following,
			FollowedAt:   e.FollowedAt,
		})
	}
	return out, nil
}
