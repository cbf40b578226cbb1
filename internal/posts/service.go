package posts

import (
	"context"
	"strings"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/pagination"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	"github.com/google/uuid"
)

const defaultLimit = 10

type uploader interface {
	Upload(ctx context.Context, folder media.Folder, file media.File) (string, error)
	RemoveQuietly(ctx context.Context, urls []string)
}

// CreateInput is the multipart body of POST /posts.
type CreateInput struct {
	Content  string
	IsPublic bool
	HorseID  *uuid.UUID
	Media    *media.File
}

// View is a post with its author and engagement totals.
type View struct {
	models.Post
	Author *models.UserSummary `json:"author"`
	Counts Counts              `json:"counts"`
}

// CommentView is a comment with its author.
type CommentView struct {
	models.Comment
	Author *models.UserSummary `json:"author"`
}

type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (*View, error)
	Feed(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]View, error)
	ByAuthor(ctx context.Context, authorID uuid.UUID, page, limit int) ([]View, error)
	Like(ctx context.Context, userID, postID uuid.UUID) (*models.Like, error)
	Unlike(ctx context.Context, userID, postID uuid.UUID) error
	Comments(ctx context.Context, postID uuid.UUID, page, limit int) ([]CommentView, error)
	Comment(ctx context.Context, authorID, postID uuid.UUID, content string) (*CommentView, error)
	DeleteComment(ctx context.Context, userID, postID, commentID uuid.UUID) error
}

type ServiceParams struct {
	Repo      *Repository
	Uploader  uploader
	Publisher realtime.Publisher
	Logger    *logger.Logger
}

type service struct {
	repo      *Repository
	uploader  uploader
	publisher realtime.Publisher
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "posts repository required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = realtime.Nop{}
	}
	return &service{
		repo:      params.Repo,
		uploader:  params.Uploader,
		publisher: publisher,
		logg:      params.Logger,
	}, nil
}

// Create stores the post with an optional image or video and announces it on
// the shared posts channel.
func (s *service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (*View, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}

	if input.HorseID != nil {
		owner, err := s.repo.HorseOwner(ctx, *input.HorseID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Horse not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
		}
		if owner != authorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Unauthorized")
		}
	}

	post := &models.Post{
		AuthorID: authorID,
		Content:  content,
		IsPublic: input.IsPublic,
		HorseID:  input.HorseID,
	}

	var uploaded string
	if input.Media != nil {
		kind, ok := enums.MediaKindFromContentType(input.Media.ContentType)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "media must be an image or a video")
		}
		url, err := s.uploader.Upload(ctx, media.FolderPosts, *input.Media)
		if err != nil {
			return nil, err
		}
		uploaded = url
		switch kind {
		case enums.MediaKindImage:
			post.ImageURL = &url
		case enums.MediaKindVideo:
			post.VideoURL = &url
		}
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if uploaded != "" {
			s.uploader.RemoveQuietly(ctx, []string{uploaded})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create post")
	}

	stored, err := s.repo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload post")
	}
	view := View{Post: *stored, Author: stored.Author.Summary()}

	if err := s.publisher.Publish(ctx, realtime.ChannelPosts, realtime.EventNewPost, view); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "post_id", post.ID.String()), "post publish failed", err)
	}
	return &view, nil
}

func (s *service) Feed(ctx context.Context, viewerID uuid.UUID, page, limit int) ([]View, error) {
	p := pagination.New(page, limit, defaultLimit)
	rows, err := s.repo.Feed(ctx, viewerID, p.Limit, p.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feed")
	}
	return s.withCounts(ctx, rows)
}

func (s *service) ByAuthor(ctx context.Context, authorID uuid.UUID, page, limit int) ([]View, error) {
	p := pagination.New(page, limit, defaultLimit)
	rows, err := s.repo.ByAuthor(ctx, authorID, p.Limit, p.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list author posts")
	}
	return s.withCounts(ctx, rows)
}

func (s *service) withCounts(ctx context.Context, rows []models.Post) ([]View, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	counts, err := s.repo.Counts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count post engagement")
	}
	out := make([]View, 0, len(rows))
	for _, p := range rows {
		out = append(out, View{Post: p, Author: p.Author.Summary(), Counts: counts[p.ID]})
	}
	return out, nil
}

func (s *service) Like(ctx context.Context, userID, postID uuid.UUID) (*models.Like, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	like := &models.Like{UserID: userID, PostID: postID}
	if err := s.repo.Like(ctx, like); err != nil {
		if db.IsUniqueViolation(err, likeConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Post already liked")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "like post")
	}
	return like, nil
}

func (s *service) Unlike(ctx context.Context, userID, postID uuid.UUID) error {
	n, err := s.repo.Unlike(ctx, userID, postID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlike post")
	}
	if n == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Post not liked")
	}
	return nil
}

func (s *service) Comments(ctx context.Context, postID uuid.UUID, page, limit int) ([]CommentView, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	p := pagination.New(page, limit, defaultLimit)
	rows, err := s.repo.Comments(ctx, postID, p.Limit, p.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list comments")
	}
	out := make([]CommentView, 0, len(rows))
	for _, c := range rows {
		out = append(out, CommentView{Comment: c, Author: c.Author.Summary()})
	}
	return out, nil
}

func (s *service) Comment(ctx context.Context, authorID, postID uuid.UUID, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
	}
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, AuthorID: authorID, Content: content}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create comment")
	}
	stored, err := s.repo.FindComment(ctx, comment.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload comment")
	}
	return &CommentView{Comment: *stored, Author: stored.Author.Summary()}, nil
}

// DeleteComment lets only the comment's author remove it.
func (s *service) DeleteComment(ctx context.Context, userID, postID, commentID uuid.UUID) error {
	comment, err := s.repo.FindComment(ctx, commentID)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Comment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load comment")
	}
	if comment.PostID != postID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Comment not found")
	}
	if comment.AuthorID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "Unauthorized")
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete comment")
	}
	return nil
}

func (s *service) ensurePost(ctx context.Context, postID uuid.UUID) error {
	exists, err := s.repo.Exists(ctx, postID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load post")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Post not found")
	}
	return nil
}
