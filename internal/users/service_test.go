package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db/dbtest"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUploader struct {
	url     string
	err     error
	removed []string
}

func (s *stubUploader) Upload(context.Context, media.Folder, media.File) (string, error) {
	return s.url, s.err
}

func (s *stubUploader) RemoveQuietly(_ context.Context, urls []string) {
	s.removed = append(s.removed, urls...)
}

func seedUser(t *testing.T, conn *gorm.DB, name, email string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, PasswordHash: "x", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), IsOver18: true}
	require.NoError(t, conn.Create(u).Error)
	return u
}

func newTestService(t *testing.T, conn *gorm.DB, up *stubUploader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Uploader: up})
	require.NoError(t, err)
	return svc
}

func TestProfileIncludesHorsesAndCounts(t *testing.T) {
	conn := dbtest.Open(t)
	alice := seedUser(t, conn, "Alice", "alice@example.com")
	bob := seedUser(t, conn, "Bob", "bob@example.com")
	carol := seedUser(t, conn, "Carol", "carol@example.com")

	breed := "Arabian"
	require.NoError(t, conn.Create(&models.Horse{OwnerID: alice.ID, Name: "Star", Breed: &breed}).Error)
	require.NoError(t, conn.Create(&models.Post{AuthorID: alice.ID, Content: "hello", IsPublic: true}).Error)
	require.NoError(t, conn.Create(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}).Error)
	require.NoError(t, conn.Create(&models.Follow{FollowerID: carol.ID, FollowingID: alice.ID}).Error)
	require.NoError(t, conn.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}).Error)

	svc := newTestService(t, conn, &stubUploader{})
	profile, err := svc.Profile(context.Background(), alice.ID)
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, int64(2), profile.Followers)
	assert.Equal(t, int64(1), profile.Following)
	assert.Equal(t, int64(1), profile.TotalHorses)
	assert.Equal(t, int64(1), profile.TotalPosts)
	require.Len(t, profile.Horses, 1)
	assert.Equal(t, "Star", profile.Horses[0].Name)
	assert.Equal(t, "Arabian", *profile.Horses[0].Breed)
}

func TestProfileMissingUser(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newTestService(t, conn, &stubUploader{})

	_, err := svc.Profile(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateProfileStoresImageURL(t *testing.T) {
	conn := dbtest.Open(t)
	alice := seedUser(t, conn, "Alice", "alice@example.com")
	up := &stubUploader{url: "https://cdn.test/profiles/a.jpg"}
	svc := newTestService(t, conn, up)

	name := "  Alice B  "
	bio := "Eventing rider"
	profile, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{
		Name:         &name,
		Bio:          &bio,
		ProfileImage: &media.File{Name: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", profile.Name)
	assert.Equal(t, "Eventing rider", *profile.Bio)
	assert.Equal(t, "https://cdn.test/profiles/a.jpg", *profile.ProfileImage)
}

func TestUpdateProfileUploadFailureLeavesRowUntouched(t *testing.T) {
	conn := dbtest.Open(t)
	alice := seedUser(t, conn, "Alice", "alice@example.com")
	svc := newTestService(t, conn, &stubUploader{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("down"), "upload media")})

	name := "Changed"
	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{
		Name:         &name,
		ProfileImage: &media.File{Name: "a.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x")},
	})
	require.Error(t, err)

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", alice.ID).Error)
	assert.Equal(t, "Alice", stored.Name)
}

func TestUpdateProfileRejectsBlankName(t *testing.T) {
	conn := dbtest.Open(t)
	alice := seedUser(t, conn, "Alice", "alice@example.com")
	svc := newTestService(t, conn, &stubUploader{})

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), alice.ID, UpdateProfileInput{Name: &blank})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSearchExcludesCallerAndFlagsFollowing(t *testing.T) {
	conn := dbtest.Open(t)
	caller := seedUser(t, conn, "Sam Rider", "sam@example.com")
	followed := seedUser(t, conn, "Sam Jumper", "jumper@example.com")
	_ = seedUser(t, conn, "Other", "SAMANTHA@example.com")
	_ = seedUser(t, conn, "Nobody", "nobody@example.com")
	require.NoError(t, conn.Create(&models.Follow{FollowerID: caller.ID, FollowingID: followed.ID}).Error)

	svc := newTestService(t, conn, &stubUploader{})
	results, err := svc.Search(context.Background(), caller.ID, "SAM", 1, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Other", results[0].Name)
	assert.False(t, results[0].IsFollowing)
	assert.Equal(t, "Sam Jumper", results[1].Name)
	assert.True(t, results[1].IsFollowing)
	assert.Equal(t, int64(1), results[1].Followers)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	conn := dbtest.Open(t)
	caller := seedUser(t, conn, "Caller", "caller@example.com")
	_ = seedUser(t, conn, "Plain", "plain@example.com")

	svc := newTestService(t, conn, &stubUploader{})
	results, err := svc.Search(context.Background(), caller.ID, "%", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
