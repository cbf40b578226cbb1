package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/listings"
	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/internal/users"
	"github.com/Shashankphatkure/equico-app/pkg/db/dbtest"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	notifier, err := notifications.NewService(notifications.ServiceParams{Repo: notifications.NewRepository(conn)})
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Users:    users.NewRepository(conn),
		Listings: listings.NewRepository(conn),
		Notifier: notifier,
	})
	require.NoError(t, err)
	return svc, conn
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedListing(t *testing.T, conn *gorm.DB, owner *models.User) *models.Listing {
	t.Helper()
	shop := &models.TackShop{OwnerID: owner.ID, Name: "Barn Goods"}
	require.NoError(t, conn.Create(shop).Error)
	listing := &models.Listing{ShopID: shop.ID, Title: "Bridle", Description: "Brown", Price: decimal.RequireFromString("80.00"), Condition: enums.ListingConditionNew, Category: "bridles"}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}

func TestCreateNotifiesShopOwner(t *testing.T) {
	svc, conn := newTestService(t)
	owner := seedUser(t, conn, "Olive")
	buyer := seedUser(t, conn, "Ben")
	listing := seedListing(t, conn, owner)

	view, err := svc.Create(context.Background(), buyer.ID, CreateInput{ListingID: listing.ID, Rating: 5, Comment: " Great fit "})
	require.NoError(t, err)
	assert.Equal(t, "Great fit", view.Comment)
	assert.Equal(t, "Ben", view.User.Name)

	var note models.Notification
	require.NoError(t, conn.First(&note, "user_id = ?", owner.ID).Error)
	assert.Equal(t, enums.NotificationTypeReview, note.Type)
	assert.Equal(t, "Ben left a review on your listing", note.Content)
	require.NotNil(t, note.ListingID)
	assert.Equal(t, listing.ID, *note.ListingID)
	require.NotNil(t, note.FromUserID)
	assert.Equal(t, buyer.ID, *note.FromUserID)
}

func TestCreateRejectsOwnListing(t *testing.T) {
	svc, conn := newTestService(t)
	owner := seedUser(t, conn, "Olive")
	listing := seedListing(t, conn, owner)

	_, err := svc.Create(context.Background(), owner.ID, CreateInput{ListingID: listing.ID, Rating: 4, Comment: "mine"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	var count int64
	require.NoError(t, conn.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateValidation(t *testing.T) {
	svc, conn := newTestService(t)
	owner := seedUser(t, conn, "Olive")
	buyer := seedUser(t, conn, "Ben")
	listing := seedListing(t, conn, owner)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(ctx, buyer.ID, CreateInput{ListingID: listing.ID, Rating: rating, Comment: "x"})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "rating %d", rating)
	}

	_, err := svc.Create(ctx, buyer.ID, CreateInput{ListingID: listing.ID, Rating: 3, Comment: " "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, buyer.ID, CreateInput{ListingID: uuid.New(), Rating: 3, Comment: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
