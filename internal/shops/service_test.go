package shops

import (
	"context"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/internal/users"
	"github.com/Shashankphatkure/equico-app/pkg/db"
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

type stubSaves struct {
	counts map[uuid.UUID]int64
}

func (s stubSaves) SavedCounts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, id := range ids {
		if n, ok := s.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

type stubUploader struct {
	removed []string
}

func (s *stubUploader) Upload(_ context.Context, folder media.Folder, file media.File) (string, error) {
	return "https://cdn.test/" + string(folder) + "/" + file.Name, nil
}

func (s *stubUploader) RemoveQuietly(_ context.Context, urls []string) {
	s.removed = append(s.removed, urls...)
}

type fixture struct {
	svc  Service
	conn *gorm.DB
}

func newFixture(t *testing.T, saves stubSaves) fixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()
	svc, err := NewService(ServiceParams{
		DB:       client,
		Repo:     NewRepository(conn),
		Users:    users.NewRepository(conn),
		Saves:    saves,
		Uploader: &stubUploader{},
	})
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn}
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), IsOver18: true}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedListing(t *testing.T, conn *gorm.DB, shopID uuid.UUID, status enums.ListingStatus, createdAt time.Time) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ShopID:      shopID,
		Title:       "Saddle",
		Description: "Leather saddle",
		Price:       decimal.NewFromInt(100),
		Condition:   enums.ListingConditionUsed,
		Category:    "saddles",
		Status:      status,
		CreatedAt:   createdAt,
	}
	require.NoError(t, conn.Create(listing).Error)
	return listing
}

func TestGetCreatesShopLazily(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")

	view, err := f.svc.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada's Tack Shop", view.Name)
	assert.Equal(t, owner.ID, view.Owner.ID)
	assert.Zero(t, view.ListingCount)

	again, err := f.svc.Get(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, again.ID)

	var n int64
	require.NoError(t, f.conn.Model(&models.TackShop{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestForOwnerMissingShop(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")

	_, err := f.svc.ForOwner(context.Background(), owner.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateShop(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	_, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)

	name := "  Ada's Saddlery "
	view, err := f.svc.Update(context.Background(), owner.ID, UpdateInput{
		Name:         &name,
		ProfileImage: &media.File{Name: "logo.png", ContentType: "image/png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada's Saddlery", view.Name)
	require.NotNil(t, view.ProfileImage)
	assert.Equal(t, "https://cdn.test/shops/logo.png", *view.ProfileImage)

	empty := " "
	_, err = f.svc.Update(context.Background(), owner.ID, UpdateInput{Name: &empty})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListingsIncludesCountsAndSaves(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, base)
	newer := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, base.Add(time.Hour))
	seedListing(t, f.conn, shop.ID, enums.ListingStatusSold, base.Add(2*time.Hour))

	svc, err := NewService(ServiceParams{
		DB:       db.FromGorm(f.conn),
		Repo:     NewRepository(f.conn),
		Users:    users.NewRepository(f.conn),
		Saves:    stubSaves{counts: map[uuid.UUID]int64{older.ID: 3}},
		Uploader: &stubUploader{},
	})
	require.NoError(t, err)

	active := enums.ListingStatusActive
	result, err := svc.Listings(context.Background(), owner.ID, ListingsParams{Status: &active, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Listings, 2)
	assert.Equal(t, newer.ID, result.Listings[0].ID)
	assert.Equal(t, older.ID, result.Listings[1].ID)
	assert.EqualValues(t, 3, result.Listings[1].SavedCount)
	assert.EqualValues(t, 2, result.Total)
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, StatusCounts{Active: 2, Sold: 1, Archived: 0}, result.Counts)
}

func TestBulkActionArchivesOwnedListings(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)
	a := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, time.Now())
	b := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, time.Now())

	result, err := f.svc.BulkAction(context.Background(), owner.ID, enums.BulkActionArchive, []uuid.UUID{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Updated)

	var statuses []enums.ListingStatus
	require.NoError(t, f.conn.Model(&models.Listing{}).Pluck("status", &statuses).Error)
	assert.ElementsMatch(t, []enums.ListingStatus{enums.ListingStatusArchived, enums.ListingStatusArchived}, statuses)
}

func TestBulkActionKeepsSaleDateOfAlreadySoldListings(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)
	soldAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	sold := seedListing(t, f.conn, shop.ID, enums.ListingStatusSold, soldAt)
	require.NoError(t, f.conn.Model(&models.Listing{}).Where("id = ?", sold.ID).UpdateColumn("updated_at", soldAt).Error)
	active := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, time.Now())

	result, err := f.svc.BulkAction(context.Background(), owner.ID, enums.BulkActionMarkSold, []uuid.UUID{sold.ID, active.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Updated)

	var reloaded models.Listing
	require.NoError(t, f.conn.First(&reloaded, "id = ?", sold.ID).Error)
	assert.Equal(t, soldAt.Unix(), reloaded.UpdatedAt.Unix())
	require.NoError(t, f.conn.First(&reloaded, "id = ?", active.ID).Error)
	assert.Equal(t, enums.ListingStatusSold, reloaded.Status)
}

func TestBulkActionRejectsForeignListings(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	other := seedUser(t, f.conn, "Bo")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)
	otherShop, err := f.svc.Ensure(context.Background(), other.ID)
	require.NoError(t, err)

	mine := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, time.Now())
	theirs := seedListing(t, f.conn, otherShop.ID, enums.ListingStatusActive, time.Now())

	_, err = f.svc.BulkAction(context.Background(), owner.ID, enums.BulkActionMarkSold, []uuid.UUID{mine.ID, theirs.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	var reloaded models.Listing
	require.NoError(t, f.conn.First(&reloaded, "id = ?", mine.ID).Error)
	assert.Equal(t, enums.ListingStatusActive, reloaded.Status)
}

func TestBulkActionRejectsIllegalTransition(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)
	sold := seedListing(t, f.conn, shop.ID, enums.ListingStatusSold, time.Now())
	archived := seedListing(t, f.conn, shop.ID, enums.ListingStatusArchived, time.Now())

	_, err = f.svc.BulkAction(context.Background(), owner.ID, enums.BulkActionActivate, []uuid.UUID{sold.ID, archived.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{sold.ID.String()}, details["listingIds"])

	var reloaded models.Listing
	require.NoError(t, f.conn.First(&reloaded, "id = ?", archived.ID).Error)
	assert.Equal(t, enums.ListingStatusArchived, reloaded.Status)
}

func TestBulkActionValidatesInput(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")

	_, err := f.svc.BulkAction(context.Background(), owner.ID, enums.BulkAction("explode"), []uuid.UUID{uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.BulkAction(context.Background(), owner.ID, enums.BulkActionArchive, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteRemovesListingsAndSaves(t *testing.T) {
	f := newFixture(t, stubSaves{})
	owner := seedUser(t, f.conn, "Ada")
	fan := seedUser(t, f.conn, "Fan")
	shop, err := f.svc.Ensure(context.Background(), owner.ID)
	require.NoError(t, err)
	listing := seedListing(t, f.conn, shop.ID, enums.ListingStatusActive, time.Now())
	require.NoError(t, f.conn.Create(&models.SavedListing{UserID: fan.ID, ListingID: listing.ID}).Error)

	require.NoError(t, f.svc.Delete(context.Background(), owner.ID))

	for _, model := range []any{&models.TackShop{}, &models.Listing{}, &models.SavedListing{}} {
		var n int64
		require.NoError(t, f.conn.Model(model).Count(&n).Error)
		assert.Zero(t, n)
	}
}
