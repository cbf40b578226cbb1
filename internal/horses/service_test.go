package horses

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/media"
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

type stubUploader struct {
	url     string
	folders []media.Folder
	removed []string
}

func (s *stubUploader) Upload(_ context.Context, folder media.Folder, _ media.File) (string, error) {
	s.folders = append(s.folders, folder)
	return s.url, nil
}

func (s *stubUploader) RemoveQuietly(_ context.Context, urls []string) {
	s.removed = append(s.removed, urls...)
}

type fixture struct {
	conn *gorm.DB
	svc  Service
	up   *stubUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := dbtest.Client(t)
	up := &stubUploader{url: "https://cdn.example.com/medical-records/xray.pdf"}
	svc, err := NewService(ServiceParams{DB: client, Repo: NewRepository(client.DB()), Uploader: up})
	require.NoError(t, err)
	return &fixture{conn: client.DB(), svc: svc, up: up}
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func strPtr(s string) *string { return &s }

func TestHorseCRUDIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ada := seedUser(t, f.conn, "Ada")
	bo := seedUser(t, f.conn, "Bo")
	ctx := context.Background()

	horse, err := f.svc.Create(ctx, ada.ID, HorseInput{Name: strPtr(" Star "), Breed: strPtr("Arabian")})
	require.NoError(t, err)
	assert.Equal(t, "Star", horse.Name)

	_, err = f.svc.Create(ctx, ada.ID, HorseInput{Breed: strPtr("Shire")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	list, err := f.svc.List(ctx, ada.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	others, err := f.svc.List(ctx, bo.ID)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = f.svc.Get(ctx, bo.ID, horse.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	updated, err := f.svc.Update(ctx, ada.ID, horse.ID, HorseInput{Color: strPtr("Grey")})
	require.NoError(t, err)
	require.NotNil(t, updated.Color)
	assert.Equal(t, "Grey", *updated.Color)
	assert.Equal(t, "Arabian", *updated.Breed)

	_, err = f.svc.Update(ctx, bo.ID, horse.ID, HorseInput{Color: strPtr("Black")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteRemovesHistoryAndDetachesPosts(t *testing.T) {
	f := newFixture(t)
	ada := seedUser(t, f.conn, "Ada")
	ctx := context.Background()

	horse, err := f.svc.Create(ctx, ada.ID, HorseInput{Name: strPtr("Star")})
	require.NoError(t, err)
	_, err = f.svc.AddAppointment(ctx, ada.ID, horse.ID, AppointmentInput{Type: "farrier", Date: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = f.svc.AddMedicalRecord(ctx, ada.ID, horse.ID, MedicalRecordInput{Type: "vaccination", Date: time.Now(), Description: "Flu"})
	require.NoError(t, err)
	post := &models.Post{AuthorID: ada.ID, Content: "ride", HorseID: &horse.ID}
	require.NoError(t, f.conn.Create(post).Error)

	require.NoError(t, f.svc.Delete(ctx, ada.ID, horse.ID))

	var appointments, records, horses int64
	require.NoError(t, f.conn.Model(&models.Appointment{}).Count(&appointments).Error)
	require.NoError(t, f.conn.Model(&models.MedicalRecord{}).Count(&records).Error)
	require.NoError(t, f.conn.Model(&models.Horse{}).Count(&horses).Error)
	assert.Zero(t, appointments)
	assert.Zero(t, records)
	assert.Zero(t, horses)

	var reloaded models.Post
	require.NoError(t, f.conn.First(&reloaded, "id = ?", post.ID).Error)
	assert.Nil(t, reloaded.HorseID)
}

func TestMedicalRecordsOrderAndUpload(t *testing.T) {
	f := newFixture(t)
	ada := seedUser(t, f.conn, "Ada")
	ctx := context.Background()
	horse, err := f.svc.Create(ctx, ada.ID, HorseInput{Name: strPtr("Star")})
	require.NoError(t, err)

	cost := decimal.RequireFromString("120.50")
	older, err := f.svc.AddMedicalRecord(ctx, ada.ID, horse.ID, MedicalRecordInput{
		Type:        "x-ray",
		Date:        time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Description: "Left fore",
		Cost:        &cost,
		Document:    &media.File{Name: "xray.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	require.NotNil(t, older.Documents)
	assert.Equal(t, f.up.url, *older.Documents)
	assert.Equal(t, []media.Folder{media.FolderMedicalRecords}, f.up.folders)

	newer, err := f.svc.AddMedicalRecord(ctx, ada.ID, horse.ID, MedicalRecordInput{Type: "dental", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Float"})
	require.NoError(t, err)

	rows, err := f.svc.MedicalRecords(ctx, ada.ID, horse.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
	require.True(t, rows[1].Cost.Valid)
	assert.True(t, cost.Equal(rows[1].Cost.Decimal))
	assert.False(t, rows[0].Cost.Valid)

	_, err = f.svc.AddMedicalRecord(ctx, ada.ID, horse.ID, MedicalRecordInput{Type: "dental", Description: "no date"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAppointmentsOrderAndStatus(t *testing.T) {
	f := newFixture(t)
	ada := seedUser(t, f.conn, "Ada")
	bo := seedUser(t, f.conn, "Bo")
	ctx := context.Background()
	horse, err := f.svc.Create(ctx, ada.ID, HorseInput{Name: strPtr("Star")})
	require.NoError(t, err)
	other, err := f.svc.Create(ctx, ada.ID, HorseInput{Name: strPtr("Moon")})
	require.NoError(t, err)

	later, err := f.svc.AddAppointment(ctx, ada.ID, horse.ID, AppointmentInput{Type: "vet", Date: time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC), Reminder: true})
	require.NoError(t, err)
	sooner, err := f.svc.AddAppointment(ctx, ada.ID, horse.ID, AppointmentInput{Type: "farrier", Date: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusScheduled, later.Status)

	rows, err := f.svc.Appointments(ctx, ada.ID, horse.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sooner.ID, rows[0].ID)

	done, err := f.svc.SetAppointmentStatus(ctx, ada.ID, horse.ID, later.ID, enums.AppointmentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusCompleted, done.Status)

	_, err = f.svc.SetAppointmentStatus(ctx, ada.ID, horse.ID, later.ID, "postponed")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.SetAppointmentStatus(ctx, ada.ID, other.ID, later.ID, enums.AppointmentStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.SetAppointmentStatus(ctx, bo.ID, horse.ID, later.ID, enums.AppointmentStatusCancelled)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.AddAppointment(ctx, bo.ID, horse.ID, AppointmentInput{Type: "vet", Date: time.Now()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
