package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/dbtest"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type published struct {
	channel string
	event   string
	payload any
}

type recordingPublisher struct {
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, channel, event string, payload any) error {
	p.events = append(p.events, published{channel: channel, event: event, payload: payload})
	return p.err
}

func seedUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: uuid.NewString() + "@example.com", PasswordHash: "x", DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func TestNotifyPersistsThenPublishes(t *testing.T) {
	conn := dbtest.Open(t)
	pub := &recordingPublisher{}
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Publisher: pub})
	require.NoError(t, err)

	recipient := seedUser(t, conn, "Ada")
	sender := seedUser(t, conn, "Bo")
	n, err := svc.Notify(context.Background(), NotifyInput{
		UserID:     recipient.ID,
		Type:       enums.NotificationTypeReview,
		Content:    "Bo left a review on your listing",
		FromUserID: &sender.ID,
	})
	require.NoError(t, err)

	var stored models.Notification
	require.NoError(t, conn.First(&stored, "id = ?", n.ID).Error)
	assert.False(t, stored.IsRead)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.UserChannel(recipient.ID), pub.events[0].channel)
	assert.Equal(t, realtime.EventNewNotification, pub.events[0].event)
}

func TestNotifyPublishFailureIsLoggedOnly(t *testing.T) {
	conn := dbtest.Open(t)
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Publisher: &recordingPublisher{err: errors.New("redis down")}, Logger: logg})
	require.NoError(t, err)

	recipient := seedUser(t, conn, "Ada")
	_, err = svc.Notify(context.Background(), NotifyInput{UserID: recipient.ID, Type: enums.NotificationTypeDispute, Content: "A dispute has been opened for your listing"})
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notification publish failed", entry["message"])
	assert.Equal(t, recipient.ID.String(), entry["recipient_id"])
}

func TestNotifyValidatesInput(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: NewRepository(dbtest.Open(t))})
	require.NoError(t, err)

	_, err = svc.Notify(context.Background(), NotifyInput{Type: enums.NotificationTypeReview, Content: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Notify(context.Background(), NotifyInput{UserID: uuid.New(), Type: "party", Content: "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Notify(context.Background(), NotifyInput{UserID: uuid.New(), Type: enums.NotificationTypeReview, Content: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListUnreadAndMarkRead(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)

	ada := seedUser(t, conn, "Ada")
	bo := seedUser(t, conn, "Bo")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := &models.Notification{UserID: ada.ID, Type: enums.NotificationTypeNewMessage, Content: "hi", FromUserID: &bo.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, conn.Create(n).Error)
		ids = append(ids, n.ID)
	}
	foreign := &models.Notification{UserID: bo.ID, Type: enums.NotificationTypeNewMessage, Content: "hi"}
	require.NoError(t, conn.Create(foreign).Error)

	require.NoError(t, svc.MarkRead(context.Background(), ada.ID, []uuid.UUID{ids[0], foreign.ID}))

	unread, err := svc.List(context.Background(), ada.ID, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, ids[2], unread[0].ID)
	assert.Equal(t, "Bo", unread[0].FromUser.Name)

	all, err := svc.List(context.Background(), ada.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	var reloaded models.Notification
	require.NoError(t, conn.First(&reloaded, "id = ?", foreign.ID).Error)
	assert.False(t, reloaded.IsRead)

	assert.True(t, pkgerrors.IsCode(svc.MarkRead(context.Background(), ada.ID, nil), pkgerrors.CodeValidation))
}

func TestListCapsAtFifty(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	ada := seedUser(t, conn, "Ada")
	for i := 0; i < 55; i++ {
		require.NoError(t, conn.Create(&models.Notification{UserID: ada.ID, Type: enums.NotificationTypeReview, Content: "x"}).Error)
	}

	rows, err := svc.List(context.Background(), ada.ID, false)
	require.NoError(t, err)
	assert.Len(t, rows, 50)
}

func TestPurgeReadRemovesOldReadOnly(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn)})
	require.NoError(t, err)
	impl := svc.(*service)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return now }

	ada := seedUser(t, conn, "Ada")
	oldRead := &models.Notification{UserID: ada.ID, Type: enums.NotificationTypeReview, Content: "x", IsRead: true, CreatedAt: now.AddDate(0, 0, -40)}
	oldUnread := &models.Notification{UserID: ada.ID, Type: enums.NotificationTypeReview, Content: "x", CreatedAt: now.AddDate(0, 0, -40)}
	recentRead := &models.Notification{UserID: ada.ID, Type: enums.NotificationTypeReview, Content: "x", IsRead: true, CreatedAt: now.AddDate(0, 0, -5)}
	for _, n := range []*models.Notification{oldRead, oldUnread, recentRead} {
		require.NoError(t, conn.Create(n).Error)
	}

	n, err := svc.PurgeRead(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var remaining []uuid.UUID
	require.NoError(t, conn.Model(&models.Notification{}).Pluck("id", &remaining).Error)
	assert.ElementsMatch(t, []uuid.UUID{oldUnread.ID, recentRead.ID}, remaining)
}
