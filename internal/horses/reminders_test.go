package horses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/pkg/db/dbtest"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	inputs []notifications.NotifyInput
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, input notifications.NotifyInput) (*models.Notification, error) {
	n.inputs = append(n.inputs, input)
	if n.err != nil {
		return nil, n.err
	}
	return &models.Notification{UserID: input.UserID, Type: input.Type, Content: input.Content}, nil
}

func TestSendDueNotifiesOnceWithinWindow(t *testing.T) {
	conn := dbtest.Open(t)
	owner := seedUser(t, conn, "Ada")
	horse := &models.Horse{OwnerID: owner.ID, Name: "Star"}
	require.NoError(t, conn.Create(horse).Error)

	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	sent := now.Add(-time.Hour)
	due := &models.Appointment{HorseID: horse.ID, Type: "vet", Date: now.Add(3 * time.Hour), Reminder: true}
	tooFar := &models.Appointment{HorseID: horse.ID, Type: "farrier", Date: now.Add(30 * time.Hour), Reminder: true}
	noReminder := &models.Appointment{HorseID: horse.ID, Type: "dentist", Date: now.Add(2 * time.Hour)}
	alreadySent := &models.Appointment{HorseID: horse.ID, Type: "clip", Date: now.Add(time.Hour), Reminder: true, ReminderSentAt: &sent}
	cancelled := &models.Appointment{HorseID: horse.ID, Type: "show", Date: now.Add(time.Hour), Reminder: true, Status: enums.AppointmentStatusCancelled}
	past := &models.Appointment{HorseID: horse.ID, Type: "lesson", Date: now.Add(-time.Hour), Reminder: true}
	for _, a := range []*models.Appointment{due, tooFar, noReminder, alreadySent, cancelled, past} {
		require.NoError(t, conn.Create(a).Error)
	}

	notifier := &recordingNotifier{}
	reminders, err := NewReminders(RemindersParams{Repo: NewRepository(conn), Notifier: notifier})
	require.NoError(t, err)
	reminders.now = func() time.Time { return now }

	n, err := reminders.SendDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, owner.ID, notifier.inputs[0].UserID)
	assert.Equal(t, enums.NotificationTypeAppointmentReminder, notifier.inputs[0].Type)
	assert.Equal(t, "Reminder: vet for Star on Jul 1, 2024 11:00 UTC", notifier.inputs[0].Content)

	var reloaded models.Appointment
	require.NoError(t, conn.First(&reloaded, "id = ?", due.ID).Error)
	require.NotNil(t, reloaded.ReminderSentAt)

	n, err = reminders.SendDue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, notifier.inputs, 1)
}

func TestSendDueReportsNotifyFailures(t *testing.T) {
	conn := dbtest.Open(t)
	owner := seedUser(t, conn, "Ada")
	horse := &models.Horse{OwnerID: owner.ID, Name: "Star"}
	require.NoError(t, conn.Create(horse).Error)
	now := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Create(&models.Appointment{HorseID: horse.ID, Type: "vet", Date: now.Add(time.Hour), Reminder: true}).Error)

	reminders, err := NewReminders(RemindersParams{Repo: NewRepository(conn), Notifier: &recordingNotifier{err: errors.New("db gone")}})
	require.NoError(t, err)
	reminders.now = func() time.Time { return now }

	n, err := reminders.SendDue(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}
