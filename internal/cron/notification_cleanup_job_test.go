package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

type fakePurger struct {
	olderThan time.Duration
	deleted   int64
	err       error
	called    int
}

func (f *fakePurger) PurgeRead(_ context.Context, olderThan time.Duration) (int64, error) {
	f.called++
	f.olderThan = olderThan
	if f.err != nil {
		return 0, f.err
	}
	return f.deleted, nil
}

func TestNotificationCleanupJobUsesRetention(t *testing.T) {
	purger := &fakePurger{deleted: 42}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Purger: purger,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if purger.olderThan != notificationRetentionDays*24*time.Hour {
		t.Fatalf("unexpected retention %s", purger.olderThan)
	}
	if purger.called != 1 {
		t.Fatalf("expected purger called once, got %d", purger.called)
	}
}

func TestNotificationCleanupJobPropagatesErrors(t *testing.T) {
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Purger:    &fakePurger{err: errors.New("boom")},
		Retention: 7,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeReminders struct {
	sent int
	err  error
}

func (f *fakeReminders) SendDue(context.Context) (int, error) { return f.sent, f.err }

func TestAppointmentReminderJob(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test"})
	job, err := NewAppointmentReminderJob(AppointmentReminderJobParams{Logger: logg, Reminders: &fakeReminders{sent: 3}})
	if err != nil {
		t.Fatalf("NewAppointmentReminderJob: %v", err)
	}
	if job.Name() != "appointment-reminders" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	failing, err := NewAppointmentReminderJob(AppointmentReminderJobParams{Logger: logg, Reminders: &fakeReminders{sent: 1, err: errors.New("notify failed")}})
	if err != nil {
		t.Fatalf("NewAppointmentReminderJob: %v", err)
	}
	if err := failing.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
