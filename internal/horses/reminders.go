package horses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"go.uber.org/multierr"
)

const (
	defaultReminderWindow = 24 * time.Hour
	defaultReminderBatch  = 200
	reminderDateLayout    = "Jan 2, 2006 15:04 MST"
)

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) (*models.Notification, error)
}

type RemindersParams struct {
	Repo     *Repository
	Notifier notifier
	Window   time.Duration
	Batch    int
}

// Reminders notifies horse owners about upcoming appointments.
type Reminders struct {
	repo     *Repository
	notifier notifier
	window   time.Duration
	batch    int
	now      func() time.Time
}

func NewReminders(params RemindersParams) (*Reminders, error) {
	if params.Repo == nil {
		return nil, errors.New("horses repository required")
	}
	if params.Notifier == nil {
		return nil, errors.New("notifier required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultReminderWindow
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultReminderBatch
	}
	return &Reminders{
		repo:     params.Repo,
		notifier: params.Notifier,
		window:   window,
		batch:    batch,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// SendDue stamps and notifies every appointment due within the window. Each
// reminder is claimed before it is sent, so it goes out at most once.
func (r *Reminders) SendDue(ctx context.Context) (int, error) {
	now := r.now()
	due, err := r.repo.DueReminders(ctx, now, now.Add(r.window), r.batch)
	if err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}

	var (
		sent int
		errs error
	)
	for _, appointment := range due {
		if appointment.Horse == nil {
			continue
		}
		claimed, err := r.repo.ClaimReminder(ctx, appointment.ID, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("claim reminder %s: %w", appointment.ID, err))
			continue
		}
		if !claimed {
			continue
		}
		_, err = r.notifier.Notify(ctx, notifications.NotifyInput{
			UserID:  appointment.Horse.OwnerID,
			Type:    enums.NotificationTypeAppointmentReminder,
			Content: reminderContent(appointment),
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("notify reminder %s: %w", appointment.ID, err))
			continue
		}
		sent++
	}
	return sent, errs
}

func reminderContent(a models.Appointment) string {
	return fmt.Sprintf("Reminder: %s for %s on %s", a.Type, a.Horse.Name, a.Date.UTC().Format(reminderDateLayout))
}
