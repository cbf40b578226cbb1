package cron

import (
	"context"
	"fmt"

	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

type AppointmentReminderJobParams struct {
	Logger    *logger.Logger
	Reminders reminderSender
}

type reminderSender interface {
	SendDue(ctx context.Context) (int, error)
}

// NewAppointmentReminderJob notifies owners of appointments coming up soon.
func NewAppointmentReminderJob(params AppointmentReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reminders == nil {
		return nil, fmt.Errorf("reminders required")
	}
	return &appointmentReminderJob{logg: params.Logger, reminders: params.Reminders}, nil
}

type appointmentReminderJob struct {
	logg      *logger.Logger
	reminders reminderSender
}

func (j *appointmentReminderJob) Name() string { return "appointment-reminders" }

func (j *appointmentReminderJob) Run(ctx context.Context) error {
	sent, err := j.reminders.SendDue(ctx)
	logCtx := j.logg.WithField(ctx, "reminders_sent", sent)
	if err != nil {
		return fmt.Errorf("appointment reminders (%d sent): %w", sent, err)
	}
	j.logg.Info(logCtx, "appointment reminders sent")
	return nil
}
