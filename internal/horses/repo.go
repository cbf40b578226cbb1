package horses

import (
	"context"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists horses and their medical and appointment history.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Horse, error) {
	var rows []models.Horse
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	var horse models.Horse
	if err := r.db.WithContext(ctx).First(&horse, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &horse, nil
}

func (r *Repository) Create(ctx context.Context, horse *models.Horse) error {
	return r.db.WithContext(ctx).Create(horse).Error
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Horse{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteCascade removes the horse's history, detaches its posts and deletes
// the horse. Run inside a transaction.
func (r *Repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Where("horse_id = ?", id).Delete(&models.Appointment{}).Error; err != nil {
		return err
	}
	if err := conn.Where("horse_id = ?", id).Delete(&models.MedicalRecord{}).Error; err != nil {
		return err
	}
	if err := conn.Model(&models.Post{}).Where("horse_id = ?", id).Update("horse_id", nil).Error; err != nil {
		return err
	}
	return conn.Where("id = ?", id).Delete(&models.Horse{}).Error
}

func (r *Repository) MedicalRecords(ctx context.Context, horseID uuid.UUID) ([]models.MedicalRecord, error) {
	var rows []models.MedicalRecord
	err := r.db.WithContext(ctx).
		Where("horse_id = ?", horseID).
		Order("date DESC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateMedicalRecord(ctx context.Context, record *models.MedicalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *Repository) Appointments(ctx context.Context, horseID uuid.UUID) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.db.WithContext(ctx).
		Where("horse_id = ?", horseID).
		Order("date ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) CreateAppointment(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *Repository) FindAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *Repository) SetAppointmentStatus(ctx context.Context, id uuid.UUID, status enums.AppointmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// DueReminders returns scheduled appointments with an unsent reminder whose
// date falls in [from, to], with their horse preloaded.
func (r *Repository) DueReminders(ctx context.Context, from, to time.Time, limit int) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Horse").
		Where("reminder = ? AND reminder_sent_at IS NULL AND status = ?", true, enums.AppointmentStatusScheduled).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ClaimReminder stamps reminder_sent_at if it is still unset. False means
// another worker got there first.
func (r *Repository) ClaimReminder(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		UpdateColumn("reminder_sent_at", at)
	return res.RowsAffected > 0, res.Error
}
