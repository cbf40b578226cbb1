package models

import (
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Horse is an animal record owned by a user.
type Horse struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID            uuid.UUID  `gorm:"column:owner_id;type:uuid;not null;index" json:"ownerId"`
	Name               string     `gorm:"column:name;not null" json:"name"`
	Breed              *string    `gorm:"column:breed" json:"breed"`
	Color              *string    `gorm:"column:color" json:"color"`
	DateOfBirth        *time.Time `gorm:"column:date_of_birth" json:"dateOfBirth"`
	Gender             *string    `gorm:"column:gender" json:"gender"`
	RegistrationNumber *string    `gorm:"column:registration_number" json:"registrationNumber"`
	MicrochipNumber    *string    `gorm:"column:microchip_number" json:"microchipNumber"`
	Notes              *string    `gorm:"column:notes" json:"notes"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (h *Horse) BeforeCreate(*gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

// MedicalRecord is a veterinary entry in a horse's history.
type MedicalRecord struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	HorseID      uuid.UUID            `gorm:"column:horse_id;type:uuid;not null;index" json:"horseId"`
	Type         string               `gorm:"column:type;not null" json:"type"`
	Date         time.Time            `gorm:"column:date;not null" json:"date"`
	Description  string               `gorm:"column:description;not null" json:"description"`
	Veterinarian *string              `gorm:"column:veterinarian" json:"veterinarian"`
	Documents    *string              `gorm:"column:documents" json:"documents"`
	Cost         decimal.NullDecimal `gorm:"column:cost;type:numeric(12,2)" json:"cost"`
	Notes        *string              `gorm:"column:notes" json:"notes"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (m *MedicalRecord) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// Appointment is a scheduled visit for a horse.
type Appointment struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	HorseID        uuid.UUID               `gorm:"column:horse_id;type:uuid;not null;index" json:"horseId"`
	Type           string                  `gorm:"column:type;not null" json:"type"`
	Date           time.Time               `gorm:"column:date;not null;index" json:"date"`
	Provider       *string                 `gorm:"column:provider" json:"provider"`
	Notes          *string                 `gorm:"column:notes" json:"notes"`
	Reminder       bool                    `gorm:"column:reminder;not null" json:"reminder"`
	Status         enums.AppointmentStatus `gorm:"column:status;type:text;not null" json:"status"`
	ReminderSentAt *time.Time              `gorm:"column:reminder_sent_at" json:"reminderSentAt"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Horse *Horse `gorm:"foreignKey:HorseID" json:"-"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	if a.Status == "" {
		a.Status = enums.AppointmentStatusScheduled
	}
	return nil
}
