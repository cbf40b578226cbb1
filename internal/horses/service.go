package horses

import (
	"context"
	"strings"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type uploader interface {
	Upload(ctx context.Context, folder media.Folder, file media.File) (string, error)
	RemoveQuietly(ctx context.Context, urls []string)
}

// HorseInput is the body of POST /horses and PUT /horses/{id}. On update nil
// fields are left untouched.
type HorseInput struct {
	Name               *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Breed              *string    `json:"breed"`
	Color              *string    `json:"color"`
	DateOfBirth        *time.Time `json:"dateOfBirth"`
	Gender             *string    `json:"gender"`
	RegistrationNumber *string    `json:"registrationNumber"`
	MicrochipNumber    *string    `json:"microchipNumber"`
	Notes              *string    `json:"notes"`
}

// MedicalRecordInput is the multipart body of POST /horses/{id}/medical-records.
type MedicalRecordInput struct {
	Type         string
	Date         time.Time
	Description  string
	Veterinarian *string
	Cost         *decimal.Decimal
	Notes        *string
	Document     *media.File
}

// AppointmentInput is the body of POST /horses/{id}/appointments.
type AppointmentInput struct {
	Type     string    `json:"type" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	Provider *string   `json:"provider"`
	Notes    *string   `json:"notes"`
	Reminder bool      `json:"reminder"`
}

type Service interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.Horse, error)
	Get(ctx context.Context, ownerID, horseID uuid.UUID) (*models.Horse, error)
	Create(ctx context.Context, ownerID uuid.UUID, input HorseInput) (*models.Horse, error)
	Update(ctx context.Context, ownerID, horseID uuid.UUID, input HorseInput) (*models.Horse, error)
	Delete(ctx context.Context, ownerID, horseID uuid.UUID) error

	MedicalRecords(ctx context.Context, ownerID, horseID uuid.UUID) ([]models.MedicalRecord, error)
	AddMedicalRecord(ctx context.Context, ownerID, horseID uuid.UUID, input MedicalRecordInput) (*models.MedicalRecord, error)

	Appointments(ctx context.Context, ownerID, horseID uuid.UUID) ([]models.Appointment, error)
	AddAppointment(ctx context.Context, ownerID, horseID uuid.UUID, input AppointmentInput) (*models.Appointment, error)
	SetAppointmentStatus(ctx context.Context, ownerID, horseID, appointmentID uuid.UUID, status enums.AppointmentStatus) (*models.Appointment, error)
}

type ServiceParams struct {
	DB       db.TxRunner
	Repo     *Repository
	Uploader uploader
}

type service struct {
	db       db.TxRunner
	repo     *Repository
	uploader uploader
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "horses repository required")
	}
	if params.Uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "media uploader required")
	}
	return &service{db: params.DB, repo: params.Repo, uploader: params.Uploader}, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]models.Horse, error) {
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list horses")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, ownerID, horseID uuid.UUID) (*models.Horse, error) {
	return s.owned(ctx, ownerID, horseID)
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input HorseInput) (*models.Horse, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	horse := &models.Horse{
		OwnerID:            ownerID,
		Name:               strings.TrimSpace(*input.Name),
		Breed:              input.Breed,
		Color:              input.Color,
		DateOfBirth:        input.DateOfBirth,
		Gender:             input.Gender,
		RegistrationNumber: input.RegistrationNumber,
		MicrochipNumber:    input.MicrochipNumber,
		Notes:              input.Notes,
	}
	if err := s.repo.Create(ctx, horse); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create horse")
	}
	return horse, nil
}

func (s *service) Update(ctx context.Context, ownerID, horseID uuid.UUID, input HorseInput) (*models.Horse, error) {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	optional := map[string]any{
		"breed":               input.Breed,
		"color":               input.Color,
		"gender":              input.Gender,
		"registration_number": input.RegistrationNumber,
		"microchip_number":    input.MicrochipNumber,
		"notes":               input.Notes,
	}
	for column, value := range optional {
		if v, ok := value.(*string); ok && v != nil {
			updates[column] = *v
		}
	}
	if input.DateOfBirth != nil {
		updates["date_of_birth"] = *input.DateOfBirth
	}

	if err := s.repo.Update(ctx, horseID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update horse")
	}
	return s.owned(ctx, ownerID, horseID)
}

func (s *service) Delete(ctx context.Context, ownerID, horseID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return err
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteCascade(ctx, horseID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete horse")
	}
	return nil
}

func (s *service) MedicalRecords(ctx context.Context, ownerID, horseID uuid.UUID) ([]models.MedicalRecord, error) {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}
	rows, err := s.repo.MedicalRecords(ctx, horseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list medical records")
	}
	return rows, nil
}

// AddMedicalRecord stores the record and its optional document. The document
// is removed again if the insert fails.
func (s *service) AddMedicalRecord(ctx context.Context, ownerID, horseID uuid.UUID, input MedicalRecordInput) (*models.MedicalRecord, error) {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}
	recordType := strings.TrimSpace(input.Type)
	description := strings.TrimSpace(input.Description)
	if recordType == "" || description == "" || input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type, date and description are required")
	}
	if input.Cost != nil && input.Cost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}

	record := &models.MedicalRecord{
		HorseID:      horseID,
		Type:         recordType,
		Date:         input.Date.UTC(),
		Description:  description,
		Veterinarian: input.Veterinarian,
		Notes:        input.Notes,
	}
	if input.Cost != nil {
		record.Cost = decimal.NewNullDecimal(*input.Cost)
	}

	var uploaded string
	if input.Document != nil {
		url, err := s.uploader.Upload(ctx, media.FolderMedicalRecords, *input.Document)
		if err != nil {
			return nil, err
		}
		uploaded = url
		record.Documents = &url
	}

	if err := s.repo.CreateMedicalRecord(ctx, record); err != nil {
		if uploaded != "" {
			s.uploader.RemoveQuietly(ctx, []string{uploaded})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create medical record")
	}
	return record, nil
}

func (s *service) Appointments(ctx context.Context, ownerID, horseID uuid.UUID) ([]models.Appointment, error) {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}
	rows, err := s.repo.Appointments(ctx, horseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	return rows, nil
}

func (s *service) AddAppointment(ctx context.Context, ownerID, horseID uuid.UUID, input AppointmentInput) (*models.Appointment, error) {
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}
	appointmentType := strings.TrimSpace(input.Type)
	if appointmentType == "" || input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type and date are required")
	}
	appointment := &models.Appointment{
		HorseID:  horseID,
		Type:     appointmentType,
		Date:     input.Date.UTC(),
		Provider: input.Provider,
		Notes:    input.Notes,
		Reminder: input.Reminder,
		Status:   enums.AppointmentStatusScheduled,
	}
	if err := s.repo.CreateAppointment(ctx, appointment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
	}
	return appointment, nil
}

func (s *service) SetAppointmentStatus(ctx context.Context, ownerID, horseID, appointmentID uuid.UUID, status enums.AppointmentStatus) (*models.Appointment, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid appointment status")
	}
	if _, err := s.owned(ctx, ownerID, horseID); err != nil {
		return nil, err
	}
	appointment, err := s.repo.FindAppointment(ctx, appointmentID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
	}
	if appointment.HorseID != horseID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Appointment not found")
	}
	if err := s.repo.SetAppointmentStatus(ctx, appointmentID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
	}
	appointment.Status = status
	return appointment, nil
}

// owned loads the horse and checks that ownerID owns it. Horses of other
// users are reported as missing.
func (s *service) owned(ctx context.Context, ownerID, horseID uuid.UUID) (*models.Horse, error) {
	horse, err := s.repo.FindByID(ctx, horseID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Horse not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load horse")
	}
	if horse.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Horse not found")
	}
	return horse, nil
}
