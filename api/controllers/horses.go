package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Shashankphatkure/equico-app/api/controllers/callercontext"
	"github.com/Shashankphatkure/equico-app/api/responses"
	"github.com/Shashankphatkure/equico-app/api/validators"
	"github.com/Shashankphatkure/equico-app/internal/horses"
	"github.com/Shashankphatkure/equico-app/pkg/enums"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

type medicalRecordForm struct {
	Type         string  `form:"type" json:"type" validate:"required,max=100"`
	Date         string  `form:"date" json:"date" validate:"required"`
	Description  string  `form:"description" json:"description" validate:"required"`
	Veterinarian *string `form:"veterinarian" json:"veterinarian"`
	Cost         *string `form:"cost" json:"cost"`
	Notes        *string `form:"notes" json:"notes"`
}

type appointmentStatusRequest struct {
	AppointmentID uuid.UUID `json:"appointmentId" validate:"required"`
	Status        string    `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

func ListHorses(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CreateHorse(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body horses.HorseInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horse, err := svc.Create(r.Context(), ownerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, horse)
	}
}

func GetHorse(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horse, err := svc.Get(r.Context(), ownerID, horseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, horse)
	}
}

func UpdateHorse(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body horses.HorseInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		horse, err := svc.Update(r.Context(), ownerID, horseID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, horse)
	}
}

func DeleteHorse(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), ownerID, horseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAck(w)
	}
}

func ListMedicalRecords(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.MedicalRecords(r.Context(), ownerID, horseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// CreateMedicalRecord accepts multipart fields plus an optional documents file.
func CreateMedicalRecord(svc horses.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := validators.ParseMultipart(w, r, maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer form.Close()

		var body medicalRecordForm
		if err := form.Decode(&body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.Document, err = form.File("documents"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.AddMedicalRecord(r.Context(), ownerID, horseID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

func (f medicalRecordForm) toInput() (horses.MedicalRecordInput, error) {
	date, err := parseDate(f.Date)
	if err != nil {
		return horses.MedicalRecordInput{}, fieldError("date", "must be a date")
	}
	input := horses.MedicalRecordInput{
		Type:         f.Type,
		Date:         date,
		Description:  f.Description,
		Veterinarian: emptyToNil(f.Veterinarian),
		Notes:        emptyToNil(f.Notes),
	}
	if cost := emptyToNil(f.Cost); cost != nil {
		value, err := parsePrice("cost", *cost)
		if err != nil {
			return horses.MedicalRecordInput{}, err
		}
		input.Cost = &value
	}
	return input, nil
}

func ListAppointments(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointments, err := svc.Appointments(r.Context(), ownerID, horseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointments)
	}
}

func CreateAppointment(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body horses.AppointmentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.AddAppointment(r.Context(), ownerID, horseID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointment)
	}
}

// UpdateAppointment changes an appointment's status.
func UpdateAppointment(svc horses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "horses service unavailable"))
			return
		}
		ownerID, horseID, err := callerAndPath(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body appointmentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.SetAppointmentStatus(r.Context(), ownerID, horseID, body.AppointmentID, enums.AppointmentStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appointment)
	}
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}

func emptyToNil(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
