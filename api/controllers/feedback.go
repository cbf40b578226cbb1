package controllers

import (
	"net/http"

	"github.com/Shashankphatkure/equico-app/api/controllers/callercontext"
	"github.com/Shashankphatkure/equico-app/api/responses"
	"github.com/Shashankphatkure/equico-app/api/validators"
	"github.com/Shashankphatkure/equico-app/internal/disputes"
	"github.com/Shashankphatkure/equico-app/internal/reviews"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

// CreateReview rates a listing and notifies its shop owner.
func CreateReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}
		userID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body reviews.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

// OpenDispute files a dispute against a listing and notifies its shop owner.
func OpenDispute(svc disputes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "disputes service unavailable"))
			return
		}
		userID, err := callercontext.UserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body disputes.OpenInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dispute, err := svc.Open(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dispute)
	}
}
