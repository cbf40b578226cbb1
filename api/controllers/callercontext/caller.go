package callercontext

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Shashankphatkure/equico-app/api/middleware"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
)

// UserID extracts the authenticated caller set by middleware.Auth.
func UserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}
