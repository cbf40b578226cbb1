package controllers

import (
	"context"
	"net/http"

	"github.com/Shashankphatkure/equico-app/api/middleware"
	"github.com/Shashankphatkure/equico-app/api/responses"
	pkgAuth "github.com/Shashankphatkure/equico-app/pkg/auth"
	"github.com/Shashankphatkure/equico-app/pkg/config"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

type sessionRevoker interface {
	Logout(ctx context.Context, accessID string) error
}

// AuthLogout revokes the session behind the presented token and clears the cookie.
// A missing or already-expired token still clears the cookie.
func AuthLogout(svc sessionRevoker, cfg config.JWTConfig, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if token := middleware.TokenFromRequest(r); token != "" {
			if claims, err := pkgAuth.ParseAccessToken(cfg, token); err == nil && claims.ID != "" {
				if err := svc.Logout(r.Context(), claims.ID); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}

		http.SetCookie(w, sessionCookie("", cookies, 0))
		responses.WriteAck(w)
	}
}
