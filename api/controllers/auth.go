package controllers

import (
	"net/http"
	"time"

	"github.com/Shashankphatkure/equico-app/api/middleware"
	"github.com/Shashankphatkure/equico-app/api/responses"
	"github.com/Shashankphatkure/equico-app/api/validators"
	"github.com/Shashankphatkure/equico-app/internal/auth"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
)

const sessionCookieMaxAge = 7 * 24 * time.Hour

// CookieOptions controls the token cookie written on login.
type CookieOptions struct {
	Secure bool
}

// AuthLogin authenticates the caller and hands back the token as a cookie and header.
func AuthLogin(svc auth.Service, cookies CookieOptions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(result.AccessToken, cookies, sessionCookieMaxAge))
		w.Header().Set(middleware.TokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result.Response)
	}
}

// AuthRegister creates the account. The caller logs in separately.
func AuthRegister(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reg == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := reg.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func sessionCookie(value string, opts CookieOptions, maxAge time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge <= 0 {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}
