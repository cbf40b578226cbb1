package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Shashankphatkure/equico-app/pkg/auth"
	"github.com/Shashankphatkure/equico-app/pkg/config"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "equico", ExpirationMinutes: 60}

func captureUser(captured *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	var user string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureUser(&user))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	var user string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureUser(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthAllowsBearerToken(t *testing.T) {
	userID := uuid.New()
	var user string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureUser(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, user)
	}
}

func TestAuthFallsBackToCookie(t *testing.T) {
	userID := uuid.New()
	var user string
	handler := Auth(testJWT, stubSessionVerifier{ok: true}, nil)(captureUser(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: mintTestToken(t, userID)})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, user)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	var user string
	handler := Auth(testJWT, stubSessionVerifier{ok: false}, nil)(captureUser(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSessionStoreFailure(t *testing.T) {
	var user string
	handler := Auth(testJWT, stubSessionVerifier{err: errors.New("redis down")}, nil)(captureUser(&user))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, uuid.New()))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	var user string
	handler := OptionalAuth(testJWT, stubSessionVerifier{ok: true}, nil)(captureUser(&user))

	anonymous := httptest.NewRecorder()
	handler.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/", nil))
	if anonymous.Code != http.StatusOK || user != "" {
		t.Fatalf("expected anonymous pass-through, got %d user %q", anonymous.Code, user)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	invalid := httptest.NewRecorder()
	handler.ServeHTTP(invalid, req)
	if invalid.Code != http.StatusOK || user != "" {
		t.Fatalf("expected invalid token to be ignored, got %d user %q", invalid.Code, user)
	}

	userID := uuid.New()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mintTestToken(t, userID))
	valid := httptest.NewRecorder()
	handler.ServeHTTP(valid, req)
	if user != userID.String() {
		t.Fatalf("expected user %s got %q", userID, user)
	}
	if got := UserUUIDFromContext(WithUserID(context.Background(), userID.String())); got != userID {
		t.Fatalf("expected parsed uuid %s got %s", userID, got)
	}
}

func mintTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Email:  "rider@example.com",
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.ok, nil
}
