package auth

import (
	"context"
	"strings"
	"time"

	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/db/models"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
)

const dateLayout = "2006-01-02"

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=256"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
}

// RegisterResponse echoes the created identity.
type RegisterResponse struct {
	User UserSummary `json:"user"`
}

// RegisterService handles account creation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type userCreator interface {
	Create(ctx context.Context, user *models.User) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	UserRepo  userCreator
	Passwords passwordHasher
}

type registerService struct {
	users     userCreator
	passwords passwordHasher
	now       func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Passwords == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "password hasher required")
	}
	return &registerService{
		users:     params.UserRepo,
		passwords: params.Passwords,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dateOfBirth must be YYYY-MM-DD")
	}
	now := s.now()
	if dob.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dateOfBirth cannot be in the future")
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  dob,
		IsOver18:     AgeOn(dob, now) >= 18,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return &RegisterResponse{User: summarize(user)}, nil
}

func parseDateOfBirth(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// AgeOn returns whole years elapsed between dob and now, counting a year only
// once the birthday has passed.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
