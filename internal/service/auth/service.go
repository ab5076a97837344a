package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/medrec/internal/email"
	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	"github.com/jwalitptl/medrec/internal/service/audit"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
	"github.com/jwalitptl/medrec/pkg/security"
)

const (
	msgInvalidLogin  = "Please enter a correct username and password. Note that both fields may be case-sensitive."
	msgInactive      = "This account is inactive."
	msgUsernameTaken = "A user with that username already exists."
)

type Service struct {
	users        repository.UserRepository
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	attributions repository.AttributionRepository
	hasher       security.PasswordHasher
	mailer       email.Service
	auditor      *audit.Logger
	now          func() time.Time
}

func NewService(users repository.UserRepository, patients repository.PatientRepository,
	doctors repository.DoctorRepository, attributions repository.AttributionRepository,
	hasher security.PasswordHasher, mailer email.Service, auditor *audit.Logger) *Service {
	return &Service{
		users:        users,
		patients:     patients,
		doctors:      doctors,
		attributions: attributions,
		hasher:       hasher,
		mailer:       mailer,
		auditor:      auditor,
		now:          time.Now,
	}
}

// Register creates the account from a validated form. PATIENT accounts get
// their empty profile in the same transaction.
func (s *Service) Register(ctx context.Context, f *form.RegistrationForm) (*model.User, error) {
	user := f.ToUser()
	hash, err := s.hasher.Hash(f.Password1)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrPasswordShort):
			return nil, apperrors.FieldError("password1", "This password is too short. It must contain at least 8 characters.")
		case errors.Is(err, security.ErrPasswordLong):
			return nil, apperrors.FieldError("password1", "This password is too long. It must contain at most 72 characters.")
		}
		return nil, err
	}
	user.PasswordHash = hash
	user.DateJoined = s.now()

	switch user.Role {
	case model.RolePatient:
		err = s.users.CreateWithPatient(ctx, user, &model.Patient{})
	case model.RoleDoctor:
		err = s.users.Create(ctx, user)
	case model.RoleAdmin:
		return nil, apperrors.FieldError("role", "Select a valid choice.")
	default:
		return nil, apperrors.FieldError("role", "Select a valid choice.")
	}
	if err != nil {
		if errors.Is(err, apperrors.ConflictErr) {
			return nil, apperrors.FieldError("username", msgUsernameTaken)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if err := s.mailer.SendWelcome(ctx, user.Email, user.FullName()); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("welcome email not sent")
	}
	s.auditor.Log(ctx, user.ID, model.AuditActionCreate, model.AuditEntityUser, user.ID, nil)
	return user, nil
}

// Authenticate checks a username or email against the stored hash.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return nil, apperrors.FieldError(form.NonFieldKey, msgInvalidLogin)
		}
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.FieldError(form.NonFieldKey, msgInvalidLogin)
	}
	if !user.IsActive {
		return nil, apperrors.FieldError(form.NonFieldKey, msgInactive)
	}

	at := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, err
	}
	user.LastLogin = &at
	s.auditor.Log(ctx, user.ID, model.AuditActionLogin, model.AuditEntityUser, user.ID, nil)
	return user, nil
}

// CreateAdmin provisions an ADMIN account; registration never offers the role.
func (s *Service) CreateAdmin(ctx context.Context, username, emailAddr, password string) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(emailAddr)),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		DateJoined:   s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ConflictErr) {
			return nil, apperrors.Conflict(msgUsernameTaken, err)
		}
		return nil, err
	}
	return user, nil
}

// Actor loads the user together with its role profile and, for doctors,
// the attributed patient set. Missing profiles are left nil.
func (s *Service) Actor(ctx context.Context, userID int64) (policy.Actor, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return policy.Actor{}, apperrors.Unauthorized(err)
		}
		return policy.Actor{}, err
	}
	if !user.IsActive {
		return policy.Actor{}, apperrors.Unauthorized(errors.New("account is inactive"))
	}

	actor := policy.Actor{User: user}
	switch user.Role {
	case model.RolePatient:
		p, err := s.patients.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperrors.NotFoundErr) {
			return policy.Actor{}, err
		}
		actor.Patient = p
	case model.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, apperrors.NotFoundErr) {
			return policy.Actor{}, err
		}
		actor.Doctor = d
		if d != nil {
			ids, err := s.attributions.PatientIDs(ctx, d.ID)
			if err != nil {
				return policy.Actor{}, err
			}
			actor.Attributed = policy.NewPatientSet(ids...)
		}
	case model.RoleAdmin:
	}
	return actor, nil
}

// DeleteUser removes an account and, through the store, everything it owns.
func (s *Service) DeleteUser(ctx context.Context, actor policy.Actor, id int64) error {
	if !policy.IsAdmin(actor.User) {
		return apperrors.Forbidden("")
	}
	if actor.User.ID == id {
		return apperrors.BadRequest("You cannot delete your own account.", nil)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.NotFoundErr) {
			return apperrors.NotFound("user", err)
		}
		return err
	}
	s.auditor.Log(ctx, actor.User.ID, model.AuditActionDelete, model.AuditEntityUser, id, nil)
	return nil
}
