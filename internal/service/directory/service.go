package directory

import (
	"context"
	"errors"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

// Service serves the public pharmacy and speciality directories.
type Service struct {
	pharmacies   repository.PharmacyRepository
	specialities repository.SpecialityRepository
}

func NewService(pharmacies repository.PharmacyRepository, specialities repository.SpecialityRepository) *Service {
	return &Service{pharmacies: pharmacies, specialities: specialities}
}

func (s *Service) Pharmacies(ctx context.Context, onDutyOnly bool) ([]*model.Pharmacy, error) {
	return s.pharmacies.List(ctx, onDutyOnly)
}

func (s *Service) CreatePharmacy(ctx context.Context, actor policy.Actor, f *form.PharmacyForm) (*model.Pharmacy, error) {
	if !policy.IsAdmin(actor.User) {
		return nil, apperrors.Forbidden("")
	}
	p := f.ToModel()
	if err := s.pharmacies.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Specialities(ctx context.Context) ([]*model.Speciality, error) {
	return s.specialities.List(ctx)
}

func (s *Service) CreateSpeciality(ctx context.Context, actor policy.Actor, f *form.SpecialityForm) (*model.Speciality, error) {
	if !policy.IsAdmin(actor.User) {
		return nil, apperrors.Forbidden("")
	}
	sp := f.ToModel()
	if err := s.specialities.Create(ctx, sp); err != nil {
		if errors.Is(err, apperrors.ConflictErr) {
			return nil, apperrors.FieldError("name", "Speciality with this Name already exists.")
		}
		return nil, err
	}
	return sp, nil
}
