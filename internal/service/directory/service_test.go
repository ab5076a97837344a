package directory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medrec/internal/form"
	"github.com/jwalitptl/medrec/internal/model"
	"github.com/jwalitptl/medrec/internal/policy"
	"github.com/jwalitptl/medrec/internal/repository/memory"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

const seedYAML = `
specialities:
  - name: Cardiology
    description: Heart and blood vessels
  - name: Dermatology
pharmacies:
  - name: Central Pharmacy
    address: 1 Main St
    phone: "555-0100"
    is_on_duty: true
    latitude: 48.85
    longitude: 2.35
  - name: Night Owl
    address: 9 Late Ave
    phone: "555-0199"
`

func newService() *Service {
	store := memory.New()
	return NewService(store.Pharmacies(), store.Specialities())
}

func TestService_Seed(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	data, err := LoadSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	res, err := svc.Seed(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Specialities: 2, Pharmacies: 2}, res)

	res, err = svc.Seed(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Skipped: 4}, res)

	onDuty, err := svc.Pharmacies(ctx, true)
	require.NoError(t, err)
	require.Len(t, onDuty, 1)
	assert.Equal(t, "Central Pharmacy", onDuty[0].Name)
}

func TestLoadSeed_Rejects(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("doctors: []\n"))
	assert.Error(t, err)

	_, err = LoadSeed(strings.NewReader("pharmacies:\n  - name: X\n    latitude: 91\n"))
	assert.Error(t, err)
}

func TestService_CreateRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	admin := policy.Actor{User: &model.User{ID: 1, Role: model.RoleAdmin}}
	doctor := policy.Actor{User: &model.User{ID: 2, Role: model.RoleDoctor}}

	_, err := svc.CreateSpeciality(ctx, doctor, &form.SpecialityForm{Name: "Oncology"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = svc.CreateSpeciality(ctx, admin, &form.SpecialityForm{Name: "Oncology"})
	require.NoError(t, err)
	_, err = svc.CreateSpeciality(ctx, admin, &form.SpecialityForm{Name: "Oncology"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = svc.CreatePharmacy(ctx, doctor, &form.PharmacyForm{Name: "P"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	p, err := svc.CreatePharmacy(ctx, admin, &form.PharmacyForm{Name: "P", Address: "A", Phone: "1"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
}
