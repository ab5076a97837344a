package directory

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/medrec/internal/model"
	apperrors "github.com/jwalitptl/medrec/pkg/errors"
)

// SeedData is the YAML document loaded by the seed command.
type SeedData struct {
	Specialities []model.Speciality `yaml:"specialities"`
	Pharmacies   []model.Pharmacy   `yaml:"pharmacies"`
}

type SeedResult struct {
	Specialities int
	Pharmacies   int
	Skipped      int
}

func LoadSeed(r io.Reader) (*SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	for i, p := range data.Pharmacies {
		if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
			return nil, fmt.Errorf("pharmacy %d (%s): coordinates out of range", i+1, p.Name)
		}
	}
	return &data, nil
}

// Seed inserts the directory entries that do not exist yet. Specialities
// match on name, pharmacies on name and address.
func (s *Service) Seed(ctx context.Context, data *SeedData) (SeedResult, error) {
	var res SeedResult

	for i := range data.Specialities {
		sp := data.Specialities[i]
		if err := s.specialities.Create(ctx, &sp); err != nil {
			if errors.Is(err, apperrors.ConflictErr) {
				res.Skipped++
				continue
			}
			return res, err
		}
		res.Specialities++
	}

	existing, err := s.pharmacies.List(ctx, false)
	if err != nil {
		return res, err
	}
	seen := make(map[[2]string]bool, len(existing))
	for _, p := range existing {
		seen[[2]string{p.Name, p.Address}] = true
	}
	for i := range data.Pharmacies {
		p := data.Pharmacies[i]
		key := [2]string{p.Name, p.Address}
		if seen[key] {
			res.Skipped++
			continue
		}
		if err := s.pharmacies.Create(ctx, &p); err != nil {
			return res, err
		}
		seen[key] = true
		res.Pharmacies++
	}
	return res, nil
}
