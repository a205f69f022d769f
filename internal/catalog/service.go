package catalog

import (
	"context"
	"fmt"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
)

type catalogRepository interface {
	ListActiveMaterials(ctx context.Context) ([]models.LensMaterial, error)
	ListActiveTreatments(ctx context.Context) ([]models.LensTreatment, error)
	ListActiveUsageOptions(ctx context.Context) ([]models.LensUsageOption, error)
}

// Service exposes the lens catalog read surface: listings for the storefront
// and the snapshot the configurator resolves and prices against.
type Service interface {
	Snapshot(ctx context.Context) (lens.Snapshot, error)
	ListMaterials(ctx context.Context) ([]lens.Material, error)
	ListTreatments(ctx context.Context) ([]lens.Treatment, error)
	ListUsageOptions(ctx context.Context) ([]lens.UsageOption, error)
}

type service struct {
	repo catalogRepository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo catalogRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// Snapshot loads all active reference data in one pass. The snapshot is a
// point-in-time view; concurrent catalog edits do not affect a resolution
// already in flight.
func (s *service) Snapshot(ctx context.Context) (lens.Snapshot, error) {
	materials, err := s.ListMaterials(ctx)
	if err != nil {
		return lens.Snapshot{}, err
	}
	treatments, err := s.ListTreatments(ctx)
	if err != nil {
		return lens.Snapshot{}, err
	}
	options, err := s.ListUsageOptions(ctx)
	if err != nil {
		return lens.Snapshot{}, err
	}
	return lens.NewSnapshot(materials, treatments, options), nil
}

func (s *service) ListMaterials(ctx context.Context) ([]lens.Material, error) {
	rows, err := s.repo.ListActiveMaterials(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list materials")
	}
	out := make([]lens.Material, len(rows))
	for i, row := range rows {
		out[i] = toMaterial(row)
	}
	return out, nil
}

func (s *service) ListTreatments(ctx context.Context) ([]lens.Treatment, error) {
	rows, err := s.repo.ListActiveTreatments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list treatments")
	}
	out := make([]lens.Treatment, len(rows))
	for i, row := range rows {
		out[i] = toTreatment(row)
	}
	return out, nil
}

func (s *service) ListUsageOptions(ctx context.Context) ([]lens.UsageOption, error) {
	rows, err := s.repo.ListActiveUsageOptions(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list usage options")
	}
	out := make([]lens.UsageOption, len(rows))
	for i, row := range rows {
		out[i] = toUsageOption(row)
	}
	return out, nil
}

func toMaterial(row models.LensMaterial) lens.Material {
	return lens.Material{
		ID:             row.ID,
		Name:           row.Name,
		Index:          row.RefractiveIdx,
		ThinnessFactor: row.ThinnessFactor,
		Polycarbonate:  row.Polycarbonate,
		BuiltInUV:      row.BuiltInUV,
		Price:          row.Price,
		Currency:       row.Currency,
		Active:         row.IsActive,
	}
}

func toTreatment(row models.LensTreatment) lens.Treatment {
	excluded := make([]enums.LensUsageType, 0, len(row.ExcludedUsageTypes))
	for _, raw := range row.ExcludedUsageTypes {
		usage, err := enums.ParseLensUsageType(raw)
		if err != nil {
			// unknown values in reference data are skipped rather than
			// poisoning the whole snapshot
			continue
		}
		excluded = append(excluded, usage)
	}
	return lens.Treatment{
		ID:                 row.ID,
		Name:               row.Name,
		Category:           row.Category,
		Price:              row.Price,
		Currency:           row.Currency,
		IncompatibleWith:   append([]string(nil), row.IncompatibleWith...),
		RequiresMaterials:  append([]string(nil), row.RequiresMaterials...),
		ExcludedUsageTypes: excluded,
		Active:             row.IsActive,
	}
}

func toUsageOption(row models.LensUsageOption) lens.UsageOption {
	return lens.UsageOption{
		Type:                 row.UsageType,
		RequiresPrescription: row.RequiresPrescription,
		RequiresAdd:          row.RequiresAdd,
		PriceModifier:        row.PriceModifier,
		Currency:             row.Currency,
		Active:               row.IsActive,
	}
}
