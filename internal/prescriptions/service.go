package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/db/models"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	pkgpagination "github.com/mexilux/optica-backend/pkg/pagination"
)

type prescriptionsRepository interface {
	Create(ctx context.Context, row *models.SavedPrescription) (*models.SavedPrescription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SavedPrescription, error)
	List(ctx context.Context, opts listQuery) ([]models.SavedPrescription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SaveInput holds a prescription a customer wants to keep for reuse.
type SaveInput struct {
	Label        string
	Prescription lens.Prescription
}

// ListParams hold pagination inputs for customer-scoped listings.
type ListParams struct {
	CustomerID uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult is one page of saved prescriptions.
type ListResult struct {
	Items  []Item
	Cursor string
}

// Item is one saved prescription with its stored measurements.
type Item struct {
	ID           uuid.UUID
	Label        string
	Prescription lens.Prescription
}

// Service exposes saved prescription management. Every write runs the
// medical validation rules; a row that fails them is never stored.
type Service interface {
	Save(ctx context.Context, customerID uuid.UUID, input SaveInput) (*Item, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, customerID, id uuid.UUID) (*Item, error)
	Delete(ctx context.Context, customerID, id uuid.UUID) error
}

type service struct {
	repo  prescriptionsRepository
	rules lens.PrescriptionRules
}

// NewService builds a prescriptions service backed by the provided repository.
func NewService(repo prescriptionsRepository, rules lens.PrescriptionRules) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("prescriptions repository required")
	}
	return &service{repo: repo, rules: rules}, nil
}

func (s *service) Save(ctx context.Context, customerID uuid.UUID, input SaveInput) (*Item, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "label is required")
	}

	validated, fieldErrs := s.rules.Validate(input.Prescription)
	if len(fieldErrs) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prescription failed validation").
			WithDetails(fieldErrs)
	}

	row := toModel(customerID, strings.TrimSpace(input.Label), validated.Prescription)
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create saved prescription")
	}
	item := toItem(created)
	return &item, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{
		customerID: params.CustomerID,
		limit:      pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list saved prescriptions")
	}

	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}

	items := make([]Item, len(rows))
	for i := range rows {
		items[i] = toItem(&rows[i])
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) Get(ctx context.Context, customerID, id uuid.UUID) (*Item, error) {
	row, err := s.ownedRow(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	item := toItem(row)
	return &item, nil
}

func (s *service) Delete(ctx context.Context, customerID, id uuid.UUID) error {
	if _, err := s.ownedRow(ctx, customerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete saved prescription")
	}
	return nil
}

func (s *service) ownedRow(ctx context.Context, customerID, id uuid.UUID) (*models.SavedPrescription, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prescription id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "saved prescription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup saved prescription")
	}
	// Ownership mismatches read as not-found so ids cannot be probed.
	if row.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "saved prescription not found")
	}
	return row, nil
}

func toModel(customerID uuid.UUID, label string, p lens.Prescription) *models.SavedPrescription {
	return &models.SavedPrescription{
		CustomerID:     customerID,
		Label:          label,
		RightSphere:    p.RightEye.Sphere,
		RightCylinder:  p.RightEye.Cylinder,
		RightAxis:      p.RightEye.Axis,
		RightAdd:       p.RightEye.Add,
		RightPD:        p.RightEye.PD,
		LeftSphere:     p.LeftEye.Sphere,
		LeftCylinder:   p.LeftEye.Cylinder,
		LeftAxis:       p.LeftEye.Axis,
		LeftAdd:        p.LeftEye.Add,
		LeftPD:         p.LeftEye.PD,
		TotalPD:        &p.TotalPD,
		IssueDate:      p.IssueDate,
		ExpirationDate: p.ExpirationDate,
		DoctorName:     p.DoctorName,
		DoctorLicense:  p.DoctorLicense,
	}
}

func toItem(row *models.SavedPrescription) Item {
	return Item{
		ID:           row.ID,
		Label:        row.Label,
		Prescription: ToPrescription(row),
	}
}

// ToPrescription rebuilds the domain prescription from a stored row.
func ToPrescription(row *models.SavedPrescription) lens.Prescription {
	p := lens.Prescription{
		RightEye: lens.EyePrescription{
			Sphere:   row.RightSphere,
			Cylinder: row.RightCylinder,
			Axis:     row.RightAxis,
			Add:      row.RightAdd,
			PD:       row.RightPD,
		},
		LeftEye: lens.EyePrescription{
			Sphere:   row.LeftSphere,
			Cylinder: row.LeftCylinder,
			Axis:     row.LeftAxis,
			Add:      row.LeftAdd,
			PD:       row.LeftPD,
		},
		IssueDate:      row.IssueDate,
		ExpirationDate: row.ExpirationDate,
		DoctorName:     row.DoctorName,
		DoctorLicense:  row.DoctorLicense,
	}
	if row.TotalPD != nil {
		p.TotalPD = *row.TotalPD
	} else {
		p.TotalPD = row.RightPD.Add(row.LeftPD)
	}
	return p
}
