package configurator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	"github.com/mexilux/optica-backend/pkg/config"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
	"github.com/mexilux/optica-backend/pkg/metrics"
)

type configurationsRepository interface {
	Create(ctx context.Context, record *models.LensConfiguration) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LensConfiguration, error)
	Save(ctx context.Context, record *models.LensConfiguration) error
}

type snapshotSource interface {
	Snapshot(ctx context.Context) (lens.Snapshot, error)
}

type savedPrescriptionSource interface {
	Get(ctx context.Context, customerID, id uuid.UUID) (*prescriptions.Item, error)
}

type locker interface {
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
	ConfigurationLockKey(configurationID string) string
}

// PrescriptionInput carries the prescription step payload. For the saved
// source only the id is read; every other source supplies the measurements
// inline.
type PrescriptionInput struct {
	Source              enums.PrescriptionSource
	SavedPrescriptionID *uuid.UUID
	Prescription        *lens.Prescription
}

// Service drives the configuration wizard: it owns locking, persistence and
// the catalog snapshot, and delegates every decision to the engine.
type Service interface {
	Start(ctx context.Context, customerID uuid.UUID) (*lens.Configuration, error)
	Get(ctx context.Context, customerID, id uuid.UUID) (*lens.Configuration, error)
	SetUsageType(ctx context.Context, customerID, id uuid.UUID, usage enums.LensUsageType) (*lens.Configuration, error)
	SetPrescription(ctx context.Context, customerID, id uuid.UUID, input PrescriptionInput) (*lens.Configuration, error)
	SetMaterial(ctx context.Context, customerID, id uuid.UUID, materialID string) (*lens.Configuration, error)
	SetTreatments(ctx context.Context, customerID, id uuid.UUID, treatmentIDs []string) (*lens.Configuration, error)
	Complete(ctx context.Context, customerID, id uuid.UUID, discount decimal.Decimal) (*lens.Configuration, error)
	Reopen(ctx context.Context, customerID, id uuid.UUID, step enums.ConfigStep) (*lens.Configuration, error)
}

// ServiceParams configure the configurator service.
type ServiceParams struct {
	Logger        *logger.Logger
	Repo          configurationsRepository
	Catalog       snapshotSource
	Prescriptions savedPrescriptionSource
	Locks         locker
	Metrics       *metrics.WizardMetrics
	Rules         lens.PrescriptionRules
	Wizard        config.WizardConfig
}

type service struct {
	logg    *logger.Logger
	repo    configurationsRepository
	catalog snapshotSource
	saved   savedPrescriptionSource
	locks   locker
	metrics *metrics.WizardMetrics
	rules   lens.PrescriptionRules
	ttl     time.Duration
	lockTTL time.Duration
	now     func() time.Time
}

// NewService builds a configurator service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("configurations repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if params.Prescriptions == nil {
		return nil, fmt.Errorf("saved prescriptions source required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock client required")
	}
	ttl := params.Wizard.ConfigTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	lockTTL := params.Wizard.LockTTL
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &service{
		logg:    params.Logger,
		repo:    params.Repo,
		catalog: params.Catalog,
		saved:   params.Prescriptions,
		locks:   params.Locks,
		metrics: params.Metrics,
		rules:   params.Rules,
		ttl:     ttl,
		lockTTL: lockTTL,
		now:     time.Now,
	}, nil
}

func (s *service) Start(ctx context.Context, customerID uuid.UUID) (*lens.Configuration, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	cfg := lens.NewConfiguration(uuid.New(), customerID, s.now().UTC(), s.ttl)
	record, err := toRecord(cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode configuration")
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create configuration")
	}
	logCtx := s.logg.WithConfigurationID(ctx, cfg.ID.String())
	s.logg.Info(logCtx, "configuration started")
	return &cfg, nil
}

func (s *service) Get(ctx context.Context, customerID, id uuid.UUID) (*lens.Configuration, error) {
	cfg, err := s.load(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *service) SetUsageType(ctx context.Context, customerID, id uuid.UUID, usage enums.LensUsageType) (*lens.Configuration, error) {
	return s.transition(ctx, customerID, id, "set_usage_type", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.SetUsageType(cfg, now, usage)
	})
}

func (s *service) SetPrescription(ctx context.Context, customerID, id uuid.UUID, input PrescriptionInput) (*lens.Configuration, error) {
	prescription, savedID, err := s.resolvePrescriptionInput(ctx, customerID, input)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, customerID, id, "set_prescription", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.SetPrescription(cfg, now, input.Source, prescription, savedID)
	})
}

func (s *service) SetMaterial(ctx context.Context, customerID, id uuid.UUID, materialID string) (*lens.Configuration, error) {
	return s.transition(ctx, customerID, id, "set_material", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.SetMaterial(cfg, now, materialID)
	})
}

func (s *service) SetTreatments(ctx context.Context, customerID, id uuid.UUID, treatmentIDs []string) (*lens.Configuration, error) {
	return s.transition(ctx, customerID, id, "set_treatments", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.SetTreatments(cfg, now, treatmentIDs)
	})
}

func (s *service) Complete(ctx context.Context, customerID, id uuid.UUID, discount decimal.Decimal) (*lens.Configuration, error) {
	cfg, err := s.transition(ctx, customerID, id, "complete", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.Complete(cfg, now, discount)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCompletion()
	return cfg, nil
}

func (s *service) Reopen(ctx context.Context, customerID, id uuid.UUID, step enums.ConfigStep) (*lens.Configuration, error) {
	return s.transition(ctx, customerID, id, "reopen", func(m lens.Machine, cfg lens.Configuration, now time.Time) (lens.Configuration, error) {
		return m.Reopen(cfg, now, step)
	})
}

// transition runs one wizard event under the per-configuration write lock:
// load, apply on a copy, persist only on success.
func (s *service) transition(ctx context.Context, customerID, id uuid.UUID, event string, apply func(lens.Machine, lens.Configuration, time.Time) (lens.Configuration, error)) (*lens.Configuration, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "configuration id is required")
	}

	start := s.now()
	key := s.locks.ConfigurationLockKey(id.String())
	token := uuid.NewString()
	acquired, err := s.locks.AcquireLock(ctx, key, token, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire configuration lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "configuration is being modified by another request")
	}
	defer func() {
		if relErr := s.locks.ReleaseLock(ctx, key, token); relErr != nil {
			s.logg.Error(ctx, "failed to release configuration lock", relErr)
		}
	}()

	cfg, err := s.load(ctx, customerID, id)
	if err != nil {
		return nil, err
	}

	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	machine := lens.Machine{Rules: s.rules, Snapshot: snap}

	next, err := apply(machine, *cfg, s.now().UTC())
	if err != nil {
		s.metrics.IncTransition(event, false)
		return nil, mapTransitionError(err)
	}

	record, err := toRecord(next)
	if err != nil {
		s.metrics.IncTransition(event, false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode configuration")
	}
	if err := s.repo.Save(ctx, record); err != nil {
		s.metrics.IncTransition(event, false)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save configuration")
	}

	s.metrics.IncTransition(event, true)
	s.metrics.ObserveTransition(event, s.now().Sub(start))

	logCtx := s.logg.WithConfigurationID(ctx, id.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"event": event,
		"step":  next.Step.String(),
	})
	s.logg.Info(logCtx, "configuration transition applied")
	return &next, nil
}

func (s *service) load(ctx context.Context, customerID, id uuid.UUID) (*lens.Configuration, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup configuration")
	}
	if record.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
	}
	cfg, err := fromRecord(record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode configuration")
	}
	return &cfg, nil
}

func (s *service) resolvePrescriptionInput(ctx context.Context, customerID uuid.UUID, input PrescriptionInput) (lens.Prescription, *uuid.UUID, error) {
	if !input.Source.IsValid() {
		return lens.Prescription{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid prescription source")
	}
	if input.Source == enums.PrescriptionSourceSaved {
		if input.SavedPrescriptionID == nil || *input.SavedPrescriptionID == uuid.Nil {
			return lens.Prescription{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "saved_prescription_id is required for saved source")
		}
		item, err := s.saved.Get(ctx, customerID, *input.SavedPrescriptionID)
		if err != nil {
			return lens.Prescription{}, nil, err
		}
		return item.Prescription, input.SavedPrescriptionID, nil
	}
	if input.Prescription == nil {
		return lens.Prescription{}, nil, pkgerrors.New(pkgerrors.CodeValidation, "prescription payload is required")
	}
	return *input.Prescription, nil, nil
}
