package configurator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/internal/prescriptions"
	"github.com/mexilux/optica-backend/pkg/config"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type stubConfigRepo struct {
	records map[uuid.UUID]*models.LensConfiguration
	saves   int
}

func newStubConfigRepo() *stubConfigRepo {
	return &stubConfigRepo{records: make(map[uuid.UUID]*models.LensConfiguration)}
}

func (s *stubConfigRepo) Create(ctx context.Context, record *models.LensConfiguration) error {
	s.records[record.ID] = record
	return nil
}

func (s *stubConfigRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.LensConfiguration, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *stubConfigRepo) Save(ctx context.Context, record *models.LensConfiguration) error {
	s.saves++
	s.records[record.ID] = record
	return nil
}

type stubSnapshotSource struct {
	snap lens.Snapshot
}

func (s *stubSnapshotSource) Snapshot(ctx context.Context) (lens.Snapshot, error) {
	return s.snap, nil
}

type stubSavedSource struct {
	items map[uuid.UUID]*prescriptions.Item
}

func (s *stubSavedSource) Get(ctx context.Context, customerID, id uuid.UUID) (*prescriptions.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "saved prescription not found")
	}
	return item, nil
}

type stubLocker struct {
	denied   bool
	acquires int
	releases int
}

func (s *stubLocker) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	s.acquires++
	return !s.denied, nil
}

func (s *stubLocker) ReleaseLock(ctx context.Context, key, token string) error {
	s.releases++
	return nil
}

func (s *stubLocker) ConfigurationLockKey(configurationID string) string {
	return "optica:lock:configuration:" + configurationID
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(value string) *decimal.Decimal {
	d := dec(value)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func testSnapshot() lens.Snapshot {
	materials := []lens.Material{
		{ID: "cr39", Name: "CR-39", Index: "1.50", ThinnessFactor: dec("1"), Price: dec("800"), Currency: enums.CurrencyMXN, Active: true},
	}
	treatments := []lens.Treatment{
		{ID: "ar", Name: "Anti-Reflective", Category: enums.TreatmentCoating, Price: dec("300"), Currency: enums.CurrencyMXN, Active: true},
	}
	options := []lens.UsageOption{
		{Type: enums.UsageSingleVisionDistance, RequiresPrescription: true, PriceModifier: dec("0"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageProgressive, RequiresPrescription: true, RequiresAdd: true, PriceModifier: dec("900"), Currency: enums.CurrencyMXN, Active: true},
		{Type: enums.UsageNonPrescription, RequiresPrescription: false, PriceModifier: dec("0"), Currency: enums.CurrencyMXN, Active: true},
	}
	return lens.NewSnapshot(materials, treatments, options)
}

func validPrescription() lens.Prescription {
	now := time.Now()
	return lens.Prescription{
		RightEye: lens.EyePrescription{
			Sphere:   dec("-2.50"),
			Cylinder: decPtr("-0.75"),
			Axis:     intPtr(90),
			PD:       dec("31"),
		},
		LeftEye: lens.EyePrescription{
			Sphere: dec("-2.25"),
			PD:     dec("31"),
		},
		TotalPD:        dec("62"),
		IssueDate:      now.AddDate(0, -1, 0),
		ExpirationDate: now.AddDate(1, 0, 0),
	}
}

type fixture struct {
	svc   Service
	repo  *stubConfigRepo
	locks *stubLocker
	saved *stubSavedSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubConfigRepo()
	locks := &stubLocker{}
	saved := &stubSavedSource{items: make(map[uuid.UUID]*prescriptions.Item)}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Logger:        logg,
		Repo:          repo,
		Catalog:       &stubSnapshotSource{snap: testSnapshot()},
		Prescriptions: saved,
		Locks:         locks,
		Rules:         lens.DefaultPrescriptionRules(),
		Wizard:        config.WizardConfig{ConfigTTL: time.Hour, LockTTL: time.Second},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, locks: locks, saved: saved}
}

func TestWizardFlowPersistsEachStep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	cfg, err := f.svc.Start(ctx, customerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if cfg.Step != enums.StepUsageType {
		t.Fatalf("expected usage_type step, got %s", cfg.Step)
	}

	if _, err := f.svc.SetUsageType(ctx, customerID, cfg.ID, enums.UsageSingleVisionDistance); err != nil {
		t.Fatalf("set usage type: %v", err)
	}
	if _, err := f.svc.SetPrescription(ctx, customerID, cfg.ID, PrescriptionInput{
		Source:       enums.PrescriptionSourceManual,
		Prescription: ptrPrescription(validPrescription()),
	}); err != nil {
		t.Fatalf("set prescription: %v", err)
	}
	if _, err := f.svc.SetMaterial(ctx, customerID, cfg.ID, "cr39"); err != nil {
		t.Fatalf("set material: %v", err)
	}
	if _, err := f.svc.SetTreatments(ctx, customerID, cfg.ID, []string{"ar"}); err != nil {
		t.Fatalf("set treatments: %v", err)
	}

	done, err := f.svc.Complete(ctx, customerID, cfg.ID, decimal.Zero)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.IsComplete || done.Pricing == nil {
		t.Fatal("expected completed configuration with pricing")
	}
	if !done.Pricing.Total.Equal(dec("1100")) {
		t.Fatalf("unexpected total %s", done.Pricing.Total)
	}

	stored, err := f.svc.Get(ctx, customerID, cfg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IsComplete || stored.Pricing == nil || !stored.Pricing.Total.Equal(dec("1100")) {
		t.Fatal("persisted configuration lost state")
	}
	if f.locks.acquires != f.locks.releases {
		t.Fatalf("lock leak: %d acquires %d releases", f.locks.acquires, f.locks.releases)
	}
}

func TestTransitionRejectedWhenLockHeld(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	cfg, err := f.svc.Start(ctx, customerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	f.locks.denied = true
	_, err = f.svc.SetUsageType(ctx, customerID, cfg.ID, enums.UsageSingleVisionDistance)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while locked, got %v", err)
	}
	if f.repo.saves != 0 {
		t.Fatal("no save may happen when the lock is held elsewhere")
	}
}

func TestInvalidPrescriptionMapsToValidationError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	cfg, err := f.svc.Start(ctx, customerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.SetUsageType(ctx, customerID, cfg.ID, enums.UsageSingleVisionDistance); err != nil {
		t.Fatalf("set usage type: %v", err)
	}

	bad := validPrescription()
	bad.RightEye.Sphere = dec("-2.10")
	_, err = f.svc.SetPrescription(ctx, customerID, cfg.ID, PrescriptionInput{
		Source:       enums.PrescriptionSourceManual,
		Prescription: &bad,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := typed.Details().([]lens.FieldError)
	if !ok || len(fields) == 0 {
		t.Fatalf("expected field details, got %v", typed.Details())
	}

	stored, err := f.svc.Get(ctx, customerID, cfg.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Step != enums.StepPrescription || stored.Prescription != nil {
		t.Fatal("failed transition must leave the stored configuration untouched")
	}
}

func TestSetPrescriptionFromSavedSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	savedID := uuid.New()
	f.saved.items[savedID] = &prescriptions.Item{
		ID:           savedID,
		Label:        "everyday",
		Prescription: validPrescription(),
	}

	cfg, err := f.svc.Start(ctx, customerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.SetUsageType(ctx, customerID, cfg.ID, enums.UsageSingleVisionDistance); err != nil {
		t.Fatalf("set usage type: %v", err)
	}

	next, err := f.svc.SetPrescription(ctx, customerID, cfg.ID, PrescriptionInput{
		Source:              enums.PrescriptionSourceSaved,
		SavedPrescriptionID: &savedID,
	})
	if err != nil {
		t.Fatalf("set prescription from saved: %v", err)
	}
	if next.SavedPrescriptionID == nil || *next.SavedPrescriptionID != savedID {
		t.Fatal("saved prescription id must be recorded")
	}
	if next.Prescription == nil {
		t.Fatal("prescription payload missing")
	}
}

func TestForeignCustomerReadsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cfg, err := f.svc.Start(ctx, uuid.New())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = f.svc.Get(ctx, uuid.New(), cfg.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign customer, got %v", err)
	}
}

func TestStaleStepMapsToStateConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	cfg, err := f.svc.Start(ctx, customerID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err = f.svc.SetMaterial(ctx, customerID, cfg.ID, "cr39")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for skipped steps, got %v", err)
	}
}

func ptrPrescription(p lens.Prescription) *lens.Prescription {
	return &p
}
