package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type stubCartRepo struct {
	carts map[uuid.UUID]*models.CartRecord
	items map[uuid.UUID]*models.CartItem

	itemErr error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{
		carts: make(map[uuid.UUID]*models.CartRecord),
		items: make(map[uuid.UUID]*models.CartItem),
	}
}

func (s *stubCartRepo) FindActiveByCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error) {
	for _, record := range s.carts {
		if record.CustomerID == customerID && record.Status == enums.CartStatusActive {
			clone := *record
			clone.Items = nil
			for _, item := range s.items {
				if item.CartID == record.ID {
					clone.Items = append(clone.Items, *item)
				}
			}
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCartRepo) Create(ctx context.Context, tx *gorm.DB, record *models.CartRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	s.carts[record.ID] = record
	return nil
}

func (s *stubCartRepo) CreateItem(ctx context.Context, tx *gorm.DB, item *models.CartItem) error {
	if s.itemErr != nil {
		return s.itemErr
	}
	for _, existing := range s.items {
		if existing.ConfigurationID == item.ConfigurationID {
			return errors.New(`duplicate key value violates unique constraint "uq_cart_items_configuration"`)
		}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	s.items[item.ID] = item
	return nil
}

func (s *stubCartRepo) FindItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*models.CartItem, error) {
	item, ok := s.items[itemID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) ListItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range s.items {
		if item.CartID == cartID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *stubCartRepo) UpdateTotals(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, updates map[string]any) error {
	record, ok := s.carts[cartID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["subtotal"].(decimal.Decimal); ok {
		record.Subtotal = v
	}
	if v, ok := updates["total"].(decimal.Decimal); ok {
		record.Total = v
	}
	return nil
}

type passthroughRunner struct{}

func (passthroughRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubConfigSource struct {
	configs map[uuid.UUID]*lens.Configuration
}

func (s *stubConfigSource) Get(ctx context.Context, customerID, id uuid.UUID) (*lens.Configuration, error) {
	cfg, ok := s.configs[id]
	if !ok || cfg.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "configuration not found")
	}
	return cfg, nil
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func completedConfiguration(customerID uuid.UUID, total string) *lens.Configuration {
	usage := enums.UsageSingleVisionDistance
	material := "cr39"
	pricing := lens.PricingBreakdown{
		MaterialPrice:   dec(total),
		Subtotal:        dec(total),
		Discount:        decimal.Zero,
		Total:           dec(total),
		Currency:        enums.CurrencyMXN,
		UsageTypePrice:  decimal.Zero,
		TreatmentsPrice: decimal.Zero,
	}
	return &lens.Configuration{
		ID:           uuid.New(),
		CustomerID:   customerID,
		Step:         enums.StepComplete,
		UsageType:    &usage,
		MaterialID:   &material,
		TreatmentIDs: []string{"ar"},
		Pricing:      &pricing,
		IsComplete:   true,
	}
}

func newCartFixture(t *testing.T) (Service, *stubCartRepo, *stubConfigSource) {
	t.Helper()
	repo := newStubCartRepo()
	source := &stubConfigSource{configs: make(map[uuid.UUID]*lens.Configuration)}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(logg, repo, passthroughRunner{}, source)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, source
}

func TestAddConfigurationCreatesCartAndSnapshotsPricing(t *testing.T) {
	t.Parallel()

	svc, repo, source := newCartFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	cfg := completedConfiguration(customerID, "1100")
	source.configs[cfg.ID] = cfg

	view, err := svc.AddConfiguration(ctx, customerID, cfg.ID)
	if err != nil {
		t.Fatalf("add configuration: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	if !view.Subtotal.Equal(dec("1100")) || !view.Total.Equal(dec("1100")) {
		t.Fatalf("unexpected totals subtotal=%s total=%s", view.Subtotal, view.Total)
	}
	if view.Currency != enums.CurrencyMXN {
		t.Fatalf("unexpected currency %s", view.Currency)
	}

	var storedPricing lens.PricingBreakdown
	for _, item := range repo.items {
		if err := json.Unmarshal(item.Pricing, &storedPricing); err != nil {
			t.Fatalf("stored pricing invalid: %v", err)
		}
	}
	if !storedPricing.Total.Equal(dec("1100")) {
		t.Fatalf("pricing snapshot not captured: %s", storedPricing.Total)
	}

	// later catalog/config changes do not touch the stored copy
	cfg.Pricing.Total = dec("9999")
	fresh, err := svc.Get(ctx, customerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !fresh.Items[0].UnitPrice.Equal(dec("1100")) {
		t.Fatalf("cart item price drifted: %s", fresh.Items[0].UnitPrice)
	}
}

func TestAddConfigurationRejectsIncomplete(t *testing.T) {
	t.Parallel()

	svc, _, source := newCartFixture(t)
	customerID := uuid.New()
	cfg := completedConfiguration(customerID, "800")
	cfg.IsComplete = false
	source.configs[cfg.ID] = cfg

	_, err := svc.AddConfiguration(context.Background(), customerID, cfg.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAddConfigurationTwiceConflicts(t *testing.T) {
	t.Parallel()

	svc, _, source := newCartFixture(t)
	ctx := context.Background()
	customerID := uuid.New()
	cfg := completedConfiguration(customerID, "800")
	source.configs[cfg.ID] = cfg

	if _, err := svc.AddConfiguration(ctx, customerID, cfg.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.AddConfiguration(ctx, customerID, cfg.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate add, got %v", err)
	}
}

func TestRemoveItemRecomputesTotals(t *testing.T) {
	t.Parallel()

	svc, _, source := newCartFixture(t)
	ctx := context.Background()
	customerID := uuid.New()

	first := completedConfiguration(customerID, "800")
	second := completedConfiguration(customerID, "1500")
	source.configs[first.ID] = first
	source.configs[second.ID] = second

	if _, err := svc.AddConfiguration(ctx, customerID, first.ID); err != nil {
		t.Fatalf("add first: %v", err)
	}
	view, err := svc.AddConfiguration(ctx, customerID, second.ID)
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if !view.Total.Equal(dec("2300")) {
		t.Fatalf("expected total 2300, got %s", view.Total)
	}

	var removeID uuid.UUID
	for _, item := range view.Items {
		if item.ConfigurationID == first.ID {
			removeID = item.ID
		}
	}
	after, err := svc.RemoveItem(ctx, customerID, removeID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(after.Items) != 1 || !after.Total.Equal(dec("1500")) {
		t.Fatalf("totals not recomputed: items=%d total=%s", len(after.Items), after.Total)
	}
}

func TestRemoveItemFromForeignCartIsNotFound(t *testing.T) {
	t.Parallel()

	svc, _, source := newCartFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	cfg := completedConfiguration(owner, "800")
	source.configs[cfg.ID] = cfg

	view, err := svc.AddConfiguration(ctx, owner, cfg.ID)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = svc.RemoveItem(ctx, uuid.New(), view.Items[0].ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetReturnsEmptyCartWithoutRow(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCartFixture(t)
	view, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 0 || !view.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", view)
	}
}
