package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/internal/lens"
	"github.com/mexilux/optica-backend/pkg/db"
	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/enums"
	pkgerrors "github.com/mexilux/optica-backend/pkg/errors"
	"github.com/mexilux/optica-backend/pkg/logger"
)

type cartRepository interface {
	FindActiveByCustomer(ctx context.Context, tx *gorm.DB, customerID uuid.UUID) (*models.CartRecord, error)
	Create(ctx context.Context, tx *gorm.DB, record *models.CartRecord) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *models.CartItem) error
	FindItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (*models.CartItem, error)
	DeleteItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) error
	ListItems(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error)
	UpdateTotals(ctx context.Context, tx *gorm.DB, cartID uuid.UUID, updates map[string]any) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type configurationSource interface {
	Get(ctx context.Context, customerID, id uuid.UUID) (*lens.Configuration, error)
}

// Item is one cart line with the pricing captured at add time.
type Item struct {
	ID              uuid.UUID
	ConfigurationID uuid.UUID
	UsageType       string
	MaterialID      string
	TreatmentIDs    []string
	Pricing         lens.PricingBreakdown
	UnitPrice       decimal.Decimal
	Quantity        int
}

// Cart is the customer-facing cart view.
type Cart struct {
	ID       uuid.UUID
	Status   enums.CartStatus
	Currency enums.Currency
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Items    []Item
}

// Service exposes cart operations over completed lens configurations.
type Service interface {
	AddConfiguration(ctx context.Context, customerID, configurationID uuid.UUID) (*Cart, error)
	Get(ctx context.Context, customerID uuid.UUID) (*Cart, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*Cart, error)
}

type service struct {
	logg           *logger.Logger
	repo           cartRepository
	runner         txRunner
	configurations configurationSource
}

// NewService builds a cart service.
func NewService(logg *logger.Logger, repo cartRepository, runner txRunner, configurations configurationSource) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if configurations == nil {
		return nil, fmt.Errorf("configuration source required")
	}
	return &service{logg: logg, repo: repo, runner: runner, configurations: configurations}, nil
}

// AddConfiguration snapshots a completed configuration into the customer's
// active cart. The configuration must be complete and priced; the copy is
// immune to later catalog edits.
func (s *service) AddConfiguration(ctx context.Context, customerID, configurationID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	if configurationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "configuration id is required")
	}

	cfg, err := s.configurations.Get(ctx, customerID, configurationID)
	if err != nil {
		return nil, err
	}
	if !cfg.IsComplete || cfg.Pricing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "configuration is not complete")
	}
	if cfg.UsageType == nil || cfg.MaterialID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "completed configuration is missing selections")
	}

	pricingPayload, err := json.Marshal(cfg.Pricing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pricing snapshot")
	}

	var view *Cart
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		record, err := s.activeCart(ctx, tx, customerID, cfg.Pricing.Currency)
		if err != nil {
			return err
		}
		item := &models.CartItem{
			CartID:          record.ID,
			ConfigurationID: cfg.ID,
			UsageType:       cfg.UsageType.String(),
			MaterialID:      *cfg.MaterialID,
			TreatmentIDs:    pq.StringArray(cfg.TreatmentIDs),
			Pricing:         pricingPayload,
			UnitPrice:       cfg.Pricing.Total,
			Quantity:        1,
		}
		if err := s.repo.CreateItem(ctx, tx, item); err != nil {
			if db.IsUniqueViolation(err, "uq_cart_items_configuration") {
				return pkgerrors.New(pkgerrors.CodeConflict, "configuration is already in the cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
		built, err := s.refreshTotals(ctx, tx, record)
		if err != nil {
			return err
		}
		view = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithConfigurationID(ctx, configurationID.String())
	s.logg.Info(logCtx, "configuration added to cart")
	return view, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	record, err := s.repo.FindActiveByCustomer(ctx, nil, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a customer without a cart row simply has an empty cart
			return &Cart{
				Status:   enums.CartStatusActive,
				Currency: enums.CurrencyMXN,
				Subtotal: decimal.Zero,
				Total:    decimal.Zero,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return toCartView(record, record.Items)
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var view *Cart
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		record, err := s.repo.FindActiveByCustomer(ctx, tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		item, err := s.repo.FindItem(ctx, tx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup cart item")
		}
		if item.CartID != record.ID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		if err := s.repo.DeleteItem(ctx, tx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}
		built, err := s.refreshTotals(ctx, tx, record)
		if err != nil {
			return err
		}
		view = built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) activeCart(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, currency enums.Currency) (*models.CartRecord, error) {
	record, err := s.repo.FindActiveByCustomer(ctx, tx, customerID)
	if err == nil {
		if record.Currency != currency {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart currency does not match configuration currency")
		}
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	record = &models.CartRecord{
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Currency:   currency,
		Subtotal:   decimal.Zero,
		Total:      decimal.Zero,
	}
	if err := s.repo.Create(ctx, tx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return record, nil
}

// refreshTotals recomputes the denormalized amounts from the surviving items
// inside the same transaction that changed them.
func (s *service) refreshTotals(ctx context.Context, tx *gorm.DB, record *models.CartRecord) (*Cart, error) {
	items, err := s.repo.ListItems(ctx, tx, record.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total := subtotal
	if err := s.repo.UpdateTotals(ctx, tx, record.ID, map[string]any{
		"subtotal": subtotal,
		"total":    total,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart totals")
	}
	record.Subtotal = subtotal
	record.Total = total
	return toCartView(record, items)
}

func toCartView(record *models.CartRecord, items []models.CartItem) (*Cart, error) {
	view := &Cart{
		ID:       record.ID,
		Status:   record.Status,
		Currency: record.Currency,
		Subtotal: record.Subtotal,
		Total:    record.Total,
		Items:    make([]Item, len(items)),
	}
	for i, item := range items {
		var pricing lens.PricingBreakdown
		if len(item.Pricing) > 0 {
			if err := json.Unmarshal(item.Pricing, &pricing); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pricing snapshot")
			}
		}
		view.Items[i] = Item{
			ID:              item.ID,
			ConfigurationID: item.ConfigurationID,
			UsageType:       item.UsageType,
			MaterialID:      item.MaterialID,
			TreatmentIDs:    []string(item.TreatmentIDs),
			Pricing:         pricing,
			UnitPrice:       item.UnitPrice,
			Quantity:        item.Quantity,
		}
	}
	return view, nil
}
