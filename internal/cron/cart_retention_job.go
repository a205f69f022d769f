package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/db/models"
	"github.com/mexilux/optica-backend/pkg/logger"
)

const defaultCartRetention = 30 * 24 * time.Hour

type convertedCartsRepo interface {
	ListConvertedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.CartRecord, error)
	DeleteCart(ctx context.Context, tx *gorm.DB, cartID uuid.UUID) error
}

// CartRetentionJobParams configure the converted cart purge.
type CartRetentionJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository convertedCartsRepo
	// Retention keeps converted carts available for support lookups
	// before they are purged.
	Retention time.Duration
}

// NewCartRetentionJob builds the cron job that purges converted carts past
// the retention window. Each cart is removed in its own transaction so a
// single bad row does not stall the sweep.
func NewCartRetentionJob(params CartRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("carts repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultCartRetention
	}
	return &cartRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type cartRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      convertedCartsRepo
	retention time.Duration
	now       func() time.Time
}

func (j *cartRetentionJob) Name() string { return "cart-retention" }

func (j *cartRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	carts, err := j.repo.ListConvertedBefore(ctx, nil, cutoff)
	if err != nil {
		return fmt.Errorf("query converted carts: %w", err)
	}
	var errs []error
	deleted := 0
	for _, cart := range carts {
		cartID := cart.ID
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.repo.DeleteCart(ctx, tx, cartID)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("purge cart %s: %w", cartID, err))
			continue
		}
		deleted++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":        cutoff,
		"carts_found":   len(carts),
		"carts_deleted": deleted,
	})
	j.logg.Info(logCtx, "cart retention sweep complete")
	return multierr.Combine(errs...)
}
