package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/logger"
)

const defaultConfigurationGrace = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type expiredConfigurationsRepo interface {
	DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

// ConfigurationCleanupJobParams configure the expired configuration purge.
type ConfigurationCleanupJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository expiredConfigurationsRepo
	// Grace keeps a configuration around past its expiry so a customer
	// returning right at the boundary still sees a useful error.
	Grace time.Duration
}

// NewConfigurationCleanupJob builds the cron job that purges incomplete
// configurations whose expiry passed. Completed configurations are kept:
// they may be referenced from carts.
func NewConfigurationCleanupJob(params ConfigurationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("configurations repository required")
	}
	grace := params.Grace
	if grace <= 0 {
		grace = defaultConfigurationGrace
	}
	return &configurationCleanupJob{
		logg:  params.Logger,
		db:    params.DB,
		repo:  params.Repository,
		grace: grace,
		now:   time.Now,
	}, nil
}

type configurationCleanupJob struct {
	logg  *logger.Logger
	db    txRunner
	repo  expiredConfigurationsRepo
	grace time.Duration
	now   func() time.Time
}

func (j *configurationCleanupJob) Name() string { return "configuration-cleanup" }

func (j *configurationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteExpiredBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("configuration cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "configuration cleanup complete")
	return nil
}
