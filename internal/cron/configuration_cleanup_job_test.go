package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mexilux/optica-backend/pkg/logger"
)

type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeConfigurationsRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeConfigurationsRepo) DeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.deleted, f.err
}

func TestConfigurationCleanupDeletesBeforeGraceCutoff(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &fakeConfigurationsRepo{deleted: 4}
	job, err := NewConfigurationCleanupJob(ConfigurationCleanupJobParams{
		Logger:     logg,
		DB:         &fakeTxRunner{},
		Repository: repo,
		Grace:      2 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	job.(*configurationCleanupJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixed.Add(-2 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestConfigurationCleanupPropagatesFailure(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	job, err := NewConfigurationCleanupJob(ConfigurationCleanupJobParams{
		Logger:     logg,
		DB:         &fakeTxRunner{},
		Repository: &fakeConfigurationsRepo{err: errors.New("query by fire")},
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error from repository failure")
	}
}

func TestConfigurationCleanupRequiresDependencies(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewConfigurationCleanupJob(ConfigurationCleanupJobParams{Logger: logg}); err == nil {
		t.Fatal("expected error for missing db runner")
	}
}
