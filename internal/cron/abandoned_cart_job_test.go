package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/logger"
)

type fakeCartSweeper struct {
	markCutoff   time.Time
	purgeCutoff  time.Time
	markErr      error
	purgeErr     error
	markedCount  int64
	deletedCount int64
}

func (f *fakeCartSweeper) MarkStaleAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	f.markCutoff = cutoff
	return f.markedCount, f.markErr
}

func (f *fakeCartSweeper) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.purgeCutoff = cutoff
	return f.deletedCount, f.purgeErr
}

func TestAbandonedCartJobCutoffs(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	sweeper := &fakeCartSweeper{markedCount: 4, deletedCount: 2}

	job, err := NewAbandonedCartJob(AbandonedCartJobParams{
		Logger:   logg,
		Carts:    sweeper,
		StaleAge: 720 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	job.(*abandonedCartJob).now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := sweeper.markCutoff; !got.Equal(now.Add(-720 * time.Hour)) {
		t.Fatalf("unexpected stale cutoff %v", got)
	}
	if got := sweeper.purgeCutoff; !got.Equal(now.Add(-1440 * time.Hour)) {
		t.Fatalf("unexpected purge cutoff %v", got)
	}
}

func TestAbandonedCartJobCombinesErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	sweeper := &fakeCartSweeper{
		markErr:  errors.New("mark failed"),
		purgeErr: errors.New("purge failed"),
	}

	job, err := NewAbandonedCartJob(AbandonedCartJobParams{Logger: logg, Carts: sweeper})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected combined error")
	}
	// Both sweeps still ran despite the first failing.
	if sweeper.purgeCutoff.IsZero() {
		t.Fatal("expected purge to run after mark failure")
	}
}
