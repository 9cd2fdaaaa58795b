package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ermiasgashu/suq-backend/pkg/logger"
)

type cartSweeper interface {
	MarkStaleAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AbandonedCartJobParams configure the cart cleanup job.
type AbandonedCartJobParams struct {
	Logger *logger.Logger
	Carts  cartSweeper
	// StaleAge is how long an active cart may sit untouched before it is
	// flipped to abandoned. Abandoned carts are purged after twice this age.
	StaleAge time.Duration
}

const defaultCartStaleAge = 30 * 24 * time.Hour

// NewAbandonedCartJob builds the cron job that abandons and purges stale carts.
func NewAbandonedCartJob(params AbandonedCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	staleAge := params.StaleAge
	if staleAge <= 0 {
		staleAge = defaultCartStaleAge
	}
	return &abandonedCartJob{
		logg:     params.Logger,
		carts:    params.Carts,
		staleAge: staleAge,
		now:      time.Now,
	}, nil
}

type abandonedCartJob struct {
	logg     *logger.Logger
	carts    cartSweeper
	staleAge time.Duration
	now      func() time.Time
}

func (j *abandonedCartJob) Name() string { return "abandoned-carts" }

func (j *abandonedCartJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.markStale(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.purgeAbandoned(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *abandonedCartJob) markStale(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.staleAge)
	count, err := j.carts.MarkStaleAbandoned(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("mark stale carts abandoned: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "stale cart sweep complete")
	return nil
}

func (j *abandonedCartJob) purgeAbandoned(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-2 * j.staleAge)
	count, err := j.carts.DeleteAbandonedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge abandoned carts: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "abandoned cart purge complete")
	return nil
}
