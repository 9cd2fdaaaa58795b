package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ordersLister interface {
	ListDeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
}

// Period is the [From, To) reporting window.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) validate() error {
	if p.From.IsZero() || p.To.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "reporting period is required")
	}
	if !p.To.After(p.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "reporting period end must be after its start")
	}
	return nil
}

// Bucket is one grouped slice of the summary.
type Bucket struct {
	OrderCount      int   `json:"order_count"`
	RevenueCents    int64 `json:"revenue_cents"`
	CommissionCents int64 `json:"commission_cents"`
}

// Summary aggregates delivered orders in a period. Commission is taken on
// whole-order totals; the per-vendor buckets attribute revenue by line
// subtotals so a multi-vendor order is split rather than counted twice.
type Summary struct {
	Period               Period               `json:"period"`
	OrderCount           int                  `json:"order_count"`
	TotalRevenueCents    int64                `json:"total_revenue_cents"`
	TotalCommissionCents int64                `json:"total_commission_cents"`
	PerRegion            map[string]Bucket    `json:"per_region"`
	PerVendor            map[uuid.UUID]Bucket `json:"per_vendor"`
}

// Service produces the commission summaries behind the admin and vendor
// reporting endpoints.
type Service interface {
	Aggregate(ctx context.Context, period Period) (*Summary, error)
	AggregateForVendor(ctx context.Context, vendorID uuid.UUID, period Period) (*Summary, error)
}

type service struct {
	orders ordersLister
	rate   decimal.Decimal
}

// NewService builds the reporting service with the platform commission rate.
func NewService(orders ordersLister, rate decimal.Decimal) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if rate.IsNegative() {
		return nil, fmt.Errorf("commission rate must not be negative")
	}
	return &service{orders: orders, rate: rate}, nil
}

// Aggregate folds all delivered orders in the period. An empty period yields
// an all-zero summary, not an error.
func (s *service) Aggregate(ctx context.Context, period Period) (*Summary, error) {
	if err := period.validate(); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListDeliveredBetween(ctx, period.From, period.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivered orders")
	}

	summary := newSummary(period)
	for i := range orders {
		s.fold(summary, &orders[i])
	}
	return summary, nil
}

// AggregateForVendor restricts the fold to orders carrying the vendor's line
// items, with revenue attributed from those lines only.
func (s *service) AggregateForVendor(ctx context.Context, vendorID uuid.UUID, period Period) (*Summary, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id is required")
	}
	if err := period.validate(); err != nil {
		return nil, err
	}

	orders, err := s.orders.ListDeliveredBetween(ctx, period.From, period.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivered orders")
	}

	summary := newSummary(period)
	for i := range orders {
		order := &orders[i]
		vendorRevenue := int64(0)
		for _, line := range order.Items {
			if line.VendorID == vendorID {
				vendorRevenue += line.LineSubtotalCents
			}
		}
		if vendorRevenue == 0 {
			continue
		}

		commission := pricing.CommissionCents(vendorRevenue, s.rate)
		summary.OrderCount++
		summary.TotalRevenueCents += vendorRevenue
		summary.TotalCommissionCents += commission
		addBucket(summary.PerRegion, order.ShippingAddress.Region, vendorRevenue, commission)
		addVendorBucket(summary.PerVendor, vendorID, vendorRevenue, commission)
	}
	return summary, nil
}

func newSummary(period Period) *Summary {
	return &Summary{
		Period:    period,
		PerRegion: map[string]Bucket{},
		PerVendor: map[uuid.UUID]Bucket{},
	}
}

func (s *service) fold(summary *Summary, order *models.Order) {
	commission := pricing.CommissionCents(order.TotalCents, s.rate)
	summary.OrderCount++
	summary.TotalRevenueCents += order.TotalCents
	summary.TotalCommissionCents += commission
	addBucket(summary.PerRegion, order.ShippingAddress.Region, order.TotalCents, commission)

	// Per-vendor attribution splits the order by its line subtotals so a
	// multi-vendor order is never counted whole against each vendor.
	for _, line := range order.Items {
		lineCommission := pricing.CommissionCents(line.LineSubtotalCents, s.rate)
		addVendorBucket(summary.PerVendor, line.VendorID, line.LineSubtotalCents, lineCommission)
	}
}

func addBucket(buckets map[string]Bucket, key string, revenue, commission int64) {
	bucket := buckets[key]
	bucket.OrderCount++
	bucket.RevenueCents += revenue
	bucket.CommissionCents += commission
	buckets[key] = bucket
}

func addVendorBucket(buckets map[uuid.UUID]Bucket, key uuid.UUID, revenue, commission int64) {
	bucket := buckets[key]
	bucket.OrderCount++
	bucket.RevenueCents += revenue
	bucket.CommissionCents += commission
	buckets[key] = bucket
}
