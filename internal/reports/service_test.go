package reports

import (
	"context"
	"testing"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubLister struct {
	orders []models.Order
}

func (s *stubLister) ListDeliveredBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	return s.orders, nil
}

func testPeriod() Period {
	return Period{
		From: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func deliveredOrder(region string, totalCents int64, lines ...models.OrderLineItem) models.Order {
	return models.Order{
		ID:              uuid.New(),
		OrderStatus:     "delivered",
		TotalCents:      totalCents,
		ShippingAddress: types.Address{Street: "Bole Road", City: "Addis Ababa", Region: region, Country: types.DefaultCountry},
		Items:           lines,
	}
}

func TestAggregateEmptyPeriod(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubLister{}, decimal.RequireFromString("0.10"))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	summary, err := svc.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if summary.OrderCount != 0 || summary.TotalRevenueCents != 0 || summary.TotalCommissionCents != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if len(summary.PerRegion) != 0 || len(summary.PerVendor) != 0 {
		t.Fatalf("expected empty buckets, got %+v", summary)
	}
}

func TestAggregateSumsWholeOrderCommission(t *testing.T) {
	t.Parallel()

	vendorA := uuid.New()
	vendorB := uuid.New()
	lister := &stubLister{orders: []models.Order{
		deliveredOrder("Addis Ababa", 182500,
			models.OrderLineItem{VendorID: vendorA, LineSubtotalCents: 100000},
			models.OrderLineItem{VendorID: vendorB, LineSubtotalCents: 50000},
		),
		deliveredOrder("Oromia", 60000,
			models.OrderLineItem{VendorID: vendorA, LineSubtotalCents: 50000},
		),
	}}

	svc, err := NewService(lister, decimal.RequireFromString("0.10"))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	summary, err := svc.Aggregate(context.Background(), testPeriod())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if summary.OrderCount != 2 {
		t.Fatalf("expected 2 orders, got %d", summary.OrderCount)
	}
	if summary.TotalRevenueCents != 242500 {
		t.Fatalf("expected revenue 242500, got %d", summary.TotalRevenueCents)
	}
	// 10% of each whole-order total: 18250 + 6000.
	if summary.TotalCommissionCents != 24250 {
		t.Fatalf("expected commission 24250, got %d", summary.TotalCommissionCents)
	}

	addis := summary.PerRegion["Addis Ababa"]
	if addis.OrderCount != 1 || addis.RevenueCents != 182500 || addis.CommissionCents != 18250 {
		t.Fatalf("unexpected Addis Ababa bucket %+v", addis)
	}
	oromia := summary.PerRegion["Oromia"]
	if oromia.OrderCount != 1 || oromia.RevenueCents != 60000 {
		t.Fatalf("unexpected Oromia bucket %+v", oromia)
	}

	// Vendor buckets split the multi-vendor order by its line subtotals.
	bucketA := summary.PerVendor[vendorA]
	if bucketA.OrderCount != 2 || bucketA.RevenueCents != 150000 || bucketA.CommissionCents != 15000 {
		t.Fatalf("unexpected vendor A bucket %+v", bucketA)
	}
	bucketB := summary.PerVendor[vendorB]
	if bucketB.OrderCount != 1 || bucketB.RevenueCents != 50000 || bucketB.CommissionCents != 5000 {
		t.Fatalf("unexpected vendor B bucket %+v", bucketB)
	}
}

func TestAggregateForVendorRestrictsToOwnLines(t *testing.T) {
	t.Parallel()

	vendorA := uuid.New()
	vendorB := uuid.New()
	lister := &stubLister{orders: []models.Order{
		deliveredOrder("Addis Ababa", 182500,
			models.OrderLineItem{VendorID: vendorA, LineSubtotalCents: 100000},
			models.OrderLineItem{VendorID: vendorB, LineSubtotalCents: 50000},
		),
		deliveredOrder("Oromia", 60000,
			models.OrderLineItem{VendorID: vendorB, LineSubtotalCents: 50000},
		),
	}}

	svc, err := NewService(lister, decimal.RequireFromString("0.10"))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	summary, err := svc.AggregateForVendor(context.Background(), vendorA, testPeriod())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	if summary.OrderCount != 1 {
		t.Fatalf("expected 1 order with vendor A lines, got %d", summary.OrderCount)
	}
	if summary.TotalRevenueCents != 100000 || summary.TotalCommissionCents != 10000 {
		t.Fatalf("unexpected vendor totals %+v", summary)
	}
	if len(summary.PerVendor) != 1 {
		t.Fatalf("expected a single vendor bucket, got %+v", summary.PerVendor)
	}
	if _, ok := summary.PerVendor[vendorB]; ok {
		t.Fatal("foreign vendor must not appear in a vendor-scoped summary")
	}
}

func TestAggregateRejectsInvalidPeriod(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubLister{}, decimal.RequireFromString("0.10"))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	period := testPeriod()
	period.To = period.From
	_, err = svc.Aggregate(context.Background(), period)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
