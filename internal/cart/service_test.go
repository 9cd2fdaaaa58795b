package cart

import (
	"context"
	"testing"
	"time"

	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func testPricing() pricing.Config {
	return pricing.Config{
		FreeShippingThresholdCents: 200000,
		FlatShippingCostCents:      10000,
		TaxRate:                    decimal.RequireFromString("0.15"),
		CommissionRate:             decimal.RequireFromString("0.10"),
	}
}

func testProduct(priceCents int64, available int) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		VendorID:   uuid.New(),
		SKU:        "SKU-1",
		Title:      "Handwoven Basket",
		PriceCents: priceCents,
		IsActive:   true,
		Inventory:  &models.InventoryItem{Available: available},
	}
}

func newTestService(t *testing.T, repo Repository, products productLoader) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, products, testPricing())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestGetReturnsEmptyViewWithoutCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubRepo(), stubProducts{})

	view, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}
	if view.Breakdown.TotalCents != 0 {
		t.Fatalf("expected zero total, got %d", view.Breakdown.TotalCents)
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 10)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(view.Items))
	}
	item := view.Items[0]
	if item.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", item.Quantity)
	}
	if item.LineSubtotalCents != 250000 {
		t.Fatalf("expected line subtotal 250000, got %d", item.LineSubtotalCents)
	}
	// 2,500.00 subtotal crosses the free shipping threshold.
	if view.Breakdown.ShippingCents != 0 {
		t.Fatalf("expected free shipping, got %d", view.Breakdown.ShippingCents)
	}
	if view.Breakdown.TotalCents != 287500 {
		t.Fatalf("expected total 287500, got %d", view.Breakdown.TotalCents)
	}
}

func TestAddItemKeepsSeparateLinesPerCustomization(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 10)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	red := "engrave: RED"
	blue := "engrave: BLUE"
	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 2, CustomizationNote: &red}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 1, CustomizationNote: &blue})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Items) != 2 {
		t.Fatalf("expected one line per customization, got %d lines", len(view.Items))
	}
	byNote := make(map[string]ItemView, 2)
	for _, item := range view.Items {
		if item.CustomizationNote == nil {
			t.Fatalf("expected customization note on line, got nil")
		}
		byNote[*item.CustomizationNote] = item
	}
	if byNote[red].Quantity != 2 {
		t.Fatalf("expected quantity 2 on %q line, got %d", red, byNote[red].Quantity)
	}
	if byNote[blue].Quantity != 1 {
		t.Fatalf("expected quantity 1 on %q line, got %d", blue, byNote[blue].Quantity)
	}
}

func TestAddItemMergeKeepsSnapshotPrice(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 10)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Vendor reprices between the two adds.
	product.PriceCents = 60000

	view, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(view.Items))
	}
	item := view.Items[0]
	if item.UnitPriceCents != 50000 {
		t.Fatalf("expected add-time unit price kept on merge, got %d", item.UnitPriceCents)
	}
	if item.LineSubtotalCents != 100000 {
		t.Fatalf("expected subtotal from snapshot price, got %d", item.LineSubtotalCents)
	}
	if !item.Warnings.Has(enums.CartItemWarningPriceChanged) {
		t.Fatalf("expected price_changed warning, got %+v", item.Warnings)
	}
}

func TestViewItemCountSumsQuantities(t *testing.T) {
	t.Parallel()

	first := testProduct(50000, 10)
	second := testProduct(20000, 10)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{first.ID: first, second.ID: second})
	customerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: first.ID, Quantity: 2}); err != nil {
		t.Fatalf("add first: %v", err)
	}
	view, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: second.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add second: %v", err)
	}

	if len(view.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(view.Items))
	}
	if view.ItemCount != 5 {
		t.Fatalf("expected item count 5 across lines, got %d", view.ItemCount)
	}

	empty, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if empty.ItemCount != 0 {
		t.Fatalf("expected zero item count on empty cart, got %d", empty.ItemCount)
	}
}

func TestAddItemClampsToStockWithWarning(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 3)
	svc := newTestService(t, newStubRepo(), stubProducts{product.ID: product})

	view, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := view.Items[0]
	if item.Quantity != 3 {
		t.Fatalf("expected clamped quantity 3, got %d", item.Quantity)
	}
	if !item.Warnings.Has(enums.CartItemWarningLimitedStock) {
		t.Fatalf("expected limited_stock warning, got %+v", item.Warnings)
	}
}

func TestAddItemOutOfStock(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 0)
	svc := newTestService(t, newStubRepo(), stubProducts{product.ID: product})

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for out of stock, got %v", err)
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 5)
	svc := newTestService(t, newStubRepo(), stubProducts{product.ID: product})

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 0})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	_, err = svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: uuid.New(), Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 5)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	// Seed a cart without the target product.
	other := testProduct(10000, 5)
	repoWithOther := stubProducts{product.ID: product, other.ID: other}
	svc = newTestService(t, repo, repoWithOther)
	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: other.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	_, err := svc.UpdateQuantity(context.Background(), customerID, product.ID, 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing line, got %v", err)
	}
}

func TestUpdateQuantityFlagsPriceChange(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 10)
	repo := newStubRepo()
	products := stubProducts{product.ID: product}
	svc := newTestService(t, repo, products)
	customerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	// Vendor reprices after the snapshot was taken.
	product.PriceCents = 60000

	view, err := svc.UpdateQuantity(context.Background(), customerID, product.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item := view.Items[0]
	if item.UnitPriceCents != 50000 {
		t.Fatalf("expected snapshot price kept, got %d", item.UnitPriceCents)
	}
	if item.LineSubtotalCents != 100000 {
		t.Fatalf("expected subtotal from snapshot price, got %d", item.LineSubtotalCents)
	}
	if !item.Warnings.Has(enums.CartItemWarningPriceChanged) {
		t.Fatalf("expected price_changed warning, got %+v", item.Warnings)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 5)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	// No cart at all: removal still succeeds.
	if _, err := svc.RemoveItem(context.Background(), customerID, product.ID); err != nil {
		t.Fatalf("remove without cart: %v", err)
	}

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if _, err := svc.RemoveItem(context.Background(), customerID, product.ID); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	view, err := svc.RemoveItem(context.Background(), customerID, product.ID)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(view.Items))
	}
}

func TestClearEmptiesCart(t *testing.T) {
	t.Parallel()

	product := testProduct(50000, 5)
	repo := newStubRepo()
	svc := newTestService(t, repo, stubProducts{product.ID: product})
	customerID := uuid.New()

	if _, err := svc.AddItem(context.Background(), customerID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	if err := svc.Clear(context.Background(), customerID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	view, err := svc.Get(context.Background(), customerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected cleared cart, got %d items", len(view.Items))
	}
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts map[uuid.UUID]*models.Product

func (s stubProducts) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubRepo struct {
	carts map[uuid.UUID]*models.CartRecord
}

func newStubRepo() *stubRepo {
	return &stubRepo{carts: make(map[uuid.UUID]*models.CartRecord)}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	for _, record := range s.carts {
		if record.CustomerID == customerID && record.Status == enums.CartStatusActive {
			return record, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.CartRecord, error) {
	if record, ok := s.carts[id]; ok && record.CustomerID == customerID {
		return record, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	record.ID = uuid.New()
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	s.carts[record.ID] = record
	return record, nil
}

func (s *stubRepo) SaveItem(ctx context.Context, item *models.CartItem) error {
	record := s.carts[item.CartID]
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
		record.Items = append(record.Items, *item)
		return nil
	}
	for i := range record.Items {
		if record.Items[i].ID == item.ID {
			record.Items[i] = *item
			return nil
		}
	}
	record.Items = append(record.Items, *item)
	return nil
}

func (s *stubRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	record, ok := s.carts[cartID]
	if !ok {
		return nil
	}
	kept := record.Items[:0]
	for _, item := range record.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	record.Items = kept
	return nil
}

func (s *stubRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	if record, ok := s.carts[cartID]; ok {
		record.Items = nil
	}
	return nil
}

func (s *stubRepo) MarkConverted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	record, ok := s.carts[id]
	if !ok || record.Status != enums.CartStatusActive {
		return 0, nil
	}
	record.Status = enums.CartStatusConverted
	record.ConvertedAt = &at
	return 1, nil
}

func (s *stubRepo) MarkStaleAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *stubRepo) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
