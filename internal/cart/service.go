package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ermiasgashu/suq-backend/internal/catalog"
	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	pkgerrors "github.com/ermiasgashu/suq-backend/pkg/errors"
	"github.com/ermiasgashu/suq-backend/pkg/money"
	"github.com/ermiasgashu/suq-backend/pkg/pricing"
	"github.com/ermiasgashu/suq-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxCustomizationNoteLen = 500

// Service exposes cart operations for the storefront.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error)
	RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	pricing  pricing.Config
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader, cfg pricing.Config) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	return &service{repo: repo, tx: tx, products: products, pricing: cfg}, nil
}

var _ productLoader = (*catalog.Repository)(nil)

// AddItemInput captures the payload required to add a product to the cart.
type AddItemInput struct {
	ProductID         uuid.UUID
	Quantity          int
	CustomizationNote *string
}

// Get returns the customer's active cart. A customer with no cart yet sees
// an empty view rather than an error.
func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyView(s.pricing)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	return s.buildView(ctx, record)
}

// AddItem adds quantity units of the product. A line is identified by
// product plus customization note: an equivalent line absorbs the quantity
// and keeps its add-time unit price, a different customization opens a new
// line. Requests above available stock are clamped and the line carries a
// limited_stock warning.
func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*View, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CustomizationNote != nil && len(*input.CustomizationNote) > maxCustomizationNoteLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customization note is too long")
	}

	product, err := s.loadSellableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	available := availableStock(product)
	if available == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}

	note := trimNote(input.CustomizationNote)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := s.findOrCreateCart(ctx, txRepo, customerID)
		if err != nil {
			return err
		}

		existing := findLine(record, input.ProductID, note)
		requested := input.Quantity
		if existing != nil {
			requested += existing.Quantity
		}
		quantity, warnings := clampToStock(requested, available)

		if existing != nil {
			if product.PriceCents != existing.UnitPriceCents {
				warnings = append(warnings, priceChangedWarning(existing.UnitPriceCents, product.PriceCents))
			}
			existing.Quantity = quantity
			existing.Warnings = warnings
			existing.LineSubtotalCents = existing.UnitPriceCents * int64(quantity)
			if err := txRepo.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
			}
			return nil
		}

		item := &models.CartItem{
			CartID:            record.ID,
			ProductID:         product.ID,
			VendorID:          product.VendorID,
			Quantity:          quantity,
			UnitPriceCents:    product.PriceCents,
			CustomizationNote: note,
			Warnings:          warnings,
			LineSubtotalCents: product.PriceCents * int64(quantity),
		}
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(ctx, customerID)
}

// UpdateQuantity sets the line quantity for a product already in the cart.
// The snapshot unit price is kept; only the quantity and subtotal move.
func (s *service) UpdateQuantity(ctx context.Context, customerID, productID uuid.UUID, quantity int) (*View, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and product id are required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive; remove the item instead")
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	available := availableStock(product)

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindActiveByCustomer(ctx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "active cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		existing := findProductLine(record, productID)
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}

		clamped, warnings := clampToStock(quantity, available)
		if clamped == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
		}
		if product.PriceCents != existing.UnitPriceCents {
			warnings = append(warnings, priceChangedWarning(existing.UnitPriceCents, product.PriceCents))
		}

		existing.Quantity = clamped
		existing.Warnings = warnings
		existing.LineSubtotalCents = existing.UnitPriceCents * int64(clamped)
		if err := txRepo.SaveItem(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(ctx, customerID)
}

// RemoveItem drops a product from the cart. Removing an absent line is a
// no-op so retries stay safe.
func (s *service) RemoveItem(ctx context.Context, customerID, productID uuid.UUID) (*View, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id and product id are required")
	}

	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyView(s.pricing)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}

	return s.Get(ctx, customerID)
}

// Clear empties the cart without deleting the cart record itself.
func (s *service) Clear(ctx context.Context, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if err := s.repo.DeleteItems(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) loadSellableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

func (s *service) findOrCreateCart(ctx context.Context, repo Repository, customerID uuid.UUID) (*models.CartRecord, error) {
	record, err := repo.FindActiveByCustomer(ctx, customerID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	record, err = repo.Create(ctx, &models.CartRecord{CustomerID: customerID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return record, nil
}

func (s *service) buildView(ctx context.Context, record *models.CartRecord) (*View, error) {
	items := make([]ItemView, 0, len(record.Items))
	var subtotal int64
	var itemCount int

	for _, line := range record.Items {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		view := ItemView{
			ProductID:          line.ProductID,
			VendorID:           line.VendorID,
			Quantity:           line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			UnitPriceFormatted: money.FormatCents(line.UnitPriceCents),
			LineSubtotalCents:  line.LineSubtotalCents,
			CustomizationNote:  line.CustomizationNote,
			Warnings:           line.Warnings,
		}
		if product != nil {
			view.Title = product.Title
			view.SKU = product.SKU
			if product.PriceCents != line.UnitPriceCents && !view.Warnings.Has(enums.CartItemWarningPriceChanged) {
				view.Warnings = append(view.Warnings, priceChangedWarning(line.UnitPriceCents, product.PriceCents))
			}
		}

		subtotal += line.LineSubtotalCents
		itemCount += line.Quantity
		items = append(items, view)
	}

	breakdown, err := pricing.Compute(subtotal, 0, s.pricing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute cart totals")
	}
	if len(items) == 0 {
		breakdown.ShippingCents = 0
		breakdown.TotalCents = 0
	}

	return &View{
		CartID:         &record.ID,
		Items:          items,
		ItemCount:      itemCount,
		Breakdown:      breakdown,
		TotalFormatted: money.FormatCents(breakdown.TotalCents),
	}, nil
}

func availableStock(product *models.Product) int {
	if product.Inventory == nil {
		return 0
	}
	return product.Inventory.Available
}

func clampToStock(requested, available int) (int, types.CartItemWarnings) {
	if requested <= available {
		return requested, nil
	}
	return available, types.CartItemWarnings{{
		Type:    enums.CartItemWarningLimitedStock,
		Message: fmt.Sprintf("only %d in stock; quantity was reduced", available),
	}}
}

func priceChangedWarning(snapshotCents, currentCents int64) types.CartItemWarning {
	return types.CartItemWarning{
		Type: enums.CartItemWarningPriceChanged,
		Message: fmt.Sprintf("price changed from %s to %s since this item was added",
			money.FormatCents(snapshotCents), money.FormatCents(currentCents)),
	}
}

// findLine matches on the full line identity: product plus customization.
func findLine(record *models.CartRecord, productID uuid.UUID, note *string) *models.CartItem {
	for i := range record.Items {
		line := &record.Items[i]
		if line.ProductID == productID && equalNotes(line.CustomizationNote, note) {
			return line
		}
	}
	return nil
}

func findProductLine(record *models.CartRecord, productID uuid.UUID) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].ProductID == productID {
			return &record.Items[i]
		}
	}
	return nil
}

func equalNotes(a, b *string) bool {
	av, bv := "", ""
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func trimNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
