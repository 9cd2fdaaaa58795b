package catalog

import (
	"context"

	"github.com/ermiasgashu/suq-backend/internal/repo"
	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes read access to the product catalog plus the stock
// mutations order placement depends on.
type Repository struct {
	repo.Base
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

// GetProduct loads a product with its inventory and vendor.
func (r *Repository) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Inventory").
		Preload("Vendor").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock atomically takes qty units from the product's inventory.
// The conditional WHERE clause makes concurrent placements race safely: the
// loser sees zero rows affected and must treat the stock as gone.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}
	res := r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ? AND available >= ?", productID, qty).
		UpdateColumn("available", gorm.Expr("available - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RestoreStock returns qty units to the product's inventory.
func (r *Repository) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	return r.DB(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		UpdateColumn("available", gorm.Expr("available + ?", qty)).Error
}
