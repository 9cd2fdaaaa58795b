package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Inventory adapts the repository for transaction-scoped stock mutations
// driven by other domains.
type Inventory struct {
	repo *Repository
}

// NewInventory wraps the repository.
func NewInventory(repo *Repository) *Inventory {
	return &Inventory{repo: repo}
}

// Decrement takes qty units inside the caller's transaction. It reports
// false when the stock was insufficient.
func (i *Inventory) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error) {
	return i.repo.WithTx(tx).DecrementStock(ctx, productID, qty)
}

// Restore puts qty units back inside the caller's transaction.
func (i *Inventory) Restore(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	return i.repo.WithTx(tx).RestoreStock(ctx, productID, qty)
}
