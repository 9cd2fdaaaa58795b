package cart

import (
	"context"
	"time"

	"github.com/ermiasgashu/suq-backend/internal/repo"
	"github.com/ermiasgashu/suq-backend/pkg/db/models"
	"github.com/ermiasgashu/suq-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// FindActiveByCustomer loads the customer's active cart with its items.
func (r *repository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("customer_id = ? AND status = ?", customerID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDAndCustomer returns a cart restricted to the provided customer.
func (r *repository) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.DB(ctx).
		Preload("Items").
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart.
func (r *repository) Create(ctx context.Context, record *models.CartRecord) (*models.CartRecord, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	if record.Currency == "" {
		record.Currency = enums.CurrencyETB
	}
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// SaveItem inserts a new line or updates an existing one by primary key.
// The merge decision lives in the service; a unique index on the line
// identity (cart, product, customization) backstops concurrent inserts.
func (r *repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.DB(ctx).Save(item).Error
}

// DeleteItem removes one line. No error when the line is already gone.
func (r *repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.DB(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// DeleteItems empties the cart.
func (r *repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.DB(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// MarkConverted flips the cart to converted and stamps the conversion time.
// The conditional WHERE makes it a compare-and-set: the returned row count
// is 0 when another transaction converted the cart first.
func (r *repository) MarkConverted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("id = ? AND status = ?", id, enums.CartStatusActive).
		Updates(map[string]any{
			"status":       enums.CartStatusConverted,
			"converted_at": at,
		})
	return res.RowsAffected, res.Error
}

// DeleteAbandonedBefore removes abandoned carts last touched before the cutoff.
func (r *repository) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Where("status = ? AND updated_at < ?", enums.CartStatusAbandoned, cutoff).
		Delete(&models.CartRecord{})
	return res.RowsAffected, res.Error
}

// MarkStaleAbandoned flips active carts untouched since the cutoff to abandoned.
func (r *repository) MarkStaleAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.DB(ctx).
		Model(&models.CartRecord{}).
		Where("status = ? AND updated_at < ?", enums.CartStatusActive, cutoff).
		Update("status", enums.CartStatusAbandoned)
	return res.RowsAffected, res.Error
}
