package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ermiasgashu/suq-backend/pkg/enums"
)

// CartRecord is the customer-scoped cart aggregate. A customer has at most
// one active cart; it flips to converted when checkout confirms.
type CartRecord struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID        `gorm:"column:customer_id;type:uuid;not null"`
	Status      enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Currency    enums.Currency   `gorm:"column:currency;not null;default:'ETB'"`
	ConvertedAt *time.Time       `gorm:"column:converted_at"`
	Items       []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
