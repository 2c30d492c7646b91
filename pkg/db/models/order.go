package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/enums"
)

// Order is an immutable snapshot of a cart plus a status.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:idx_orders_user_created,priority:1"`
	TotalItems    int               `gorm:"column:total_items;not null"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(14,2);not null"`
	TotalQuantity int               `gorm:"column:total_quantity;not null"`
	Currency      enums.Currency    `gorm:"column:currency;not null"`
	Cancellable   bool              `gorm:"column:cancellable;not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime;index:idx_orders_user_created,priority:2"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt     gorm.DeletedAt    `gorm:"column:deleted_at;index"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// OrderItem copies a cart line at the moment the order was placed.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Position  int       `gorm:"column:position;not null"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
