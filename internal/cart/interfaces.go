package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
)

// CartRepository defines the persistence surface required by the cart and order services.
// Every find returns the cart with its items ordered by position.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserID(ctx context.Context, userID uuid.UUID, forUpdate bool) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Cart, error)
	EnsureForUser(ctx context.Context, userID uuid.UUID, currency enums.Currency) (*models.Cart, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	SaveTotals(ctx context.Context, cart *models.Cart) error
}
