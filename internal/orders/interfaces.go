package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
	"github.com/cartline/cartline-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	// UpdateStatusIfCurrent moves the order from one status to another and
	// reports false when the stored status no longer matches from.
	UpdateStatusIfCurrent(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error)
}
