package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/enums"
)

// Repository exposes persistence operations for carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID, forUpdate bool) (*models.Cart, error) {
	return r.find(ctx, forUpdate, "user_id = ?", userID)
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Cart, error) {
	return r.find(ctx, forUpdate, "id = ?", id)
}

// find locks only the cart row; items are read afterwards under that lock.
func (r *Repository) find(ctx context.Context, forUpdate bool, query string, args ...any) (*models.Cart, error) {
	qb := r.db.WithContext(ctx)
	if forUpdate {
		qb = qb.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if err := qb.Where(query, args...).First(&cart).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cart.ID).
		Order("position ASC").
		Find(&cart.Items).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// EnsureForUser returns the user's cart locked for update, creating an empty
// one first when none exists. Concurrent creators converge on the same row.
func (r *Repository) EnsureForUser(ctx context.Context, userID uuid.UUID, currency enums.Currency) (*models.Cart, error) {
	seed := models.Cart{
		UserID:     userID,
		TotalPrice: decimal.Zero,
		Currency:   currency,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&seed).Error; err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID, true)
}

func (r *Repository) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// SaveTotals writes the denormalised aggregates of cart.
func (r *Repository) SaveTotals(ctx context.Context, cart *models.Cart) error {
	return r.db.WithContext(ctx).
		Model(cart).
		Select("total_items", "total_price", "updated_at").
		Updates(cart).Error
}
