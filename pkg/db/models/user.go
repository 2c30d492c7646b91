package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cartline/cartline-backend/pkg/types"
)

// User is a registered shopper. Email and phone are unique among live rows.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FirstName    string         `gorm:"column:first_name;not null"`
	LastName     string         `gorm:"column:last_name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:ux_users_email_active,where:deleted_at IS NULL"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex:ux_users_phone_active,where:deleted_at IS NULL"`
	ProfileImage string         `gorm:"column:profile_image;not null"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Address      types.Address  `gorm:"column:address;type:jsonb;serializer:json;not null"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
