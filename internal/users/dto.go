package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cartline/cartline-backend/pkg/db/models"
	"github.com/cartline/cartline-backend/pkg/types"
)

// UserDTO is the public view of a user. The password hash never leaves the service.
type UserDTO struct {
	ID           uuid.UUID     `json:"id"`
	FirstName    string        `json:"fname"`
	LastName     string        `json:"lname"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	ProfileImage string        `json:"profileImage"`
	Address      types.Address `json:"address"`
	LastLoginAt  *time.Time    `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ImageUpload is an already sniffed profile image.
type ImageUpload struct {
	Data        []byte
	ContentType string
	Extension   string
}

// RegisterInput carries every field of the signup form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Address   *types.Address
	Image     *ImageUpload
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Password  *string
	Address   *types.AddressPatch
	Image     *ImageUpload
}

// IsEmpty reports whether the update would change nothing.
func (u UpdateInput) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Phone == nil &&
		u.Password == nil && (u.Address == nil || u.Address.IsEmpty()) && u.Image == nil
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		Address:      u.Address,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NormalizeEmail is applied before every lookup and write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
