package auth

import "github.com/google/uuid"

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token pair issued on login.
type LoginResponse struct {
	UserID       uuid.UUID `json:"userId"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}
