// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Email        string `json:"email"         validate:"required,email,max=255"`
	Username     string `json:"username"      validate:"required,alphanum,min=3,max=30"`
	Password     string `json:"password"      validate:"required,min=8,max=72"`
	Name         string `json:"name"          validate:"omitempty,max=100"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type LoginRequest struct {
	// Identifier is an email for regular users and a username for admins;
	// resolution is role-scoped, see user.Service.ResolveIdentifier.
	Identifier   string `json:"identifier"    validate:"required,max=255"`
	Password     string `json:"password"      validate:"required,min=8,max=72"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type GoogleLoginRequest struct {
	Credential   string `json:"credential"    validate:"required"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email        string `json:"email"         validate:"required,email,max=255"`
	CaptchaToken string `json:"captcha_token" validate:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Avatar     string    `json:"avatar"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	Provider   string    `json:"provider"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
