// AngelaMos | 2026
// dto.go

package user

import (
	"github.com/carterperez-dev/templates/auth-backend/internal/auth"
)

type UpdateProfileRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=100"`
	Avatar *string `json:"avatar" validate:"omitempty,url,max=500"`
}

// AdminCreateUserRequest provisions an account that skips email
// verification entirely.
type AdminCreateUserRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Role     string `json:"role"     validate:"required,oneof=user admin"`
}

type AdminUpdateUserRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=100"`
	Role   *string `json:"role"   validate:"omitempty,oneof=user admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// toAccount maps the storage row into the projection the auth flows use.
func toAccount(u *User) *auth.Account {
	return &auth.Account{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		Name:         u.Name,
		Avatar:       u.Avatar,
		Role:         u.Role,
		Status:       u.Status,
		Provider:     u.AuthProvider,
		PasswordHash: u.PasswordHash,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

// ToResponse strips credentials and token columns from the row.
func ToResponse(u *User) *auth.UserResponse {
	return &auth.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Name:       u.Name,
		Avatar:     u.Avatar,
		Role:       u.Role,
		Status:     u.Status,
		Provider:   u.AuthProvider,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

func ToResponseList(users []User) []auth.UserResponse {
	out := make([]auth.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *ToResponse(&users[i]))
	}
	return out
}
