// AngelaMos | 2026
// entity.go

package user

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusActive   = "active"
	StatusInactive = "inactive"

	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the storage shape. Nullable columns are pointers: local accounts
// have a password hash and no google_id, federated accounts the reverse.
type User struct {
	ID             string     `db:"id"`
	Email          string     `db:"email"`
	Username       string     `db:"username"`
	PasswordHash   *string    `db:"password_hash"`
	AuthProvider   string     `db:"auth_provider"`
	GoogleID       *string    `db:"google_id"`
	Role           string     `db:"role"`
	Status         string     `db:"status"`
	Name           string     `db:"name"`
	Avatar         string     `db:"avatar"`
	IsVerified     bool       `db:"is_verified"`
	EmailToken     *string    `db:"email_token"`
	ResetTokenHash *string    `db:"reset_token_hash"`
	ResetExpiresAt *time.Time `db:"reset_expires_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	LastActiveAt   time.Time  `db:"last_active_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
