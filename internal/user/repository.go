// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

const pgUniqueViolation = "23505"

const userColumns = `
	id, email, username, password_hash, auth_provider, google_id,
	role, status, name, avatar, is_verified,
	email_token, reset_token_hash, reset_expires_at,
	created_at, updated_at, last_active_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the row as given. The unique constraints on email,
// username and google_id are the only duplicate check; a violation comes
// back as core.ErrDuplicateKey.
func (r *Repository) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (
			id, email, username, password_hash, auth_provider, google_id,
			role, status, name, avatar, is_verified, email_token
		) VALUES (
			:id, :email, :username, :password_hash, :auth_provider, :google_id,
			:role, :status, :name, :avatar, :is_verified, :email_token
		)`

	if _, err := r.db.NamedExecContext(ctx, query, u); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *Repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *Repository) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*User, error) {
	return r.getBy(ctx, "google_id", googleID)
}

func (r *Repository) getBy(
	ctx context.Context,
	column, value string,
) (*User, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM users WHERE %s = $1",
		userColumns,
		column,
	)

	var u User
	if err := r.db.GetContext(ctx, &u, query, value); err != nil {
		return nil, translateError(err)
	}

	return &u, nil
}

// MarkVerified consumes the email token: it matches only an unverified row
// holding exactly this token, flips it active and clears the token, all in
// one statement. A replayed token matches nothing.
func (r *Repository) MarkVerified(
	ctx context.Context,
	token string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET is_verified = TRUE,
		    status = 'active',
		    email_token = NULL,
		    updated_at = NOW()
		WHERE email_token = $1 AND is_verified = FALSE
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, token); err != nil {
		return nil, translateError(err)
	}

	return &u, nil
}

func (r *Repository) SetResetSecret(
	ctx context.Context,
	userID, secretHash string,
	expiresAt time.Time,
) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2,
		    reset_expires_at = $3,
		    updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, secretHash, expiresAt)
	if err != nil {
		return translateError(err)
	}

	return requireRow(result)
}

// ResetPasswordByHash matches the stored secret hash while it is still
// inside its window, swaps in the new password and clears both reset
// columns in the same statement so the secret is single-use.
func (r *Repository) ResetPasswordByHash(
	ctx context.Context,
	secretHash, newPasswordHash string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_expires_at = NULL,
		    updated_at = NOW()
		WHERE reset_token_hash = $1 AND reset_expires_at > NOW()
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, secretHash, newPasswordHash); err != nil {
		return nil, translateError(err)
	}

	return &u, nil
}

func (r *Repository) UpdateProfile(
	ctx context.Context,
	id string,
	name, avatar *string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET name = COALESCE($2, name),
		    avatar = COALESCE($3, avatar),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, id, name, avatar); err != nil {
		return nil, translateError(err)
	}

	return &u, nil
}

func (r *Repository) UpdateAdminFields(
	ctx context.Context,
	id string,
	name, role, status *string,
) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users
		SET name = COALESCE($2, name),
		    role = COALESCE($3, role),
		    status = COALESCE($4, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, userColumns)

	var u User
	if err := r.db.GetContext(ctx, &u, query, id, name, role, status); err != nil {
		return nil, translateError(err)
	}

	return &u, nil
}

func (r *Repository) TouchLastActive(ctx context.Context, id string) error {
	query := `UPDATE users SET last_active_at = NOW() WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return translateError(err)
	}

	return nil
}

// Delete removes the row outright. Token revocation is a separate concern:
// deleting a user does not invalidate a token already in the wild, it just
// leaves nothing for the token to resolve to.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}

	return requireRow(result)
}

func (r *Repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	where, args := buildListFilter(params)

	countQuery := "SELECT COUNT(*) FROM users" + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, translateError(err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		userColumns,
		where,
		len(args)+1,
		len(args)+2,
	)
	args = append(args, params.PageSize, params.Offset())

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, translateError(err)
	}

	return users, total, nil
}

func (r *Repository) CountByStatus(
	ctx context.Context,
) (map[string]int, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}{}

	query := `SELECT status, COUNT(*) AS count FROM users GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, translateError(err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func buildListFilter(params ListUsersParams) (string, []any) {
	clauses := []string{}
	args := []any{}

	if params.Search != "" {
		pattern := "%" + escapeLike(params.Search) + "%"
		args = append(args, pattern)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(email ILIKE $%d OR username ILIKE $%d OR name ILIKE $%d)",
			n, n, n,
		))
	}
	if params.Role != "" {
		args = append(args, params.Role)
		clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, core.ErrDuplicateKey)
	}

	return err
}
