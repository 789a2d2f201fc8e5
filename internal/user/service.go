// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/auth-backend/internal/auth"
	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

const defaultAvatar = "https://www.gravatar.com/avatar/?d=mp"

// identifierColumns drives login lookup: each role logs in with its own
// identifier kind, and a match only counts when the row's role agrees.
// A user typing an admin's username (or vice versa) finds nothing.
var identifierColumns = []struct {
	column string
	role   string
}{
	{column: "email", role: RoleUser},
	{column: "username", role: RoleAdmin},
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// ResolveIdentifier finds the login account for an identifier. The
// identifier kind is role-scoped, so the caller never has to guess whether
// it was handed an email or a username.
func (s *Service) ResolveIdentifier(
	ctx context.Context,
	identifier string,
) (*auth.Account, error) {
	for _, lookup := range identifierColumns {
		u, err := s.repo.getBy(ctx, lookup.column, identifier)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if u.Role == lookup.role {
			return toAccount(u), nil
		}
	}

	return nil, core.ErrNotFound
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.Account, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) GetByGoogleID(
	ctx context.Context,
	googleID string,
) (*auth.Account, error) {
	u, err := s.repo.GetByGoogleID(ctx, googleID)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

// CreateLocal provisions an unverified local account holding its email
// verification token.
func (s *Service) CreateLocal(
	ctx context.Context,
	params auth.CreateLocalParams,
) (*auth.Account, error) {
	passwordHash := params.PasswordHash
	emailToken := params.EmailToken

	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(params.Email),
		Username:     params.Username,
		PasswordHash: &passwordHash,
		AuthProvider: ProviderLocal,
		Role:         RoleUser,
		Status:       StatusInactive,
		Name:         params.Name,
		Avatar:       defaultAvatar,
		IsVerified:   false,
		EmailToken:   &emailToken,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

// CreateFederated provisions an account from a verified identity assertion.
// It is born active: the provider already vouched for the email.
func (s *Service) CreateFederated(
	ctx context.Context,
	params auth.CreateFederatedParams,
) (*auth.Account, error) {
	avatar := params.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}

	googleID := params.GoogleID

	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(params.Email),
		Username:     deriveUsername(params.Email),
		AuthProvider: ProviderGoogle,
		GoogleID:     &googleID,
		Role:         RoleUser,
		Status:       StatusActive,
		Name:         params.Name,
		Avatar:       avatar,
		IsVerified:   true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return toAccount(u), nil
}

func (s *Service) ConsumeEmailToken(
	ctx context.Context,
	token string,
) (*auth.Account, error) {
	u, err := s.repo.MarkVerified(ctx, token)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) SetResetSecret(
	ctx context.Context,
	userID, secretHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetResetSecret(ctx, userID, secretHash, expiresAt)
}

func (s *Service) ResetPasswordByToken(
	ctx context.Context,
	secretHash, newPasswordHash string,
) (*auth.Account, error) {
	u, err := s.repo.ResetPasswordByHash(ctx, secretHash, newPasswordHash)
	if err != nil {
		return nil, err
	}
	return toAccount(u), nil
}

func (s *Service) TouchLastActive(ctx context.Context, userID string) error {
	return s.repo.TouchLastActive(ctx, userID)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*auth.UserResponse, error) {
	u, err := s.repo.UpdateProfile(ctx, userID, req.Name, req.Avatar)
	if err != nil {
		return nil, err
	}
	return ToResponse(u), nil
}

// AdminCreate provisions an account that is verified and active from the
// start; no verification email is involved.
func (s *Service) AdminCreate(
	ctx context.Context,
	req AdminCreateUserRequest,
	passwordHash string,
) (*auth.UserResponse, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(req.Email),
		Username:     req.Username,
		PasswordHash: &passwordHash,
		AuthProvider: ProviderLocal,
		Role:         req.Role,
		Status:       StatusActive,
		Name:         req.Name,
		Avatar:       defaultAvatar,
		IsVerified:   true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return ToResponse(u), nil
}

func (s *Service) AdminGet(
	ctx context.Context,
	id string,
) (*auth.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToResponse(u), nil
}

func (s *Service) AdminUpdate(
	ctx context.Context,
	id string,
	req AdminUpdateUserRequest,
) (*auth.UserResponse, error) {
	u, err := s.repo.UpdateAdminFields(ctx, id, req.Name, req.Role, req.Status)
	if err != nil {
		return nil, err
	}
	return ToResponse(u), nil
}

func (s *Service) AdminDelete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AdminList(
	ctx context.Context,
	params ListUsersParams,
) ([]auth.UserResponse, int, error) {
	params.Normalize()

	users, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return ToResponseList(users), total, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// deriveUsername builds a username for a federated account from the email
// local part plus a random suffix, since the column is unique and the
// provider supplies no username of its own.
func deriveUsername(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	base := b.String()
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}

	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}
