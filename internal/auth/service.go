// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
	"github.com/carterperez-dev/templates/auth-backend/internal/provider"
)

var (
	// ErrInvalidCredentials is deliberately undifferentiated: unknown
	// identifier, wrong provider, inactive account and wrong password all
	// look the same to the client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	// ErrAccountExistsLocal rejects a federated login for an email that
	// already has a local password, so a Google assertion can never take
	// over a password account.
	ErrAccountExistsLocal = errors.New("account registered with a password")
	ErrInvalidOrExpired   = errors.New("reset token invalid or expired")
)

const (
	resetSecretLength  = 32
	resetSecretExpiry  = time.Hour
	emailTokenLength   = 32
	actionRegister     = "register"
	actionLogin        = "login"
	actionGoogleLogin  = "google_login"
	actionForgotPasswd = "forgot_password"
)

// Account is the user projection the auth flows operate on; the user
// package owns the storage shape and maps into this.
type Account struct {
	ID           string
	Email        string
	Username     string
	Name         string
	Avatar       string
	Role         string
	Status       string
	Provider     string
	PasswordHash *string
	IsVerified   bool
	CreatedAt    time.Time
}

func (a *Account) IsActive() bool {
	return a.Status == "active"
}

func (a *Account) IsLocal() bool {
	return a.Provider == "local"
}

type CreateLocalParams struct {
	Email        string
	Username     string
	PasswordHash string
	Name         string
	EmailToken   string
}

type CreateFederatedParams struct {
	Email    string
	Name     string
	Avatar   string
	GoogleID string
}

// UserProvider is the slice of the user directory the orchestrator needs.
type UserProvider interface {
	ResolveIdentifier(ctx context.Context, identifier string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (*Account, error)
	CreateLocal(ctx context.Context, params CreateLocalParams) (*Account, error)
	CreateFederated(
		ctx context.Context,
		params CreateFederatedParams,
	) (*Account, error)
	ConsumeEmailToken(ctx context.Context, token string) (*Account, error)
	SetResetSecret(
		ctx context.Context,
		userID, secretHash string,
		expiresAt time.Time,
	) error
	ResetPasswordByToken(
		ctx context.Context,
		secretHash, newPasswordHash string,
	) (*Account, error)
	TouchLastActive(ctx context.Context, userID string) error
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, action string) error
}

type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*provider.Identity, error)
}

type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Notifier sends transactional email. All methods are fire-and-forget:
// a failed send never fails the flow that triggered it.
type Notifier interface {
	VerificationEmail(to, name, token string)
	WelcomeEmail(to, name string)
	LoginAlert(to, name string, at time.Time)
	PasswordResetEmail(to, name, secret string)
	PasswordChangedEmail(to, name string)
}

type Service struct {
	users    UserProvider
	jwt      *JWTManager
	revoker  TokenRevoker
	captcha  CaptchaVerifier
	identity IdentityVerifier
	mail     Notifier
}

func NewService(
	users UserProvider,
	jwt *JWTManager,
	revoker TokenRevoker,
	captcha CaptchaVerifier,
	identity IdentityVerifier,
	mail Notifier,
) *Service {
	return &Service{
		users:    users,
		jwt:      jwt,
		revoker:  revoker,
		captcha:  captcha,
		identity: identity,
		mail:     mail,
	}
}

// Register creates an unverified account and emails a verification token.
// The captcha check rejects before any write; a duplicate email or username
// surfaces as a conflict from the storage constraint, with no side effect.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	if err := s.captcha.Verify(ctx, req.CaptchaToken, actionRegister); err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	emailToken, err := core.GenerateSecureToken(emailTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generate email token: %w", err)
	}

	account, err := s.users.CreateLocal(ctx, CreateLocalParams{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		Name:         req.Name,
		EmailToken:   emailToken,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.mail.VerificationEmail(account.Email, account.Name, emailToken)

	return toUserResponse(account), nil
}

// VerifyEmail consumes the verification token: one-way, exactly once.
// A second visit finds no matching row and fails as invalid.
func (s *Service) VerifyEmail(
	ctx context.Context,
	token string,
) (*UserResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("verify email: %w", core.ErrTokenInvalid)
	}

	account, err := s.users.ConsumeEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify email: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify email: %w", err)
	}

	return toUserResponse(account), nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	if err := s.captcha.Verify(ctx, req.CaptchaToken, actionLogin); err != nil {
		return nil, err
	}

	account, err := s.users.ResolveIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// burn a hash comparison so timing does not reveal existence
			core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("resolve identifier: %w", err)
	}

	// federated accounts have no local password; inactive accounts cannot
	// log in regardless of credentials. Both collapse to the generic error.
	if !account.IsLocal() || !account.IsActive() {
		core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, ErrInvalidCredentials
	}

	if !core.VerifyPasswordTimingSafe(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	s.mail.LoginAlert(account.Email, account.Name, time.Now())

	return resp, nil
}

// GoogleLogin verifies the identity assertion and finds or creates the
// matching account. An email already registered with a local password is
// rejected outright.
func (s *Service) GoogleLogin(
	ctx context.Context,
	req GoogleLoginRequest,
) (*AuthResponse, error) {
	if err := s.captcha.Verify(ctx, req.CaptchaToken, actionGoogleLogin); err != nil {
		return nil, err
	}

	identity, err := s.identity.Verify(ctx, req.Credential)
	if err != nil {
		return nil, err
	}

	account, created, err := s.findOrCreateFederated(ctx, identity)
	if err != nil {
		return nil, err
	}

	if !account.IsActive() {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	if created {
		s.mail.WelcomeEmail(account.Email, account.Name)
	} else {
		s.mail.LoginAlert(account.Email, account.Name, time.Now())
	}

	return resp, nil
}

func (s *Service) findOrCreateFederated(
	ctx context.Context,
	identity *provider.Identity,
) (*Account, bool, error) {
	account, err := s.users.GetByGoogleID(ctx, identity.SubjectID)
	if err == nil {
		return account, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup by google id: %w", err)
	}

	account, err = s.users.GetByEmail(ctx, identity.Email)
	if err == nil {
		if account.IsLocal() {
			return nil, false, ErrAccountExistsLocal
		}
		return account, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup by email: %w", err)
	}

	account, err = s.users.CreateFederated(ctx, CreateFederatedParams{
		Email:    identity.Email,
		Name:     identity.Name,
		Avatar:   identity.Picture,
		GoogleID: identity.SubjectID,
	})
	if err != nil {
		// a concurrent registration can win the insert race; the unique
		// constraint is the source of truth
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, false, ErrAccountExistsLocal
		}
		return nil, false, fmt.Errorf("create federated user: %w", err)
	}

	return account, true, nil
}

// ForgotPassword stores a hashed reset secret with a one-hour window and
// emails the plaintext secret. The response is identical whether or not the
// email exists, so the endpoint cannot be used to enumerate accounts.
func (s *Service) ForgotPassword(
	ctx context.Context,
	req ForgotPasswordRequest,
) error {
	if err := s.captcha.Verify(ctx, req.CaptchaToken, actionForgotPasswd); err != nil {
		return err
	}

	account, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if !account.IsLocal() {
		// federated accounts have no password to reset
		return nil
	}

	secret, err := core.GenerateSecureToken(resetSecretLength)
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}

	expiresAt := time.Now().Add(resetSecretExpiry)
	if err := s.users.SetResetSecret(
		ctx,
		account.ID,
		core.HashToken(secret),
		expiresAt,
	); err != nil {
		return fmt.Errorf("store reset secret: %w", err)
	}

	s.mail.PasswordResetEmail(account.Email, account.Name, secret)

	return nil
}

// ResetPassword consumes the reset secret: the row is matched by hash with
// the expiry still in the future, and the password update clears both reset
// fields in the same statement.
func (s *Service) ResetPassword(
	ctx context.Context,
	secret, newPassword string,
) error {
	if secret == "" {
		return ErrInvalidOrExpired
	}

	passwordHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account, err := s.users.ResetPasswordByToken(
		ctx,
		core.HashToken(secret),
		passwordHash,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidOrExpired
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.mail.PasswordChangedEmail(account.Email, account.Name)

	return nil
}

// Logout blacklists the exact presented token until its natural expiry.
// Only this token dies; another session for the same user survives.
func (s *Service) Logout(
	ctx context.Context,
	token string,
	expiresAt time.Time,
) error {
	if err := s.revoker.Revoke(ctx, token, expiresAt); err != nil {
		return err
	}
	return nil
}

func (s *Service) Profile(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return toUserResponse(account), nil
}

func (s *Service) issueSession(
	ctx context.Context,
	account *Account,
) (*AuthResponse, error) {
	token, expiresAt, err := s.jwt.IssueToken(account.ID, account.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	//nolint:errcheck // last-active is bookkeeping, not part of the login contract
	_ = s.users.TouchLastActive(ctx, account.ID)

	return &AuthResponse{
		User:      *toUserResponse(account),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

// toUserResponse strips credentials and internal fields from the account.
func toUserResponse(a *Account) *UserResponse {
	return &UserResponse{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		Name:       a.Name,
		Avatar:     a.Avatar,
		Role:       a.Role,
		Status:     a.Status,
		Provider:   a.Provider,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
	}
}
