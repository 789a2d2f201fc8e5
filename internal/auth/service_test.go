// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
	"github.com/carterperez-dev/templates/auth-backend/internal/provider"
)

type fakeUserStore struct {
	accounts map[string]*storedAccount // keyed by id
}

type storedAccount struct {
	account      Account
	googleID     string
	emailToken   string
	resetHash    string
	resetExpires time.Time
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{accounts: map[string]*storedAccount{}}
}

func (f *fakeUserStore) ResolveIdentifier(
	_ context.Context,
	identifier string,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.account.Email == identifier &&
			stored.account.Role == "user" {
			a := stored.account
			return &a, nil
		}
		if stored.account.Username == identifier &&
			stored.account.Role == "admin" {
			a := stored.account
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*Account, error) {
	stored, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	a := stored.account
	return &a, nil
}

func (f *fakeUserStore) GetByEmail(
	_ context.Context,
	email string,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.account.Email == email {
			a := stored.account
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) GetByGoogleID(
	_ context.Context,
	googleID string,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.googleID == googleID {
			a := stored.account
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) CreateLocal(
	_ context.Context,
	params CreateLocalParams,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.account.Email == params.Email ||
			stored.account.Username == params.Username {
			return nil, core.ErrDuplicateKey
		}
	}

	hash := params.PasswordHash
	stored := &storedAccount{
		account: Account{
			ID:           uuid.NewString(),
			Email:        params.Email,
			Username:     params.Username,
			Name:         params.Name,
			Role:         "user",
			Status:       "inactive",
			Provider:     "local",
			PasswordHash: &hash,
			CreatedAt:    time.Now(),
		},
		emailToken: params.EmailToken,
	}
	f.accounts[stored.account.ID] = stored

	a := stored.account
	return &a, nil
}

func (f *fakeUserStore) CreateFederated(
	_ context.Context,
	params CreateFederatedParams,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.account.Email == params.Email {
			return nil, core.ErrDuplicateKey
		}
	}

	stored := &storedAccount{
		account: Account{
			ID:         uuid.NewString(),
			Email:      params.Email,
			Username:   params.Email,
			Name:       params.Name,
			Avatar:     params.Avatar,
			Role:       "user",
			Status:     "active",
			Provider:   "google",
			IsVerified: true,
			CreatedAt:  time.Now(),
		},
		googleID: params.GoogleID,
	}
	f.accounts[stored.account.ID] = stored

	a := stored.account
	return &a, nil
}

func (f *fakeUserStore) ConsumeEmailToken(
	_ context.Context,
	token string,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.emailToken == token &&
			stored.emailToken != "" &&
			!stored.account.IsVerified {
			stored.account.IsVerified = true
			stored.account.Status = "active"
			stored.emailToken = ""
			a := stored.account
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) SetResetSecret(
	_ context.Context,
	userID, secretHash string,
	expiresAt time.Time,
) error {
	stored, ok := f.accounts[userID]
	if !ok {
		return core.ErrNotFound
	}
	stored.resetHash = secretHash
	stored.resetExpires = expiresAt
	return nil
}

func (f *fakeUserStore) ResetPasswordByToken(
	_ context.Context,
	secretHash, newPasswordHash string,
) (*Account, error) {
	for _, stored := range f.accounts {
		if stored.resetHash == secretHash &&
			stored.resetHash != "" &&
			stored.resetExpires.After(time.Now()) {
			hash := newPasswordHash
			stored.account.PasswordHash = &hash
			stored.resetHash = ""
			stored.resetExpires = time.Time{}
			a := stored.account
			return &a, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserStore) TouchLastActive(_ context.Context, _ string) error {
	return nil
}

type fakeCaptcha struct {
	err     error
	actions []string
}

func (f *fakeCaptcha) Verify(_ context.Context, _, action string) error {
	f.actions = append(f.actions, action)
	return f.err
}

type fakeIdentity struct {
	identity *provider.Identity
	err      error
}

func (f *fakeIdentity) Verify(
	_ context.Context,
	_ string,
) (*provider.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

type fakeRevoker struct {
	revoked map[string]bool
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: map[string]bool{}}
}

func (f *fakeRevoker) Revoke(
	_ context.Context,
	token string,
	_ time.Time,
) error {
	if f.revoked[token] {
		return ErrAlreadyRevoked
	}
	f.revoked[token] = true
	return nil
}

func (f *fakeRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], nil
}

type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeNotifier struct {
	sent []sentMail
}

func (f *fakeNotifier) VerificationEmail(to, _, token string) {
	f.sent = append(f.sent, sentMail{kind: "verification", to: to, token: token})
}

func (f *fakeNotifier) WelcomeEmail(to, _ string) {
	f.sent = append(f.sent, sentMail{kind: "welcome", to: to})
}

func (f *fakeNotifier) LoginAlert(to, _ string, _ time.Time) {
	f.sent = append(f.sent, sentMail{kind: "login_alert", to: to})
}

func (f *fakeNotifier) PasswordResetEmail(to, _, secret string) {
	f.sent = append(f.sent, sentMail{kind: "password_reset", to: to, token: secret})
}

func (f *fakeNotifier) PasswordChangedEmail(to, _ string) {
	f.sent = append(f.sent, sentMail{kind: "password_changed", to: to})
}

func (f *fakeNotifier) last() sentMail {
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

type testEnv struct {
	service  *Service
	users    *fakeUserStore
	captcha  *fakeCaptcha
	identity *fakeIdentity
	revoker  *fakeRevoker
	mail     *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    newFakeUserStore(),
		captcha:  &fakeCaptcha{},
		identity: &fakeIdentity{},
		revoker:  newFakeRevoker(),
		mail:     &fakeNotifier{},
	}

	env.service = NewService(
		env.users,
		newTestJWTManager(t, time.Hour),
		env.revoker,
		env.captcha,
		env.identity,
		env.mail,
	)

	return env
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Email:        "alice@example.com",
		Username:     "alice",
		Password:     "s3cret-password",
		Name:         "Alice",
		CaptchaToken: "captcha-ok",
	}
}

func TestRegister_CreatesUnverifiedAccount(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.service.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	if user.Status != "inactive" {
		t.Fatalf("new account should be inactive, got %q", user.Status)
	}
	if user.IsVerified {
		t.Fatalf("new account should not be verified")
	}

	mail := env.mail.last()
	if mail.kind != "verification" || mail.to != "alice@example.com" {
		t.Fatalf("expected verification email, got %+v", mail)
	}
	if mail.token == "" {
		t.Fatalf("verification email must carry a token")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	_, err := env.service.Register(ctx, registerRequest())
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegister_CaptchaFailureBlocksWrite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.captcha.err = core.ExternalServiceError()

	_, err := env.service.Register(context.Background(), registerRequest())
	if !errors.Is(err, core.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if len(env.users.accounts) != 0 {
		t.Fatalf("no account should be created when captcha fails")
	}
	if len(env.mail.sent) != 0 {
		t.Fatalf("no email should be sent when captcha fails")
	}
}

func TestRegisterVerifyLogin_EndToEnd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	// before verification, login is refused
	_, err := env.service.Login(ctx, LoginRequest{
		Identifier:   "alice@example.com",
		Password:     "s3cret-password",
		CaptchaToken: "captcha-ok",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unverified login should fail, got %v", err)
	}

	token := env.mail.sent[0].token
	verified, err := env.service.VerifyEmail(ctx, token)
	if err != nil {
		t.Fatalf("VerifyEmail error: %v", err)
	}
	if !verified.IsVerified || verified.Status != "active" {
		t.Fatalf("account should be active after verification, got %+v", verified)
	}

	resp, err := env.service.Login(ctx, LoginRequest{
		Identifier:   "alice@example.com",
		Password:     "s3cret-password",
		CaptchaToken: "captcha-ok",
	})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.Token == "" || resp.TokenType != "Bearer" {
		t.Fatalf("unexpected session response: %+v", resp)
	}
	if env.mail.last().kind != "login_alert" {
		t.Fatalf("expected login alert after login")
	}
}

func TestVerifyEmail_TokenIsSingleUse(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	token := env.mail.sent[0].token

	if _, err := env.service.VerifyEmail(ctx, token); err != nil {
		t.Fatalf("first VerifyEmail error: %v", err)
	}

	_, err := env.service.VerifyEmail(ctx, token)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Fatalf("replayed token should be invalid, got %v", err)
	}
}

func TestLogin_IndistinguishableFailures(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := env.service.VerifyEmail(ctx, env.mail.sent[0].token); err != nil {
		t.Fatalf("VerifyEmail error: %v", err)
	}

	cases := []LoginRequest{
		{Identifier: "nobody@example.com", Password: "s3cret-password"},
		{Identifier: "alice@example.com", Password: "wrong-password"},
		// usernames only resolve for admins
		{Identifier: "alice", Password: "s3cret-password"},
	}

	for _, req := range cases {
		req.CaptchaToken = "captcha-ok"
		if _, err := env.service.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("identifier %q: expected ErrInvalidCredentials, got %v",
				req.Identifier, err)
		}
	}
}

func TestGoogleLogin_CreatesAccountAndWelcomes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.identity.identity = &provider.Identity{
		SubjectID:     "google-sub-1",
		Email:         "bob@example.com",
		Name:          "Bob",
		EmailVerified: true,
	}

	resp, err := env.service.GoogleLogin(context.Background(), GoogleLoginRequest{
		Credential:   "id-token",
		CaptchaToken: "captcha-ok",
	})
	if err != nil {
		t.Fatalf("GoogleLogin error: %v", err)
	}

	if resp.User.Provider != "google" {
		t.Fatalf("expected google provider, got %q", resp.User.Provider)
	}
	if !resp.User.IsVerified {
		t.Fatalf("federated account should be born verified")
	}
	if env.mail.last().kind != "welcome" {
		t.Fatalf("first federated login should send welcome email")
	}

	// second login reuses the account and alerts instead
	resp2, err := env.service.GoogleLogin(context.Background(), GoogleLoginRequest{
		Credential:   "id-token",
		CaptchaToken: "captcha-ok",
	})
	if err != nil {
		t.Fatalf("second GoogleLogin error: %v", err)
	}
	if resp2.User.ID != resp.User.ID {
		t.Fatalf("second login should resolve to the same account")
	}
	if env.mail.last().kind != "login_alert" {
		t.Fatalf("repeat federated login should send login alert")
	}
}

func TestGoogleLogin_RejectsLocalEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	env.identity.identity = &provider.Identity{
		SubjectID:     "google-sub-2",
		Email:         "alice@example.com",
		Name:          "Alice",
		EmailVerified: true,
	}

	_, err := env.service.GoogleLogin(ctx, GoogleLoginRequest{
		Credential:   "id-token",
		CaptchaToken: "captcha-ok",
	})
	if !errors.Is(err, ErrAccountExistsLocal) {
		t.Fatalf("expected ErrAccountExistsLocal, got %v", err)
	}
}

func TestForgotPassword_UniformForUnknownEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	err := env.service.ForgotPassword(context.Background(), ForgotPasswordRequest{
		Email:        "nobody@example.com",
		CaptchaToken: "captcha-ok",
	})
	if err != nil {
		t.Fatalf("unknown email must not surface an error, got %v", err)
	}
	if len(env.mail.sent) != 0 {
		t.Fatalf("no mail should be sent for an unknown email")
	}
}

func TestForgotThenResetPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.service.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if _, err := env.service.VerifyEmail(ctx, env.mail.sent[0].token); err != nil {
		t.Fatalf("VerifyEmail error: %v", err)
	}

	if err := env.service.ForgotPassword(ctx, ForgotPasswordRequest{
		Email:        "alice@example.com",
		CaptchaToken: "captcha-ok",
	}); err != nil {
		t.Fatalf("ForgotPassword error: %v", err)
	}

	resetMail := env.mail.last()
	if resetMail.kind != "password_reset" || resetMail.token == "" {
		t.Fatalf("expected password reset email with secret, got %+v", resetMail)
	}

	if err := env.service.ResetPassword(ctx, resetMail.token, "new-password-99"); err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}
	if env.mail.last().kind != "password_changed" {
		t.Fatalf("expected password changed notification")
	}

	// the secret is single-use
	err := env.service.ResetPassword(ctx, resetMail.token, "another-password")
	if !errors.Is(err, ErrInvalidOrExpired) {
		t.Fatalf("reused secret should fail, got %v", err)
	}

	// old password no longer works, new one does
	if _, err := env.service.Login(ctx, LoginRequest{
		Identifier:   "alice@example.com",
		Password:     "s3cret-password",
		CaptchaToken: "captcha-ok",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}

	if _, err := env.service.Login(ctx, LoginRequest{
		Identifier:   "alice@example.com",
		Password:     "new-password-99",
		CaptchaToken: "captcha-ok",
	}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestResetPassword_GarbageSecret(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	err := env.service.ResetPassword(
		context.Background(),
		strings.Repeat("x", 43),
		"new-password-99",
	)
	if !errors.Is(err, ErrInvalidOrExpired) {
		t.Fatalf("expected ErrInvalidOrExpired, got %v", err)
	}
}

func TestLogout_SecondRevokeFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Hour)

	if err := env.service.Logout(ctx, "session-token", expiresAt); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	err := env.service.Logout(ctx, "session-token", expiresAt)
	if !errors.Is(err, ErrAlreadyRevoked) {
		t.Fatalf("expected ErrAlreadyRevoked, got %v", err)
	}

	revoked, err := env.revoker.IsRevoked(ctx, "session-token")
	if err != nil || !revoked {
		t.Fatalf("token should be revoked, got %v %v", revoked, err)
	}
}
