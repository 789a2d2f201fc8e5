// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
)

type stubVerifier struct {
	claims *TokenClaims
	err    error
}

func (s *stubVerifier) VerifyToken(
	_ context.Context,
	_ string,
) (*TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsRevoked(
	_ context.Context,
	token string,
) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[token], nil
}

func validClaims(role string) *TokenClaims {
	return &TokenClaims{
		UserID:    "user-1",
		Role:      role,
		TokenID:   "jti-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func authRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func runAuthenticator(
	verifier TokenVerifier,
	revocations RevocationChecker,
	r *http.Request,
) (*httptest.ResponseRecorder, bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	Authenticator(verifier, revocations)(next).ServeHTTP(rec, r)
	return rec, called
}

func TestAuthenticator_MissingToken(t *testing.T) {
	t.Parallel()

	rec, called := runAuthenticator(
		&stubVerifier{claims: validClaims("user")},
		&stubRevocations{revoked: map[string]bool{}},
		authRequest(""),
	)

	if called {
		t.Fatalf("handler must not run without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticator_ValidToken(t *testing.T) {
	t.Parallel()

	rec, called := runAuthenticator(
		&stubVerifier{claims: validClaims("user")},
		&stubRevocations{revoked: map[string]bool{}},
		authRequest("good-token"),
	)

	if !called {
		t.Fatalf("handler should run for a valid token")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthenticator_RevokedTokenRejected(t *testing.T) {
	t.Parallel()

	// signature still valid, but the token was blacklisted by logout
	rec, called := runAuthenticator(
		&stubVerifier{claims: validClaims("user")},
		&stubRevocations{revoked: map[string]bool{"dead-token": true}},
		authRequest("dead-token"),
	)

	if called {
		t.Fatalf("handler must not run for a revoked token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticator_BlacklistFailureFailsClosed(t *testing.T) {
	t.Parallel()

	rec, called := runAuthenticator(
		&stubVerifier{claims: validClaims("user")},
		&stubRevocations{err: errors.New("redis down")},
		authRequest("good-token"),
	)

	if called {
		t.Fatalf("handler must not run when the blacklist is unreachable")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestAuthenticator_ExpiredToken(t *testing.T) {
	t.Parallel()

	rec, called := runAuthenticator(
		&stubVerifier{err: core.ErrTokenExpired},
		&stubRevocations{revoked: map[string]bool{}},
		authRequest("stale-token"),
	)

	if called {
		t.Fatalf("handler must not run for an expired token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role     string
		wantCode int
		wantRun  bool
	}{
		{role: "admin", wantCode: http.StatusOK, wantRun: true},
		{role: "user", wantCode: http.StatusForbidden, wantRun: false},
		{role: "", wantCode: http.StatusUnauthorized, wantRun: false},
	}

	for _, tc := range cases {
		called := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		r := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.role != "" {
			ctx := context.WithValue(r.Context(), UserRoleKey, tc.role)
			r = r.WithContext(ctx)
		}

		rec := httptest.NewRecorder()
		RequireAdmin(next).ServeHTTP(rec, r)

		if called != tc.wantRun {
			t.Fatalf("role %q: handler run = %v, want %v",
				tc.role, called, tc.wantRun)
		}
		if rec.Code != tc.wantCode {
			t.Fatalf("role %q: status = %d, want %d",
				tc.role, rec.Code, tc.wantCode)
		}
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc123", want: "abc123"},
		{header: "bearer abc123", want: "abc123"},
		{header: "Basic abc123", want: ""},
		{header: "Bearer", want: ""},
		{header: "", want: ""},
	}

	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}

		if got := ExtractToken(r); got != tc.want {
			t.Fatalf("header %q: got %q want %q", tc.header, got, tc.want)
		}
	}
}
