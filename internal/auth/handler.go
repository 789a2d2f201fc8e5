// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/auth-backend/internal/core"
	"github.com/carterperez-dev/templates/auth-backend/internal/middleware"
)

type Handler struct {
	service  *Service
	validate *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes returns the authentication surface. Logout is the one route that
// requires a bearer token, so it alone sits behind the authenticator.
func (h *Handler) Routes(
	authenticator func(http.Handler) http.Handler,
) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Get("/verify-email/{token}", h.VerifyEmail)
	r.Post("/login", h.Login)
	r.Post("/google", h.GoogleLogin)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Put("/reset-password/{token}", h.ResetPassword)

	r.With(authenticator).Post("/logout", h.Logout)

	return r
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, user)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	user, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.GoogleLogin(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req); err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "if that email exists, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	token := chi.URLParam(r, "token")

	if err := h.service.ResetPassword(r.Context(), token, req.Password); err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "password updated"})
}

// Logout revokes the exact token presented in the Authorization header.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	token := middleware.ExtractToken(r)
	if claims == nil || token == "" {
		core.Unauthorized(w, "authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token, claims.ExpiresAt); err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "logged out"})
}

func (h *Handler) decode(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.Unauthorized(w, "invalid credentials")
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email or username"))
	case errors.Is(err, ErrAccountExistsLocal):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, ErrInvalidOrExpired):
		core.BadRequest(w, "reset token invalid or expired")
	case errors.Is(err, ErrAlreadyRevoked), errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	case errors.Is(err, core.ErrExternalService):
		core.JSONError(w, core.ExternalServiceError())
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.JSONError(w, err)
	}
}
