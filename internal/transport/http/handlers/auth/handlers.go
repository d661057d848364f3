package authhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ghpayroll/internal/domain/auth"
	"ghpayroll/internal/transport/http/api"
	"ghpayroll/internal/transport/http/middleware"
	"ghpayroll/internal/transport/http/shared"
)

type Handler struct {
	Auth *auth.Service
}

// NewHandler returns a handler for svc. A nil svc means authentication is
// not configured and login answers 404.
func NewHandler(svc *auth.Service) *Handler {
	return &Handler{Auth: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/auth/me", h.HandleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if h.Auth == nil {
		api.Fail(w, http.StatusNotFound, "auth_disabled", "authentication is not configured", reqID)
		return
	}
	var payload loginRequest
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	session, err := h.Auth.Login(payload.Email, payload.Password, payload.MFACode)
	switch {
	case errors.Is(err, auth.ErrMFARequired):
		api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", reqID)
		return
	case errors.Is(err, auth.ErrMFAInvalid):
		api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", reqID)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}
	api.Success(w, session, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}
	api.Success(w, map[string]string{"email": user.Email, "role": user.Role}, reqID)
}
