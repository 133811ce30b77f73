package handler

import (
	"net/http"

	"github.com/debttrack/debt-service/internal/apperr"
	"github.com/debttrack/debt-service/internal/middleware"
	"github.com/debttrack/debt-service/internal/models"
)

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type updatePasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	user, token, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// Logout acknowledges sign-out. Sessions are stateless JWTs, so the client
// discards the token; nothing is revoked server-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"message": "signed out"})
}

// ResetPassword emails a single-use reset link
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Email); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"message": "if the email is registered, a reset link has been sent"})
}

// UpdatePassword sets a new password using a reset token from the email link
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.UpdatePasswordWithToken(r.Context(), req.Token, req.Password); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Me returns the authenticated user's profile
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, apperr.Authf("not authenticated"))
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

// ChangePassword sets a new password for the authenticated user
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, apperr.Authf("not authenticated"))
		return
	}

	var req changePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.svc.UpdatePassword(r.Context(), userID, req.Password); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"message": "password updated"})
}
