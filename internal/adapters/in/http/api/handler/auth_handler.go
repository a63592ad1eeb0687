// internal/adapters/in/http/api/handler/auth_handler.go
package apiHandler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	uc  *usecase.AuthUsecase
	log *zap.Logger
}

func NewAuthHandler(uc *usecase.AuthUsecase, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{uc: uc, log: log.Named("auth_handler")}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// POST /api/auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.uc.SignUp)
}

// POST /api/auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.uc.SignIn)
}

// POST /api/auth/sign-out (auth required)
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.uc.SignOut(r.Context(), id.UID); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) authenticate(
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, email, password string) (usecase.AuthResult, error),
) {
	var req credentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := call(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrAuthInvalidArgument):
		writeErr(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, usecase.ErrAuthRejected):
		writeErr(w, http.StatusUnauthorized, err.Error())
		return
	default:
		h.log.Error("auth provider failed", zap.Error(err))
		writeErr(w, http.StatusBadGateway, "Authentication service unavailable")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		UID:          res.Identity.UID,
		Email:        res.Identity.Email,
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresIn:    int64(res.ExpiresIn.Seconds()),
	})
}
