// internal/adapters/in/http/api/handler/me_handler.go
package apiHandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	userdom "storefront/internal/domain/user"
)

// MeHandler serves the caller-scoped endpoints: role, view gating, profile.
type MeHandler struct {
	roles    *usecase.RoleGate
	profiles *usecase.ProfileUsecase
	log      *zap.Logger
}

func NewMeHandler(roles *usecase.RoleGate, profiles *usecase.ProfileUsecase, log *zap.Logger) *MeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MeHandler{roles: roles, profiles: profiles, log: log.Named("me_handler")}
}

type roleResponse struct {
	Authenticated bool   `json:"authenticated"`
	UID           string `json:"uid,omitempty"`
	Role          string `json:"role"`
}

// GET /api/me/role
func (h *MeHandler) Role(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(r)
	role := h.roles.ResolveRole(r.Context(), id)
	out := roleResponse{Authenticated: ok, Role: string(role)}
	if ok {
		out.UID = id.UID
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/me/views/{view}
func (h *MeHandler) View(w http.ResponseWriter, r *http.Request) {
	requested := usecase.View(chi.URLParam(r, "view"))
	id, _ := middleware.CurrentIdentity(r)
	role := h.roles.ResolveRole(r.Context(), id)
	writeJSON(w, http.StatusOK, map[string]string{
		"requested": string(requested),
		"view":      string(h.roles.Navigate(role, requested)),
	})
}

type profileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func toProfileResponse(u userdom.User) profileResponse {
	out := profileResponse{
		ID:       u.ID,
		Name:     u.Name,
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		Email:    u.Email,
		Role:     string(userdom.ParseRole(string(u.Role))),
	}
	if !u.CreatedAt.IsZero() {
		out.CreatedAt = u.CreatedAt.UTC().Format(timeLayout)
	}
	if !u.UpdatedAt.IsZero() {
		out.UpdatedAt = u.UpdatedAt.UTC().Format(timeLayout)
	}
	return out
}

// GET /api/me/profile (auth required)
func (h *MeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.CurrentIdentity(r)
	u, err := h.profiles.GetOrCreate(r.Context(), id)
	if err != nil {
		h.profileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(u))
}

// PATCH /api/me/profile (auth required)
func (h *MeHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.CurrentIdentity(r)

	var patch userdom.ProfilePatch
	if err := readJSON(w, r, &patch); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.profiles.Update(r.Context(), id, patch)
	if err != nil {
		h.profileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(u))
}

func (h *MeHandler) profileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrSignInRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"redirect": string(usecase.ViewLogin)})
	case errors.Is(err, userdom.ErrInvalidName):
		writeErr(w, http.StatusBadRequest, "Name is too long")
	case errors.Is(err, userdom.ErrInvalidAvatar):
		writeErr(w, http.StatusBadRequest, "Avatar must be an image URL or data URI")
	default:
		h.log.Error("profile failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to save profile")
	}
}
