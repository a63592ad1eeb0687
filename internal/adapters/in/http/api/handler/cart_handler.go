// internal/adapters/in/http/api/handler/cart_handler.go
package apiHandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
)

const loginToAddMessage = "Please log in to add items to your cart."

// CartHandler serves /api/me/cart.
//
// Anonymous callers get a throwaway session: they can read an empty cart but
// every add is answered with a login redirect.
type CartHandler struct {
	carts    *usecase.CartUsecase
	sessions *usecase.SessionManager
	catalog  usecase.CatalogSource
	log      *zap.Logger
}

func NewCartHandler(
	carts *usecase.CartUsecase,
	sessions *usecase.SessionManager,
	catalog usecase.CatalogSource,
	log *zap.Logger,
) *CartHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartHandler{carts: carts, sessions: sessions, catalog: catalog, log: log.Named("cart_handler")}
}

type cartLineResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

type cartResponse struct {
	Items      cartdom.Items      `json:"items"`
	Lines      []cartLineResponse `json:"lines"`
	Subtotal   float64            `json:"subtotal"`
	CartCount  int                `json:"cartCount"`
	Unresolved []string           `json:"unresolved,omitempty"`
	Warning    string             `json:"warning,omitempty"`
}

// GET /api/me/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.view(s.Items(), nil))
}

// POST /api/me/cart/items/{productId}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*usecase.CartSession).Add)
}

// POST /api/me/cart/items/{productId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*usecase.CartSession).Decrement)
}

// DELETE /api/me/cart/items/{productId}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, (*usecase.CartSession).Remove)
}

func (h *CartHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	op func(*usecase.CartSession, context.Context, string) (usecase.MutationResult, error),
) {
	pid := strings.TrimSpace(chi.URLParam(r, "productId"))
	if pid == "" {
		writeErr(w, http.StatusBadRequest, "productId is required")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := op(s, r.Context(), pid)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrSignInRequired):
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"redirect": string(usecase.ViewLogin),
			"message":  loginToAddMessage,
		})
		return
	case errors.Is(err, usecase.ErrCartInvalidArgument):
		writeErr(w, http.StatusBadRequest, "invalid productId")
		return
	default:
		h.log.Error("cart mutation failed", zap.String("productId", pid), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "cart update failed")
		return
	}

	if res.Warning != nil {
		h.log.Warn("cart not persisted", zap.String("productId", pid), zap.Error(res.Warning.Err))
	}
	writeJSON(w, http.StatusOK, h.view(res.Items, res.Warning))
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*usecase.CartSession, bool) {
	id, ok := middleware.CurrentIdentity(r)
	if !ok {
		return h.sessions.Anonymous(), true
	}
	s, err := h.sessions.Session(r.Context(), *id)
	if err != nil {
		h.log.Error("cart load failed", zap.String("uid", id.UID), zap.Error(err))
		writeErr(w, http.StatusServiceUnavailable, "Your cart could not be loaded. Please try again.")
		return nil, false
	}
	return s, true
}

func (h *CartHandler) view(items cartdom.Items, warn *usecase.PersistWarning) cartResponse {
	t := h.carts.ComputeSubtotal(items, h.catalog.Snapshot())
	out := cartResponse{
		Items:      items,
		Lines:      make([]cartLineResponse, 0, len(t.Lines)),
		Subtotal:   t.Subtotal.InexactFloat64(),
		CartCount:  t.CartCount,
		Unresolved: t.Unresolved,
	}
	if out.Items == nil {
		out.Items = cartdom.Items{}
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, cartLineResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			ImageURL:  l.Product.DisplayImageURL(),
			Price:     l.Product.Price.InexactFloat64(),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal.InexactFloat64(),
		})
	}
	if warn != nil {
		out.Warning = warn.Error()
	}
	return out
}
