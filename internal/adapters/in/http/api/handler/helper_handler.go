// internal/adapters/in/http/api/handler/helper_handler.go
package apiHandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

// maxJSONBody fits an inline avatar data URI plus the rest of a profile.
const maxJSONBody = 1 << 20

const timeLayout = time.RFC3339

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr writes {"message": msg}.
func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": strings.TrimSpace(msg)})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// ------------------------------------------------------------
// admin gate
// ------------------------------------------------------------

// adminGate answers 403 {"view":"accessDenied"} for callers without the admin tier.
type adminGate struct {
	roles *usecase.RoleGate
}

func (g adminGate) allow(w http.ResponseWriter, r *http.Request) bool {
	id, _ := middleware.CurrentIdentity(r)
	role := g.roles.ResolveRole(r.Context(), id)
	if g.roles.IsAuthorized(role, userdom.RoleAdmin) {
		return true
	}
	writeJSON(w, http.StatusForbidden, map[string]string{
		"view": string(g.roles.Navigate(role, usecase.ViewAdmin)),
	})
	return false
}

// ------------------------------------------------------------
// DTOs
// ------------------------------------------------------------

type productResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	ImageURL        string  `json:"imageUrl"`
	DisplayImageURL string  `json:"displayImageUrl"`
	OriginCountry   string  `json:"originCountry,omitempty"`
	Vendor          string  `json:"vendor,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
}

func toProductResponse(p productdom.Product) productResponse {
	out := productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.InexactFloat64(),
		ImageURL:        p.ImageURL,
		DisplayImageURL: p.DisplayImageURL(),
		OriginCountry:   p.OriginCountry,
		Vendor:          p.Vendor,
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.UTC().Format(timeLayout)
	}
	return out
}
