// internal/adapters/in/http/api/handler/product_handler.go
package apiHandler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	usecase "storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
)

// ProductHandler serves /api/products.
type ProductHandler struct {
	catalog      *usecase.CatalogUsecase
	gate         adminGate
	requireAdmin bool
	log          *zap.Logger
}

func NewProductHandler(catalog *usecase.CatalogUsecase, roles *usecase.RoleGate, requireAdmin bool, log *zap.Logger) *ProductHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductHandler{
		catalog:      catalog,
		gate:         adminGate{roles: roles},
		requireAdmin: requireAdmin,
		log:          log.Named("product_handler"),
	}
}

// GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		h.log.Error("list failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to load products")
		return
	}
	if len(list) == 0 {
		writeErr(w, http.StatusNotFound, "No products found")
		return
	}
	out := make([]productResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	p, err := h.catalog.Get(r.Context(), id)
	if errors.Is(err, productdom.ErrNotFound) {
		writeErr(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.log.Error("get failed", zap.String("id", id), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type createProductRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         any    `json:"price"`
	ImageURL      string `json:"imageUrl"`
	Vendor        string `json:"vendor"`
	OriginCountry string `json:"originCountry"`
}

// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin && !h.gate.allow(w, r) {
		return
	}

	var req createProductRequest
	if err := readJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.catalog.Create(r.Context(), usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Vendor:      req.Vendor,
		Origin:      req.OriginCountry,
	})
	switch {
	case err == nil:
	case errors.Is(err, productdom.ErrMissingFields):
		writeErr(w, http.StatusBadRequest, "Missing required fields: name, description, price")
		return
	case errors.Is(err, productdom.ErrInvalidPrice):
		writeErr(w, http.StatusBadRequest, "Price must be a number greater than 0")
		return
	case errors.Is(err, productdom.ErrInvalidName), errors.Is(err, productdom.ErrInvalidDescription):
		writeErr(w, http.StatusBadRequest, "Missing required fields: name, description, price")
		return
	default:
		h.log.Error("create failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// GET /api/products/export.csv
func (h *ProductHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.catalog.ExportCSV(r.Context(), &buf); err != nil {
		h.log.Error("export failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "Failed to export products")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="products.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
