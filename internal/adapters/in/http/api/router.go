// internal/adapters/in/http/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apiHandler "storefront/internal/adapters/in/http/api/handler"
	"storefront/internal/adapters/in/http/middleware"
)

// Deps is the storefront handler set.
type Deps struct {
	Auth *middleware.Auth

	Products *apiHandler.ProductHandler
	Session  *apiHandler.AuthHandler
	Cart     *apiHandler.CartHandler
	Me       *apiHandler.MeHandler
	Import   *apiHandler.ImportHandler

	CORSAllowedOrigins []string
	Log                *zap.Logger
}

// NewRouter wires every route. Chain order: CORS outside, then request log,
// then recover, so a panic response still carries CORS headers.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS(d.CORSAllowedOrigins))
	r.Use(middleware.RequestLog(d.Log))
	r.Use(middleware.Recover(d.Log))

	r.Get("/healthz", Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(d.Auth.Optional)

		// catalog
		r.Get("/products", d.Products.List)
		r.Get("/products/export.csv", d.Products.ExportCSV)
		r.Get("/products/{id}", d.Products.Get)
		r.Post("/products", d.Products.Create)

		// auth
		r.Post("/auth/sign-up", d.Session.SignUp)
		r.Post("/auth/sign-in", d.Session.SignIn)
		r.With(d.Auth.Required).Post("/auth/sign-out", d.Session.SignOut)

		// cart
		r.Get("/me/cart", d.Cart.Get)
		r.Post("/me/cart/items/{productId}", d.Cart.Add)
		r.Post("/me/cart/items/{productId}/decrement", d.Cart.Decrement)
		r.Delete("/me/cart/items/{productId}", d.Cart.Remove)

		// role / views / profile
		r.Get("/me/role", d.Me.Role)
		r.Get("/me/views/{view}", d.Me.View)
		r.With(d.Auth.Required).Get("/me/profile", d.Me.GetProfile)
		r.With(d.Auth.Required).Patch("/me/profile", d.Me.UpdateProfile)

		// admin
		r.Route("/admin/products/import", func(r chi.Router) {
			r.Post("/", d.Import.Import)
			r.Post("/validate", d.Import.Validate)
			r.Get("/template.xlsx", d.Import.Template)
		})
	})

	return r
}

// Healthz is served before the container is ready as well.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
