package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	apiHandler "storefront/internal/adapters/in/http/api/handler"
	"storefront/internal/adapters/in/http/middleware"
	boltstore "storefront/internal/adapters/out/bolt"
	usecase "storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
	sessiondom "storefront/internal/domain/session"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/spreadsheet"
)

type fakeVerifier map[string]sessiondom.Identity

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	id, ok := f[idToken]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &fbauth.Token{UID: id.UID, Claims: map[string]interface{}{"email": id.Email}}, nil
}

type fakeProvider struct{}

func (fakeProvider) SignUp(ctx context.Context, email, password string) (usecase.AuthResult, error) {
	return fakeProvider{}.SignIn(ctx, email, password)
}

func (fakeProvider) SignIn(_ context.Context, email, password string) (usecase.AuthResult, error) {
	if password != "secret" {
		return usecase.AuthResult{}, fmt.Errorf("%w: INVALID_PASSWORD", usecase.ErrAuthRejected)
	}
	return usecase.AuthResult{
		Identity:  sessiondom.Identity{UID: "u1", Email: email},
		IDToken:   "user-token",
		ExpiresIn: time.Hour,
	}, nil
}

// applyPublisher feeds events straight into the session manager.
type applyPublisher struct{ m *usecase.SessionManager }

func (p applyPublisher) Publish(e sessiondom.Event) { _ = p.m.Apply(context.Background(), e) }

type testServer struct {
	t       *testing.T
	handler http.Handler
	users   *boltstore.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := boltstore.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	users := boltstore.NewUserRepository(store)
	ctx := context.Background()
	if _, err := users.Create(ctx, userdom.User{ID: "admin1", Email: "admin@example.com", Role: userdom.RoleAdmin, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	carts := usecase.NewCartUsecase(boltstore.NewCartRepository(store), nil)
	sessions := usecase.NewSessionManager(carts, nil)
	catalog := usecase.NewCatalogUsecase(boltstore.NewProductRepository(store), nil)
	roles := usecase.NewRoleGate(users, nil)
	profiles := usecase.NewProfileUsecase(users, nil)
	importer := usecase.NewCatalogImportUsecase(catalog, catalog, nil)
	auth := usecase.NewAuthUsecase(fakeProvider{}, applyPublisher{m: sessions}, nil)

	h := NewRouter(Deps{
		Auth: &middleware.Auth{Verifier: fakeVerifier{
			"admin-token": {UID: "admin1", Email: "admin@example.com"},
			"user-token":  {UID: "u1", Email: "u1@example.com"},
		}},
		Products: apiHandler.NewProductHandler(catalog, roles, true, nil),
		Session:  apiHandler.NewAuthHandler(auth, nil),
		Cart:     apiHandler.NewCartHandler(carts, sessions, catalog, nil),
		Me:       apiHandler.NewMeHandler(roles, profiles, nil),
		Import:   apiHandler.NewImportHandler(importer, roles, nil),
	})
	return &testServer{t: t, handler: h, users: users}
}

func (s *testServer) do(method, path, token, contentType string, body []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(method, path, token string, v any) *httptest.ResponseRecorder {
	s.t.Helper()
	var body []byte
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		body = b
	}
	return s.do(method, path, token, "application/json", body)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func (s *testServer) createProduct(name string, price any) string {
	s.t.Helper()
	rec := s.doJSON(http.MethodPost, "/api/products", "admin-token", map[string]any{
		"name": name, "description": name + " description", "price": price,
	})
	expectStatus(s.t, rec, http.StatusCreated)
	return decode[map[string]any](s.t, rec)["id"].(string)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Fatalf("body = %q, want ok", rec.Body.String())
	}
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/products", "", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	if got := decode[map[string]string](t, rec)["message"]; got != "No products found" {
		t.Fatalf("message = %q", got)
	}

	// admin gate
	for _, token := range []string{"", "user-token"} {
		rec = s.doJSON(http.MethodPost, "/api/products", token, map[string]any{"name": "x", "description": "y", "price": 1})
		expectStatus(t, rec, http.StatusForbidden)
		if got := decode[map[string]string](t, rec)["view"]; got != "accessDenied" {
			t.Fatalf("token %q: view = %q, want accessDenied", token, got)
		}
	}

	// missing fields
	for _, body := range []map[string]any{
		{"description": "d", "price": 1},
		{"name": "n", "price": 1},
		{"name": "n", "description": "d"},
		{"name": "n", "description": "d", "price": 0},
	} {
		rec = s.doJSON(http.MethodPost, "/api/products", "admin-token", body)
		expectStatus(t, rec, http.StatusBadRequest)
		if got := decode[map[string]string](t, rec)["message"]; got != "Missing required fields: name, description, price" {
			t.Fatalf("message = %q", got)
		}
	}

	rec = s.doJSON(http.MethodPost, "/api/products", "admin-token", map[string]any{"name": "n", "description": "d", "price": -5})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.doJSON(http.MethodPost, "/api/products", "admin-token", map[string]any{"name": "Widget", "description": "w", "price": "9.99"})
	expectStatus(t, rec, http.StatusCreated)
	created := decode[map[string]any](t, rec)
	if created["imageUrl"] != "" {
		t.Fatalf("created imageUrl = %v, want stored empty value", created["imageUrl"])
	}
	if created["displayImageUrl"] != productdom.PlaceholderImageURL {
		t.Fatalf("created displayImageUrl = %v, want placeholder", created["displayImageUrl"])
	}
	id := created["id"].(string)

	rec = s.do(http.MethodGet, "/api/products", "", "", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[[]map[string]any](t, rec)
	if len(list) != 1 || list[0]["price"].(float64) != 9.99 {
		t.Fatalf("list = %v", list)
	}
	if list[0]["imageUrl"] != "" || list[0]["displayImageUrl"] != productdom.PlaceholderImageURL {
		t.Fatalf("list image fields = %v / %v", list[0]["imageUrl"], list[0]["displayImageUrl"])
	}

	rec = s.do(http.MethodGet, "/api/products/"+id, "", "", nil)
	expectStatus(t, rec, http.StatusOK)

	// an expired session token does not lock the visitor out of the public catalog
	rec = s.do(http.MethodGet, "/api/products", "expired-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	rec = s.do(http.MethodPost, "/api/me/cart/items/"+id, "expired-token", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodGet, "/api/products/nope", "", "", nil)
	expectStatus(t, rec, http.StatusNotFound)
	if got := decode[map[string]string](t, rec)["message"]; got != "Product not found" {
		t.Fatalf("message = %q", got)
	}

	rec = s.do(http.MethodGet, "/api/products/export.csv", "", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.HasPrefix(rec.Body.String(), "id,name,description,price,origincountry,vendor,imageurl\n") {
		t.Fatalf("export = %q", rec.Body.String())
	}
}

func TestCart(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct("Widget", "2.50")

	rec := s.do(http.MethodPost, "/api/me/cart/items/"+id, "", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
	body := decode[map[string]string](t, rec)
	if body["redirect"] != "login" || body["message"] != "Please log in to add items to your cart." {
		t.Fatalf("body = %v", body)
	}

	type cartView struct {
		Items     map[string]int `json:"items"`
		Subtotal  float64        `json:"subtotal"`
		CartCount int            `json:"cartCount"`
		Warning   string         `json:"warning"`
	}

	s.do(http.MethodPost, "/api/me/cart/items/"+id, "user-token", "", nil)
	s.do(http.MethodPost, "/api/me/cart/items/"+id, "user-token", "", nil)
	rec = s.do(http.MethodPost, "/api/me/cart/items/gone", "user-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	v := decode[cartView](t, rec)
	if v.CartCount != 3 || v.Subtotal != 5 || v.Warning != "" {
		t.Fatalf("cart = %+v, want count 3 subtotal 5", v)
	}

	rec = s.do(http.MethodPost, "/api/me/cart/items/"+id+"/decrement", "user-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if v = decode[cartView](t, rec); v.Items[id] != 1 {
		t.Fatalf("items = %v, want %s:1", v.Items, id)
	}

	rec = s.do(http.MethodDelete, "/api/me/cart/items/gone", "user-token", "", nil)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/api/me/cart", "user-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if v = decode[cartView](t, rec); len(v.Items) != 1 || v.Subtotal != 2.5 {
		t.Fatalf("cart = %+v", v)
	}

	// anonymous reads an empty cart
	rec = s.do(http.MethodGet, "/api/me/cart", "", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if v = decode[cartView](t, rec); v.CartCount != 0 {
		t.Fatalf("anonymous cart = %+v", v)
	}
}

func TestSignOutClearsSessionButKeepsStoredCart(t *testing.T) {
	s := newTestServer(t)
	id := s.createProduct("Widget", 3)

	expectStatus(t, s.do(http.MethodPost, "/api/me/cart/items/"+id, "user-token", "", nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPost, "/api/auth/sign-out", "user-token", "", nil), http.StatusNoContent)

	rec := s.do(http.MethodGet, "/api/me/cart", "user-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]any](t, rec)["cartCount"].(float64); got != 1 {
		t.Fatalf("cartCount after re-sign-in = %v, want 1", got)
	}
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.doJSON(http.MethodPost, "/api/auth/sign-in", "", map[string]string{"email": "u1@example.com", "password": "secret"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]any](t, rec)["idToken"]; got != "user-token" {
		t.Fatalf("idToken = %v", got)
	}

	rec = s.doJSON(http.MethodPost, "/api/auth/sign-in", "", map[string]string{"email": "u1@example.com", "password": "wrong"})
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.doJSON(http.MethodPost, "/api/auth/sign-up", "", map[string]string{"email": "", "password": "secret"})
	expectStatus(t, rec, http.StatusBadRequest)

	rec = s.do(http.MethodPost, "/api/auth/sign-out", "", "", nil)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRoleViewsAndProfile(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/me/role", "", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if r := decode[map[string]any](t, rec); r["authenticated"] != false || r["role"] != "" {
		t.Fatalf("anonymous role = %v", r)
	}

	rec = s.do(http.MethodGet, "/api/me/role", "user-token", "", nil)
	if r := decode[map[string]any](t, rec); r["role"] != "user" {
		t.Fatalf("role = %v, want user", r)
	}
	if _, err := s.users.GetByID(context.Background(), "u1"); err != nil {
		t.Fatalf("profile not created: %v", err)
	}

	views := []struct {
		token, view, want string
	}{
		{"user-token", "admin", "accessDenied"},
		{"admin-token", "admin", "admin"},
		{"", "cart", "login"},
		{"", "profile", "login"},
		{"user-token", "cart", "cart"},
		{"", "nowhere", "products"},
	}
	for _, tc := range views {
		rec = s.do(http.MethodGet, "/api/me/views/"+tc.view, tc.token, "", nil)
		if got := decode[map[string]string](t, rec)["view"]; got != tc.want {
			t.Fatalf("view %s (%q) = %q, want %q", tc.view, tc.token, got, tc.want)
		}
	}

	expectStatus(t, s.do(http.MethodGet, "/api/me/profile", "", "", nil), http.StatusUnauthorized)

	rec = s.doJSON(http.MethodPatch, "/api/me/profile", "user-token", map[string]string{"name": "  Ada  ", "nickname": "ada"})
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodGet, "/api/me/profile", "user-token", "", nil)
	p := decode[map[string]any](t, rec)
	if p["name"] != "Ada" || p["nickname"] != "ada" || p["email"] != "u1@example.com" || p["role"] != "user" {
		t.Fatalf("profile = %v", p)
	}

	rec = s.doJSON(http.MethodPatch, "/api/me/profile", "user-token", map[string]string{"avatar": "ftp://x"})
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestImport(t *testing.T) {
	s := newTestServer(t)
	good := "name,description,price,origincountry\nWidget,A nice widget,9.99,USA\nMug,\"Ceramic, white\",4.50,PT\n"

	expectStatus(t, s.do(http.MethodPost, "/api/admin/products/import", "user-token", "text/csv", []byte(good)), http.StatusForbidden)

	rec := s.do(http.MethodPost, "/api/admin/products/import/validate", "admin-token", "text/csv",
		[]byte("name,description,price\nWidget,A,1\n"))
	expectStatus(t, rec, http.StatusBadRequest)
	v := decode[map[string]any](t, rec)
	if v["rule"] != "header" || !strings.Contains(v["message"].(string), "origincountry") {
		t.Fatalf("validation = %v", v)
	}

	rec = s.do(http.MethodPost, "/api/admin/products/import/validate", "admin-token", "text/csv",
		[]byte("name,description,price,origincountry\nWidget,A,-5,USA\n"))
	expectStatus(t, rec, http.StatusBadRequest)
	if v = decode[map[string]any](t, rec); v["line"].(float64) != 2 {
		t.Fatalf("line = %v, want 2", v["line"])
	}

	rec = s.do(http.MethodPost, "/api/admin/products/import/validate", "admin-token", "text/csv", []byte(good))
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodPost, "/api/admin/products/import", "admin-token", "text/csv", []byte(good))
	expectStatus(t, rec, http.StatusOK)
	res := decode[map[string]any](t, rec)
	if res["imported"].(float64) != 2 || res["failed"].(float64) != 0 || res["outcome"] != "full" {
		t.Fatalf("import = %v", res)
	}

	// xlsx upload
	xlsx, err := spreadsheet.FromRecords([][]string{
		{"Price", "Name", "Description", "OriginCountry"},
		{"12", "Lamp", "Desk lamp", "DE"},
	})
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "products.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = fw.Write(xlsx)
	_ = mw.Close()

	rec = s.do(http.MethodPost, "/api/admin/products/import", "admin-token", mw.FormDataContentType(), buf.Bytes())
	expectStatus(t, rec, http.StatusOK)
	if res = decode[map[string]any](t, rec); res["imported"].(float64) != 1 {
		t.Fatalf("xlsx import = %v", res)
	}

	rec = s.do(http.MethodGet, "/api/products", "", "", nil)
	if list := decode[[]map[string]any](t, rec); len(list) != 3 {
		t.Fatalf("products = %d, want 3", len(list))
	}

	rec = s.do(http.MethodGet, "/api/admin/products/import/template.xlsx", "admin-token", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if _, err := spreadsheet.ToCSV(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Fatalf("template unreadable: %v", err)
	}
}
