package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	boltstore "storefront/internal/adapters/out/bolt"
	appcfg "storefront/internal/infra/config"
	shared "storefront/internal/platform/di/shared"
)

func newBoltInfra(t *testing.T) *shared.Infra {
	t.Helper()
	st, err := boltstore.Open(filepath.Join(t.TempDir(), "di.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return &shared.Infra{
		Config: &appcfg.Config{
			StoreDriver:           appcfg.StoreBolt,
			ImportConcurrency:     2,
			RequireAdminForWrites: true,
		},
		Bolt: st,
	}
}

func TestBuildWithBolt(t *testing.T) {
	c, err := Build(context.Background(), newBoltInfra(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer c.Close()

	if c.ImportSource != nil {
		t.Fatalf("ImportSource = %v, want nil without GCS", c.ImportSource)
	}

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}

	// password auth is off without an API key
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	c.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("sign-in = %d, want 502", rec.Code)
	}

	// bearer tokens cannot be verified without Firebase Auth
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/me/cart", nil)
	req.Header.Set("Authorization", "Bearer x")
	c.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("cart with token = %d, want 503", rec.Code)
	}

	if _, err := c.CatalogUC.SeedSamples(context.Background()); err != nil {
		t.Fatalf("SeedSamples: %v", err)
	}
	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("products = %d", rec.Code)
	}
}

func TestBuildWithoutStore(t *testing.T) {
	_, err := Build(context.Background(), &shared.Infra{Config: &appcfg.Config{}})
	if err == nil {
		t.Fatalf("Build without store: want error")
	}
}

func TestCloseTwice(t *testing.T) {
	c, err := Build(context.Background(), newBoltInfra(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_ = c.Close()
	_ = c.Close()
}
