// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	productdom "storefront/internal/domain/product"
)

// CreateProductInput is the admin add-product body. Price is loosely typed
// (JSON number or numeric string).
type CreateProductInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       any    `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Vendor      string `json:"vendor,omitempty"`
	Origin      string `json:"originCountry,omitempty"`
}

// BackfillResult counts the vendor backfill outcome.
type BackfillResult struct {
	Updated int
	Skipped int
}

type catalogSnapshot struct {
	index productdom.Catalog
	at    time.Time
}

// CatalogUsecase serves the product catalog and keeps an in-memory snapshot
// that cart totals are priced against.
type CatalogUsecase struct {
	repo  productdom.Repository
	clock Clock
	log   *zap.Logger

	snap atomic.Pointer[catalogSnapshot]
}

func NewCatalogUsecase(repo productdom.Repository, log *zap.Logger) *CatalogUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogUsecase{repo: repo, clock: systemClock{}, log: log.Named("catalog")}
}

// NewCatalogUsecaseWithClock is useful for tests.
func NewCatalogUsecaseWithClock(repo productdom.Repository, clock Clock, log *zap.Logger) *CatalogUsecase {
	uc := NewCatalogUsecase(repo, log)
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// ==============================
// Queries
// ==============================

// List reads the whole collection and refreshes the snapshot with it.
func (uc *CatalogUsecase) List(ctx context.Context) ([]productdom.Product, error) {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	uc.store(list)
	return list, nil
}

func (uc *CatalogUsecase) Get(ctx context.Context, id string) (productdom.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return uc.repo.GetByID(ctx, id)
}

// Snapshot returns the last loaded catalog (empty before the first Refresh).
func (uc *CatalogUsecase) Snapshot() productdom.Catalog {
	if s := uc.snap.Load(); s != nil {
		return s.index
	}
	return productdom.Catalog{}
}

// SnapshotTime is the time of the last successful refresh (zero if none).
func (uc *CatalogUsecase) SnapshotTime() time.Time {
	if s := uc.snap.Load(); s != nil {
		return s.at
	}
	return time.Time{}
}

// Refresh re-reads every product into the snapshot.
func (uc *CatalogUsecase) Refresh(ctx context.Context) error {
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("catalog refresh: %w", err)
	}
	uc.store(list)
	uc.log.Debug("snapshot refreshed", zap.Int("products", len(list)))
	return nil
}

func (uc *CatalogUsecase) store(list []productdom.Product) {
	uc.snap.Store(&catalogSnapshot{index: productdom.NewCatalog(list), at: uc.clock.Now()})
}

// ==============================
// Commands
// ==============================

// Create validates an add-product request and inserts it.
// Missing name/description/price -> productdom.ErrMissingFields.
func (uc *CatalogUsecase) Create(ctx context.Context, in CreateProductInput) (productdom.Product, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Description) == "" || isEmptyPrice(in.Price) {
		return productdom.Product{}, productdom.ErrMissingFields
	}
	price, err := productdom.ParsePrice(in.Price)
	if err != nil {
		return productdom.Product{}, err
	}
	// a zero price counts as not supplied
	if price.IsZero() {
		return productdom.Product{}, productdom.ErrMissingFields
	}
	d := productdom.Draft{
		Name:          in.Name,
		Description:   in.Description,
		Price:         price,
		ImageURL:      in.ImageURL,
		OriginCountry: in.Origin,
		Vendor:        in.Vendor,
	}
	if err := d.Validate(); err != nil {
		return productdom.Product{}, err
	}

	p, err := uc.repo.Add(ctx, d.ToProduct(uc.clock.Now()))
	if err != nil {
		return productdom.Product{}, fmt.Errorf("catalog create: %w", err)
	}
	if err := uc.Refresh(ctx); err != nil {
		uc.log.Warn("refresh after create failed", zap.Error(err))
	}
	return p, nil
}

// Add writes one product without refreshing (used by bulk paths).
func (uc *CatalogUsecase) Add(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	return uc.repo.Add(ctx, p)
}

// BackfillVendors gives every product without a vendor a default one.
func (uc *CatalogUsecase) BackfillVendors(ctx context.Context) (BackfillResult, error) {
	var res BackfillResult
	list, err := uc.repo.ListAll(ctx)
	if err != nil {
		return res, fmt.Errorf("backfill list: %w", err)
	}
	for _, p := range list {
		if strings.TrimSpace(p.Vendor) != "" {
			res.Skipped++
			continue
		}
		v := productdom.VendorFor(p.Name)
		if err := uc.repo.SetVendor(ctx, p.ID, v); err != nil {
			return res, fmt.Errorf("backfill id=%s: %w", p.ID, err)
		}
		uc.log.Info("vendor set", zap.String("id", p.ID), zap.String("name", p.Name), zap.String("vendor", v))
		res.Updated++
	}
	return res, nil
}

// SeedSamples inserts the demo catalog.
func (uc *CatalogUsecase) SeedSamples(ctx context.Context) ([]productdom.Product, error) {
	drafts := productdom.SampleDrafts()
	out := make([]productdom.Product, 0, len(drafts))
	for _, d := range drafts {
		p, err := uc.repo.Add(ctx, d.ToProduct(uc.clock.Now()))
		if err != nil {
			return out, fmt.Errorf("seed %q: %w", d.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// ==============================
// Export
// ==============================

type exportRow struct {
	ID            string `csv:"id"`
	Name          string `csv:"name"`
	Description   string `csv:"description"`
	Price         string `csv:"price"`
	OriginCountry string `csv:"origincountry"`
	Vendor        string `csv:"vendor"`
	ImageURL      string `csv:"imageurl"`
}

// ExportCSV writes the current store contents as CSV.
func (uc *CatalogUsecase) ExportCSV(ctx context.Context, w io.Writer) error {
	list, err := uc.List(ctx)
	if err != nil {
		return err
	}
	rows := make([]exportRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, exportRow{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			Price:         p.Price.StringFixed(2),
			OriginCountry: p.OriginCountry,
			Vendor:        p.Vendor,
			ImageURL:      p.ImageURL,
		})
	}
	return gocsv.Marshal(&rows, w)
}

func isEmptyPrice(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}
