// internal/application/usecase/catalog_import_usecase.go
package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	importdom "storefront/internal/domain/catalogimport"
)

// ImportOutcome summarizes a finished import.
type ImportOutcome string

const (
	ImportFull    ImportOutcome = "full"
	ImportPartial ImportOutcome = "partial"
	ImportFailed  ImportOutcome = "failed"
)

const defaultImportConcurrency = 4

// RowFailure is one row whose write did not go through.
type RowFailure struct {
	Line int    `json:"line"`
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// ImportResult is the per-batch accounting.
type ImportResult struct {
	Imported   int           `json:"imported"`
	Failed     int           `json:"failed"`
	Outcome    ImportOutcome `json:"outcome"`
	Failures   []RowFailure  `json:"failures,omitempty"`
	RefreshErr error         `json:"-"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
}

func outcomeOf(imported, failed int) ImportOutcome {
	switch {
	case failed == 0:
		return ImportFull
	case imported == 0:
		return ImportFailed
	default:
		return ImportPartial
	}
}

// CatalogImportUsecase validates and bulk-inserts CSV catalog rows.
type CatalogImportUsecase struct {
	writer      ProductWriter
	refresher   CatalogRefresher
	reporter    ImportReporter
	concurrency int
	clock       Clock
	log         *zap.Logger
}

type ImportOption func(*CatalogImportUsecase)

// WithImportConcurrency bounds the number of in-flight row writes.
func WithImportConcurrency(n int) ImportOption {
	return func(uc *CatalogImportUsecase) {
		if n > 0 {
			uc.concurrency = n
		}
	}
}

// WithImportReporter sends every result to r after the refresh.
func WithImportReporter(r ImportReporter) ImportOption {
	return func(uc *CatalogImportUsecase) { uc.reporter = r }
}

func WithImportClock(c Clock) ImportOption {
	return func(uc *CatalogImportUsecase) {
		if c != nil {
			uc.clock = c
		}
	}
}

func NewCatalogImportUsecase(writer ProductWriter, refresher CatalogRefresher, log *zap.Logger, opts ...ImportOption) *CatalogImportUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	uc := &CatalogImportUsecase{
		writer:      writer,
		refresher:   refresher,
		concurrency: defaultImportConcurrency,
		clock:       systemClock{},
		log:         log.Named("catalog_import"),
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

// Validate applies the CSV rules; the error is a *catalogimport.ValidationError.
func (uc *CatalogImportUsecase) Validate(raw string) error {
	return importdom.Validate(raw)
}

// Import validates raw and writes every row independently.
// A validation failure is returned as is and nothing is written.
// The catalog refresh runs after the pass no matter how many rows failed.
func (uc *CatalogImportUsecase) Import(ctx context.Context, raw string) (ImportResult, error) {
	batch, err := importdom.Parse(raw)
	if err != nil {
		return ImportResult{}, err
	}
	drafts, err := batch.Drafts()
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{StartedAt: uc.clock.Now()}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.concurrency)

	for _, rd := range drafts {
		rd := rd
		g.Go(func() error {
			werr := rd.Draft.Validate()
			if werr == nil {
				_, werr = uc.writer.Add(ctx, rd.Draft.ToProduct(uc.clock.Now()))
			}

			mu.Lock()
			defer mu.Unlock()
			if werr != nil {
				res.Failed++
				res.Failures = append(res.Failures, RowFailure{Line: rd.Line, Name: rd.Draft.Name, Err: werr})
				uc.log.Warn("row failed", zap.Int("line", rd.Line), zap.String("name", rd.Draft.Name), zap.Error(werr))
				return nil
			}
			res.Imported++
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Line < res.Failures[j].Line })
	res.Outcome = outcomeOf(res.Imported, res.Failed)

	if uc.refresher != nil {
		if rerr := uc.refresher.Refresh(ctx); rerr != nil {
			res.RefreshErr = rerr
			uc.log.Warn("catalog refresh failed", zap.Error(rerr))
		}
	}
	res.FinishedAt = uc.clock.Now()

	uc.log.Info("import finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("imported", res.Imported),
		zap.Int("failed", res.Failed),
	)

	if uc.reporter != nil {
		if rerr := uc.reporter.ReportImport(ctx, res); rerr != nil {
			uc.log.Warn("import report not sent", zap.Error(rerr))
		}
	}
	return res, nil
}
