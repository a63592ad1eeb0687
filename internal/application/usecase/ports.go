// internal/application/usecase/ports.go
package usecase

import (
	"context"
	"errors"
	"time"

	productdom "storefront/internal/domain/product"
	sessiondom "storefront/internal/domain/session"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ErrAuthRejected is returned by AuthProvider implementations when the
// provider refuses the credentials (wrong password, existing email, ...).
var ErrAuthRejected = errors.New("auth: rejected")

// AuthResult is what the auth provider hands back after sign-up / sign-in.
type AuthResult struct {
	Identity     sessiondom.Identity
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AuthProvider is the email/password side of the auth provider.
type AuthProvider interface {
	SignUp(ctx context.Context, email, password string) (AuthResult, error)
	SignIn(ctx context.Context, email, password string) (AuthResult, error)
}

// SessionPublisher broadcasts session changes.
type SessionPublisher interface {
	Publish(e sessiondom.Event)
}

// ProductWriter is the only store capability the importer needs.
type ProductWriter interface {
	Add(ctx context.Context, p productdom.Product) (productdom.Product, error)
}

// CatalogRefresher re-reads the persisted catalog.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// CatalogSource hands out the current catalog snapshot.
type CatalogSource interface {
	Snapshot() productdom.Catalog
}

// ImportReporter is notified once per finished import (best-effort).
type ImportReporter interface {
	ReportImport(ctx context.Context, res ImportResult) error
}
