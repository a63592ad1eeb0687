// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	api "storefront/internal/adapters/in/http/api"
	apiHandler "storefront/internal/adapters/in/http/api/handler"
	"storefront/internal/adapters/in/http/middleware"
	boltstore "storefront/internal/adapters/out/bolt"
	pgstore "storefront/internal/adapters/out/db"
	fbadapter "storefront/internal/adapters/out/firebase"
	outfs "storefront/internal/adapters/out/firestore"
	gcsadapter "storefront/internal/adapters/out/gcs"
	mailadapter "storefront/internal/adapters/out/mail"
	usecase "storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
	"storefront/internal/infra/sessionbus"
	shared "storefront/internal/platform/di/shared"
)

// errPasswordAuthDisabled is returned by sign-up / sign-in without a Firebase web API key.
var errPasswordAuthDisabled = errors.New("di: password sign-in is not configured (FIREBASE_API_KEY)")

// Container is everything main.go needs, built once from Infra.
type Container struct {
	Infra *shared.Infra
	Log   *zap.Logger

	// Repositories (Firestore, bbolt or PostgreSQL)
	Carts    cartdom.Repository
	Products productdom.Repository
	Users    userdom.Repository

	// Session notification
	Bus *sessionbus.Bus

	// Usecases
	CartUC    *usecase.CartUsecase
	Sessions  *usecase.SessionManager
	CatalogUC *usecase.CatalogUsecase
	ImportUC  *usecase.CatalogImportUsecase
	RoleGate  *usecase.RoleGate
	ProfileUC *usecase.ProfileUsecase
	AuthUC    *usecase.AuthUsecase

	// ImportSource reads gs:// objects (nil without GCS).
	ImportSource *gcsadapter.ImportSource

	// Router is the full HTTP surface.
	Router http.Handler

	stop context.CancelFunc
	sub  *sessionbus.Subscription
}

// Build wires repositories, usecases and handlers on top of inf.
// The session manager starts consuming the bus immediately.
func Build(ctx context.Context, inf *shared.Infra) (*Container, error) {
	if inf == nil || inf.Config == nil {
		return nil, errors.New("di: infra is nil")
	}
	log := inf.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := inf.Config

	c := &Container{Infra: inf, Log: log}

	// ------------------------------------------------------------
	// Repositories
	// ------------------------------------------------------------
	switch {
	case inf.Bolt != nil:
		c.Carts = boltstore.NewCartRepository(inf.Bolt)
		c.Products = boltstore.NewProductRepository(inf.Bolt)
		c.Users = boltstore.NewUserRepository(inf.Bolt)
	case inf.Postgres != nil:
		db := inf.Postgres.Client
		c.Carts = pgstore.NewCartRepositoryPG(db)
		c.Products = pgstore.NewProductRepositoryPG(db)
		c.Users = pgstore.NewUserRepositoryPG(db)
	case inf.Firestore != nil:
		fs := inf.Firestore.Client
		c.Carts = outfs.NewCartRepositoryFS(fs)
		c.Products = outfs.NewProductRepositoryFS(fs)
		c.Users = outfs.NewUserRepositoryFS(fs)
	default:
		return nil, errors.New("di: no document store configured")
	}

	// ------------------------------------------------------------
	// Usecases
	// ------------------------------------------------------------
	c.Bus = sessionbus.New(log)
	c.CartUC = usecase.NewCartUsecase(c.Carts, log)
	c.Sessions = usecase.NewSessionManager(c.CartUC, log)
	c.CatalogUC = usecase.NewCatalogUsecase(c.Products, log)
	c.RoleGate = usecase.NewRoleGate(c.Users, log)
	c.ProfileUC = usecase.NewProfileUsecase(c.Users, log)

	importOpts := []usecase.ImportOption{usecase.WithImportConcurrency(cfg.ImportConcurrency)}
	if cfg.MailEnabled() {
		sender := mailadapter.NewSendGridClient(cfg.SendGridAPIKey, "Storefront", log)
		importOpts = append(importOpts, usecase.WithImportReporter(
			mailadapter.NewImportReportMailer(sender, cfg.SendGridFrom, cfg.ImportReportEmail),
		))
		log.Info("import reports enabled", zap.String("to", cfg.ImportReportEmail))
	}
	c.ImportUC = usecase.NewCatalogImportUsecase(c.CatalogUC, c.CatalogUC, log, importOpts...)

	var provider usecase.AuthProvider = disabledAuthProvider{}
	if inf.FirebaseAPIKey != "" {
		p, err := fbadapter.NewAuthProvider(ctx, inf.FirebaseAPIKey)
		if err != nil {
			log.Warn("identity toolkit init failed, password sign-in disabled", zap.Error(err))
		} else {
			provider = p
		}
	}
	c.AuthUC = usecase.NewAuthUsecase(provider, c.Bus, log)

	if inf.GCS != nil {
		c.ImportSource = gcsadapter.NewImportSource(inf.GCS)
	}

	// ------------------------------------------------------------
	// Session events -> cart sessions
	// ------------------------------------------------------------
	runCtx, stop := context.WithCancel(context.Background())
	c.stop = stop
	c.sub = c.Bus.Subscribe(0)
	go c.Sessions.Run(runCtx, c.sub.C)

	// ------------------------------------------------------------
	// HTTP
	// ------------------------------------------------------------
	auth := &middleware.Auth{Log: log.Named("auth")}
	if inf.FirebaseAuth != nil {
		auth.Verifier = inf.FirebaseAuth
	}

	c.Router = api.NewRouter(api.Deps{
		Auth:               auth,
		Products:           apiHandler.NewProductHandler(c.CatalogUC, c.RoleGate, cfg.RequireAdminForWrites, log),
		Session:            apiHandler.NewAuthHandler(c.AuthUC, log),
		Cart:               apiHandler.NewCartHandler(c.CartUC, c.Sessions, c.CatalogUC, log),
		Me:                 apiHandler.NewMeHandler(c.RoleGate, c.ProfileUC, log),
		Import:             apiHandler.NewImportHandler(c.ImportUC, c.RoleGate, log),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Log:                log,
	})

	return c, nil
}

// Close stops the session consumer and the bus. Infra is closed by its owner.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.stop != nil {
		c.stop()
	}
	c.sub.Cancel()
	if c.Bus != nil {
		c.Bus.Close()
	}
	return nil
}

type disabledAuthProvider struct{}

func (disabledAuthProvider) SignUp(context.Context, string, string) (usecase.AuthResult, error) {
	return usecase.AuthResult{}, errPasswordAuthDisabled
}

func (disabledAuthProvider) SignIn(context.Context, string, string) (usecase.AuthResult, error) {
	return usecase.AuthResult{}, errPasswordAuthDisabled
}
