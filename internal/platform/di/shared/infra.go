// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	boltstore "storefront/internal/adapters/out/bolt"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
)

// Infra is shared runtime infrastructure for DI.
//   - owns external clients (Firestore, bbolt or PostgreSQL, FirebaseAuth, GCS, SecretManager)
//   - owns values resolved once at boot (Firebase web API key)
//
// Infra must NOT depend on routers or handlers.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string
	Log       *zap.Logger

	// Document store: exactly one of these is set, per STORE_DRIVER.
	Firestore *firestoreinfra.ClientWrapper
	Bolt      *boltstore.Store
	Postgres  *database.DB

	// Optional clients (nil when unavailable)
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client

	// FirebaseAPIKey enables email/password sign-in ("" = disabled).
	FirebaseAPIKey string

	// ClientOptions are reused by adapters that build their own Google clients.
	ClientOptions []option.ClientOption
}

// NewInfra initializes shared infra.
// The document store is strict (return error).
// Firebase/Auth, SecretManager and GCS are best-effort (warn + continue).
func NewInfra(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("infra")

	inf := &Infra{
		Config:    cfg,
		ProjectID: strings.TrimSpace(cfg.FirestoreProjectID),
		Log:       log,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	if credFile != "" {
		inf.ClientOptions = append(inf.ClientOptions, option.WithCredentialsFile(credFile))
		log.Info("using credentials file for GCP clients", zap.String("file", redactPath(credFile)))
	} else if cfg.UsesGCP() {
		log.Info("using Application Default Credentials")
	}

	// 1) Document store (strict)
	switch cfg.StoreDriver {
	case appcfg.StoreBolt:
		st, err := boltstore.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: bolt open %s: %w", cfg.BoltPath, err)
		}
		inf.Bolt = st
		log.Info("bolt store opened", zap.String("path", cfg.BoltPath))
	case appcfg.StorePostgres:
		pg, err := database.NewConnection(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("shared.infra: postgres: %w", err)
		}
		inf.Postgres = pg
	default:
		cw, err := firestoreinfra.NewClient(ctx, inf.ProjectID, credFile, log)
		if err != nil {
			return nil, fmt.Errorf("shared.infra: firestore (project=%s): %w", inf.ProjectID, err)
		}
		inf.Firestore = cw
	}

	if cfg.UsesGCP() {
		// 2) Secret Manager (best-effort)
		if sm, err := secretmanager.NewClient(ctx, inf.ClientOptions...); err != nil {
			log.Warn("secretmanager.NewClient failed, secrets disabled", zap.Error(err))
		} else {
			inf.SecretManager = sm
		}

		// 3) GCS (best-effort; only gs:// imports need it)
		if gcs, err := storage.NewClient(ctx, inf.ClientOptions...); err != nil {
			log.Warn("storage.NewClient failed, gs:// imports disabled", zap.Error(err))
		} else {
			inf.GCS = gcs
		}
	}

	// 4) Firebase App/Auth (best-effort)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		fbApp, err := firebase.NewApp(ctx, fbCfg, inf.ClientOptions...)
		if err != nil {
			log.Warn("firebase app init failed", zap.Error(err))
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Warn("firebase auth init failed", zap.Error(err))
			} else {
				inf.FirebaseAuth = authClient
				log.Info("firebase auth initialized")
			}
		}
	}

	// 5) Firebase web API key: env first, then Secret Manager
	inf.FirebaseAPIKey = strings.TrimSpace(cfg.FirebaseAPIKey)
	if inf.FirebaseAPIKey == "" && strings.TrimSpace(cfg.FirebaseAPIKeySecret) != "" {
		key, err := newSecretProvider(inf.SecretManager, firstNonEmpty(cfg.GCPProjectID, cfg.FirestoreProjectID)).Get(ctx, cfg.FirebaseAPIKeySecret)
		if err != nil {
			log.Warn("firebase api key secret unavailable, password sign-in disabled", zap.Error(err))
		} else {
			inf.FirebaseAPIKey = key
		}
	}
	if inf.FirebaseAPIKey == "" {
		log.Warn("FIREBASE_API_KEY not configured, password sign-in disabled")
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
	}
	if i.Bolt != nil {
		errs = append(errs, i.Bolt.Close())
	}
	if i.Postgres != nil {
		errs = append(errs, i.Postgres.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	if i.SecretManager != nil {
		errs = append(errs, i.SecretManager.Close())
	}
	return errors.Join(errs...)
}

func redactPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return ".../" + p[i+1:]
	}
	return p
}
