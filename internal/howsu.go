package internal

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/howsu-app/howsu-backend/internal/config"
	"github.com/howsu-app/howsu-backend/internal/credential"
	"github.com/howsu-app/howsu-backend/internal/directory"
	"github.com/howsu-app/howsu-backend/internal/exchange"
	"github.com/howsu-app/howsu-backend/internal/idtoken"
	"github.com/howsu-app/howsu-backend/internal/log"
	"github.com/howsu-app/howsu-backend/internal/provider"
	"github.com/howsu-app/howsu-backend/internal/records"
	"github.com/howsu-app/howsu-backend/internal/server"
)

// Backend is the assembled howsu application
type Backend struct {
	config     config.Config
	httpServer *server.HTTPServer
	store      records.Store
}

// NewBackend builds the application with all dependencies wired
func NewBackend(ctx context.Context, cfg config.Config) (*Backend, error) {
	log.LogInfoWithFields("howsu", "Building backend", map[string]any{
		"project": cfg.Firebase.ProjectID,
		"storage": string(cfg.Firebase.Storage),
	})

	credentialsJSON, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, fmt.Errorf("loading service account: %w", err)
	}

	dir, err := directory.NewIdentityToolkitService(ctx, cfg.Firebase.ProjectID, credentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("building directory client: %w", err)
	}

	minter, err := credential.NewServiceAccountMinter(credentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("building token minter: %w", err)
	}

	store, err := setupStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setting up record store: %w", err)
	}

	exchanger := exchange.New(dir, minter)
	verifier := idtoken.NewVerifier(cfg.Firebase.ProjectID)

	handler := buildHTTPHandler(cfg, exchanger, verifier, store)
	httpServer := server.NewHTTPServer(handler, cfg.Server.Addr)

	return &Backend{
		config:     cfg,
		httpServer: httpServer,
		store:      store,
	}, nil
}

func setupStore(ctx context.Context, cfg config.Config) (records.Store, error) {
	if cfg.Firebase.Storage == config.StorageMemory {
		log.LogInfoWithFields("howsu", "Using in-memory record store", nil)
		return records.NewMemoryStore(), nil
	}
	return records.NewFirestoreStore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.FirestoreDatabase)
}

func buildHTTPHandler(cfg config.Config, exchanger server.Exchanger, verifier server.TokenVerifier, store records.Store) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", server.NewHealthHandler())

	// Callable login endpoints are unauthenticated: they are how a client
	// obtains credentials in the first place. Each provider can be switched
	// off in config without a redeploy.
	if cfg.Providers.Kakao.IsEnabled() {
		mux.Handle("/kakaoLogin", server.NewKakaoLoginHandler(exchanger, provider.NewKakaoProvider()))
	}
	if cfg.Providers.Naver.IsEnabled() {
		mux.Handle("/verifyNaverToken", server.NewVerifyNaverTokenHandler(exchanger, provider.NewNaverProvider()))
	}

	apiMux := http.NewServeMux()
	server.NewRecordsHandler(store).Register(apiMux)
	mux.Handle("/api/", server.ChainMiddleware(apiMux,
		server.NewAuthMiddleware(verifier),
	))

	return server.ChainMiddleware(mux,
		server.NewCORSMiddleware(cfg.Server.AllowedOrigins),
		server.NewLoggerMiddleware("http"),
		server.NewRecoverMiddleware("http"),
	)
}

// Run starts the backend and blocks until shutdown
func (b *Backend) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.LogInfoWithFields("howsu", "Starting backend", map[string]any{
		"addr": b.config.Server.Addr,
	})

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := b.httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()

		if err := b.httpServer.Stop(); err != nil {
			log.LogErrorWithFields("howsu", "HTTP server shutdown error", map[string]any{
				"error": err.Error(),
			})
			return err
		}
		return nil
	})

	err := group.Wait()

	if closeErr := b.store.Close(); closeErr != nil {
		log.LogErrorWithFields("howsu", "Record store close error", map[string]any{
			"error": closeErr.Error(),
		})
	}

	log.LogInfoWithFields("howsu", "Backend shutdown complete", nil)
	return err
}
