package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/tutorbook/tutorbook/internal/config"
	"github.com/tutorbook/tutorbook/internal/db"
	dbAlgolia "github.com/tutorbook/tutorbook/internal/db/algolia"
	dbRedis "github.com/tutorbook/tutorbook/internal/db/redis"
	logpkg "github.com/tutorbook/tutorbook/internal/logger"
	"github.com/tutorbook/tutorbook/internal/metrics"
	apptrepo "github.com/tutorbook/tutorbook/internal/repository/appt"
	membershiprepo "github.com/tutorbook/tutorbook/internal/repository/membership"
	searchrepo "github.com/tutorbook/tutorbook/internal/repository/search"
	userrepo "github.com/tutorbook/tutorbook/internal/repository/user"
	chiTransport "github.com/tutorbook/tutorbook/internal/transport/chi"
	fbTransport "github.com/tutorbook/tutorbook/internal/transport/firebase"
	healthuc "github.com/tutorbook/tutorbook/internal/usecase/health"
	identityuc "github.com/tutorbook/tutorbook/internal/usecase/identity"
	indexinguc "github.com/tutorbook/tutorbook/internal/usecase/indexing"
	searchuc "github.com/tutorbook/tutorbook/internal/usecase/search"
	"github.com/tutorbook/tutorbook/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tutorbook search API",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_driver", cfg.Search.Driver),
		zap.String("search_index", cfg.Search.Index),
		zap.String("appt_index", cfg.Search.ApptIndex),
		zap.String("identity_driver", cfg.Identity.Driver),
		zap.String("membership_driver", cfg.Membership.Driver),
	)

	ctx := context.Background()
	metrics.RegisterSearchMetrics()

	// Redis backs the self-hosted index and org documents.
	var redisStore *dbRedis.Store
	if cfg.UsesRedis() {
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Database.Addrs))
	}

	idx := buildIndex(cfg, redisStore, logger)

	ident := buildIdentity(ctx, cfg, redisStore, logger)
	if ident.close != nil {
		defer ident.close()
	}

	if cfg.Search.EnsureSchema {
		if err := idx.indexing.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure user index schema", zap.Error(err))
		}
		if idx.appts != nil {
			if err := idx.appts.EnsureSchema(ctx); err != nil {
				logger.Fatal("Failed to ensure appt index schema", zap.Error(err))
			}
		}
		if ident.orgs != nil {
			if err := ident.orgs.EnsureSchema(ctx); err != nil {
				logger.Fatal("Failed to ensure org index schema", zap.Error(err))
			}
		}
		logger.Info("Index schema ensured")
	}

	executor := searchuc.NewExecutor(idx.search, searchuc.ExecutorConfig{
		Backend:       cfg.Search.Driver,
		MaxConcurrent: cfg.Search.MaxConcurrentQueries,
		QueryTimeout:  time.Duration(cfg.Search.QueryTimeoutMs) * time.Millisecond,
	})
	searchSvc := searchuc.New(executor, identityuc.NewResolver(ident.verifier, ident.members))

	var orgWriter indexinguc.OrgWriter
	if ident.orgs != nil {
		orgWriter = ident.orgs
	}
	indexingSvc := indexinguc.New(idx.indexing, orgWriter)
	if idx.appts != nil {
		indexingSvc.WithAppts(idx.appts)
	}

	var membershipProbe healthuc.Pinger
	if ident.orgs != nil {
		membershipProbe = ident.orgs
	}
	healthSvc := healthuc.New(idx.indexing, membershipProbe)

	server := chiTransport.NewServer(searchSvc, indexingSvc, healthSvc, chiTransport.PagingConfig{
		DefaultHitsPerPage: cfg.Search.HitsPerPage,
		MaxHitsPerPage:     cfg.Search.MaxHitsPerPage,
	}, logger)

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("No API keys configured, index write routes are unauthenticated")
	}

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r, cfg.Auth.APIKeys)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// userIndex is the write side of the user index: it also answers health probes.
type userIndex interface {
	indexinguc.Repository
	healthuc.Pinger
}

// indexBackend is the search side wired for one driver. appts is nil when
// appointment indexing is disabled.
type indexBackend struct {
	search   *searchrepo.Repo
	indexing userIndex
	appts    indexinguc.ApptRepository
}

func buildIndex(cfg config.Config, redisStore *dbRedis.Store, logger *zap.Logger) indexBackend {
	switch cfg.Search.Driver {
	case "algolia":
		store, err := dbAlgolia.NewStore(dbAlgolia.Config{
			AppID:             cfg.Search.Algolia.AppID,
			APIKey:            cfg.Search.Algolia.APIKey,
			Index:             cfg.Search.Index,
			RequestsPerSecond: cfg.Search.Algolia.RequestsPerSecond,
			Burst:             cfg.Search.Algolia.Burst,
		})
		if err != nil {
			logger.Fatal("Failed to create algolia store", zap.Error(err))
		}
		b := indexBackend{
			search:   searchrepo.New(store, cfg.Search.Index, ""),
			indexing: userrepo.NewHosted(store, cfg.Search.Index),
		}
		if cfg.Search.ApptIndex != "" {
			b.appts = apptrepo.NewHosted(store, cfg.Search.ApptIndex)
		}
		return b
	default:
		ks := db.Keyspace{Prefix: cfg.Storage.KeyPrefix, Name: cfg.Search.Index}
		b := indexBackend{
			search:   searchrepo.New(redisStore, ks.Index(), ks.DocPrefix()),
			indexing: userrepo.New(redisStore, ks),
		}
		if cfg.Search.ApptIndex != "" {
			b.appts = apptrepo.New(redisStore, db.Keyspace{Prefix: cfg.Storage.KeyPrefix, Name: cfg.Search.ApptIndex})
		}
		return b
	}
}

// identityBackend is the caller-identity side wired for one driver pair.
type identityBackend struct {
	verifier identityuc.Verifier
	members  identityuc.MembershipReader
	orgs     *membershiprepo.Repo // nil when org documents are read-only here
	close    func()
}

func buildIdentity(
	ctx context.Context, cfg config.Config, redisStore *dbRedis.Store, logger *zap.Logger,
) identityBackend {
	var b identityBackend

	var fsClient *firestore.Client
	switch cfg.Identity.Driver {
	case "firebase":
		app, err := fbTransport.NewApp(ctx, fbTransport.Config{
			ProjectID:       cfg.Identity.ProjectID,
			CredentialsFile: cfg.Identity.CredentialsFile,
		})
		if err != nil {
			logger.Fatal("Failed to init firebase", zap.Error(err))
		}
		authClient, err := app.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to init firebase auth", zap.Error(err))
		}
		b.verifier = fbTransport.NewVerifier(authClient, cfg.Identity.CheckRevoked)

		if cfg.Membership.Driver == "firestore" {
			fsClient, err = app.Firestore(ctx)
			if err != nil {
				logger.Fatal("Failed to init firestore", zap.Error(err))
			}
			b.close = func() { _ = fsClient.Close() }
		}
	default:
		b.verifier = identityuc.NewStaticVerifier(cfg.Identity.StaticTokens)
	}

	switch cfg.Membership.Driver {
	case "firestore":
		b.members = fbTransport.NewMembershipStore(fsClient, cfg.Membership.Index)
	default:
		b.orgs = membershiprepo.New(redisStore, db.Keyspace{Prefix: cfg.Storage.KeyPrefix, Name: cfg.Membership.Index})
		b.members = b.orgs
	}
	return b
}
