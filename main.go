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

	"github.com/chatmarkmap/chatmarkmap/api/handlers"
	"github.com/chatmarkmap/chatmarkmap/api/internal/config"
	contenthandler "github.com/chatmarkmap/chatmarkmap/api/internal/content/handler"
	contentservice "github.com/chatmarkmap/chatmarkmap/api/internal/content/service"
	"github.com/chatmarkmap/chatmarkmap/api/internal/database"
	"github.com/chatmarkmap/chatmarkmap/api/internal/export"
	"github.com/chatmarkmap/chatmarkmap/api/internal/identity"
	"github.com/chatmarkmap/chatmarkmap/api/internal/mindmap"
	"github.com/chatmarkmap/chatmarkmap/api/internal/revocation"
	"github.com/chatmarkmap/chatmarkmap/api/internal/tokens"
	"github.com/chatmarkmap/chatmarkmap/api/internal/users"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/logger"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/metrics"
	"github.com/chatmarkmap/chatmarkmap/api/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

// app is everything the router needs. Optional parts are nil when not configured.
type app struct {
	cfg      *config.Config
	verifier identity.Verifier
	contents contentservice.Service
	users    *users.Service
	exports  *export.Service
	redis    *redis.Client
	revoked  *revocation.Store
	probes   map[string]handlers.Probe
	gatherer prometheus.Gatherer
}

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	logger.Infof("config loaded: oidc=%v mongo=%v redis=%v minio=%v", cfg.OIDC.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, probes: map[string]handlers.Probe{}}

	if cfg.Redis.Host != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer a.redis.Close()
		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to reach Redis at %s: %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
		a.revoked = revocation.NewStore(a.redis, "")
		a.probes["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	a.verifier, err = buildVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	var db *mongo.Database
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			return fmt.Errorf("could not connect to MongoDB: %w", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db = client.Database(cfg.MongoDB.Database)
		a.probes["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }

		if a.contents, err = contentservice.NewMongoService(ctx, db.Collection("contents")); err != nil {
			return err
		}
		a.users = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
		logger.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	} else {
		logger.Warn("MONGODB_URI not set: contents are kept in memory and lost on restart")
		a.contents = contentservice.NewMemoryService()
		a.users = users.NewService(users.NewMemoryUserRepository())
	}

	if cfg.MinIO.Endpoint != "" {
		store, err := export.NewMinIOStore(ctx, export.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Bucket:    cfg.MinIO.Bucket,
		})
		if err != nil {
			logger.Warnf("export disabled: %v", err)
		} else {
			var ledger export.Ledger = export.NewMemoryLedger()
			if db != nil {
				ledger = export.NewMongoLedger(db.Collection("exports"))
			}
			a.exports = export.NewService(store, ledger, cfg.MinIO.URLExpiry)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	a.gatherer = reg

	r := newRouter(a)
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting chatmarkmap API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildVerifier chains every configured token source: the OIDC provider, locally
// minted HS256 tokens and, for integration runs only, unsigned tokens.
func buildVerifier(ctx context.Context, cfg *config.Config) (identity.Verifier, error) {
	var chain identity.Chain
	if cfg.OIDC.Issuer != "" {
		ver, err := identity.NewOIDCVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			chain = append(chain, ver)
		}
	}
	if cfg.JWT.Secret != "" {
		chain = append(chain, tokens.NewHMACVerifier(cfg.JWT.Secret))
	}
	if cfg.OIDC.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		chain = append(chain, identity.NewInsecureVerifier())
	}
	if len(chain) == 0 {
		return nil, errors.New("no token verifier configured: set OIDC_ISSUER, JWT_SECRET or ALLOW_INSECURE_TOKEN")
	}
	return chain, nil
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(logger.L()), middleware.CORS(a.cfg.Server.CORSOrigin))

	handlers.RegisterHealth(r, a.probes, startTime)
	handlers.RegisterSwagger(r)
	gatherer := a.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authMW := middleware.AuthMiddleware(a.verifier, a.revoked)
	// limiter runs after auth so authenticated callers are keyed by subject
	chain := []gin.HandlerFunc{authMW}
	if rl := a.cfg.RateLimit; rl.Enabled {
		if rl.UseRedis && a.redis != nil {
			chain = append(chain, middleware.RedisRateLimitMiddleware(a.redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second))
		} else {
			chain = append(chain, middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	transformer := mindmap.NewTransformer()
	api := r.Group("/api")
	contenthandler.RegisterTransformRoute(api, transformer)
	contenthandler.RegisterContentRoutes(api.Group("", chain...), contenthandler.Deps{
		Service:     a.contents,
		Transformer: transformer,
		Exports:     a.exports,
	})

	handlers.NewAuthHandler(a.users, a.revoked).Register(r.Group("/auth", chain...), r.Group("/api/v1", chain...))
	return r
}
