package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/inkpress/internal/adapters/cache/memory"
	"github.com/SscSPs/inkpress/internal/adapters/cache/rediscache"
	"github.com/SscSPs/inkpress/internal/adapters/database/mongodb"
	"github.com/SscSPs/inkpress/internal/adapters/database/pgsql"
	"github.com/SscSPs/inkpress/internal/adapters/mail"
	"github.com/SscSPs/inkpress/internal/adapters/search/elasticsearch"
	"github.com/SscSPs/inkpress/internal/adapters/storage/gcs"
	portsrepo "github.com/SscSPs/inkpress/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inkpress/internal/core/ports/services"
	"github.com/SscSPs/inkpress/internal/core/services"
	"github.com/SscSPs/inkpress/internal/handlers"
	"github.com/SscSPs/inkpress/internal/middleware"
	"github.com/SscSPs/inkpress/internal/platform/config"
	"github.com/SscSPs/inkpress/internal/platform/validation"
	"github.com/SscSPs/inkpress/internal/utils"
	"github.com/SscSPs/inkpress/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	memstore "github.com/ulule/limiter/v3/drivers/store/memory"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// @title inkpress API
// @version 1.0
// @description Blog publishing backend: accounts, sessions, blogs and posts.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name token

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// cleanups run in reverse registration order on shutdown.
type cleanups []func()

func (c *cleanups) add(f func()) { *c = append(*c, f) }

func (c cleanups) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()
	var closers cleanups
	defer closers.run()

	repos, healthCheck, err := setupDatabase(ctx, cfg, logger, &closers)
	if err != nil {
		return err
	}

	infra, authLimiter, err := setupInfrastructure(ctx, cfg, logger, &closers)
	if err != nil {
		return err
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, infra)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	closers.add(posthogClient.Close)

	validation.Init()
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	deps := handlers.Dependencies{AuthLimiter: authLimiter, Posthog: posthogClient}
	if cfg.EnableDBCheck {
		deps.HealthCheck = healthCheck
	}
	handlers.RegisterRoutes(r, cfg, serviceContainer, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("database", cfg.DatabaseDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	case <-stop.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited properly")
	return nil
}

// setupDatabase opens the configured store and returns its repositories and a ping for /health.
func setupDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers *cleanups) (portsrepo.RepositoryProvider, func(context.Context) error, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		closers.add(func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			database.CloseMongoClient(closeCtx, client)
		})
		db := client.Database(cfg.MongoDatabase)

		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mongodb.EnsureIndexes(indexCtx, db); err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to ensure MongoDB indexes: %w", err)
		}
		logger.Info("MongoDB connection established", slog.String("database", cfg.MongoDatabase))
		ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		return mongodb.NewRepositoryProvider(db), ping, nil

	case config.DriverPostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		closers.add(func() { database.ClosePgxPool(pool) })
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), pool.Ping, nil

	default:
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

// setupInfrastructure builds the optional adapters. Each is left nil when not configured,
// except token revocation and rate limiting which fall back to process memory without Redis.
func setupInfrastructure(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers *cleanups) (services.Infrastructure, *limiter.Limiter, error) {
	var infra services.Infrastructure

	rate, err := limiter.NewRateFromFormatted(cfg.LoginRateLimit)
	if err != nil {
		return infra, nil, fmt.Errorf("invalid LOGIN_RATE_LIMIT %q: %w", cfg.LoginRateLimit, err)
	}

	var limiterStore limiter.Store
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return infra, nil, err
		}
		closers.add(func() { database.CloseRedisClient(rdb) })
		infra.Revocations = rediscache.NewRevocationStore(rdb)
		if limiterStore, err = rediscache.NewLimiterStore(rdb, cfg.AppName); err != nil {
			return infra, nil, fmt.Errorf("failed to create rate limiter store: %w", err)
		}
	} else {
		logger.Warn("REDIS_ADDR not set; token revocation and rate limits are kept in process memory")
		infra.Revocations = memory.NewRevocationStore()
		limiterStore = memstore.NewStore()
	}
	authLimiter := limiter.New(limiterStore, rate)

	mailer, err := setupMailer(cfg, logger, closers)
	if err != nil {
		return infra, nil, err
	}
	infra.Mailer = mailer

	if len(cfg.ElasticsearchAddrs) > 0 {
		client, err := elasticsearch.NewClient(cfg.ElasticsearchAddrs, cfg.ElasticsearchUsername, cfg.ElasticsearchPassword)
		if err != nil {
			return infra, nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
		}
		infra.Searcher = elasticsearch.NewSearcher(client, cfg.ElasticsearchIndexPrefix)
		logger.Info("Full-text search enabled", slog.Any("addrs", cfg.ElasticsearchAddrs))
	}

	if cfg.GCSBucket != "" {
		client, err := gcs.NewClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			return infra, nil, fmt.Errorf("failed to create GCS client: %w", err)
		}
		closers.add(func() { _ = client.Close() })
		infra.Storage = gcs.NewObjectStorage(client, cfg.GCSBucket)
		logger.Info("Uploads enabled", slog.String("bucket", cfg.GCSBucket))
	}

	return infra, authLimiter, nil
}

func setupMailer(cfg *config.Config, logger *slog.Logger, closers *cleanups) (portssvc.Mailer, error) {
	switch cfg.MailDriver {
	case config.MailDriverMailgun:
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			return nil, errors.New("mailgun mail driver requires MAILGUN_DOMAIN, MAILGUN_API_KEY and MAILGUN_SENDER")
		}
		return mail.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), nil
	case config.MailDriverRabbitMQ:
		publisher, err := mail.NewQueuePublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		closers.add(publisher.Close)
		logger.Info("Emails are queued for the mail worker", slog.String("queue", cfg.RabbitMQEmailQueue))
		return publisher, nil
	case config.MailDriverLog, "":
		return mail.LogMailer{}, nil
	default:
		return nil, fmt.Errorf("unsupported MAIL_DRIVER %q", cfg.MailDriver)
	}
}
