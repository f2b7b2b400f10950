package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/bmvt/backend/internal/app/controllers"
	"github.com/bmvt/backend/internal/app/models/dto/enums"
	appMigrations "github.com/bmvt/backend/internal/app/migrations"
	appRepos "github.com/bmvt/backend/internal/app/repositories"
	appRoutes "github.com/bmvt/backend/internal/app/routes"
	appServices "github.com/bmvt/backend/internal/app/services"
	"github.com/bmvt/backend/internal/config"
	"github.com/bmvt/backend/internal/db"
	appMiddleware "github.com/bmvt/backend/internal/middleware"
	pkgAuth "github.com/bmvt/backend/internal/pkg/auth"
	"github.com/bmvt/backend/internal/pkg/cleanup"
	"github.com/bmvt/backend/internal/pkg/filestorage"
	"github.com/bmvt/backend/internal/pkg/logger"
	"github.com/bmvt/backend/internal/pkg/metrics"
	"github.com/bmvt/backend/internal/pkg/sse"
	"github.com/bmvt/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Metrics        *metrics.Metrics
	FileStorage    filestorage.FileStorage
	Cleaner        cleanup.Cleaner
	Hub            *sse.Hub
	Controllers    appRoutes.Controllers
	Uploads        *appControllers.UploadController // nil when files are served from disk
	AuthMiddleware *appMiddleware.AuthMiddleware
	AuthLimiter    *appMiddleware.IPRateLimiter
	Logger         zerolog.Logger

	// Optional, present when redis.url is configured.
	Redis         *redis.Client
	Broker        *sse.RedisBroker
	CleanupWorker *cleanup.Worker
	queueCleaner  *cleanup.QueueCleaner

	database *db.PostgresDB
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL, applies the embedded migrations
// and seeds the bootstrap administrator.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString(), lgr).Up(); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	admin := seed.Admin{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}
	if _, err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(database.Executor()), admin, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

func setupFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	if strings.EqualFold(cfg.Storage.Driver, "minio") {
		return filestorage.NewMinIOStorage(ctx, filestorage.MinIOConfig{
			Endpoint:  cfg.Storage.MinIO.Endpoint,
			AccessKey: cfg.Storage.MinIO.AccessKey,
			SecretKey: cfg.Storage.MinIO.SecretKey,
			Bucket:    cfg.Storage.MinIO.Bucket,
			UseSSL:    cfg.Storage.MinIO.UseSSL,
		})
	}
	return filestorage.NewLocalStorage(cfg.Storage.LocalDir)
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, database: database}

	// Metrics and repositories
	deps.Metrics = metrics.New()
	deps.Repos = appRepos.NewRepositories(database.Executor())

	// File storage (local disk or MinIO)
	var err error
	deps.FileStorage, err = setupFileStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	if reader, ok := deps.FileStorage.(filestorage.ObjectReader); ok {
		deps.Uploads = appControllers.NewUploadController(reader, lgr)
	}

	// Cleanup runs inline unless the Redis queue replaces it below
	inline := cleanup.NewInlineCleaner(deps.FileStorage, deps.Metrics.CleanupFailures, lgr.With().Str("component", "cleanup").Logger())
	deps.Cleaner = inline

	// Chat hub
	channels := make([]string, 0, len(enums.Channels))
	for _, ch := range enums.Channels {
		channels = append(channels, string(ch))
	}
	deps.Hub = sse.NewHub(sse.Config{
		Channels:   channels,
		BufferSize: cfg.Chat.BufferSize,
		Heartbeat:  config.ParseDuration(cfg.Chat.HeartbeatInterval, 25*time.Second),
	}, lgr.With().Str("component", "chat").Logger())
	deps.Hub.SetObserver(func(channel string, count int) {
		deps.Metrics.SSESubscribers.WithLabelValues(channel).Set(float64(count))
	})

	if cfg.Redis.URL != "" {
		if err := deps.setupRedis(ctx, cfg, inline); err != nil {
			deps.Close()
			return nil, err
		}
	}

	// Auth
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    config.ParseDuration(cfg.JWT.Expiration, 7*24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, cfg.JWT.CookieName)
	deps.AuthLimiter = appMiddleware.NewIPRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)

	// Services
	repos := deps.Repos
	authService := appServices.NewAuthService(repos.UserRepository, deps.JWTService, lgr)
	userService := appServices.NewUserService(repos.UserRepository, lgr)
	pelerinService := appServices.NewPelerinService(repos.PelerinRepository, repos.UserRepository, deps.FileStorage, deps.Cleaner, lgr)
	medicaleService := appServices.NewMedicaleService(repos.MedicaleRepository, repos.PelerinRepository, lgr)
	flightService := appServices.NewFlightService(repos.FlightRepository, deps.FileStorage, deps.Cleaner, lgr)
	roomService := appServices.NewRoomService(repos.RoomRepository, deps.FileStorage, deps.Cleaner, lgr)
	paymentService := appServices.NewPaymentService(repos.PaymentRepository, nil, lgr)
	versementService := appServices.NewVersementService(repos.VersementRepository, lgr)
	offreService := appServices.NewOffreService(repos.OffreRepository, lgr)
	voyageService := appServices.NewVoyageService(repos.VoyageRepository, lgr)
	pelerinPaiementService := appServices.NewPelerinPaiementService(repos.PelerinPaiementRepository, repos.PaymentRepository, lgr)
	chatService := appServices.NewChatService(repos.ChatRepository, repos.UserRepository, deps.FileStorage, deps.Cleaner,
		deps.Hub, deps.Metrics.ChatPublished, lgr)

	// Controllers
	deps.Controllers = appRoutes.Controllers{
		Auth: appControllers.NewAuthController(authService, appControllers.CookieOptions{
			Name:   cfg.JWT.CookieName,
			Secure: cfg.IsProduction(),
		}, lgr),
		User:            appControllers.NewUserController(userService),
		Pelerin:         appControllers.NewPelerinController(pelerinService),
		Medicale:        appControllers.NewMedicaleController(medicaleService),
		Flight:          appControllers.NewFlightController(flightService),
		Room:            appControllers.NewRoomController(roomService),
		Payment:         appControllers.NewPaymentController(paymentService, versementService),
		Offre:           appControllers.NewOffreController(offreService, voyageService),
		PelerinPaiement: appControllers.NewPelerinPaiementController(pelerinPaiementService, cfg.Server.PublicURL),
		Chat:            appControllers.NewChatController(chatService, deps.Hub, lgr),
	}

	return deps, nil
}

// setupRedis enables the cross-instance chat relay and the retryable
// cleanup queue.
func (d *Dependencies) setupRedis(ctx context.Context, cfg *config.Config, inline *cleanup.InlineCleaner) error {
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	d.Redis = redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := d.Redis.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Chat relay
	d.Broker = sse.NewRedisBroker(d.Redis, cfg.Chat.Topic, d.Logger.With().Str("component", "chat-broker").Logger())
	d.Hub.SetBroker(d.Broker)

	// Cleanup queue and its worker
	connOpt, err := cleanup.RedisConnOpt(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid redis url: %w", err)
	}
	cleanupLogger := d.Logger.With().Str("component", "cleanup").Logger()
	d.queueCleaner = cleanup.NewQueueCleaner(asynq.NewClient(connOpt), cfg.Cleanup.Queue, cfg.Cleanup.MaxRetry, inline, cleanupLogger)
	d.Cleaner = d.queueCleaner
	d.CleanupWorker = cleanup.NewWorker(connOpt, cfg.Cleanup.Queue, cfg.Cleanup.Concurrency, inline, cleanupLogger)

	d.Logger.Info().Str("queue", cfg.Cleanup.Queue).Str("topic", cfg.Chat.Topic).Msg("Redis relay and cleanup queue enabled")
	return nil
}

// Close releases the clients opened by BuildDependencies. The database
// pool is closed by its owner.
func (d *Dependencies) Close() {
	if d.queueCleaner != nil {
		if err := d.queueCleaner.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close cleanup queue client")
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		lgr.Warn().Err(err).Msg("Custom validation tags not registered")
	}

	// Create router with global middleware
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Storage.MaxUploadMB) << 20
	router.Use(
		appMiddleware.RequestID(lgr),
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(deps.Metrics),
		appMiddleware.CORS(cfg.CORS.Origins),
	)

	// Service endpoints
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API Backend BMVT en marche")
	})
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.database.Pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	appRoutes.SetupSwagger(router)

	// Uploaded files
	if deps.Uploads != nil {
		router.GET("/uploads/*path", deps.Uploads.Serve)
	} else {
		router.Static("/uploads", cfg.Storage.LocalDir)
		lgr.Info().Str("path", cfg.Storage.LocalDir).Msg("Static file serving configured for uploads directory")
	}

	// API routes
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter)
	router.NoRoute(appMiddleware.NotFound())

	return router
}
