package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	catalogapp "github.com/Miraku17/Exam-Permit/internal/application/catalog"
	identityapp "github.com/Miraku17/Exam-Permit/internal/application/identity"
	paymentapp "github.com/Miraku17/Exam-Permit/internal/application/payment"
	permitapp "github.com/Miraku17/Exam-Permit/internal/application/permit"
	tuitionapp "github.com/Miraku17/Exam-Permit/internal/application/tuition"
	"github.com/Miraku17/Exam-Permit/internal/domain/catalog"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared"
	"github.com/Miraku17/Exam-Permit/internal/domain/shared/valueobject"
	"github.com/Miraku17/Exam-Permit/internal/domain/tuition"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/auth"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/cache"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/config"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/event"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/logger"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/mail"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/persistence"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/printing"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/storage"
	"github.com/Miraku17/Exam-Permit/internal/infrastructure/telemetry"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/handler"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/middleware"
	"github.com/Miraku17/Exam-Permit/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/Miraku17/Exam-Permit/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Tuition and Exam Permit Portal API
//	@version		1.0
//	@description	Student tuition ledgers, payment verification and examination permits

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	ctx := context.Background()

	// Telemetry starts first so the log bridge covers start-up
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()
	log = tel.Logs.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting tuition portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, "postgresql"); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if cfg.App.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}
	log.Info("Database connected successfully")

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	planRepo := persistence.NewGormSemesterPlanRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	permitRepo := persistence.NewGormPermitRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Catalog policy
	policies := catalog.DefaultPolicyTable()
	for code, kind := range cfg.Tuition.Schedules {
		if err := policies.OverrideSchedule(strings.ToUpper(code), catalog.ScheduleKind(kind)); err != nil {
			log.Fatal("Invalid tuition schedule override", zap.String("program", code), zap.Error(err))
		}
	}
	downPayment := valueobject.Zero()
	if cfg.Tuition.DownPayment != "" {
		if downPayment, err = valueobject.NewMoneyFromString(cfg.Tuition.DownPayment); err != nil {
			log.Fatal("Invalid tuition down payment", zap.Error(err))
		}
	}
	feeSeed := cfg.Tuition.FeeSeed
	if feeSeed == 0 {
		feeSeed = uint64(time.Now().UnixNano())
	}

	// Validation rules know the configured programs
	if err := middleware.SetupValidator(policies); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	// Proof storage
	proofs, err := newProofStorage(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize proof storage", zap.Error(err))
	}

	// Outbound email
	mailer, err := mail.New(cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// PDF documents
	pdf, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Document.RenderTimeout,
		ExecPath:       cfg.Document.ChromePath,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdf.Close(); err != nil {
			log.Warn("Failed to stop PDF renderer", zap.Error(err))
		}
	}()
	templates, err := printing.NewTemplateEngineE()
	if err != nil {
		log.Fatal("Failed to load document templates", zap.Error(err))
	}
	paperSize, _ := printing.ParsePaperSize(cfg.Document.PaperSize)
	documents := printing.NewDocumentService(templates, pdf, paperSize, log)

	// Ledger lock and token revocations: Redis when enabled, in-process otherwise
	var (
		locker      shared.Locker
		revocations auth.RevocationList
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing Redis", zap.Error(err))
			}
		}()
		locker = cache.NewLocker(cfg.Redis, redisClient, log)
		revocations = auth.NewRedisRevocationList(redisClient)
	} else {
		locker = cache.NewLocker(cfg.Redis, nil, log)
		revocations = auth.NewMemoryRevocationList()
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	metrics, err := telemetry.NewBusinessMetrics(tel.Meter.Meter("tuition-portal"))
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	eventBus.Subscribe(metrics)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)

	catalogService := catalogapp.NewCatalogService(planRepo, catalog.NewBuilder(policies, catalog.NewRandomFeeGenerator(feeSeed)), log)

	ledgerService := tuitionapp.NewLedgerService(ledgerRepo, planRepo, tuition.NewInitializer(policies, downPayment), log)
	ledgerService.SetEventPublisher(eventBus)

	authService := identityapp.NewAuthService(userRepo, ledgerService, catalogService, txManager, jwtService, log)
	authService.SetRevocationList(revocations)
	authService.SetEventPublisher(eventBus)

	submissionService := paymentapp.NewSubmissionService(paymentRepo, proofs, nil, log)
	submissionService.SetConfig(paymentapp.SubmissionConfig{
		ProofFolder:   cfg.Storage.ProofFolder,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	})
	submissionService.SetEventPublisher(eventBus)

	verificationService := paymentapp.NewVerificationService(paymentapp.VerificationServiceConfig{
		PaymentRepo: paymentRepo,
		LedgerRepo:  ledgerRepo,
		Locker:      locker,
		TxManager:   txManager,
		Documents:   documents,
		Mailer:      mailer,
		Logger:      log,
	})
	verificationService.SetEventPublisher(eventBus)
	verificationService.SetDeliveryRecorder(metrics)

	permitService := permitapp.NewService(permitapp.ServiceConfig{
		PermitRepo: permitRepo,
		LedgerRepo: ledgerRepo,
		UserRepo:   userRepo,
		Policies:   policies,
		TxManager:  txManager,
		Documents:  documents,
		Mailer:     mailer,
		SchoolYear: cfg.Permit.SchoolYear,
		Logger:     log,
	})
	permitService.SetEventPublisher(eventBus)
	permitService.SetDeliveryRecorder(metrics)

	if cfg.Admin.Email != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
			log.Fatal("Failed to ensure administrator account", zap.Error(err))
		}
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID, access log, panic recovery, tracing,
	// CORS, security headers, body limit
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		telemetry.GinMiddleware(cfg.Telemetry.ServiceName),
		middleware.CORSWithConfig(corsConfig),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimit, cfg.HTTP.AuthRateWindow)
	defer authLimiter.Stop()

	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Tuition: handler.NewTuitionHandler(ledgerService),
		Payment: handler.NewPaymentHandler(submissionService, verificationService),
		Permit:  handler.NewPermitHandler(permitService),
		System:  handler.NewSystemHandler(cfg.App.Name, version, db),
	}
	authenticate := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:  jwtService,
		Revocations: revocations,
		Logger:      log,
	})
	guards := router.Guards{
		Authenticate:  authenticate,
		AuthRateLimit: middleware.RateLimit(authLimiter, "auth"),
	}
	swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.HTTP.Swagger.Enabled,
		RequireAuth: cfg.HTTP.Swagger.RequireAuth,
		AllowedIPs:  cfg.HTTP.Swagger.AllowedIPs,
	}, authenticate)
	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithDocs(swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler)),
	).
		Register(router.APIRoutes(handlers, guards)...).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newProofStorage selects S3-compatible storage when enabled and the
// in-process store otherwise
func newProofStorage(cfg config.StorageConfig, log *zap.Logger) (paymentapp.ProofStorage, error) {
	if !cfg.Enabled {
		log.Warn("Object storage disabled; payment proofs are kept in memory")
		baseURL := cfg.PublicBaseURL
		if baseURL == "" {
			baseURL = "memory://payment-proofs"
		}
		return storage.NewMemoryObjectStorage(baseURL), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Info("Using S3 proof storage", zap.String("bucket", cfg.Bucket))
	return s3, nil
}
