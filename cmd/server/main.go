package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haulbuddy/service-marketplace/internal/application"
	"github.com/haulbuddy/service-marketplace/internal/common/auth"
	"github.com/haulbuddy/service-marketplace/internal/common/database"
	"github.com/haulbuddy/service-marketplace/internal/common/health"
	"github.com/haulbuddy/service-marketplace/internal/common/kafka"
	"github.com/haulbuddy/service-marketplace/internal/common/logger"
	"github.com/haulbuddy/service-marketplace/internal/common/middleware"
	"github.com/haulbuddy/service-marketplace/internal/config"
	bookingDomain "github.com/haulbuddy/service-marketplace/internal/domain/booking"
	bookingEvents "github.com/haulbuddy/service-marketplace/internal/events"
	"github.com/haulbuddy/service-marketplace/internal/handler"
	"github.com/haulbuddy/service-marketplace/internal/identity"
	"github.com/haulbuddy/service-marketplace/internal/repository"
	"github.com/haulbuddy/service-marketplace/internal/session"
	"github.com/haulbuddy/service-marketplace/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-marketplace")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-marketplace",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if err := db.AutoMigrate(
		&repository.AccountModel{},
		&repository.ProfileModel{},
		&repository.VehicleModel{},
		&repository.BookingModel{},
	); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize object storage: GCS when credentials are configured,
	// local disk otherwise (development).
	var objectStorage storage.ObjectStorage
	if cfg.StorageConfig.CredentialsFile != "" {
		objectStorage, err = storage.NewGCSStorage(
			context.Background(),
			cfg.StorageConfig.Bucket,
			cfg.StorageConfig.CredentialsFile,
			log,
		)
		if err != nil {
			log.Fatal("failed to initialize object storage", zap.Error(err))
		}
	} else {
		if cfg.AppEnv != "development" {
			log.Fatal("object storage credentials are required outside development")
		}
		objectStorage, err = storage.NewLocalStorage("./media", "http://localhost"+cfg.Port+"/media", log)
		if err != nil {
			log.Fatal("failed to initialize local storage", zap.Error(err))
		}
	}

	// Initialize repositories
	accountRepo := repository.NewGormAccountRepository(db)
	profileRepo := repository.NewGormProfileRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	// Initialize identity provider and session manager. Token role claims
	// come from the profile store, which owns the role.
	roleResolver := func(ctx context.Context, uid string) (string, error) {
		p, err := profileRepo.FindByUID(ctx, uid)
		if err != nil {
			return "", err
		}
		return string(p.Role()), nil
	}
	provider := identity.NewLocalProvider(accountRepo, jwtManager, roleResolver, log)
	sessionManager := session.NewManager(provider, profileRepo, log)
	defer sessionManager.Close()

	// Initialize application services
	profileService := application.NewProfileService(profileRepo, log)
	authService := application.NewAuthService(provider, profileService, log)
	vehicleService := application.NewVehicleService(vehicleRepo, objectStorage, log)
	onboardingService := application.NewOnboardingService(profileRepo, vehicleService, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		bookingDomain.NewFlatRatePricingStrategy(),
		kafkaProducer,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "marketplace-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-marketplace")
	healthHandler.RegisterRoutes(router)

	// Register routes
	handler.NewAuthHandler(authService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewProfileHandler(profileService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewVehicleHandler(vehicleService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewOnboardingHandler(onboardingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-marketplace...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-marketplace stopped")
}
