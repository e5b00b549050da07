package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensetracker/api/handler"
	apiMiddleware "expensetracker/api/middleware"
	"expensetracker/api/routes"
	"expensetracker/config"
	"expensetracker/internal/cache"
	"expensetracker/internal/notification"
	"expensetracker/internal/repository"
	"expensetracker/internal/service"
	"expensetracker/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("load config")
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.WithError(err).Fatal("invalid config")
	}

	db, err := config.ConnectionDb(cfg)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	if err := config.Migrate(db); err != nil {
		logger.WithError(err).Fatal("migrate database")
	}

	var responseCache cache.Cache = cache.NoopCache{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		responseCache = cache.NewRedisCache(client)
	}

	sink, closeSink, err := notification.NewSink(notificationSettings(cfg), logger)
	if err != nil {
		logger.WithError(err).Fatal("notification sink")
	}
	defer closeSink()
	dispatcher := notification.NewDispatcher(sink, logger, notification.DispatcherOptions{
		Workers:   cfg.NotifyWorkers,
		QueueSize: cfg.NotifyQueueSize,
	})

	jwtManager := utils.JWTManager{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.SessionTTL,
	}

	userRepo := repository.NewUserRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	passwordHasher := service.BcryptPasswordHasher{Cost: cfg.BcryptCost}
	clock := service.RealClock{}

	authService := service.NewAuthService(
		userRepo,
		securityRepo,
		passwordHasher,
		service.JWTSessionIssuer{Manager: &jwtManager},
		clock,
		service.AuthConfig{RequireActive: cfg.LoginRequireActive},
		logger,
	)
	registrationService := service.NewRegistrationService(
		userRepo,
		securityRepo,
		passwordHasher,
		service.UUIDTokenIssuer{},
		dispatcher,
		service.RegistrationMode(cfg.RegistrationMode),
		logger,
	)
	categoryService := service.NewCategoryService(categoryRepo, responseCache, cfg.CacheTTL, logger)
	expenseService := service.NewExpenseService(expenseRepo, categoryRepo, responseCache, cfg.CacheTTL, logger)
	analyticsService := service.NewAnalyticsService(expenseRepo, clock)

	validate := validator.New()

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	router := routes.NewRouter(app,
		handler.NewAuthHandler(authService, registrationService, validate),
		handler.NewCategoryHandler(categoryService, validate),
		handler.NewExpenseHandler(expenseService, validate),
		handler.NewStatisticsHandler(analyticsService),
		apiMiddleware.AuthMiddleware{JWT: &jwtManager, Logger: logger},
	)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.WithError(err).Warn("notifications dropped on shutdown")
	}
	logger.Info("server stopped")
}

func notificationSettings(cfg *config.Config) notification.Settings {
	return notification.Settings{
		Sink:           cfg.NotifySink,
		AppBaseURL:     cfg.AppBaseURL,
		KafkaBrokers:   cfg.KafkaBrokers,
		KafkaTopic:     cfg.KafkaTopic,
		Mailer:         cfg.Mailer,
		ResendAPIKey:   cfg.ResendAPIKey,
		MailFrom:       cfg.MailFrom,
		SMTPHost:       cfg.SMTPHost,
		SMTPUser:       cfg.SMTPUser,
		SMTPPassword:   cfg.SMTPPassword,
		SMTPSkipVerify: cfg.SMTPSkipVerify,
	}
}
