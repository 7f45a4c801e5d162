package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/example/rentify/internal/cache"
	"github.com/example/rentify/internal/config"
	"github.com/example/rentify/internal/database"
	"github.com/example/rentify/internal/handlers"
	"github.com/example/rentify/internal/logger"
	"github.com/example/rentify/internal/middleware"
	"github.com/example/rentify/internal/repository"
	"github.com/example/rentify/internal/routes"
	"github.com/example/rentify/internal/services"
)

func main() {
	cfg := config.Load()

	appLog := logger.New(cfg.AppName, cfg.LogLevel)
	defer appLog.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(cfg.DatabaseURL, cfg.LogLevel, appLog)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	store := newCacheStore(ctx, cfg, appLog)

	uploads, err := services.NewUploads(cfg.UploadDir, appLog)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	events := services.NewEventPublisher(services.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
	defer events.Close()

	mailer := services.NewMailer(services.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPMail,
		Password: cfg.SMTPPassword,
	})
	notifier := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat, appLog.With(logger.String("component", "telegram")))
	urls := services.URLBuilder(cfg.PublicURL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	blacklistRepo := repository.NewBlacklistRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	carRepo := repository.NewCarRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Services
	userService := services.NewUserService(userRepo, blacklistRepo, mailer, uploads, urls, services.AuthConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		HashCost:      cfg.PasswordHashCost,
	}, appLog)
	brandService := services.NewBrandService(brandRepo, store, uploads, urls, appLog)
	locationService := services.NewLocationService(locationRepo, store, appLog)
	carService := services.NewCarService(carRepo, brandRepo, locationRepo, store, uploads, urls, appLog)
	reviewService := services.NewReviewService(reviewRepo, carRepo, urls, appLog)
	discountService := services.NewDiscountService(discountRepo, carRepo, carService, appLog)
	orderService := services.NewOrderService(services.OrderDeps{
		Tx:        repository.NewTxManager(db),
		Orders:    orderRepo,
		Cars:      carRepo,
		Discounts: discountRepo,
		Users:     userRepo,
		Refresher: carService,
		Mailer:    mailer,
		Notifier:  notifier,
		Events:    events,
		Currency:  services.NewCurrencyConverter(cfg.USDToEGPRate),
		Log:       appLog.With(logger.String("component", "orders")),
	})
	contactService := services.NewContactService(contactRepo, userRepo, notifier, appLog)

	go userService.RunBlacklistJanitor(ctx, cfg.BlacklistPurgeInterval)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: middleware.ErrorHandler(appLog),
		BodyLimit:    services.MaxImagesPerUpload * services.MaxImageSize,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.Metrics())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	routes.Register(app, routes.Handlers{
		Users:     handlers.NewUserHandler(userService, uploads, cfg.RefreshTokenTTL, cfg.IsProduction()),
		Brands:    handlers.NewBrandHandler(brandService, uploads),
		Locations: handlers.NewLocationHandler(locationService),
		Cars:      handlers.NewCarHandler(carService, uploads),
		Reviews:   handlers.NewReviewHandler(reviewService),
		Discounts: handlers.NewDiscountHandler(discountService),
		Orders:    handlers.NewOrderHandler(orderService),
		Contact:   handlers.NewContactHandler(contactService),
	}, userService, cfg.UploadDir)

	go func() {
		appLog.Info("server starting", logger.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("fiber.Listen error: %v", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("shutting down server")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLog.Error("server forced to shutdown", logger.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLog.Info("server exited")
}

// newCacheStore connects to Redis, falling back to an in-process store when
// Redis is not configured or unreachable.
func newCacheStore(ctx context.Context, cfg *config.Config, appLog logger.ILogger) cache.Store {
	if cfg.RedisAddr == "" {
		appLog.Warning("REDIS_ADDR is empty, using in-memory cache")
		return cache.NewMemory()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := cache.NewClient(pingCtx, cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		appLog.Warning("redis unavailable, using in-memory cache", logger.Error(err))
		return cache.NewMemory()
	}
	return cache.NewRedisStore(client, cfg.CacheTTL)
}
