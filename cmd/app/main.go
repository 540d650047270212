package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/cinemabooking/api"
	"github.com/Domenick1991/cinemabooking/config"
	"github.com/Domenick1991/cinemabooking/internal/bootstrap"
	"github.com/Domenick1991/cinemabooking/internal/cache"
	"github.com/Domenick1991/cinemabooking/internal/kafka"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/service/admins"
	"github.com/Domenick1991/cinemabooking/internal/service/booking"
	"github.com/Domenick1991/cinemabooking/internal/service/buddy"
	"github.com/Domenick1991/cinemabooking/internal/service/foods"
	"github.com/Domenick1991/cinemabooking/internal/service/movies"
	"github.com/Domenick1991/cinemabooking/internal/service/orders"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Env, cfg.Log.Debug)
	if cfg.Log.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.Worker.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Worker.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable", "addr", cfg.Redis.Addr, "err", err)
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.Warn("kafka unavailable, events will be dropped", "err", err)
	}

	movieRepo := repository.NewMovieRepository(pool)
	foodRepo := repository.NewFoodRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	buddyRepo := repository.NewBuddyRepository(pool)

	movieService := movies.NewMovieService(movieRepo, redisCache,
		movies.WithClock(func() time.Time { return time.Now().In(loc) }))
	foodService := foods.NewFoodService(foodRepo, redisCache)
	bookingService := booking.NewBookingService(
		bookingRepo,
		movieRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		time.Duration(cfg.Booking.ConfirmationTTL)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	orderService := orders.NewOrderService(
		orderRepo,
		foodRepo,
		bookingRepo,
		producer,
		cfg.Kafka.OrderTopic,
		orders.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	adminService := admins.NewAdminService(
		adminRepo,
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		cfg.Auth.BcryptCost,
	)
	buddyService := buddy.NewBuddyService(buddyRepo, movieRepo, redisCache)

	if err := adminService.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapName, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	router := api.NewRouter(api.Handlers{
		Movies:   api.NewMovieHandler(movieService),
		Foods:    api.NewFoodHandler(foodService),
		Bookings: api.NewBookingHandler(bookingService),
		Orders:   api.NewOrderHandler(orderService),
		Admins:   api.NewAdminHandler(adminService),
		Buddies:  api.NewBuddyHandler(buddyService, redisCache),
	}, api.RouterConfig{
		JWTSecret:  cfg.Auth.JWTSecret,
		SwaggerDir: cfg.HTTP.SwaggerDir,
	})

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
