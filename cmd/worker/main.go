package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/cinemabooking/config"
	"github.com/Domenick1991/cinemabooking/internal/cache"
	"github.com/Domenick1991/cinemabooking/internal/email"
	"github.com/Domenick1991/cinemabooking/internal/kafka"
	"github.com/Domenick1991/cinemabooking/internal/logger"
	"github.com/Domenick1991/cinemabooking/internal/repository"
	"github.com/Domenick1991/cinemabooking/internal/scheduler"
	"github.com/Domenick1991/cinemabooking/internal/service/booking"
	"github.com/Domenick1991/cinemabooking/internal/service/movies"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	loc, err := time.LoadLocation(cfg.Worker.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Worker.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Catalog.CacheTTLSeconds)*time.Second)
	defer redisCache.Close()

	movieRepo := repository.NewMovieRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	movieService := movies.NewMovieService(movieRepo, redisCache,
		movies.WithClock(func() time.Time { return time.Now().In(loc) }))
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

	sched, err := scheduler.New(cfg.Worker, movieService)
	if err != nil {
		log.Fatalf("create scheduler: %v", err)
	}
	// Catch up in case the worker was down at the scheduled time.
	if changed, err := sched.RunNow(ctx); err != nil {
		logger.Error("initial movie status sweep", "err", err)
	} else {
		logger.Info("initial movie status sweep", "changed", changed)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			logger.Error("scheduler shutdown", "err", err)
		}
	}()
	if next, err := sched.NextRun(); err == nil {
		logger.Info("movie status sweep scheduled", "next_run", next)
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(cfg.SMTP)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			event, err := kafka.DecodeEvent(msg.Value)
			if err != nil {
				logger.Warn("decode event", "offset", msg.Offset, "err", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Error("consumer stopped", "err", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				logger.Error("expire bookings", "err", err)
				continue
			}
			if len(expired) > 0 {
				logger.Info("expired bookings", "count", len(expired))
			}
		case s := <-sig:
			logger.Info("shutting down", "signal", s.String())
			return
		}
	}
}
