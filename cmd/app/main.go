package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avdonin/shareit/config"
	"github.com/avdonin/shareit/internal/bootstrap"
	"github.com/avdonin/shareit/internal/cache"
	"github.com/avdonin/shareit/internal/clock"
	"github.com/avdonin/shareit/internal/kafka"
	"github.com/avdonin/shareit/internal/repository"
	"github.com/avdonin/shareit/internal/service/booking"
	"github.com/avdonin/shareit/internal/service/items"
	"github.com/avdonin/shareit/internal/service/requests"
	"github.com/avdonin/shareit/internal/service/users"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Items.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	systemClock := clock.NewSystem()

	userRepo := repository.NewUserRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)

	svc := bootstrap.Services{
		Users: users.NewUserService(userRepo),
		Items: items.NewItemService(itemRepo, userRepo, bookingRepo, commentRepo, requestRepo, redisCache, systemClock),
		Bookings: booking.NewBookingService(
			bookingRepo,
			itemRepo,
			userRepo,
			producer,
			systemClock,
			cfg.Kafka.BookingTopic,
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		),
		Requests: requests.NewRequestService(requestRepo, itemRepo, userRepo, systemClock),
	}

	if err := bootstrap.Run(ctx, cfg, svc); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
