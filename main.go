package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"kelas/internal/config"
	"kelas/internal/repositories"
	"kelas/internal/server"
	"kelas/internal/services"
	"kelas/pkg/paygateway"
	"kelas/pkg/rabbitmq"
	"kelas/pkg/redislock"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := repositories.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	checks := map[string]server.HealthCheck{"database": pingDatabase(db)}

	// --- Verification lock ---
	var locker services.Locker = services.NewLocalLocker()
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisLocker, err := redislock.NewLocker(ctx, redislock.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cancel()
		if err != nil {
			log.Fatalf("Failed to initialize Redis locker: %v", err)
		}
		defer redisLocker.Close()
		locker = redisLocker
		checks["redis"] = redisLocker.Ping
		log.Printf("Using Redis at %s for verification locks", cfg.RedisAddr)
	} else {
		log.Println("REDIS_ADDR not set, using in-process verification locks")
	}

	// --- Initialize RabbitMQ Client ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		events = mqClient

		err = mqClient.ConsumeCheckoutEvents(func(msg amqp.Delivery) error {
			return services.HandleCheckoutEvent(msg.RoutingKey, msg.Body)
		})
		if err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL not set, checkout events are not published")
	}

	// --- Payment gateway ---
	gateway, err := newGateway(cfg.Payment)
	if err != nil {
		log.Fatalf("Failed to initialize payment gateway: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	courseRepo := repositories.NewGORMCourseRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	enrollmentRepo := repositories.NewGORMEnrollmentRepository(db)

	// --- Initialize Services ---
	enrollmentService := services.NewEnrollmentService(enrollmentRepo)
	cartService := services.NewCartService(cartRepo, courseRepo, enrollmentService)
	checkoutService := services.NewCheckoutService(services.CheckoutDeps{
		Orders:   orderRepo,
		Courses:  courseRepo,
		Cart:     cartService,
		Enroller: enrollmentService,
		Gateway:  gateway,
		Locker:   locker,
		Events:   events,
	}, services.CheckoutConfig{
		Currency:          cfg.Payment.Currency,
		MaxVerifyAttempts: cfg.Checkout.MaxVerifyAttempts,
		LockTTL:           cfg.Checkout.LockTTL,
	})

	app := server.New(server.Services{
		Auth:        services.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL),
		Courses:     services.NewCourseService(courseRepo, cfg.Payment.Currency),
		Cart:        cartService,
		Checkout:    checkoutService,
		Orders:      services.NewOrderService(orderRepo),
		Enrollments: enrollmentService,
	}, server.Options{Checks: checks})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	log.Println("Server gracefully stopped")
}

func newGateway(cfg config.PaymentConfig) (services.PaymentGateway, error) {
	if cfg.Offline {
		log.Printf("Payment gateway offline mode: orders are created and signed locally (key %s)", cfg.KeyID)
		return paygateway.NewOfflineClient(cfg.KeyID, cfg.KeySecret), nil
	}
	client, err := paygateway.NewClient(paygateway.Config{
		BaseURL:   cfg.GatewayURL,
		KeyID:     cfg.KeyID,
		KeySecret: cfg.KeySecret,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func pingDatabase(db *gorm.DB) server.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
